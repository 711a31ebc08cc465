package synth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/survey"
)

func TestHeuristicFirstCaseAlwaysValid(t *testing.T) {
	h := NewHeuristic()
	kinds := []survey.InputKind{
		survey.KindText, survey.KindEmail, survey.KindNumber, survey.KindTextarea,
		survey.KindRadio, survey.KindCheckbox, survey.KindDropdown, survey.KindDate,
		survey.KindVAS, survey.KindNRS, survey.KindUnknown,
	}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			field := &survey.FieldDescriptor{
				InputType: kind,
				Choices:   []string{"A", "B", "C"},
			}
			cases, err := h.Synthesize(context.Background(), field)
			require.NoError(t, err)
			require.NotEmpty(t, cases)
			assert.Equal(t, survey.CaseValid, cases[0].Type)
			assert.NotEmpty(t, cases[0].ID)
			assert.Equal(t, "heuristic", cases[0].Provenance)
		})
	}
}

func TestHeuristicChoiceAvoidsDefaultPreselection(t *testing.T) {
	h := NewHeuristic()

	cases, err := h.Synthesize(context.Background(), &survey.FieldDescriptor{
		InputType: survey.KindRadio,
		Choices:   []string{"Yes", "No"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cases[0].Value)

	cases, err = h.Synthesize(context.Background(), &survey.FieldDescriptor{
		InputType: survey.KindDropdown,
		Choices:   []string{"Only option"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, cases[0].Value)
}

func TestNewProvider(t *testing.T) {
	log := zap.NewNop()

	s, err := NewProvider("", "", log)
	require.NoError(t, err)
	assert.IsType(t, &Heuristic{}, s)

	s, err = NewProvider("heuristic", "", log)
	require.NoError(t, err)
	assert.IsType(t, &Heuristic{}, s)

	_, err = NewProvider("oracle", "", log)
	assert.Error(t, err)
}

type failingSynth struct{ err error }

func (f *failingSynth) Synthesize(context.Context, *survey.FieldDescriptor) ([]survey.TestCase, error) {
	return nil, f.err
}

func TestWithFallback(t *testing.T) {
	w := &withFallback{
		primary: &failingSynth{err: fmt.Errorf("model unavailable")},
		backup:  NewHeuristic(),
		log:     zap.NewNop(),
	}
	cases, err := w.Synthesize(context.Background(), &survey.FieldDescriptor{InputType: survey.KindText})
	require.NoError(t, err)
	require.NotEmpty(t, cases)
	assert.Equal(t, "heuristic", cases[0].Provenance)
}

func TestParseCasesJSON(t *testing.T) {
	response := "Here are the generated test cases:\n" +
		"```json\n" +
		`[
			{"type": "boundary", "value": 0, "description": "lower bound", "confidence": 0.7},
			{"type": "valid", "value": 42, "description": "typical age", "confidence": 0.95},
			{"type": "nonsense-type", "value": "x", "description": "unknown type coerced", "confidence": 0.1}
		]` + "\n```\nLet me know if you need more.\n"

	cases, err := parseCasesJSON(response, "claude")
	require.NoError(t, err)
	require.Len(t, cases, 3)

	// a valid case is moved to the front so it can be filled directly
	assert.Equal(t, survey.CaseValid, cases[0].Type)
	assert.EqualValues(t, 42, cases[0].Value)
	assert.Equal(t, "claude", cases[0].Provenance)

	for _, tc := range cases {
		assert.NotEmpty(t, tc.ID)
		assert.Equal(t, survey.StatusDraft, tc.Status)
	}
}

func TestParseCasesJSONErrors(t *testing.T) {
	_, err := parseCasesJSON("no array here", "claude")
	assert.Error(t, err)

	_, err = parseCasesJSON("[1, 2", "claude")
	assert.Error(t, err)

	_, err = parseCasesJSON("[]", "claude")
	assert.Error(t, err)
}

func TestFieldJSON(t *testing.T) {
	out, err := fieldJSON(&survey.FieldDescriptor{
		QuestionNumber: "3.",
		QuestionText:   "How often do you exercise?",
		InputType:      survey.KindDropdown,
		IsRequired:     true,
		Choices:        []string{"Never", "Weekly", "Daily"},
		Selector:       "#q3 select",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `"questionNumber": "3."`)
	assert.Contains(t, out, `"inputType": "dropdown"`)
	assert.NotContains(t, out, "#q3", "selectors are not model input")
}
