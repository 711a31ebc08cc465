package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/survey"
)

// NewProvider builds a synthesizer by name. The AI providers are wrapped so
// any API or parse failure falls back to the heuristic generator; a field
// must never end up with zero candidate values because a model was down.
func NewProvider(name, model string, log *zap.Logger) (survey.Synthesizer, error) {
	switch name {
	case "", "heuristic":
		return NewHeuristic(), nil
	case "claude", "anthropic":
		p, err := NewClaudeProvider(model)
		if err != nil {
			return nil, err
		}
		return &withFallback{primary: p, backup: NewHeuristic(), log: log}, nil
	case "openai", "gpt":
		p, err := NewOpenAIProvider(model)
		if err != nil {
			return nil, err
		}
		return &withFallback{primary: p, backup: NewHeuristic(), log: log}, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: heuristic, claude, openai)", name)
	}
}

// withFallback tries the primary synthesizer and quietly degrades to the
// backup when it errors or returns nothing.
type withFallback struct {
	primary survey.Synthesizer
	backup  survey.Synthesizer
	log     *zap.Logger
}

func (w *withFallback) Synthesize(ctx context.Context, field *survey.FieldDescriptor) ([]survey.TestCase, error) {
	cases, err := w.primary.Synthesize(ctx, field)
	if err == nil && len(cases) > 0 {
		return cases, nil
	}
	if err != nil {
		w.log.Warn("AI synthesis failed, using heuristic values",
			zap.String("question", field.QuestionNumber), zap.Error(err))
	}
	return w.backup.Synthesize(ctx, field)
}

// fieldJSON renders the descriptor the way providers present it to a model,
// without the fields that are output rather than input.
func fieldJSON(field *survey.FieldDescriptor) (string, error) {
	view := struct {
		QuestionNumber string           `json:"questionNumber"`
		QuestionText   string           `json:"questionText"`
		InputType      survey.InputKind `json:"inputType"`
		IsRequired     bool             `json:"isRequired"`
		Choices        []string         `json:"choices,omitempty"`
	}{
		QuestionNumber: field.QuestionNumber,
		QuestionText:   field.QuestionText,
		InputType:      field.InputType,
		IsRequired:     field.IsRequired,
		Choices:        field.Choices,
	}
	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal field descriptor: %w", err)
	}
	return string(out), nil
}

// parseCasesJSON extracts and parses a JSON array of test cases from a model
// response that may contain surrounding text.
func parseCasesJSON(response, provenance string) ([]survey.TestCase, error) {
	start := strings.Index(response, "[")
	if start == -1 {
		return nil, fmt.Errorf("no JSON array found in response")
	}
	depth, end := 0, -1
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return nil, fmt.Errorf("no matching closing bracket found")
	}

	parsed := gjson.Parse(response[start:end])
	if !parsed.IsArray() {
		return nil, fmt.Errorf("extracted JSON is not an array")
	}

	var cases []survey.TestCase
	for _, g := range parsed.Array() {
		tc := survey.TestCase{
			ID:          uuid.NewString(),
			Type:        survey.TestCaseType(g.Get("type").String()),
			Value:       g.Get("value").Value(),
			Description: g.Get("description").String(),
			Source:      "generated",
			Status:      survey.StatusDraft,
			Provenance:  provenance,
			Quality: survey.TestCaseQuality{
				Confidence: g.Get("confidence").Float(),
			},
		}
		switch tc.Type {
		case survey.CaseValid, survey.CaseBoundary, survey.CaseEdge, survey.CaseInvalid:
		default:
			tc.Type = survey.CaseValid
		}
		cases = append(cases, tc)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("response contained no test cases")
	}

	// the first case must be directly fillable; move a valid case to the front
	for i, tc := range cases {
		if tc.Type == survey.CaseValid {
			cases[0], cases[i] = cases[i], cases[0]
			break
		}
	}
	return cases, nil
}
