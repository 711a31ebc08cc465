// Package synth generates candidate answers for discovered survey fields.
// The deterministic heuristic generator is the default; Claude and OpenAI
// providers produce richer cases when an API key is available.
package synth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/v0xg/surveywalk/internal/survey"
)

// Heuristic synthesizes values purely from the field's type and choices.
// It never fails and needs no network, which makes it the safety net for
// the AI providers too.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

// Synthesize returns at least one case per field; the first case is always
// a valid value the dispatcher can apply directly.
func (h *Heuristic) Synthesize(_ context.Context, field *survey.FieldDescriptor) ([]survey.TestCase, error) {
	switch field.InputType {
	case survey.KindText:
		return []survey.TestCase{
			newCase(survey.CaseValid, "Automated survey response", "plain text answer", 0.9),
			newCase(survey.CaseBoundary, "x", "single character", 0.7),
		}, nil
	case survey.KindTextarea:
		return []survey.TestCase{
			newCase(survey.CaseValid,
				"This is an automatically generated free-text answer used for regression testing.",
				"multi-sentence free text", 0.9),
		}, nil
	case survey.KindEmail:
		return []survey.TestCase{
			newCase(survey.CaseValid, "qa.traversal@example.com", "well-formed address", 0.95),
			newCase(survey.CaseInvalid, "not-an-email", "missing domain", 0.8),
		}, nil
	case survey.KindNumber:
		return []survey.TestCase{
			newCase(survey.CaseValid, 42, "mid-range integer", 0.9),
			newCase(survey.CaseBoundary, 0, "lower boundary", 0.7),
		}, nil
	case survey.KindDate:
		// the dispatcher always targets yesterday; the value is descriptive
		return []survey.TestCase{
			newCase(survey.CaseValid, "yesterday", "one day in the past", 0.9),
		}, nil
	case survey.KindRadio, survey.KindDropdown:
		return choiceCases(len(field.Choices)), nil
	case survey.KindCheckbox:
		return []survey.TestCase{
			newCase(survey.CaseValid, true, "checked", 0.9),
		}, nil
	case survey.KindVAS:
		return []survey.TestCase{
			newCase(survey.CaseValid, 50, "scale midpoint", 0.85),
		}, nil
	case survey.KindNRS:
		return []survey.TestCase{
			newCase(survey.CaseValid, 1, "second rating button", 0.85),
			newCase(survey.CaseBoundary, 0, "lowest rating", 0.7),
		}, nil
	default:
		return []survey.TestCase{
			newCase(survey.CaseValid, "test", "fallback for unknown input type", 0.5),
		}, nil
	}
}

// choiceCases picks option indices for choice widgets: the second option
// when there is one, so the default pre-selection is never mistaken for a
// successful fill.
func choiceCases(choiceCount int) []survey.TestCase {
	index := 1
	if choiceCount < 2 {
		index = 0
	}
	cases := []survey.TestCase{
		newCase(survey.CaseValid, index, fmt.Sprintf("option index %d", index), 0.9),
	}
	if choiceCount > 2 {
		cases = append(cases,
			newCase(survey.CaseBoundary, choiceCount-1, "last option", 0.7))
	}
	return cases
}

func newCase(t survey.TestCaseType, value any, desc string, confidence float64) survey.TestCase {
	return survey.TestCase{
		ID:          uuid.NewString(),
		Type:        t,
		Value:       value,
		Description: desc,
		Source:      "generated",
		Status:      survey.StatusDraft,
		Provenance:  "heuristic",
		Quality:     survey.TestCaseQuality{Confidence: confidence},
	}
}
