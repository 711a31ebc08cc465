package survey

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// rawQuestion is what the scan script reports for one question container,
// before classification.
type rawQuestion struct {
	Index             int
	Text              string
	ContainerID       string
	DataAttrValue     string
	Visible           bool
	HasSliderTrack    bool
	InputTag          string
	InputType         string
	InputID           string
	InputName         string
	RadioCount        int
	CheckboxCount     int
	NRSLabels         []string
	Choices           []string
	HasNonHiddenInput bool
	PositionIndex     int
}

func decodeRawQuestion(g gjson.Result) rawQuestion {
	raw := rawQuestion{
		Index:             int(g.Get("index").Int()),
		Text:              g.Get("text").String(),
		ContainerID:       g.Get("containerId").String(),
		DataAttrValue:     g.Get("dataAttrValue").String(),
		Visible:           g.Get("visible").Bool(),
		HasSliderTrack:    g.Get("hasSliderTrack").Bool(),
		InputTag:          g.Get("inputTag").String(),
		InputType:         g.Get("inputType").String(),
		InputID:           g.Get("inputId").String(),
		InputName:         g.Get("inputName").String(),
		RadioCount:        int(g.Get("radioCount").Int()),
		CheckboxCount:     int(g.Get("checkboxCount").Int()),
		HasNonHiddenInput: g.Get("hasNonHiddenInput").Bool(),
		PositionIndex:     int(g.Get("positionIndex").Int()),
	}
	for _, l := range g.Get("nrsLabels").Array() {
		raw.NRSLabels = append(raw.NRSLabels, l.String())
	}
	for _, c := range g.Get("choices").Array() {
		raw.Choices = append(raw.Choices, c.String())
	}
	return raw
}

// questionNumberRe matches a leading numeric prefix like "1." or "2.3." or
// "4)". The delimiter is mandatory so years and counts in plain text do not
// read as question numbers.
var questionNumberRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)[.)]\s*`)

// parseQuestionText splits a container's raw text into the question number
// (normalized to a trailing dot, empty when absent), the remaining question
// text, and the required flag derived from the trailing marker.
func parseQuestionText(text, requiredMarker string) (number, clean string, required bool) {
	clean = strings.TrimSpace(text)

	if m := questionNumberRe.FindStringSubmatch(clean); m != nil {
		number = m[1] + "."
		clean = strings.TrimSpace(clean[len(m[0]):])
	}

	if requiredMarker != "" && strings.HasSuffix(clean, requiredMarker) {
		required = true
		clean = strings.TrimSpace(strings.TrimSuffix(clean, requiredMarker))
	}
	return number, clean, required
}

// minQuestionTextLen is the skip threshold for unnumbered containers;
// shorter texts are layout wrappers, not questions.
const minQuestionTextLen = 4

// classifyKind assigns the input-type tag for a container. A slider track
// marker overrides everything; a cluster of integer-labeled buttons is a
// numeric rating scale.
func classifyKind(raw rawQuestion) InputKind {
	if raw.HasSliderTrack {
		return KindVAS
	}
	if len(raw.NRSLabels) >= 3 && allSingleOrDoubleDigits(raw.NRSLabels) {
		return KindNRS
	}

	switch raw.InputTag {
	case "select":
		return KindDropdown
	case "textarea":
		return KindTextarea
	case "input":
		if raw.RadioCount > 1 {
			return KindRadio
		}
		if raw.CheckboxCount > 1 {
			return KindCheckbox
		}
		switch raw.InputType {
		case "radio":
			return KindRadio
		case "checkbox":
			return KindCheckbox
		case "email":
			return KindEmail
		case "number":
			return KindNumber
		case "date":
			return KindDate
		case "text", "":
			return KindText
		default:
			return KindText
		}
	}
	return KindUnknown
}

func allSingleOrDoubleDigits(labels []string) bool {
	for _, l := range labels {
		if len(l) == 0 || len(l) > 2 {
			return false
		}
		for _, r := range l {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// classifyQuestion turns raw scan output into a FieldDescriptor, or reports
// that the container is not a field at all. Containers with no non-hidden
// input are decorative; containers with near-empty text and no extractable
// number are layout wrappers.
func classifyQuestion(raw rawQuestion, requiredMarker string) (FieldDescriptor, bool) {
	if !raw.HasNonHiddenInput {
		return FieldDescriptor{}, false
	}

	number, text, required := parseQuestionText(raw.Text, requiredMarker)
	if number == "" && len(text) < minQuestionTextLen {
		return FieldDescriptor{}, false
	}

	return FieldDescriptor{
		QuestionNumber: number,
		QuestionText:   text,
		InputType:      classifyKind(raw),
		IsRequired:     required,
		Choices:        raw.Choices,
	}, true
}
