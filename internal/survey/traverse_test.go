package survey

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// surveyPage is one page of a scripted fake survey.
type surveyPage struct {
	title   string
	scan    string
	visible string
	nav     string
}

// scriptSurvey installs an eval handler that serves a paged survey; clicking
// a navigation button by text advances to the next page.
func scriptSurvey(drv *fakeDriver, pages []surveyPage) *int {
	current := 0
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		p := pages[current]
		switch js {
		case pageTitleJS:
			return gjson.Parse(`"` + p.title + `"`), nil
		case scanQuestionsJS:
			return gjson.Parse(p.scan), nil
		case visibleQuestionsJS:
			return gjson.Parse(p.visible), nil
		case questionCountJS:
			n := len(gjson.Parse(p.visible).Array())
			return gjson.Parse(strconv.Itoa(n)), nil
		case navButtonsJS:
			return gjson.Parse(p.nav), nil
		case clickNavButtonJS:
			if current < len(pages)-1 {
				current++
			}
			return gjson.Parse("true"), nil
		case validationStateJS:
			return gjson.Parse(`{"modalVisible": false, "inlineErrors": 0}`), nil
		case radioCheckedJS:
			return gjson.Parse(`{"found": true, "checked": true}`), nil
		case contentHeightJS:
			return gjson.Parse("600"), nil
		}
		return gjson.Parse("true"), nil
	}
	return &current
}

const nextOnlyNav = `{"regionFound": true, "buttons": [{"text": "Next", "id": "", "disabled": false}]}`
const finishNav = `{"regionFound": true, "buttons": [{"text": "Submit", "id": "", "disabled": false}]}`

func TestRunSinglePageFinish(t *testing.T) {
	drv := newFakeDriver()
	scriptSurvey(drv, []surveyPage{{
		title: "Consent",
		scan: `{"rootFound": true, "questions": [
			{"index": 0, "text": "1. Do you consent? *", "containerId": "q1",
			 "visible": true, "inputTag": "input", "inputType": "radio",
			 "radioCount": 2, "hasNonHiddenInput": true, "positionIndex": 1}
		]}`,
		visible: `[{"index": 0, "text": "1. Do you consent? *"}]`,
		nav:     finishNav,
	}})

	synth := &stubSynth{cases: []TestCase{{Value: float64(0)}}}
	tr := NewTraverser(drv, testConfig(), synth, t.TempDir(), zap.NewNop())

	identity := SurveyIdentity{PackageName: "consent-v1"}
	report, err := tr.Run(context.Background(), identity, "https://surveys.example/run/1")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://surveys.example/run/1"}, drv.navigated)
	require.Len(t, report.Pages, 1)

	page := report.Pages[0]
	assert.Equal(t, "Consent", page.LongTitle)
	assert.Equal(t, 0, page.FormIndex)
	require.Len(t, page.Fields, 1)
	assert.Equal(t, "1.", page.Fields[0].QuestionNumber)
	assert.Equal(t, 1, report.QuestionCount())

	// the finish button ends the traversal and is never pressed
	finish, ok := FindButton(page.NavigationButtons, NavFinish)
	require.True(t, ok)
	assert.Equal(t, "Submit", finish.Text)
	assert.Empty(t, drv.clicked)

	assert.Equal(t, "page_00_entry.png", page.OnEntryScreenshot)
	assert.Equal(t, "page_00_exit.png", page.OnExitScreenshot)
}

func TestRunTwoPages(t *testing.T) {
	drv := newFakeDriver()
	current := scriptSurvey(drv, []surveyPage{
		{
			title: "Intake - Part 1",
			scan: `{"rootFound": true, "questions": [
				{"index": 0, "text": "1. What is your age?", "containerId": "age",
				 "visible": true, "inputTag": "input", "inputType": "number",
				 "hasNonHiddenInput": true, "positionIndex": 1}
			]}`,
			visible: `[{"index": 0, "text": "1. What is your age?"}]`,
			nav:     nextOnlyNav,
		},
		{
			title: "Intake - Part 2",
			scan: `{"rootFound": true, "questions": [
				{"index": 0, "text": "2. Your email address", "containerId": "email",
				 "visible": true, "inputTag": "input", "inputType": "email",
				 "hasNonHiddenInput": true, "positionIndex": 1}
			]}`,
			visible: `[{"index": 0, "text": "2. Your email address"}]`,
			nav:     finishNav,
		},
	})

	synth := &stubSynth{cases: []TestCase{{Value: "42"}}}
	tr := NewTraverser(drv, testConfig(), synth, t.TempDir(), zap.NewNop())

	report, err := tr.Run(context.Background(), SurveyIdentity{PackageName: "intake"}, "https://surveys.example/run/2")
	require.NoError(t, err)
	require.Len(t, report.Pages, 2)

	assert.Equal(t, 0, report.Pages[0].FormIndex)
	assert.Equal(t, 1, report.Pages[1].FormIndex)
	assert.Equal(t, "Intake - Part 1", report.Pages[0].LongTitle)
	assert.Equal(t, "Intake - Part 2", report.Pages[1].LongTitle)
	assert.Equal(t, []string{"1.", "2."}, synth.seen)
	assert.Equal(t, 1, *current)
	assert.Equal(t, 2, report.QuestionCount())
}

func TestRunDeadEndPage(t *testing.T) {
	drv := newFakeDriver()
	scriptSurvey(drv, []surveyPage{{
		title:   "Broken",
		scan:    `{"rootFound": false, "questions": []}`,
		visible: `[]`,
		nav:     `{"regionFound": false, "buttons": []}`,
	}})

	tr := NewTraverser(drv, testConfig(), &stubSynth{}, t.TempDir(), zap.NewNop())
	report, err := tr.Run(context.Background(), SurveyIdentity{}, "https://surveys.example/run/3")

	assert.ErrorIs(t, err, ErrStructuralNotFound)
	// the partial report still carries the page that was entered
	require.Len(t, report.Pages, 1)
	assert.Equal(t, "Broken", report.Pages[0].LongTitle)
}

func TestRunDuplicateQuestionNumberFilledOnce(t *testing.T) {
	drv := newFakeDriver()
	scriptSurvey(drv, []surveyPage{{
		title: "Symptoms",
		scan: `{"rootFound": true, "questions": [
			{"index": 0, "text": "1. Describe your pain", "containerId": "a",
			 "visible": true, "inputTag": "textarea", "hasNonHiddenInput": true, "positionIndex": 1},
			{"index": 1, "text": "1. Describe your pain", "containerId": "b",
			 "visible": true, "inputTag": "textarea", "hasNonHiddenInput": true, "positionIndex": 2}
		]}`,
		visible: `[{"index": 0, "text": "1. Describe your pain"}, {"index": 1, "text": "1. Describe your pain"}]`,
		nav:     finishNav,
	}})

	synth := &stubSynth{cases: []TestCase{{Value: "dull ache"}}}
	tr := NewTraverser(drv, testConfig(), synth, t.TempDir(), zap.NewNop())

	report, err := tr.Run(context.Background(), SurveyIdentity{}, "https://surveys.example/run/4")
	require.NoError(t, err)
	require.Len(t, report.Pages, 1)
	assert.Len(t, report.Pages[0].Fields, 1)
	assert.Equal(t, []string{"1."}, synth.seen)
}
