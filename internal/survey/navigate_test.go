package survey

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

func newTestNavigator(drv *fakeDriver) *Navigator {
	cfg := testConfig()
	log := zap.NewNop()
	return NewNavigator(drv, NewExtractor(drv, cfg.DOM, log), cfg, log)
}

func TestClassifyNavText(t *testing.T) {
	tests := []struct {
		text   string
		want   NavButtonType
		wantOK bool
	}{
		{"Next", NavNext, true},
		{"Continue →", NavNext, true},
		{"weiter", NavNext, true},
		{"Submit Survey", NavFinish, true},
		{"Finish", NavFinish, true},
		{"Done", NavFinish, true},
		{"← Back", NavPrevious, true},
		{"Previous", NavPrevious, true},
		{"Help", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := classifyNavText(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectButtons(t *testing.T) {
	drv := newFakeDriver()
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		require.Equal(t, navButtonsJS, js)
		return gjson.Parse(`{
			"regionFound": true,
			"buttons": [
				{"text": "← Back", "id": "", "disabled": true},
				{"text": "Next", "id": "nav-next", "disabled": false},
				{"text": "Help", "id": "help", "disabled": false}
			]
		}`), nil
	}

	buttons, err := newTestNavigator(drv).DetectButtons(context.Background())
	require.NoError(t, err)
	require.Len(t, buttons, 2)

	assert.Equal(t, NavPrevious, buttons[0].Type)
	assert.False(t, buttons[0].IsEnabled)
	assert.Empty(t, buttons[0].Selector)

	assert.Equal(t, NavNext, buttons[1].Type)
	assert.True(t, buttons[1].IsEnabled)
	assert.Equal(t, "#nav-next", buttons[1].Selector)

	next, ok := FindButton(buttons, NavNext)
	assert.True(t, ok)
	assert.Equal(t, "Next", next.Text)

	_, ok = FindButton(buttons, NavPrevious)
	assert.False(t, ok, "disabled buttons are not usable")
}

func TestDetectButtonsNoRegion(t *testing.T) {
	drv := newFakeDriver()
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		return gjson.Parse(`{"regionFound": false, "buttons": []}`), nil
	}

	_, err := newTestNavigator(drv).DetectButtons(context.Background())
	assert.ErrorIs(t, err, ErrStructuralNotFound)
}

func TestClickFallsBackToTextMatch(t *testing.T) {
	drv := newFakeDriver()
	drv.clickErr = fmt.Errorf("node detached")
	textClicked := false
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		if js == clickNavButtonJS {
			assert.Equal(t, "Next", args[1])
			textClicked = true
			return gjson.Parse("true"), nil
		}
		return gjson.Parse("null"), nil
	}

	nav := newTestNavigator(drv)
	btn := NavigationButton{Type: NavNext, Text: "Next", Selector: "#nav-next", IsEnabled: true}
	require.NoError(t, nav.Click(context.Background(), btn))
	assert.True(t, textClicked)
}

func TestConfirmTransitionTitleChange(t *testing.T) {
	drv := newFakeDriver()
	polls := 0
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		switch js {
		case pageTitleJS:
			polls++
			if polls >= 3 {
				return gjson.Parse(`"Page 2"`), nil
			}
			return gjson.Parse(`"Page 1"`), nil
		case questionCountJS:
			return gjson.Parse("4"), nil
		}
		return gjson.Parse("null"), nil
	}

	nav := newTestNavigator(drv)
	err := nav.ConfirmTransition(context.Background(), PageSignature{Title: "Page 1", QuestionCount: 4})
	require.NoError(t, err)
}

func TestConfirmTransitionStuck(t *testing.T) {
	drv := newFakeDriver()
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		switch js {
		case pageTitleJS:
			return gjson.Parse(`"Page 1"`), nil
		case questionCountJS:
			return gjson.Parse("4"), nil
		case navButtonsJS:
			return gjson.Parse(`{"regionFound": true, "buttons": []}`), nil
		}
		return gjson.Parse("null"), nil
	}

	nav := newTestNavigator(drv)
	err := nav.ConfirmTransition(context.Background(), PageSignature{Title: "Page 1", QuestionCount: 4})
	assert.ErrorIs(t, err, ErrTransitionStuck)
}

// An informational page with no questions but live navigation buttons is a
// valid destination, accepted once half the poll budget is spent.
func TestConfirmTransitionInterstitial(t *testing.T) {
	drv := newFakeDriver()
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		switch js {
		case pageTitleJS:
			return gjson.Parse(`"Welcome"`), nil
		case questionCountJS:
			return gjson.Parse("0"), nil
		case navButtonsJS:
			return gjson.Parse(`{"regionFound": true, "buttons": [{"text": "Next", "id": "n", "disabled": false}]}`), nil
		}
		return gjson.Parse("null"), nil
	}

	nav := newTestNavigator(drv)
	err := nav.ConfirmTransition(context.Background(), PageSignature{Title: "Welcome", QuestionCount: 0})
	require.NoError(t, err)
}

func TestAdvanceValidationRetryOnce(t *testing.T) {
	drv := newFakeDriver()
	refills := 0
	clicks := 0
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		switch js {
		case pageTitleJS:
			return gjson.Parse(`"Page 1"`), nil
		case questionCountJS:
			return gjson.Parse("2"), nil
		case clickNavButtonJS:
			clicks++
			return gjson.Parse("true"), nil
		case validationStateJS:
			return gjson.Parse(`{"modalVisible": true, "inlineErrors": 0}`), nil
		case dismissModalJS:
			return gjson.Parse(`"text"`), nil
		}
		return gjson.Parse("null"), nil
	}

	nav := newTestNavigator(drv)
	btn := NavigationButton{Type: NavNext, Text: "Next", IsEnabled: true}
	err := nav.Advance(context.Background(), btn, func(context.Context) error {
		refills++
		return nil
	})

	assert.ErrorIs(t, err, ErrValidationBlocked)
	assert.Equal(t, 1, refills, "refill runs exactly once")
	assert.Equal(t, 2, clicks, "navigation is retried exactly once")
}

func TestAdvanceValidationCleared(t *testing.T) {
	drv := newFakeDriver()
	validationChecks := 0
	titleReads := 0
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		switch js {
		case pageTitleJS:
			titleReads++
			if titleReads > 1 {
				return gjson.Parse(`"Page 2"`), nil
			}
			return gjson.Parse(`"Page 1"`), nil
		case questionCountJS:
			return gjson.Parse("2"), nil
		case clickNavButtonJS:
			return gjson.Parse("true"), nil
		case validationStateJS:
			validationChecks++
			if validationChecks == 1 {
				return gjson.Parse(`{"modalVisible": false, "inlineErrors": 2}`), nil
			}
			return gjson.Parse(`{"modalVisible": false, "inlineErrors": 0}`), nil
		case dismissModalJS:
			return gjson.Parse(`"none"`), nil
		}
		return gjson.Parse("null"), nil
	}

	nav := newTestNavigator(drv)
	btn := NavigationButton{Type: NavNext, Text: "Next", IsEnabled: true}
	refilled := false
	err := nav.Advance(context.Background(), btn, func(context.Context) error {
		refilled = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, refilled)
	// the modal script found nothing, so Escape was the dismiss path
	assert.Equal(t, []string{"Escape"}, drv.pressed)
}

func TestDismissModalEscapeFallback(t *testing.T) {
	drv := newFakeDriver()
	drv.evalFn = func(js string, args ...any) (gjson.Result, error) {
		return gjson.Parse(`"none"`), nil
	}
	nav := newTestNavigator(drv)
	require.NoError(t, nav.DismissModal(context.Background()))
	assert.Equal(t, []string{"Escape"}, drv.pressed)
}
