package survey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/config"
	"github.com/v0xg/surveywalk/internal/driver"
)

// Keyword sets for navigation button classification, including directional
// arrow glyphs. Finish is checked first so "submit" never classifies as next.
var (
	finishKeywords = []string{"finish", "submit", "complete", "done", "send", "absenden", "abschließen", "finalize"}
	nextKeywords   = []string{"next", "continue", "proceed", "weiter", "continuar", "suivant", "forward", "→", "»", ">"}
	prevKeywords   = []string{"back", "previous", "prev", "zurück", "précédent", "←", "«", "<"}
)

// Navigator detects and drives the page's navigation controls, handles
// validation-blocking modals and confirms that navigation actually moved the
// page.
type Navigator struct {
	drv       driver.Driver
	extractor *Extractor
	dom       config.DOMConfig
	timing    config.TimingConfig
	log       *zap.Logger
}

func NewNavigator(drv driver.Driver, ex *Extractor, cfg *config.Config, log *zap.Logger) *Navigator {
	return &Navigator{drv: drv, extractor: ex, dom: cfg.DOM, timing: cfg.Timing, log: log}
}

// DetectButtons locates the navigation region, the structural sibling
// following the survey root, and classifies its buttons. Disabled buttons
// are retained but marked unusable. Results are never cached; callers
// recompute on every navigation-related query.
func (n *Navigator) DetectButtons(ctx context.Context) ([]NavigationButton, error) {
	res, err := n.drv.Eval(ctx, navButtonsJS, n.dom.RootSelector)
	if err != nil {
		return nil, err
	}
	if !res.Get("regionFound").Bool() {
		return nil, fmt.Errorf("navigation region: %w", ErrStructuralNotFound)
	}

	var buttons []NavigationButton
	for _, g := range res.Get("buttons").Array() {
		text := g.Get("text").String()
		btnType, ok := classifyNavText(text)
		if !ok {
			continue
		}
		selector := ""
		if id := g.Get("id").String(); id != "" {
			selector = "#" + escapeCSSIdent(id)
		}
		buttons = append(buttons, NavigationButton{
			Type:      btnType,
			Text:      text,
			Selector:  selector,
			IsEnabled: !g.Get("disabled").Bool(),
		})
	}
	return buttons, nil
}

// classifyNavText assigns a button type from its text content.
func classifyNavText(text string) (NavButtonType, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "", false
	}
	for _, kw := range finishKeywords {
		if strings.Contains(t, kw) {
			return NavFinish, true
		}
	}
	for _, kw := range prevKeywords {
		if strings.Contains(t, kw) {
			return NavPrevious, true
		}
	}
	for _, kw := range nextKeywords {
		if strings.Contains(t, kw) {
			return NavNext, true
		}
	}
	return "", false
}

// FindButton returns the first enabled button of the wanted type.
func FindButton(buttons []NavigationButton, want NavButtonType) (NavigationButton, bool) {
	for _, b := range buttons {
		if b.Type == want && b.IsEnabled {
			return b, true
		}
	}
	return NavigationButton{}, false
}

// Click presses a navigation button: a debounce delay, then a direct
// click-and-wait-for-navigation on the button's selector, then the in-page
// text-matched fallback when the selector path fails or the button carries
// no usable selector.
func (n *Navigator) Click(ctx context.Context, btn NavigationButton) error {
	time.Sleep(n.timing.NavDebounce)

	if btn.Selector != "" {
		err := n.drv.WaitNavigation(ctx, n.timing.NavTimeout, func() error {
			return n.drv.Click(ctx, btn.Selector)
		})
		if err == nil {
			return nil
		}
		n.log.Debug("selector navigation click failed, falling back to text match",
			zap.String("selector", btn.Selector), zap.Error(err))
	}

	res, err := n.drv.Eval(ctx, clickNavButtonJS, n.dom.RootSelector, btn.Text)
	if err != nil {
		return err
	}
	if !res.Bool() {
		return fmt.Errorf("navigation button %q not found by text: %w", btn.Text, ErrStructuralNotFound)
	}
	return nil
}

// ValidationBlocked reports whether a visible modal dialog or inline field
// error is currently blocking navigation.
func (n *Navigator) ValidationBlocked(ctx context.Context) (bool, error) {
	res, err := n.drv.Eval(ctx, validationStateJS)
	if err != nil {
		return false, err
	}
	return res.Get("modalVisible").Bool() || res.Get("inlineErrors").Int() > 0, nil
}

// dismissTexts are the acknowledge labels tried first when closing a
// validation modal.
var dismissTexts = []string{"ok", "okay", "close", "dismiss", "got it", "verstanden", "schließen"}

// DismissModal closes a visible validation modal: text-matched dismiss
// button, then generic close markers, then the Escape key.
func (n *Navigator) DismissModal(ctx context.Context) error {
	res, err := n.drv.Eval(ctx, dismissModalJS, dismissTexts)
	if err != nil {
		return err
	}
	if res.String() != "none" {
		return nil
	}
	return n.drv.Press(ctx, "Escape")
}

// PageSignature is the transition fingerprint: title plus question count.
type PageSignature struct {
	Title         string
	QuestionCount int
}

// ReadSignature captures the current page's transition fingerprint.
func (n *Navigator) ReadSignature(ctx context.Context) (PageSignature, error) {
	title, _, err := n.extractor.PageTitle(ctx)
	if err != nil {
		return PageSignature{}, err
	}
	count, err := n.extractor.QuestionCount(ctx)
	if err != nil {
		return PageSignature{}, err
	}
	return PageSignature{Title: title, QuestionCount: count}, nil
}

// ConfirmTransition polls for evidence the page changed after navigation: a
// changed title or a changed question count. After half the retry budget,
// the continued presence of navigation buttons is accepted too, which covers
// purely informational interstitial pages with no questions. A page with the
// identical title and question count after the full budget is stuck.
func (n *Navigator) ConfirmTransition(ctx context.Context, before PageSignature) error {
	retries := n.timing.TransitionRetries
	for attempt := 1; attempt <= retries; attempt++ {
		time.Sleep(n.timing.TransitionPoll)

		now, err := n.ReadSignature(ctx)
		if err != nil {
			// retryable at this call site: the page may be mid-load
			n.log.Debug("transition poll read failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		if now.Title != before.Title || now.QuestionCount != before.QuestionCount {
			n.log.Debug("transition confirmed",
				zap.String("title", now.Title), zap.Int("questions", now.QuestionCount))
			return nil
		}

		if attempt > retries/2 && now.QuestionCount == 0 {
			buttons, err := n.DetectButtons(ctx)
			if err == nil && len(buttons) > 0 {
				n.log.Debug("accepting interstitial page with navigation buttons only")
				return nil
			}
		}
	}
	return fmt.Errorf("page unchanged after %d polls (title %q, %d questions): %w",
		retries, before.Title, before.QuestionCount, ErrTransitionStuck)
}

// Advance clicks the next button and sees the transition through. When the
// platform raises a validation modal, it is dismissed, refill is given one
// chance to complete still-missing required fields, and navigation is
// retried exactly once before surfacing ErrValidationBlocked.
func (n *Navigator) Advance(ctx context.Context, next NavigationButton, refill func(context.Context) error) error {
	before, err := n.ReadSignature(ctx)
	if err != nil {
		return err
	}

	if err := n.Click(ctx, next); err != nil {
		return err
	}

	blocked, err := n.ValidationBlocked(ctx)
	if err != nil {
		return err
	}
	if blocked {
		n.log.Info("navigation blocked by validation, dismissing and refilling")
		if err := n.DismissModal(ctx); err != nil {
			n.log.Debug("modal dismiss failed", zap.Error(err))
		}
		if refill != nil {
			if err := refill(ctx); err != nil {
				n.log.Warn("refill after validation block failed", zap.Error(err))
			}
		}
		if err := n.Click(ctx, next); err != nil {
			return err
		}
		blocked, err = n.ValidationBlocked(ctx)
		if err != nil {
			return err
		}
		if blocked {
			return fmt.Errorf("still blocked after dismiss and one retry: %w", ErrValidationBlocked)
		}
	}

	return n.ConfirmTransition(ctx, before)
}
