package survey

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/config"
	"github.com/v0xg/surveywalk/internal/driver"
)

// Traverser drives the survey from its first page to the terminal finish
// page, one page at a time: extract, synthesize, fill, discover reveals,
// capture, navigate. The browser session is exclusively owned by the
// traverser for the run's duration; there is no parallelism because each
// action's outcome determines the next action.
type Traverser struct {
	drv        driver.Driver
	cfg        *config.Config
	log        *zap.Logger
	extractor  *Extractor
	dispatcher *Dispatcher
	discoverer *Discoverer
	nav        *Navigator
	capturer   *Capturer
	synth      Synthesizer
}

// NewTraverser wires the traversal components around one driver session.
// Screenshots are written under outDir.
func NewTraverser(drv driver.Driver, cfg *config.Config, synth Synthesizer, outDir string, log *zap.Logger) *Traverser {
	ex := NewExtractor(drv, cfg.DOM, log)
	fill := NewDispatcher(drv, cfg.DOM, log)
	return &Traverser{
		drv:        drv,
		cfg:        cfg,
		log:        log,
		extractor:  ex,
		dispatcher: fill,
		discoverer: NewDiscoverer(drv, ex, fill, synth, cfg, log),
		nav:        NewNavigator(drv, ex, cfg, log),
		capturer:   NewCapturer(drv, cfg, outDir, log),
		synth:      synth,
	}
}

// Run traverses the survey at url and assembles the report. On error the
// report holds every page gathered up to the failure point; a partial report
// is always preferable to none.
func (t *Traverser) Run(ctx context.Context, identity SurveyIdentity, url string) (*SurveyReport, error) {
	report := &SurveyReport{
		Identity:     identity,
		AnalysisDate: time.Now().UTC(),
		URL:          url,
	}

	if err := t.drv.Navigate(ctx, url); err != nil {
		return report, err
	}

	for formIndex := 0; formIndex < t.cfg.Traversal.MaxPages; formIndex++ {
		page, finished, err := t.processPage(ctx, formIndex)
		if page != nil {
			report.Pages = append(report.Pages, *page)
		}
		if err != nil {
			return report, err
		}
		if finished {
			t.log.Info("traversal finished",
				zap.Int("pages", len(report.Pages)),
				zap.Int("questions", report.QuestionCount()))
			return report, nil
		}
	}

	t.log.Warn("page limit reached before a finish button was found",
		zap.Int("maxPages", t.cfg.Traversal.MaxPages))
	return report, nil
}

// processPage handles one page end to end and reports whether the traversal
// is complete. The returned page is non-nil whenever the page was entered,
// even if a later step failed.
func (t *Traverser) processPage(ctx context.Context, formIndex int) (*FormPage, bool, error) {
	long, short, err := t.extractor.PageTitle(ctx)
	if err != nil {
		return nil, false, err
	}
	page := &FormPage{LongTitle: long, ShortName: short, FormIndex: formIndex}
	t.log.Info("entering page", zap.Int("formIndex", formIndex), zap.String("title", long))

	// on-entry capture happens before any field is touched
	page.OnEntryScreenshot = t.capturer.Capture(ctx, fmt.Sprintf("page_%02d_entry", formIndex))

	fields, rootFound, err := t.extractor.Extract(ctx)
	if err != nil {
		return page, false, err
	}

	buttons, err := t.nav.DetectButtons(ctx)
	if err != nil {
		t.log.Warn("navigation button detection failed", zap.Error(err))
	}
	_, hasFinish := FindButton(buttons, NavFinish)
	_, hasNext := FindButton(buttons, NavNext)

	// A page with nothing to fill and no way forward is a structural dead
	// end; advancing silently would hide a broken deployment.
	if len(fields) == 0 && !hasFinish && !hasNext {
		return page, false, fmt.Errorf("page %d has no fields and no usable navigation (root found: %v): %w",
			formIndex, rootFound, ErrStructuralNotFound)
	}

	filled := make(map[string]bool, len(fields))
	for i := range fields {
		field := &fields[i]
		key := fieldKey(field)
		if filled[key] {
			t.log.Debug("duplicate question number, not re-filling",
				zap.String("question", field.QuestionNumber))
			continue
		}

		cases, err := t.synth.Synthesize(ctx, field)
		if err != nil {
			t.log.Warn("test data synthesis failed",
				zap.String("question", field.QuestionNumber), zap.Error(err))
		}
		field.TestData = cases
		field.ScreenshotPath = page.OnEntryScreenshot

		before, err := t.discoverer.Snapshot(ctx)
		if err != nil {
			return page, false, err
		}

		if err := t.dispatcher.Fill(ctx, field); err != nil {
			// a single field's failure never aborts the page
			t.log.Warn("field fill failed", zap.Error(err))
		} else {
			t.log.Debug("filled field",
				zap.String("question", field.QuestionNumber),
				zap.String("type", string(field.InputType)))
		}
		filled[key] = true
		page.Fields = append(page.Fields, *field)

		if err := t.discoverer.ProcessReveals(ctx, before, field, page, filled); err != nil {
			return page, false, err
		}
	}

	// navigation buttons may have changed state after filling
	buttons, err = t.nav.DetectButtons(ctx)
	if err != nil {
		t.log.Warn("navigation re-detection failed", zap.Error(err))
	}
	page.NavigationButtons = buttons

	// on-exit capture after all fields, immediately before navigating away
	page.OnExitScreenshot = t.capturer.Capture(ctx, fmt.Sprintf("page_%02d_exit", formIndex))

	if _, ok := FindButton(buttons, NavFinish); ok {
		// terminal page: processing is done, no further navigation
		return page, true, nil
	}

	next, ok := FindButton(buttons, NavNext)
	if !ok {
		return page, false, fmt.Errorf("page %d has neither next nor finish after filling: %w",
			formIndex, ErrStructuralNotFound)
	}

	if err := t.nav.Advance(ctx, next, t.refillMissing(filled)); err != nil {
		return page, false, err
	}
	return page, false, nil
}

// refillMissing builds the retry hook the navigator calls after dismissing a
// validation modal: any required field whose key is not yet in the filled
// set gets synthesized data and one fill attempt.
func (t *Traverser) refillMissing(filled map[string]bool) func(context.Context) error {
	return func(ctx context.Context) error {
		fields, _, err := t.extractor.Extract(ctx)
		if err != nil {
			return err
		}
		for i := range fields {
			field := &fields[i]
			if !field.IsRequired || filled[fieldKey(field)] {
				continue
			}
			cases, err := t.synth.Synthesize(ctx, field)
			if err != nil {
				continue
			}
			field.TestData = cases
			if err := t.dispatcher.Fill(ctx, field); err != nil {
				t.log.Warn("refill failed", zap.Error(err))
				continue
			}
			filled[fieldKey(field)] = true
		}
		return nil
	}
}
