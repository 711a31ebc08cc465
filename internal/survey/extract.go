package survey

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/config"
	"github.com/v0xg/surveywalk/internal/driver"
)

// Extractor produces the ordered field list for the page currently loaded.
// It is a pure read of current DOM state; descriptors are snapshots, never
// live references.
type Extractor struct {
	drv driver.Driver
	dom config.DOMConfig
	log *zap.Logger
}

func NewExtractor(drv driver.Driver, dom config.DOMConfig, log *zap.Logger) *Extractor {
	return &Extractor{drv: drv, dom: dom, log: log}
}

// Extract scans all question containers under the survey root in DOM order
// and classifies each into a FieldDescriptor. A missing root yields an empty
// list and rootFound=false; the orchestrator decides whether that is fatal.
func (e *Extractor) Extract(ctx context.Context) (fields []FieldDescriptor, rootFound bool, err error) {
	res, err := e.drv.Eval(ctx, scanQuestionsJS,
		e.dom.RootSelector, e.dom.QuestionSelector, e.dom.SliderTrackSelector, e.dom.ContainerDataAttr)
	if err != nil {
		return nil, false, err
	}
	if !res.Get("rootFound").Bool() {
		e.log.Warn("survey root container not found",
			zap.String("rootSelector", e.dom.RootSelector))
		return nil, false, nil
	}

	for _, g := range res.Get("questions").Array() {
		raw := decodeRawQuestion(g)
		if !raw.Visible {
			continue
		}
		field, ok := classifyQuestion(raw, e.dom.RequiredMarker)
		if !ok {
			e.log.Debug("skipping non-field container",
				zap.Int("index", raw.Index),
				zap.String("text", clip(raw.Text, 60)))
			continue
		}
		field.ContainerSelector = resolveContainerSelector(e.dom, raw)
		field.Selector = resolveInputSelector(e.dom, raw, field.ContainerSelector)
		fields = append(fields, field)
	}

	e.log.Debug("extracted page structure", zap.Int("fields", len(fields)))
	return fields, true, nil
}

// ExtractByIndex re-runs the scan and classifies only the container at the
// given position. Used by the conditional discoverer once it knows which
// container newly appeared.
func (e *Extractor) ExtractByIndex(ctx context.Context, index int) (FieldDescriptor, bool, error) {
	res, err := e.drv.Eval(ctx, scanQuestionsJS,
		e.dom.RootSelector, e.dom.QuestionSelector, e.dom.SliderTrackSelector, e.dom.ContainerDataAttr)
	if err != nil {
		return FieldDescriptor{}, false, err
	}
	for _, g := range res.Get("questions").Array() {
		raw := decodeRawQuestion(g)
		if raw.Index != index || !raw.Visible {
			continue
		}
		field, ok := classifyQuestion(raw, e.dom.RequiredMarker)
		if !ok {
			return FieldDescriptor{}, false, nil
		}
		field.ContainerSelector = resolveContainerSelector(e.dom, raw)
		field.Selector = resolveInputSelector(e.dom, raw, field.ContainerSelector)
		return field, true, nil
	}
	return FieldDescriptor{}, false, nil
}

// PageTitle reads the page's long title from the earliest heading and
// derives the short name from it.
func (e *Extractor) PageTitle(ctx context.Context) (long, short string, err error) {
	res, err := e.drv.Eval(ctx, pageTitleJS, e.dom.RootSelector)
	if err != nil {
		return "", "", err
	}
	long = res.String()
	return long, shortName(long), nil
}

// QuestionCount returns how many question containers the root currently has.
func (e *Extractor) QuestionCount(ctx context.Context) (int, error) {
	res, err := e.drv.Eval(ctx, questionCountJS, e.dom.RootSelector, e.dom.QuestionSelector)
	if err != nil {
		return 0, err
	}
	return int(res.Int()), nil
}

// shortName cuts a long title at the first strong separator, capped at 40
// characters on a word boundary.
func shortName(title string) string {
	s := title
	for _, sep := range []string{" - ", " – ", ": ", " | "} {
		if i := strings.Index(s, sep); i > 0 {
			s = s[:i]
			break
		}
	}
	if len(s) <= 40 {
		return s
	}
	if i := strings.LastIndex(s[:40], " "); i > 0 {
		return s[:i]
	}
	return s[:40]
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
