package survey

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/config"
	"github.com/v0xg/surveywalk/internal/driver"
)

// Synthesizer produces candidate values for a field. The core treats it as
// an opaque collaborator and only requires that the first returned case be
// usable as the value to fill.
type Synthesizer interface {
	Synthesize(ctx context.Context, field *FieldDescriptor) ([]TestCase, error)
}

// Discoverer detects fields that appear only after another field is
// answered, by comparing visible-question snapshots around each fill.
// Reveal chains are drained through an explicit worklist bounded by
// MaxRevealRounds, so a pathological infinite-reveal page terminates with a
// warning instead of recursing forever.
type Discoverer struct {
	drv       driver.Driver
	extractor *Extractor
	fill      *Dispatcher
	synth     Synthesizer
	dom       config.DOMConfig
	settle    time.Duration
	maxRounds int
	log       *zap.Logger
}

func NewDiscoverer(drv driver.Driver, ex *Extractor, fill *Dispatcher, synth Synthesizer,
	cfg *config.Config, log *zap.Logger) *Discoverer {
	return &Discoverer{
		drv:       drv,
		extractor: ex,
		fill:      fill,
		synth:     synth,
		dom:       cfg.DOM,
		settle:    cfg.Timing.SettleDelay,
		maxRounds: cfg.Traversal.MaxRevealRounds,
		log:       log,
	}
}

// Snapshot captures the identifiers of all currently visible questions,
// mapped to their container index. A question's identifier is its extracted
// number, or a positional placeholder when no number exists.
func (d *Discoverer) Snapshot(ctx context.Context) (map[string]int, error) {
	res, err := d.drv.Eval(ctx, visibleQuestionsJS, d.dom.RootSelector, d.dom.QuestionSelector)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int)
	for _, g := range res.Array() {
		index := int(g.Get("index").Int())
		number, _, _ := parseQuestionText(g.Get("text").String(), d.dom.RequiredMarker)
		ids[questionKey(number, index)] = index
	}
	return ids, nil
}

// questionKey builds the identifier used in snapshots and the
// filled-question set.
func questionKey(number string, index int) string {
	if number != "" {
		return number
	}
	return fmt.Sprintf("no_number_%d", index)
}

// delta returns the question ids present in after but not in before.
// Positional placeholder ids whose index merely shifted are ignored when the
// total count of unnumbered questions is unchanged; an index shift alone is
// not a reveal.
func delta(before, after map[string]int) []string {
	beforeUnnumbered, afterUnnumbered := 0, 0
	for id := range before {
		if isPlaceholderKey(id) {
			beforeUnnumbered++
		}
	}
	for id := range after {
		if isPlaceholderKey(id) {
			afterUnnumbered++
		}
	}
	placeholdersShiftedOnly := beforeUnnumbered == afterUnnumbered

	var fresh []string
	for id := range after {
		if _, seen := before[id]; seen {
			continue
		}
		if isPlaceholderKey(id) && placeholdersShiftedOnly {
			continue
		}
		fresh = append(fresh, id)
	}
	return fresh
}

func isPlaceholderKey(id string) bool {
	return len(id) > 10 && id[:10] == "no_number_"
}

// revealItem is one entry on the discovery worklist.
type revealItem struct {
	id     string
	index  int
	parent *FieldDescriptor
}

// ProcessReveals drains all questions revealed by filling parent. The
// before snapshot must have been taken immediately before the parent fill.
// Newly discovered fields are classified, forced required, filled, and
// appended to page.Fields; each fill triggers another snapshot round until
// the worklist empties or the round bound is hit.
//
// A field that appeared as a direct consequence of answering another field
// is assumed load-bearing even when the platform does not mark it required.
func (d *Discoverer) ProcessReveals(ctx context.Context, before map[string]int,
	parent *FieldDescriptor, page *FormPage, filled map[string]bool) error {

	time.Sleep(d.settle)
	after, err := d.Snapshot(ctx)
	if err != nil {
		return err
	}

	worklist := make([]revealItem, 0, 4)
	for _, id := range delta(before, after) {
		worklist = append(worklist, revealItem{id: id, index: after[id], parent: parent})
	}

	rounds := 0
	for len(worklist) > 0 {
		rounds++
		if rounds > d.maxRounds {
			d.log.Warn("conditional reveal chain exceeded round bound, abandoning remainder",
				zap.Int("maxRounds", d.maxRounds),
				zap.Int("pending", len(worklist)))
			return nil
		}

		item := worklist[0]
		worklist = worklist[1:]

		if filled[item.id] {
			continue
		}

		field, ok, err := d.extractor.ExtractByIndex(ctx, item.index)
		if err != nil {
			return err
		}
		if !ok {
			d.log.Debug("revealed container is not a field", zap.String("id", item.id))
			continue
		}

		field.IsRequired = true
		field.Conditional = &ConditionalInfo{
			IsConditional:  true,
			ParentQuestion: item.parent.QuestionNumber,
			ParentValue:    parentValue(item.parent),
			AppearedAfter:  fieldKey(item.parent),
		}

		cases, err := d.synth.Synthesize(ctx, &field)
		if err != nil {
			d.log.Warn("test data synthesis failed for revealed field",
				zap.String("question", field.QuestionNumber), zap.Error(err))
		}
		field.TestData = cases

		preFill, err := d.Snapshot(ctx)
		if err != nil {
			return err
		}

		if err := d.fill.Fill(ctx, &field); err != nil {
			d.log.Warn("fill failed for revealed field",
				zap.String("question", field.QuestionNumber), zap.Error(err))
		}
		filled[item.id] = true
		page.Fields = append(page.Fields, field)

		d.log.Info("processed conditional field",
			zap.String("question", field.QuestionNumber),
			zap.String("parent", item.parent.QuestionNumber))

		time.Sleep(d.settle)
		postFill, err := d.Snapshot(ctx)
		if err != nil {
			return err
		}
		for _, id := range delta(preFill, postFill) {
			if !filled[id] {
				worklist = append(worklist, revealItem{id: id, index: postFill[id], parent: &field})
			}
		}
	}
	return nil
}

// fieldKey is the filled-set identifier for a descriptor.
func fieldKey(f *FieldDescriptor) string {
	if f.QuestionNumber != "" {
		return f.QuestionNumber
	}
	return "no_number_" + f.ContainerSelector
}

func parentValue(f *FieldDescriptor) string {
	if len(f.TestData) == 0 {
		return ""
	}
	return valueString(f.TestData[0])
}
