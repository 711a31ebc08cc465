package survey

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/config"
	"github.com/v0xg/surveywalk/internal/driver"
)

// Dispatcher performs the input-type-specific interaction for one field and
// one candidate value. Fallbacks are ordered strategy lists executed until
// one succeeds; the policy is data, not control flow.
type Dispatcher struct {
	drv driver.Driver
	dom config.DOMConfig
	log *zap.Logger
	now func() time.Time
}

func NewDispatcher(drv driver.Driver, dom config.DOMConfig, log *zap.Logger) *Dispatcher {
	return &Dispatcher{drv: drv, dom: dom, log: log, now: time.Now}
}

// fillStrategy is one attempt in an ordered fallback chain.
type fillStrategy struct {
	name string
	run  func(ctx context.Context) error
}

// runStrategies executes strategies in order until one succeeds. The
// returned FillError names the last strategy tried.
func (d *Dispatcher) runStrategies(ctx context.Context, field *FieldDescriptor, strategies []fillStrategy) error {
	var lastErr error
	lastName := ""
	for _, s := range strategies {
		if err := s.run(ctx); err != nil {
			d.log.Debug("fill strategy failed",
				zap.String("question", field.QuestionNumber),
				zap.String("strategy", s.name),
				zap.Error(err))
			lastErr, lastName = err, s.name
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no strategy applicable")
	}
	return &FillError{
		QuestionNumber: field.QuestionNumber,
		Kind:           field.InputType,
		Strategy:       lastName,
		Err:            lastErr,
	}
}

// Fill applies the first test case of the field's test data using the
// interaction sequence for its input type, then blurs the active element so
// the platform's own validation runs. A fill failure is returned, never
// panicked; callers record it and continue with the page.
func (d *Dispatcher) Fill(ctx context.Context, field *FieldDescriptor) error {
	if len(field.TestData) == 0 {
		return &FillError{
			QuestionNumber: field.QuestionNumber,
			Kind:           field.InputType,
			Err:            fmt.Errorf("no test data"),
		}
	}
	tc := field.TestData[0]

	var err error
	switch field.InputType {
	case KindText, KindEmail, KindNumber, KindTextarea:
		err = d.fillText(ctx, field, valueString(tc))
	case KindDate:
		err = d.fillDate(ctx, field)
	case KindRadio:
		err = d.fillRadio(ctx, field, valueIndex(tc))
	case KindDropdown:
		err = d.fillDropdown(ctx, field, tc)
	case KindCheckbox:
		err = d.fillCheckbox(ctx, field)
	case KindVAS:
		err = d.fillVAS(ctx, field)
	case KindNRS:
		err = d.fillNRS(ctx, field, valueIndex(tc))
	default:
		err = d.fillText(ctx, field, valueString(tc))
	}

	// Always blur, even after a failed fill: a partial interaction may have
	// left focus on the widget.
	if _, blurErr := d.drv.Eval(ctx, blurActiveJS); blurErr != nil {
		d.log.Debug("blur after fill failed", zap.Error(blurErr))
	}
	return err
}

// fillText handles text, email, number and textarea: focus, select the
// existing content, type the replacement.
func (d *Dispatcher) fillText(ctx context.Context, field *FieldDescriptor, value string) error {
	return d.runStrategies(ctx, field, []fillStrategy{
		{"selector-type", func(ctx context.Context) error {
			if err := d.drv.Focus(ctx, field.Selector); err != nil {
				return err
			}
			if err := d.drv.SelectAll(ctx, field.Selector); err != nil {
				return err
			}
			return d.drv.Type(ctx, field.Selector, value)
		}},
		{"container-input-type", func(ctx context.Context) error {
			sel := field.ContainerSelector + " input, " + field.ContainerSelector + " textarea"
			if err := d.drv.Focus(ctx, sel); err != nil {
				return err
			}
			return d.drv.Type(ctx, sel, value)
		}},
	})
}

// fillDate opens the picker and targets yesterday. A two-part month/year
// dropdown widget is driven first when present, then the calendar cell whose
// text equals the day is clicked, skipping disabled and outside-month cells.
func (d *Dispatcher) fillDate(ctx context.Context, field *FieldDescriptor) error {
	target := d.now().AddDate(0, 0, -1)

	return d.runStrategies(ctx, field, []fillStrategy{
		{"picker", func(ctx context.Context) error {
			if err := d.drv.Click(ctx, field.Selector); err != nil {
				return err
			}
			// month/year dropdowns are optional; single-month pickers skip this
			if _, err := d.drv.Eval(ctx, setMonthYearJS,
				target.Month().String(), int(target.Month())-1, target.Year()); err != nil {
				return err
			}
			res, err := d.drv.Eval(ctx, datePickerClickDayJS, target.Day())
			if err != nil {
				return err
			}
			if !res.Bool() {
				return fmt.Errorf("no selectable calendar cell for day %d", target.Day())
			}
			return nil
		}},
		{"iso-type", func(ctx context.Context) error {
			if err := d.drv.Focus(ctx, field.Selector); err != nil {
				return err
			}
			return d.drv.Type(ctx, field.Selector, target.Format("2006-01-02"))
		}},
	})
}

// fillRadio clicks the option at the given index. Resolution order:
// container scope, best-matching group under the survey root, the field's
// own selector. The checked state is verified; the label is the retry path.
func (d *Dispatcher) fillRadio(ctx context.Context, field *FieldDescriptor, index int) error {
	return d.runStrategies(ctx, field, []fillStrategy{
		{"container-scope", func(ctx context.Context) error {
			return d.clickRadioVerified(ctx, field.ContainerSelector, index)
		}},
		{"root-group", func(ctx context.Context) error {
			groups, err := d.drv.Eval(ctx, radioGroupsJS, d.dom.RootSelector)
			if err != nil {
				return err
			}
			name := bestRadioGroup(groups.Array(), len(field.Choices))
			if name == "" {
				return fmt.Errorf("no radio groups under root")
			}
			res, err := d.drv.Eval(ctx, clickGroupRadioJS, d.dom.RootSelector, name, index)
			if err != nil {
				return err
			}
			if !res.Bool() {
				return fmt.Errorf("group %q has no radio at index %d", name, index)
			}
			return nil
		}},
		{"field-selector", func(ctx context.Context) error {
			return d.drv.Click(ctx, field.Selector)
		}},
	})
}

// clickRadioVerified clicks radio index within scope, re-queries the checked
// state and retries through the enclosing label when the click did not take.
func (d *Dispatcher) clickRadioVerified(ctx context.Context, scope string, index int) error {
	res, err := d.drv.Eval(ctx, clickRadioJS, scope, index)
	if err != nil {
		return err
	}
	if !res.Bool() {
		return fmt.Errorf("no radio at index %d under %s", index, scope)
	}

	state, err := d.drv.Eval(ctx, radioCheckedJS, scope, index)
	if err != nil {
		return err
	}
	if state.Get("found").Bool() && state.Get("checked").Bool() {
		return nil
	}

	if _, err := d.drv.Eval(ctx, clickRadioLabelJS, scope, index); err != nil {
		return err
	}
	state, err = d.drv.Eval(ctx, radioCheckedJS, scope, index)
	if err != nil {
		return err
	}
	if !state.Get("checked").Bool() {
		return fmt.Errorf("radio at index %d did not become checked", index)
	}
	return nil
}

// fillDropdown tries the native select path, then a custom dropdown opened
// by click, and as a last resort types the choice text into the control.
func (d *Dispatcher) fillDropdown(ctx context.Context, field *FieldDescriptor, tc TestCase) error {
	index := valueIndex(tc)
	text := valueString(tc)
	if text == "" || isDigits(text) {
		// numeric value: treat as a choice index
		if index >= 0 && index < len(field.Choices) {
			text = field.Choices[index]
		}
	}

	return d.runStrategies(ctx, field, []fillStrategy{
		{"native-select", func(ctx context.Context) error {
			res, err := d.drv.Eval(ctx, nativeSelectJS, field.Selector, text)
			if err != nil {
				return err
			}
			if !res.Bool() {
				return fmt.Errorf("no native option matching %q", text)
			}
			return nil
		}},
		{"custom-open-click", func(ctx context.Context) error {
			if err := d.drv.Click(ctx, field.Selector); err != nil {
				return err
			}
			res, err := d.drv.Eval(ctx, clickCustomOptionJS, index)
			if err != nil {
				return err
			}
			if !res.Bool() {
				return fmt.Errorf("no custom option at index %d", index)
			}
			return nil
		}},
		{"type-text", func(ctx context.Context) error {
			return d.drv.Type(ctx, field.Selector, text)
		}},
	})
}

func (d *Dispatcher) fillCheckbox(ctx context.Context, field *FieldDescriptor) error {
	return d.runStrategies(ctx, field, []fillStrategy{
		{"container-scope", func(ctx context.Context) error {
			res, err := d.drv.Eval(ctx, clickCheckboxJS, field.ContainerSelector)
			if err != nil {
				return err
			}
			if !res.Bool() {
				return fmt.Errorf("no checkbox under %s", field.ContainerSelector)
			}
			return nil
		}},
		{"field-selector", func(ctx context.Context) error {
			return d.drv.Click(ctx, field.Selector)
		}},
	})
}

// fillVAS resolves the slider track and clicks its horizontal midpoint.
func (d *Dispatcher) fillVAS(ctx context.Context, field *FieldDescriptor) error {
	candidates := []string{
		field.Selector,
		field.ContainerSelector + " " + firstSelector(d.dom.SliderTrackSelector),
		d.dom.RootSelector + " " + firstSelector(d.dom.SliderTrackSelector),
	}

	strategies := make([]fillStrategy, 0, len(candidates))
	for _, sel := range candidates {
		sel := sel
		strategies = append(strategies, fillStrategy{
			name: "track " + sel,
			run: func(ctx context.Context) error {
				box, err := d.drv.BoundingBox(ctx, sel)
				if err != nil {
					return err
				}
				x, y := box.Midpoint()
				return d.drv.ClickPoint(ctx, x, y)
			},
		})
	}
	return d.runStrategies(ctx, field, strategies)
}

// fillNRS collects the container's integer-labeled buttons sorted
// numerically and clicks the one at the target index.
func (d *Dispatcher) fillNRS(ctx context.Context, field *FieldDescriptor, index int) error {
	return d.runStrategies(ctx, field, []fillStrategy{
		{"sorted-buttons", func(ctx context.Context) error {
			res, err := d.drv.Eval(ctx, nrsButtonsJS, field.ContainerSelector)
			if err != nil {
				return err
			}
			labels := res.Array()
			if len(labels) == 0 {
				return fmt.Errorf("no numeric buttons under %s", field.ContainerSelector)
			}
			if index < 0 {
				index = 0
			}
			if index >= len(labels) {
				index = len(labels) - 1
			}
			hit, err := d.drv.Eval(ctx, clickNRSButtonJS, field.ContainerSelector, labels[index].String())
			if err != nil {
				return err
			}
			if !hit.Bool() {
				return fmt.Errorf("numeric button %q vanished before click", labels[index].String())
			}
			return nil
		}},
	})
}

// bestRadioGroup picks a radio group for a field discovered with an
// ambiguous container: prefer a group whose size matches the field's choice
// count, else the first group in document order.
func bestRadioGroup(groups []gjson.Result, wantCount int) string {
	if len(groups) == 0 {
		return ""
	}
	if wantCount > 0 {
		for _, g := range groups {
			if int(g.Get("count").Int()) == wantCount {
				return g.Get("name").String()
			}
		}
	}
	return groups[0].Get("name").String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// firstSelector cuts a comma-separated selector list down to its first entry
// for use in composed scoped selectors.
func firstSelector(list string) string {
	for i := 0; i < len(list); i++ {
		if list[i] == ',' {
			return list[:i]
		}
	}
	return list
}

// valueString renders a test case value the way it will be typed.
func valueString(tc TestCase) string {
	switch v := tc.Value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// valueIndex reads a test case value as an option index. Non-numeric values
// fall back to index 0.
func valueIndex(tc TestCase) int {
	switch v := tc.Value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
