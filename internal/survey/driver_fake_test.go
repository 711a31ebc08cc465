package survey

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/v0xg/surveywalk/internal/driver"
)

// fakeDriver is a scriptable stand-in for the browser. Tests install an eval
// handler that dispatches on the script constant being evaluated; every
// interaction is recorded for assertions.
type fakeDriver struct {
	evalFn func(js string, args ...any) (gjson.Result, error)

	counts map[string]int
	boxes  map[string]driver.Box

	vpW, vpH  int
	vpHistory [][2]int

	navigated   []string
	clicked     []string
	clickedAt   [][2]float64
	focused     []string
	selectedAll []string
	typed       []string // "selector\x00text"
	pressed     []string
	shots       []string
	shotPNG     []byte
	shotErr     error
	clickErr    error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		counts:  map[string]int{},
		boxes:   map[string]driver.Box{},
		vpW:     1280,
		vpH:     900,
		shotPNG: []byte("png"),
	}
}

func (f *fakeDriver) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeDriver) Eval(_ context.Context, js string, args ...any) (gjson.Result, error) {
	if f.evalFn == nil {
		return gjson.Parse("null"), nil
	}
	return f.evalFn(js, args...)
}

func (f *fakeDriver) Count(_ context.Context, selector string) (int, error) {
	return f.counts[selector], nil
}

func (f *fakeDriver) Click(_ context.Context, selector string) error {
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicked = append(f.clicked, selector)
	return nil
}

func (f *fakeDriver) ClickPoint(_ context.Context, x, y float64) error {
	f.clickedAt = append(f.clickedAt, [2]float64{x, y})
	return nil
}

func (f *fakeDriver) Focus(_ context.Context, selector string) error {
	f.focused = append(f.focused, selector)
	return nil
}

func (f *fakeDriver) SelectAll(_ context.Context, selector string) error {
	f.selectedAll = append(f.selectedAll, selector)
	return nil
}

func (f *fakeDriver) Type(_ context.Context, selector, text string) error {
	f.typed = append(f.typed, selector+"\x00"+text)
	return nil
}

func (f *fakeDriver) Press(_ context.Context, key string) error {
	f.pressed = append(f.pressed, key)
	return nil
}

func (f *fakeDriver) BoundingBox(_ context.Context, selector string) (driver.Box, error) {
	box, ok := f.boxes[selector]
	if !ok {
		return driver.Box{}, fmt.Errorf("element not found: %s", selector)
	}
	return box, nil
}

func (f *fakeDriver) Viewport(_ context.Context) (int, int, error) {
	return f.vpW, f.vpH, nil
}

func (f *fakeDriver) SetViewport(_ context.Context, w, h int) error {
	f.vpW, f.vpH = w, h
	f.vpHistory = append(f.vpHistory, [2]int{w, h})
	return nil
}

func (f *fakeDriver) ScreenshotElement(_ context.Context, selector string) ([]byte, error) {
	if f.shotErr != nil {
		return nil, f.shotErr
	}
	f.shots = append(f.shots, selector)
	return f.shotPNG, nil
}

func (f *fakeDriver) Screenshot(context.Context) ([]byte, error) {
	if f.shotErr != nil {
		return nil, f.shotErr
	}
	return f.shotPNG, nil
}

func (f *fakeDriver) WaitNavigation(ctx context.Context, _ time.Duration, trigger func() error) error {
	return trigger()
}

func (f *fakeDriver) Close() error { return nil }

var _ driver.Driver = (*fakeDriver)(nil)
