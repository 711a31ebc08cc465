package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/tidwall/gjson"
)

// Options configures the rod-backed browser session.
type Options struct {
	Width      int
	Height     int
	Headless   bool
	ProfileDir string // Chrome/Chromium profile directory for authenticated sessions
	NavTimeout time.Duration
}

// Rod implements Driver on top of a go-rod browser session. One session owns
// exactly one page for the lifetime of a run.
type Rod struct {
	browser *rod.Browser
	page    *rod.Page
	opts    Options
}

// keymap translates the named keys the core presses into rod input keys.
var keymap = map[string]input.Key{
	"Escape": input.Escape,
	"Enter":  input.Enter,
	"Tab":    input.Tab,
}

// NewRod launches a browser and opens a blank page sized to the options.
func NewRod(opts Options) (*Rod, error) {
	if opts.Width == 0 {
		opts.Width = 1280
	}
	if opts.Height == 0 {
		opts.Height = 900
	}
	if opts.NavTimeout == 0 {
		opts.NavTimeout = 30 * time.Second
	}

	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(opts.Headless)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser launch failed: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("browser connect failed: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("page open failed: %w", err)
	}

	d := &Rod{browser: browser, page: page, opts: opts}
	if err := d.SetViewport(context.Background(), opts.Width, opts.Height); err != nil {
		browser.Close()
		return nil, err
	}
	return d, nil
}

// Page exposes the underlying rod page for login scripting outside the core.
func (d *Rod) Page() *rod.Page { return d.page }

func (d *Rod) Navigate(ctx context.Context, url string) error {
	page := d.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	// Let pending requests settle; persistent connections must not hang us.
	page.Timeout(5 * time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
	return nil
}

func (d *Rod) Eval(ctx context.Context, js string, args ...any) (gjson.Result, error) {
	obj, err := d.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("eval: %w", err)
	}
	raw, err := json.Marshal(obj.Value)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("eval result marshal: %w", err)
	}
	return gjson.ParseBytes(raw), nil
}

func (d *Rod) Count(ctx context.Context, selector string) (int, error) {
	els, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", selector, err)
	}
	return len(els), nil
}

func (d *Rod) Click(ctx context.Context, selector string) error {
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s", selector)
	}
	return rod.Try(func() {
		el.MustScrollIntoView()
		el.MustClick()
	})
}

func (d *Rod) ClickPoint(ctx context.Context, x, y float64) error {
	page := d.page.Context(ctx)
	return rod.Try(func() {
		page.Mouse.MustMoveTo(x, y)
		page.Mouse.MustClick(proto.InputMouseButtonLeft)
	})
}

func (d *Rod) Focus(ctx context.Context, selector string) error {
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s", selector)
	}
	return el.Focus()
}

func (d *Rod) SelectAll(ctx context.Context, selector string) error {
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s", selector)
	}
	return el.SelectAllText()
}

func (d *Rod) Type(ctx context.Context, selector, text string) error {
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s", selector)
	}
	return el.Input(text)
}

func (d *Rod) Press(ctx context.Context, key string) error {
	k, ok := keymap[key]
	if !ok {
		return fmt.Errorf("unsupported key: %s", key)
	}
	return d.page.Context(ctx).Keyboard.Type(k)
}

func (d *Rod) BoundingBox(ctx context.Context, selector string) (Box, error) {
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return Box{}, fmt.Errorf("element not found: %s", selector)
	}
	shape, err := el.Shape()
	if err != nil {
		return Box{}, err
	}
	if len(shape.Quads) == 0 {
		return Box{}, fmt.Errorf("element has no shape: %s", selector)
	}
	q := shape.Quads[0]
	minX, maxX := q[0], q[0]
	minY, maxY := q[1], q[1]
	for i := 2; i < len(q); i += 2 {
		minX = min(minX, q[i])
		maxX = max(maxX, q[i])
		minY = min(minY, q[i+1])
		maxY = max(maxY, q[i+1])
	}
	return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, nil
}

func (d *Rod) Viewport(ctx context.Context) (int, int, error) {
	res, err := d.Eval(ctx, `() => ({ width: window.innerWidth, height: window.innerHeight })`)
	if err != nil {
		return 0, 0, err
	}
	return int(res.Get("width").Int()), int(res.Get("height").Int()), nil
}

func (d *Rod) SetViewport(ctx context.Context, width, height int) error {
	return d.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
}

func (d *Rod) ScreenshotElement(ctx context.Context, selector string) ([]byte, error) {
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element not found: %s", selector)
	}
	return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

func (d *Rod) Screenshot(ctx context.Context) ([]byte, error) {
	return d.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (d *Rod) WaitNavigation(ctx context.Context, timeout time.Duration, trigger func() error) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page := d.page.Context(tctx)
	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := trigger(); err != nil {
		return err
	}
	wait()

	if tctx.Err() != nil && ctx.Err() == nil {
		return fmt.Errorf("navigation wait: %w", tctx.Err())
	}
	return nil
}

func (d *Rod) Close() error {
	if d.page != nil {
		d.page.Close()
	}
	if d.browser != nil {
		return d.browser.Close()
	}
	return nil
}
