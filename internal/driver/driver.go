// Package driver abstracts the browser primitives the traversal consumes.
// The survey core never touches the browser library directly; every DOM
// query goes through this interface so page state is read, not owned.
package driver

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
)

// Box is an element's bounding box in CSS pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Midpoint returns the horizontal and vertical center of the box.
func (b Box) Midpoint() (x, y float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Driver is the consumed browser capability. All results that carry page
// data come back as gjson documents so callers stay decoupled from the
// underlying evaluation machinery.
type Driver interface {
	// Navigate loads a URL and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// Eval runs a page-context function (arrow-function source) and returns
	// its serialized result.
	Eval(ctx context.Context, js string, args ...any) (gjson.Result, error)

	// Count returns how many elements match the selector.
	Count(ctx context.Context, selector string) (int, error)

	// Click dispatches a real click on the first match of the selector.
	Click(ctx context.Context, selector string) error

	// ClickPoint clicks at absolute page coordinates.
	ClickPoint(ctx context.Context, x, y float64) error

	// Focus gives keyboard focus to the first match of the selector.
	Focus(ctx context.Context, selector string) error

	// SelectAll selects the current text content of the focused or targeted
	// input so subsequent typing replaces it.
	SelectAll(ctx context.Context, selector string) error

	// Type sends the text as keystrokes to the first match of the selector.
	Type(ctx context.Context, selector, text string) error

	// Press sends a single named key (Escape, Enter, Tab...) to the page.
	Press(ctx context.Context, key string) error

	// BoundingBox returns the rendered box of the first match.
	BoundingBox(ctx context.Context, selector string) (Box, error)

	// Viewport returns the current viewport size.
	Viewport(ctx context.Context) (width, height int, err error)

	// SetViewport resizes the viewport.
	SetViewport(ctx context.Context, width, height int) error

	// ScreenshotElement captures only the first match of the selector as PNG.
	ScreenshotElement(ctx context.Context, selector string) ([]byte, error)

	// Screenshot captures the current viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)

	// WaitNavigation runs trigger and waits up to timeout for a navigation
	// event it causes. A timeout is reported as an error; callers decide
	// whether that is fatal.
	WaitNavigation(ctx context.Context, timeout time.Duration, trigger func() error) error

	// Close releases the browser session.
	Close() error
}
