package survey

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/config"
	"github.com/v0xg/surveywalk/internal/driver"
)

// Capturer takes the on-entry and on-exit page captures. The viewport is
// temporarily grown so dynamically tall content fits in one element-scoped
// screenshot of the survey root, and restored to its exact prior size
// afterwards. A capture that cannot be taken is skipped, never fatal.
type Capturer struct {
	drv    driver.Driver
	dom    config.DOMConfig
	shot   config.ScreenshotConfig
	outDir string
	log    *zap.Logger
}

func NewCapturer(drv driver.Driver, cfg *config.Config, outDir string, log *zap.Logger) *Capturer {
	return &Capturer{drv: drv, dom: cfg.DOM, shot: cfg.Screenshot, outDir: outDir, log: log}
}

// Capture screenshots the survey root into <outDir>/<name>.png and returns
// the file name, or "" when the capture was skipped.
func (c *Capturer) Capture(ctx context.Context, name string) string {
	origW, origH, err := c.drv.Viewport(ctx)
	if err != nil {
		c.log.Warn("screenshot skipped: viewport read failed", zap.Error(err))
		return ""
	}

	res, err := c.drv.Eval(ctx, contentHeightJS, c.dom.RootSelector, c.dom.QuestionSelector)
	if err != nil || res.Int() <= 0 {
		c.log.Warn("screenshot skipped: content height unavailable",
			zap.String("name", name), zap.Error(err))
		return ""
	}
	needed := int(res.Int())
	if needed > c.shot.MaxViewportHeight {
		needed = c.shot.MaxViewportHeight
	}

	grown := false
	if needed > origH {
		if err := c.drv.SetViewport(ctx, origW, needed); err != nil {
			c.log.Debug("viewport extension rejected, using fallback height",
				zap.Int("wanted", needed), zap.Error(err))
			if err := c.drv.SetViewport(ctx, origW, c.shot.FallbackHeight); err != nil {
				c.log.Warn("screenshot skipped: viewport resize failed", zap.Error(err))
				return ""
			}
		}
		grown = true
		time.Sleep(c.shot.ReflowDelay)
	}
	if grown {
		defer func() {
			if err := c.drv.SetViewport(ctx, origW, origH); err != nil {
				c.log.Warn("viewport restore failed", zap.Error(err))
			}
		}()
	}

	png, err := c.drv.ScreenshotElement(ctx, c.dom.RootSelector)
	if err != nil {
		c.log.Warn("screenshot skipped: capture failed",
			zap.String("name", name), zap.Error(err))
		return ""
	}

	file := name + ".png"
	if err := os.WriteFile(filepath.Join(c.outDir, file), png, 0o644); err != nil {
		c.log.Warn("screenshot skipped: write failed",
			zap.String("file", file), zap.Error(err))
		return ""
	}
	return file
}
