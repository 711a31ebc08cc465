// Package overlay draws the traversal progress banner onto trace frames.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
)

// BannerHeight is the pixel height of the progress strip.
const BannerHeight = 14

var (
	bannerBg   = color.RGBA{32, 32, 40, 255}
	bannerFill = color.RGBA{64, 160, 255, 255}
	tickColor  = color.RGBA{210, 215, 220, 255}
)

// Progress returns a copy of the frame with a progress bar along the bottom
// edge: filled proportionally to step/total, with a tick per step so the
// page count is readable at a glance.
func Progress(frame image.Image, step, total int) image.Image {
	if total <= 0 {
		return frame
	}
	if step > total {
		step = total
	}

	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, frame, bounds.Min, draw.Src)

	top := bounds.Max.Y - BannerHeight
	strip := image.Rect(bounds.Min.X, top, bounds.Max.X, bounds.Max.Y)
	draw.Draw(out, strip, &image.Uniform{bannerBg}, image.Point{}, draw.Src)

	width := bounds.Dx()
	fillW := width * step / total
	fill := image.Rect(bounds.Min.X, top+2, bounds.Min.X+fillW, bounds.Max.Y-2)
	draw.Draw(out, fill, &image.Uniform{bannerFill}, image.Point{}, draw.Src)

	for i := 1; i < total; i++ {
		x := bounds.Min.X + width*i/total
		tick := image.Rect(x, top, x+1, bounds.Max.Y)
		draw.Draw(out, tick, &image.Uniform{tickColor}, image.Point{}, draw.Src)
	}

	return out
}
