package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	white := color.RGBA{255, 255, 255, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, white)
		}
	}
	return img
}

func TestProgress(t *testing.T) {
	frame := solidFrame(100, 60)
	out := Progress(frame, 1, 2)

	require.Equal(t, frame.Bounds(), out.Bounds())

	// the source frame is untouched above the banner
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, out.At(50, 10))

	// left half of the strip is filled, right half is background
	assert.Equal(t, bannerFill, out.At(10, 60-BannerHeight/2))
	assert.Equal(t, bannerBg, out.At(90, 60-BannerHeight/2))

	// a tick separates the two steps
	assert.Equal(t, tickColor, out.At(50, 60-1))
}

func TestProgressBounds(t *testing.T) {
	frame := solidFrame(40, 30)

	// a zero total cannot be drawn; the frame passes through
	assert.Equal(t, frame, Progress(frame, 1, 0))

	// step is clamped to total, filling the whole strip
	out := Progress(frame, 9, 3)
	assert.Equal(t, bannerFill, out.At(39, 30-BannerHeight/2))
}
