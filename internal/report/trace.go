package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"

	"github.com/v0xg/surveywalk/internal/overlay"
	"github.com/v0xg/surveywalk/internal/survey"
)

// TraceOptions configures the animated traversal recap.
type TraceOptions struct {
	MaxWidth   uint
	FrameDelay int // hundredths of a second per frame
}

// BuildTraceGIF assembles the run's page screenshots, in visitation order,
// into an animated GIF with a progress banner per frame. Pages whose
// captures were skipped are simply absent. Returns the output size in
// bytes; zero frames is not an error, just no file.
func BuildTraceGIF(dir string, rep *survey.SurveyReport, opts TraceOptions) (int64, error) {
	if opts.MaxWidth == 0 {
		opts.MaxWidth = 800
	}
	if opts.FrameDelay == 0 {
		opts.FrameDelay = 120
	}

	var frames []image.Image
	var steps []int
	for _, page := range rep.Pages {
		for _, file := range []string{page.OnEntryScreenshot, page.OnExitScreenshot} {
			if file == "" {
				continue
			}
			img, err := loadImage(filepath.Join(dir, file))
			if err != nil {
				continue
			}
			frames = append(frames, img)
			steps = append(steps, page.FormIndex+1)
		}
	}
	if len(frames) == 0 {
		return 0, nil
	}

	total := rep.Pages[len(rep.Pages)-1].FormIndex + 1

	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: 0,
	}

	// size and palette follow the first frame; screenshots of one run share
	// a viewport width
	first := resize.Resize(opts.MaxWidth, 0, frames[0], resize.Lanczos3)
	palette := buildPalette(first)
	outW := uint(first.Bounds().Dx())
	outH := uint(first.Bounds().Dy())

	for i, frame := range frames {
		resized := resize.Resize(outW, outH, frame, resize.Lanczos3)
		annotated := overlay.Progress(resized, steps[i], total)

		paletted := image.NewPaletted(annotated.Bounds(), palette)
		draw.FloydSteinberg.Draw(paletted, annotated.Bounds(), annotated, image.Point{})

		g.Image[i] = paletted
		g.Delay[i] = opts.FrameDelay
	}

	path := filepath.Join(dir, "trace.gif")
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := gif.EncodeAll(f, g); err != nil {
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func loadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// buildPalette quantizes a frame to a 256-color palette by sampling pixel
// frequency, transparent first, padded with grayscale.
func buildPalette(img image.Image) color.Palette {
	bounds := img.Bounds()
	counts := make(map[color.RGBA]int)

	const step = 4 // sample every 4th pixel
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			c := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
			counts[c]++
		}
	}

	type freq struct {
		c color.RGBA
		n int
	}
	ordered := make([]freq, 0, len(counts))
	for c, n := range counts {
		ordered = append(ordered, freq{c, n})
	}
	for i := 0; i < len(ordered)-1; i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].n > ordered[i].n {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	palette := make(color.Palette, 0, 256)
	palette = append(palette, color.RGBA{0, 0, 0, 0})
	for i := 0; i < len(ordered) && len(palette) < 256; i++ {
		palette = append(palette, ordered[i].c)
	}
	for len(palette) < 256 {
		gray := uint8(len(palette))
		palette = append(palette, color.RGBA{gray, gray, gray, 255})
	}
	return palette
}
