package encode

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"time"

	"github.com/banshee-data/convviz/internal/frames"
	"github.com/banshee-data/convviz/internal/render"
)

// GIF encodes rendered frames as a looping animated GIF.
type GIF struct{}

func (GIF) Ext() string { return "gif" }

func (GIF) NeedsImages() bool { return true }

// Encode quantises every image onto a shared palette that holds the
// category colours exactly, so heatmap cells keep their colour.
func (GIF) Encode(w io.Writer, a Animation) error {
	if len(a.Images) == 0 {
		return ErrEmptySequence
	}
	delay := a.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	centis := int(delay / (10 * time.Millisecond))
	if centis < 1 {
		centis = 1
	}

	pal := gifPalette()
	anim := &gif.GIF{LoopCount: 0}
	for i, img := range a.Images {
		if img == nil {
			return fmt.Errorf("frame %d was not rendered", i)
		}
		b := img.Bounds()
		p := image.NewPaletted(b, pal)
		draw.Draw(p, b, img, b.Min, draw.Src)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, centis)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

// gifPalette puts the six category colours and pure black/white first and
// fills the rest from Plan9 for text and anti-aliased edges.
func gifPalette() color.Palette {
	pal := make(color.Palette, 0, 256)
	for _, c := range []frames.Category{frames.EmptyUnderKernel, frames.FilledUnderKernel, frames.EmptyPlain, frames.FilledPlain} {
		pal = append(pal, render.CategoryColor(c))
	}
	pal = append(pal, render.OutputColor(frames.Produced), render.OutputColor(frames.Unproduced))
	pal = append(pal, color.White, color.Black)
	for _, c := range palette.Plan9 {
		if len(pal) == cap(pal) {
			break
		}
		pal = append(pal, c)
	}
	return pal
}
