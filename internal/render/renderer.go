// Package render draws frames as two-panel heatmaps: the padded input with
// the kernel footprint on the left, the output mask on the right.
package render

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/convviz/internal/frames"
	"github.com/banshee-data/convviz/internal/geometry"
	"github.com/banshee-data/convviz/internal/monitoring"
)

// Caption carries the labels printed on every frame. Stride and Padding are
// the values the user asked for, not the effective ones.
type Caption struct {
	InputSize  int
	OutputSize int
	Stride     int
	Padding    int
	Frames     int
}

// CaptionFor builds the caption of a resolved geometry.
func CaptionFor(g geometry.Geometry) Caption {
	return Caption{
		InputSize:  g.Config.InputSize,
		OutputSize: g.OutputSize,
		Stride:     g.Config.Stride,
		Padding:    g.Config.Padding,
		Frames:     g.Frames(),
	}
}

// Options controls the raster size of rendered frames.
type Options struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
}

// DefaultOptions renders 5×2.8 inch frames at 96 DPI.
func DefaultOptions() Options {
	return Options{Width: 5 * vg.Inch, Height: 2.8 * vg.Inch, DPI: vgimg.DefaultDPI}
}

// Renderer turns frames into images. Render keeps no state between calls,
// so frames can be rendered in any order or concurrently.
type Renderer struct {
	caption Caption
	opts    Options
}

// NewRenderer returns a renderer for frames of one traversal.
func NewRenderer(caption Caption, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	return &Renderer{caption: caption, opts: opts}
}

// Render draws a single frame.
func (r *Renderer) Render(f frames.Frame) (image.Image, error) {
	overlay, err := overlayMatrix(f)
	if err != nil {
		return nil, err
	}

	left := plot.New()
	left.HideAxes()
	left.Title.Text = fmt.Sprintf("Stride %d, Padding %d\nInput (%d,%d)",
		r.caption.Stride, r.caption.Padding, r.caption.InputSize, r.caption.InputSize)
	left.Title.TextStyle.Font.Size = vg.Points(10)
	hm := plotter.NewHeatMap(matrixGrid{overlay}, overlayPalette)
	hm.Min, hm.Max = 0, float64(len(overlayPalette)-1)
	left.Add(hm)

	right := plot.New()
	right.HideAxes()
	right.Title.Text = fmt.Sprintf("Frame %d/%d\nOutput (%d,%d)",
		f.Index+1, r.caption.Frames, r.caption.OutputSize, r.caption.OutputSize)
	right.Title.TextStyle.Font.Size = vg.Points(10)
	out := plotter.NewHeatMap(matrixGrid{outputMatrix(f)}, outputPalette)
	out.Min, out.Max = 0, float64(len(outputPalette)-1)
	right.Add(out)

	c := vgimg.NewWith(vgimg.UseWH(r.opts.Width, r.opts.Height), vgimg.UseDPI(r.opts.DPI))
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      2,
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{{left, right}}, tiles, dc)
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])
	return c.Image(), nil
}

// RenderAll renders every frame with at most workers goroutines, keeping
// the input order. workers <= 0 means unlimited.
func (r *Renderer) RenderAll(ctx context.Context, fs []frames.Frame, workers int) ([]image.Image, error) {
	out := make([]image.Image, len(fs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range fs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := r.Render(fs[i])
			if err != nil {
				return fmt.Errorf("render frame %d: %w", fs[i].Index, err)
			}
			out[i] = img
			monitoring.Debugf("render: frame %d/%d", fs[i].Index+1, len(fs))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// overlayMatrix classifies the overlay so palette index == category.
func overlayMatrix(f frames.Frame) (*mat.Dense, error) {
	cats, err := f.Categories()
	if err != nil {
		return nil, err
	}
	n := f.Overlay.Size()
	data := make([]float64, len(cats))
	for i, c := range cats {
		data[i] = float64(c)
	}
	return mat.NewDense(n, n, data), nil
}

func outputMatrix(f frames.Frame) *mat.Dense {
	n := f.Output.Size()
	data := make([]float64, f.Output.Len())
	for i := range data {
		data[i] = float64(f.Output.Flat(i))
	}
	return mat.NewDense(n, n, data)
}

// matrixGrid adapts a matrix to plotter.GridXYZ with row 0 drawn at the top.
type matrixGrid struct {
	m mat.Matrix
}

func (g matrixGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g matrixGrid) Z(c, r int) float64 {
	rows, _ := g.m.Dims()
	return g.m.At(rows-1-r, c)
}

func (g matrixGrid) X(c int) float64 { return float64(c) }

func (g matrixGrid) Y(r int) float64 { return float64(r) }
