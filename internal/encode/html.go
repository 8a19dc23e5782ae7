package encode

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/convviz/internal/frames"
	"github.com/banshee-data/convviz/internal/grid"
	"github.com/banshee-data/convviz/internal/render"
)

// HTML writes one page with an input and an output heatmap per frame. It
// draws from frame data, so no rendered images are needed.
type HTML struct{}

func (HTML) Ext() string { return "html" }

func (HTML) NeedsImages() bool { return false }

func (HTML) Encode(w io.Writer, a Animation) error {
	if len(a.Frames) == 0 {
		return ErrEmptySequence
	}
	page := components.NewPage()
	page.PageTitle = a.Title
	page.SetLayout(components.PageFlexLayout)

	overlayColors := []string{
		render.CategoryHex(frames.EmptyUnderKernel),
		render.CategoryHex(frames.FilledUnderKernel),
		render.CategoryHex(frames.EmptyPlain),
		render.CategoryHex(frames.FilledPlain),
	}
	outputColors := []string{render.OutputHex(frames.Produced), render.OutputHex(frames.Unproduced)}

	for _, f := range a.Frames {
		data, err := overlayData(f)
		if err != nil {
			return err
		}
		in := heatmap(
			fmt.Sprintf("Frame %d/%d", f.Index+1, len(a.Frames)),
			fmt.Sprintf("Input (%d,%d) stride %d padding %d", a.Caption.InputSize, a.Caption.InputSize, a.Caption.Stride, a.Caption.Padding),
			f.Overlay.Size(), overlayColors, data,
		)
		out := heatmap(
			fmt.Sprintf("Output %v", f.Cell),
			fmt.Sprintf("Output (%d,%d)", a.Caption.OutputSize, a.Caption.OutputSize),
			f.Output.Size(), outputColors, gridData(f.Output),
		)
		page.AddCharts(in, out)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func heatmap(title, subtitle string, size int, colors []string, data []opts.HeatMapData) *charts.HeatMap {
	axis := make([]string, size)
	for i := range axis {
		axis[i] = strconv.Itoa(i)
	}
	rows := make([]string, size)
	for i := range rows {
		rows[i] = strconv.Itoa(size - 1 - i)
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "360px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: axis}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: rows}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(false),
			Calculable: opts.Bool(false),
			Min:        0,
			Max:        float32(len(colors) - 1),
			InRange:    &opts.VisualMapInRange{Color: colors},
		}),
	)
	hm.SetXAxis(axis).AddSeries("cells", data)
	return hm
}

// overlayData emits (col, row, category) triples; row indices are flipped so
// grid row 0 sits at the top of the chart.
func overlayData(f frames.Frame) ([]opts.HeatMapData, error) {
	n := f.Overlay.Size()
	out := make([]opts.HeatMapData, 0, f.Overlay.Len())
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			cat, err := frames.Classify(f.Overlay.At(r, c))
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", f.Index, err)
			}
			out = append(out, opts.HeatMapData{Value: [3]interface{}{c, n - 1 - r, int(cat)}})
		}
	}
	return out, nil
}

func gridData(g grid.Grid) []opts.HeatMapData {
	n := g.Size()
	out := make([]opts.HeatMapData, 0, g.Len())
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out = append(out, opts.HeatMapData{Value: [3]interface{}{c, n - 1 - r, g.At(r, c)}})
		}
	}
	return out
}
