package geometry

import (
	"fmt"

	"github.com/banshee-data/convviz/internal/grid"
)

// Transform builds the operand grid the kernel traverses, before padding.
// Conv returns the all-filled input; transposed conv inserts Stride-1 empty
// rows and columns into each interior gap, never at the borders.
func Transform(cfg LayerConfig) grid.Grid {
	if cfg.Kind != TransposedConv || cfg.Stride <= 1 {
		return grid.New(cfg.InputSize, grid.Filled)
	}
	return Dilate(grid.New(cfg.InputSize, grid.Filled), cfg.Stride-1)
}

// Dilate inserts zeros empty rows and columns between every pair of
// adjacent cells of g.
func Dilate(g grid.Grid, zeros int) grid.Grid {
	n := g.Size()
	if zeros <= 0 || n == 0 {
		return g.Clone()
	}
	step := zeros + 1
	out := grid.New(n+(n-1)*zeros, grid.Empty)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out.Set(r*step, c*step, g.At(r, c))
		}
	}
	return out
}

// Layout is the static part of a traversal: the resolved geometry, the
// transformed input and the padded grid the kernel moves across. The padded
// grid is shared read-only by every frame.
type Layout struct {
	Geometry    Geometry
	Transformed grid.Grid
	Padded      grid.Grid
}

// Prepare resolves cfg and builds its padded operand grid.
func Prepare(cfg LayerConfig) (Layout, error) {
	g, err := Resolve(cfg)
	if err != nil {
		return Layout{}, err
	}
	in := Transform(cfg)
	padded, err := grid.Pad(in, g.EffectivePadding)
	if err != nil {
		return Layout{}, fmt.Errorf("pad input: %w", err)
	}
	return Layout{Geometry: g, Transformed: in, Padded: padded}, nil
}
