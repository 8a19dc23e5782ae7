package frames

import (
	"fmt"

	"github.com/banshee-data/convviz/internal/geometry"
	"github.com/banshee-data/convviz/internal/grid"
)

// Output mask cell values.
const (
	Produced   = 0
	Unproduced = 1
)

// Category classifies a cell of the combined overlay.
type Category int

const (
	EmptyUnderKernel Category = iota
	FilledUnderKernel
	EmptyPlain
	FilledPlain
)

var categoryNames = [...]string{
	EmptyUnderKernel:  "empty-under-kernel",
	FilledUnderKernel: "filled-under-kernel",
	EmptyPlain:        "empty",
	FilledPlain:       "filled",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Classify maps an overlay value (padded cell + mask cell) to its category.
// The mapping is fixed and independent of which values a frame happens to
// contain.
func Classify(v int) (Category, error) {
	switch v {
	case geometry.Sentinel + grid.Empty:
		return EmptyUnderKernel, nil
	case geometry.Sentinel + grid.Filled:
		return FilledUnderKernel, nil
	case grid.Empty:
		return EmptyPlain, nil
	case grid.Filled:
		return FilledPlain, nil
	}
	return 0, fmt.Errorf("overlay value %d has no category", v)
}

// Frame is one step of the traversal.
type Frame struct {
	// Index is the zero-based position in the sequence.
	Index int
	// Cell is the output cell this frame produces.
	Cell geometry.Position
	// Kernel is the footprint anchor on the padded grid.
	Kernel geometry.Position
	// Overlay is padded input + kernel mask.
	Overlay grid.Grid
	// Output is the output mask with every cell up to and including Cell
	// produced.
	Output grid.Grid
}

// Categories returns the overlay classified cell by cell, row-major.
func (f Frame) Categories() ([]Category, error) {
	out := make([]Category, 0, f.Overlay.Len())
	for i := 0; i < f.Overlay.Len(); i++ {
		c, err := Classify(f.Overlay.Flat(i))
		if err != nil {
			return nil, fmt.Errorf("frame %d cell %d: %w", f.Index, i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
