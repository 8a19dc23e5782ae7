package frames

import (
	"fmt"
	"iter"

	"github.com/banshee-data/convviz/internal/geometry"
	"github.com/banshee-data/convviz/internal/grid"
	"github.com/banshee-data/convviz/internal/monitoring"
)

// State is the lifecycle of a Sequencer.
type State int

const (
	NotStarted State = iota
	Traversing
	Done
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Traversing:
		return "traversing"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Sequencer walks the kernel footprint across a padded grid. It is forward
// only; build a new one to traverse again.
type Sequencer struct {
	padded grid.Grid
	geom   geometry.Geometry
	mask   *geometry.KernelMask
	output grid.Grid

	state State
	i, j  int
	index int
}

// NewSequencer prepares a traversal of layout. The layout must come from a
// successful geometry.Prepare.
func NewSequencer(layout geometry.Layout) (*Sequencer, error) {
	g := layout.Geometry
	if g.OutputSize < 1 || g.TraversalStride < 1 {
		return nil, fmt.Errorf("%w: unresolved geometry", geometry.ErrInvalidConfiguration)
	}
	if layout.Padded.Size() != g.PaddedSize {
		return nil, fmt.Errorf("padded grid is %d, geometry expects %d", layout.Padded.Size(), g.PaddedSize)
	}
	mask, err := geometry.NewKernelMask(g.PaddedSize, g.Config.KernelSize)
	if err != nil {
		return nil, err
	}
	return &Sequencer{
		padded: layout.Padded,
		geom:   g,
		mask:   mask,
		output: grid.New(g.OutputSize, Unproduced),
	}, nil
}

// State returns the current lifecycle state.
func (s *Sequencer) State() State { return s.state }

// Len returns the total number of frames the traversal emits.
func (s *Sequencer) Len() int { return s.geom.Frames() }

// Next returns the next frame, or false once the traversal is done.
func (s *Sequencer) Next() (Frame, bool) {
	if s.state == Done {
		return Frame{}, false
	}
	s.state = Traversing

	s.output.Set(s.i, s.j, Produced)
	// Both masks are sized from the same geometry, so Add cannot fail.
	overlay, _ := grid.Add(s.padded, s.mask.Grid())
	f := Frame{
		Index:   s.index,
		Cell:    geometry.Position{Row: s.i, Col: s.j},
		Kernel:  s.mask.Position(),
		Overlay: overlay,
		Output:  s.output.Clone(),
	}
	s.index++
	monitoring.Debugf("frames: %s frame %d cell %v kernel %v", s.geom.Config.Name(), f.Index, f.Cell, f.Kernel)

	n := s.geom.OutputSize
	if s.i == n-1 && s.j == n-1 {
		s.state = Done
		monitoring.Logf("frames: traversal of %s done after %d frames", s.geom.Config.Name(), s.index)
		return f, true
	}

	s.mask.Shift(ShiftAmount(s.j, s.geom.TraversalStride, s.geom.Config.KernelSize, s.geom.PaddedSize))
	s.j++
	if s.j == n {
		s.j = 0
		s.i++
	}
	return f, true
}

// All yields the remaining frames lazily. Breaking out of the loop stops the
// traversal where it is; a later call resumes from there.
func (s *Sequencer) All() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for {
			f, ok := s.Next()
			if !ok || !yield(f) {
				return
			}
		}
	}
}

// ShiftAmount is the number of flattened cells the footprint moves after
// output column j. Inside a row it advances by stride; when the footprint
// reaches the right edge it jumps to the start of the next kernel row.
func ShiftAmount(j, stride, kernel, padded int) int {
	if j*stride+kernel >= padded {
		return kernel + (stride-1)*padded
	}
	return stride
}

// KernelOffset is the closed-form footprint anchor for output cell (i, j).
// It lets consumers locate any frame without replaying the traversal.
func KernelOffset(i, j, stride int) geometry.Position {
	return geometry.Position{Row: i * stride, Col: j * stride}
}

// Collect resolves cfg and returns its full frame sequence.
func Collect(cfg geometry.LayerConfig) (geometry.Layout, []Frame, error) {
	layout, err := geometry.Prepare(cfg)
	if err != nil {
		return geometry.Layout{}, nil, err
	}
	seq, err := NewSequencer(layout)
	if err != nil {
		return geometry.Layout{}, nil, err
	}
	out := make([]Frame, 0, seq.Len())
	for f := range seq.All() {
		out = append(out, f)
	}
	return layout, out, nil
}
