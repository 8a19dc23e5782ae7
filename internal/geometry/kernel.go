package geometry

import (
	"fmt"

	"github.com/banshee-data/convviz/internal/grid"
)

// Sentinel marks kernel footprint cells. Added to an Empty (0) or Filled (1)
// input cell it yields -2 or -1, both distinct from the uncovered 0 and 1.
const Sentinel = -2

// Position is the top-left corner of the kernel footprint on the padded grid.
type Position struct {
	Row, Col int
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// KernelMask tracks the kernel footprint over a padded grid. The mask grid is
// a pure function of the tracked position; nothing is rotated in place.
type KernelMask struct {
	size   int
	kernel int
	pos    Position
}

// NewKernelMask returns a mask of paddedSize with the kernel×kernel block
// anchored at the origin.
func NewKernelMask(paddedSize, kernelSize int) (*KernelMask, error) {
	if kernelSize < 1 || kernelSize > paddedSize {
		return nil, fmt.Errorf("%w: kernel %d does not fit padded grid %d", ErrInvalidConfiguration, kernelSize, paddedSize)
	}
	return &KernelMask{size: paddedSize, kernel: kernelSize}, nil
}

// Size returns the side of the padded grid the mask covers.
func (m *KernelMask) Size() int { return m.size }

// KernelSize returns the side of the footprint block.
func (m *KernelMask) KernelSize() int { return m.kernel }

// Position returns the current footprint anchor.
func (m *KernelMask) Position() Position { return m.pos }

// Shift moves the footprint n cells along the row-major flattened grid,
// wrapping circularly past the last cell.
func (m *KernelMask) Shift(n int) {
	total := m.size * m.size
	flat := ((m.pos.Row*m.size+m.pos.Col+n)%total + total) % total
	m.pos = Position{Row: flat / m.size, Col: flat % m.size}
}

// Covers reports whether (row, col) lies under the footprint.
func (m *KernelMask) Covers(row, col int) bool {
	total := m.size * m.size
	anchor := m.pos.Row*m.size + m.pos.Col
	flat := row*m.size + col
	for dr := 0; dr < m.kernel; dr++ {
		start := (anchor + dr*m.size) % total
		off := (flat - start + total) % total
		if off < m.kernel {
			return true
		}
	}
	return false
}

// Grid projects the mask: Sentinel under the footprint, 0 elsewhere. Block
// rows are placed on the flattened grid, so a footprint that overruns the
// right edge wraps onto the following row exactly as a flat roll would.
func (m *KernelMask) Grid() grid.Grid {
	out := grid.New(m.size, 0)
	total := m.size * m.size
	anchor := m.pos.Row*m.size + m.pos.Col
	for dr := 0; dr < m.kernel; dr++ {
		for dc := 0; dc < m.kernel; dc++ {
			flat := (anchor + dr*m.size + dc) % total
			out.Set(flat/m.size, flat%m.size, Sentinel)
		}
	}
	return out
}
