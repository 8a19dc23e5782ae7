// Package grid holds the square integer grids the visualiser works on:
// raw and dilated inputs, the padded input, kernel masks and output masks.
package grid

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Cell values shared by every grid in the pipeline.
const (
	Empty  = 0
	Filled = 1
)

// ErrNegativePadding is returned by Pad when asked for fewer than zero rings.
var ErrNegativePadding = errors.New("padding must be non-negative")

// Grid is a square, row-major grid of integers. The zero value is an empty
// 0×0 grid.
type Grid struct {
	size  int
	cells []int
}

// New returns a size×size grid with every cell set to fill.
func New(size, fill int) Grid {
	if size < 0 {
		size = 0
	}
	g := Grid{size: size, cells: make([]int, size*size)}
	if fill != 0 {
		for i := range g.cells {
			g.cells[i] = fill
		}
	}
	return g
}

// FromRows builds a grid from nested rows. Rows must form a square.
func FromRows(rows [][]int) (Grid, error) {
	n := len(rows)
	g := New(n, 0)
	for r, row := range rows {
		if len(row) != n {
			return Grid{}, fmt.Errorf("row %d has %d cells, want %d", r, len(row), n)
		}
		copy(g.cells[r*n:(r+1)*n], row)
	}
	return g, nil
}

// Size returns the number of rows (equal to the number of columns).
func (g Grid) Size() int { return g.size }

// Len returns the number of cells.
func (g Grid) Len() int { return len(g.cells) }

// At returns the value at (row, col).
func (g Grid) At(row, col int) int {
	return g.cells[row*g.size+col]
}

// Set writes v at (row, col).
func (g Grid) Set(row, col, v int) {
	g.cells[row*g.size+col] = v
}

// Flat returns the value at a row-major flattened index.
func (g Grid) Flat(i int) int { return g.cells[i] }

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	c := Grid{size: g.size, cells: make([]int, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Rows returns a copy of the grid as nested rows.
func (g Grid) Rows() [][]int {
	rows := make([][]int, g.size)
	for r := range rows {
		rows[r] = make([]int, g.size)
		copy(rows[r], g.cells[r*g.size:(r+1)*g.size])
	}
	return rows
}

// Equal reports whether both grids have the same size and cells.
func (g Grid) Equal(o Grid) bool {
	if g.size != o.size {
		return false
	}
	for i, v := range g.cells {
		if o.cells[i] != v {
			return false
		}
	}
	return true
}

// Count returns how many cells hold v.
func (g Grid) Count(v int) int {
	n := 0
	for _, c := range g.cells {
		if c == v {
			n++
		}
	}
	return n
}

// Values returns the distinct values present, in ascending order.
func (g Grid) Values() []int {
	seen := make(map[int]bool)
	var out []int
	for _, c := range g.cells {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// Add returns the elementwise sum of two grids of the same size.
func Add(a, b Grid) (Grid, error) {
	if a.size != b.size {
		return Grid{}, fmt.Errorf("grid size mismatch: %d vs %d", a.size, b.size)
	}
	sum := New(a.size, 0)
	for i := range sum.cells {
		sum.cells[i] = a.cells[i] + b.cells[i]
	}
	return sum, nil
}

// Pad surrounds g with padding rings of Empty cells, producing a grid of
// size g.Size()+2*padding.
func Pad(g Grid, padding int) (Grid, error) {
	if padding < 0 {
		return Grid{}, fmt.Errorf("pad by %d: %w", padding, ErrNegativePadding)
	}
	if padding == 0 {
		return g.Clone(), nil
	}
	out := New(g.size+2*padding, Empty)
	for r := 0; r < g.size; r++ {
		copy(out.cells[(r+padding)*out.size+padding:], g.cells[r*g.size:(r+1)*g.size])
	}
	return out, nil
}

// String renders the grid one row per line, for logs and test failures.
func (g Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%2d", g.At(r, c))
		}
		if r < g.size-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
