package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is the only error kind the geometry core produces.
// It is unrecoverable for the requested parameters and is always reported
// before any frame is generated.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Geometry is the resolved traversal geometry of a LayerConfig.
type Geometry struct {
	Config LayerConfig

	// OutputSize is the side of the square output grid.
	OutputSize int
	// EffectiveStride is the stride the kernel moves with across the padded
	// grid. TraversalStride carries the same value under the name the
	// sequencer uses.
	EffectiveStride int
	TraversalStride int
	// EffectivePadding is the ring width actually added around the
	// transformed input.
	EffectivePadding int
	// ZeroInsertion is the number of zero rows/columns inserted in each
	// interior gap of the input (transposed conv only).
	ZeroInsertion int
	// TransformedSize is the side of the input after zero insertion.
	TransformedSize int
	// PaddedSize is TransformedSize + 2*EffectivePadding.
	PaddedSize int
}

// Frames returns the number of frames a traversal emits.
func (g Geometry) Frames() int { return g.OutputSize * g.OutputSize }

// Resolve validates cfg and derives its traversal geometry.
func Resolve(cfg LayerConfig) (Geometry, error) {
	if err := validate(cfg); err != nil {
		return Geometry{}, err
	}

	g := Geometry{Config: cfg}
	switch cfg.Kind {
	case Conv:
		num := cfg.InputSize + 2*cfg.Padding - cfg.KernelSize
		if num < 0 {
			return Geometry{}, invalidf("kernel %d does not fit padded input %d", cfg.KernelSize, cfg.InputSize+2*cfg.Padding)
		}
		if num%cfg.Stride != 0 {
			return Geometry{}, invalidf("output size (%d+2*%d-%d)/%d+1 = %s is not an integer",
				cfg.InputSize, cfg.Padding, cfg.KernelSize, cfg.Stride, ratio(num+cfg.Stride, cfg.Stride))
		}
		g.OutputSize = num/cfg.Stride + 1
		g.EffectiveStride = cfg.Stride
		g.EffectivePadding = cfg.Padding
		g.ZeroInsertion = 0

	case TransposedConv:
		g.EffectiveStride = 1
		g.EffectivePadding = cfg.KernelSize - cfg.Padding - 1
		if g.EffectivePadding < 0 {
			return Geometry{}, invalidf("padding %d exceeds kernel support %d", cfg.Padding, cfg.KernelSize-1)
		}
		g.ZeroInsertion = cfg.Stride - 1
		g.OutputSize = (cfg.InputSize-1)*cfg.Stride + cfg.KernelSize - 2*cfg.Padding
	}

	g.TraversalStride = g.EffectiveStride
	g.TransformedSize = cfg.InputSize + (cfg.InputSize-1)*g.ZeroInsertion
	g.PaddedSize = g.TransformedSize + 2*g.EffectivePadding

	if g.OutputSize < 1 {
		return Geometry{}, invalidf("output size %d is not positive", g.OutputSize)
	}
	if g.PaddedSize < cfg.KernelSize {
		return Geometry{}, invalidf("kernel %d does not fit padded input %d", cfg.KernelSize, g.PaddedSize)
	}
	return g, nil
}

func validate(cfg LayerConfig) error {
	if cfg.Kind != Conv && cfg.Kind != TransposedConv {
		return invalidf("unknown layer kind %v", cfg.Kind)
	}
	if cfg.InputSize < 1 {
		return invalidf("input size must be >= 1, got %d", cfg.InputSize)
	}
	if cfg.KernelSize < 1 {
		return invalidf("kernel size must be >= 1, got %d", cfg.KernelSize)
	}
	if cfg.Stride < 1 {
		return invalidf("stride must be >= 1, got %d", cfg.Stride)
	}
	if cfg.Padding < 0 {
		return invalidf("padding must be >= 0, got %d", cfg.Padding)
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// ratio formats num/den in lowest terms.
func ratio(num, den int) string {
	a, b := num, den
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		a = -a
	}
	if a > 1 {
		num, den = num/a, den/a
	}
	if den == 1 {
		return fmt.Sprintf("%d", num)
	}
	return fmt.Sprintf("%d/%d", num, den)
}
