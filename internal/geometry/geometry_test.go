package geometry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/convviz/internal/grid"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"conv", Conv, false},
		{"CONV", Conv, false},
		{"t_conv", TransposedConv, false},
		{"transposed_conv", TransposedConv, false},
		{" tconv ", TransposedConv, false},
		{"deconv", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayerConfigName(t *testing.T) {
	cfg := LayerConfig{Kind: TransposedConv, InputSize: 3, KernelSize: 3, Stride: 2, Padding: 1}
	assert.Equal(t, "transposed_conv_K3S2P1", cfg.Name())
	cfg.Kind = Conv
	assert.Equal(t, "conv_K3S2P1", cfg.Name())
}

func TestResolve_ConvMatchesFormula(t *testing.T) {
	for input := 1; input <= 7; input++ {
		for kernel := 1; kernel <= 5; kernel++ {
			for stride := 1; stride <= 3; stride++ {
				for padding := 0; padding <= 2; padding++ {
					cfg := LayerConfig{Kind: Conv, InputSize: input, KernelSize: kernel, Stride: stride, Padding: padding}
					num := input + 2*padding - kernel
					g, err := Resolve(cfg)
					if num < 0 || num%stride != 0 {
						require.Error(t, err, cfg.String())
						assert.True(t, errors.Is(err, ErrInvalidConfiguration), cfg.String())
						continue
					}
					require.NoError(t, err, cfg.String())
					assert.Equal(t, num/stride+1, g.OutputSize, cfg.String())
					assert.Equal(t, stride, g.EffectiveStride)
					assert.Equal(t, stride, g.TraversalStride)
					assert.Equal(t, padding, g.EffectivePadding)
					assert.Equal(t, input, g.TransformedSize)
					assert.Equal(t, input+2*padding, g.PaddedSize)
					assert.Equal(t, g.OutputSize*g.OutputSize, g.Frames())
				}
			}
		}
	}
}

func TestResolve_TransposedMatchesFormula(t *testing.T) {
	for input := 1; input <= 5; input++ {
		for kernel := 1; kernel <= 4; kernel++ {
			for stride := 1; stride <= 3; stride++ {
				for padding := 0; padding < kernel; padding++ {
					cfg := LayerConfig{Kind: TransposedConv, InputSize: input, KernelSize: kernel, Stride: stride, Padding: padding}
					want := (input-1)*stride + kernel - 2*padding
					g, err := Resolve(cfg)
					if want < 1 {
						require.Error(t, err, cfg.String())
						continue
					}
					require.NoError(t, err, cfg.String())
					assert.Equal(t, want, g.OutputSize, cfg.String())
					assert.Equal(t, 1, g.TraversalStride)
					assert.Equal(t, kernel-padding-1, g.EffectivePadding)
					assert.Equal(t, stride-1, g.ZeroInsertion)
					assert.Equal(t, input+(input-1)*(stride-1), g.TransformedSize)
					// The equivalent direct convolution produces the same output size.
					assert.Equal(t, g.PaddedSize-kernel+1, g.OutputSize, cfg.String())
				}
			}
		}
	}
}

func TestResolve_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  LayerConfig
	}{
		{"non-integer output", LayerConfig{Kind: Conv, InputSize: 4, KernelSize: 3, Stride: 2, Padding: 0}},
		{"kernel larger than padded input", LayerConfig{Kind: Conv, InputSize: 2, KernelSize: 5, Stride: 1, Padding: 1}},
		{"zero stride", LayerConfig{Kind: Conv, InputSize: 3, KernelSize: 3, Stride: 0, Padding: 0}},
		{"negative stride", LayerConfig{Kind: TransposedConv, InputSize: 3, KernelSize: 3, Stride: -1, Padding: 0}},
		{"negative padding", LayerConfig{Kind: Conv, InputSize: 3, KernelSize: 3, Stride: 1, Padding: -1}},
		{"zero input", LayerConfig{Kind: Conv, InputSize: 0, KernelSize: 1, Stride: 1, Padding: 0}},
		{"zero kernel", LayerConfig{Kind: Conv, InputSize: 3, KernelSize: 0, Stride: 1, Padding: 0}},
		{"padding beyond kernel support", LayerConfig{Kind: TransposedConv, InputSize: 3, KernelSize: 3, Stride: 2, Padding: 3}},
		{"non-positive transposed output", LayerConfig{Kind: TransposedConv, InputSize: 1, KernelSize: 2, Stride: 1, Padding: 1}},
		{"unknown kind", LayerConfig{Kind: Kind(7), InputSize: 3, KernelSize: 3, Stride: 1, Padding: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))
		})
	}
}

func TestResolve_ReportsRationalOutput(t *testing.T) {
	_, err := Resolve(LayerConfig{Kind: Conv, InputSize: 4, KernelSize: 3, Stride: 2, Padding: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3/2")
}

func TestResolve_ScenarioB(t *testing.T) {
	g, err := Resolve(LayerConfig{Kind: Conv, InputSize: 4, KernelSize: 3, Stride: 1, Padding: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, g.OutputSize)
	assert.Equal(t, 4, g.Frames())
}

func TestResolve_ScenarioC(t *testing.T) {
	g, err := Resolve(LayerConfig{Kind: TransposedConv, InputSize: 2, KernelSize: 2, Stride: 2, Padding: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, g.TransformedSize)
	assert.Equal(t, 1, g.EffectivePadding)
	assert.Equal(t, 4, g.OutputSize)
	assert.Equal(t, 5, g.PaddedSize)
	assert.Equal(t, 16, g.Frames())
}

func TestTransform(t *testing.T) {
	conv := Transform(LayerConfig{Kind: Conv, InputSize: 3, KernelSize: 3, Stride: 2, Padding: 1})
	assert.True(t, conv.Equal(grid.New(3, grid.Filled)))

	tconv := Transform(LayerConfig{Kind: TransposedConv, InputSize: 3, KernelSize: 3, Stride: 3, Padding: 1})
	want := [][]int{
		{1, 0, 0, 1, 0, 0, 1},
		{0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0},
		{1, 0, 0, 1, 0, 0, 1},
		{0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0},
		{1, 0, 0, 1, 0, 0, 1},
	}
	if diff := cmp.Diff(want, tconv.Rows()); diff != "" {
		t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
	}

	unit := Transform(LayerConfig{Kind: TransposedConv, InputSize: 2, KernelSize: 2, Stride: 1, Padding: 0})
	assert.True(t, unit.Equal(grid.New(2, grid.Filled)))
}

func TestTransform_ZeroInsertionOnlyBetweenCells(t *testing.T) {
	for input := 1; input <= 5; input++ {
		for stride := 1; stride <= 4; stride++ {
			cfg := LayerConfig{Kind: TransposedConv, InputSize: input, KernelSize: 1, Stride: stride}
			g := Transform(cfg)
			size := input + (input-1)*(stride-1)
			require.Equal(t, size, g.Size())
			assert.Equal(t, input*input, g.Count(grid.Filled))
			// All four corners hold original cells.
			assert.Equal(t, grid.Filled, g.At(0, 0))
			assert.Equal(t, grid.Filled, g.At(0, size-1))
			assert.Equal(t, grid.Filled, g.At(size-1, 0))
			assert.Equal(t, grid.Filled, g.At(size-1, size-1))
		}
	}
}

func TestTransform_Idempotent(t *testing.T) {
	cfg := LayerConfig{Kind: TransposedConv, InputSize: 4, KernelSize: 3, Stride: 2, Padding: 1}
	a, errA := Prepare(cfg)
	b, errB := Prepare(cfg)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a.Geometry, b.Geometry)
	assert.True(t, a.Transformed.Equal(b.Transformed))
	assert.True(t, a.Padded.Equal(b.Padded))
}

func TestPrepare(t *testing.T) {
	l, err := Prepare(LayerConfig{Kind: TransposedConv, InputSize: 2, KernelSize: 2, Stride: 2, Padding: 0})
	require.NoError(t, err)
	want := [][]int{
		{0, 0, 0, 0, 0},
		{0, 1, 0, 1, 0},
		{0, 0, 0, 0, 0},
		{0, 1, 0, 1, 0},
		{0, 0, 0, 0, 0},
	}
	if diff := cmp.Diff(want, l.Padded.Rows()); diff != "" {
		t.Errorf("padded mismatch (-want +got):\n%s", diff)
	}

	_, err = Prepare(LayerConfig{Kind: Conv, InputSize: 4, KernelSize: 3, Stride: 2})
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}
