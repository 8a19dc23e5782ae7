package geometry

import (
	"fmt"
	"strings"
)

// Kind selects the layer being visualised.
type Kind int

const (
	Conv Kind = iota
	TransposedConv
)

// String returns the canonical name used in flags, logs and file names.
func (k Kind) String() string {
	switch k {
	case Conv:
		return "conv"
	case TransposedConv:
		return "transposed_conv"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts "conv", "transposed_conv" and the short alias "t_conv".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conv":
		return Conv, nil
	case "transposed_conv", "t_conv", "tconv":
		return TransposedConv, nil
	}
	return 0, fmt.Errorf("%w: unknown layer type %q (want conv or t_conv)", ErrInvalidConfiguration, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// LayerConfig is the user-chosen layer. It is never mutated after creation.
type LayerConfig struct {
	Kind       Kind `json:"type"`
	InputSize  int  `json:"input"`
	KernelSize int  `json:"kernel"`
	Stride     int  `json:"stride"`
	Padding    int  `json:"padding"`
}

// DefaultLayerConfig matches the command-line defaults.
func DefaultLayerConfig() LayerConfig {
	return LayerConfig{
		Kind:       TransposedConv,
		InputSize:  3,
		KernelSize: 3,
		Stride:     2,
		Padding:    1,
	}
}

// Name returns "{kind}_K{kernel}S{stride}P{padding}", the stem of every
// generated artifact.
func (c LayerConfig) Name() string {
	return fmt.Sprintf("%s_K%dS%dP%d", c.Kind, c.KernelSize, c.Stride, c.Padding)
}

func (c LayerConfig) String() string {
	return fmt.Sprintf("%s input=%d kernel=%d stride=%d padding=%d",
		c.Kind, c.InputSize, c.KernelSize, c.Stride, c.Padding)
}
