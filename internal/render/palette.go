package render

import (
	"fmt"
	"image/color"

	"github.com/banshee-data/convviz/internal/frames"
)

// Overlay colours, indexed by frames.Category.
var overlayColors = [...]string{
	frames.EmptyUnderKernel:  "#DD8047",
	frames.FilledUnderKernel: "#CD8B67",
	frames.EmptyPlain:        "#A6A6A6",
	frames.FilledPlain:       "#6ABCFF",
}

// Output colours, indexed by frames.Produced / frames.Unproduced.
var outputColors = [...]string{
	frames.Produced:   "#A5AB81",
	frames.Unproduced: "#DBDDCD",
}

// CategoryHex returns the hex colour of an overlay category.
func CategoryHex(c frames.Category) string { return overlayColors[c] }

// OutputHex returns the hex colour of an output mask value.
func OutputHex(v int) string { return outputColors[v] }

// CategoryColor returns the colour of an overlay category.
func CategoryColor(c frames.Category) color.Color { return overlayPalette[c] }

// OutputColor returns the colour of an output mask value.
func OutputColor(v int) color.Color { return outputPalette[v] }

// fixedPalette is a categorical palette.Palette.
type fixedPalette []color.Color

func (p fixedPalette) Colors() []color.Color { return p }

func mustPalette(hexes []string) fixedPalette {
	p := make(fixedPalette, len(hexes))
	for i, h := range hexes {
		c, err := parseHex(h)
		if err != nil {
			panic(err)
		}
		p[i] = c
	}
	return p
}

func parseHex(s string) (color.RGBA, error) {
	var c color.RGBA
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("bad colour %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("bad colour %q: %w", s, err)
	}
	c.A = 0xff
	return c, nil
}

var (
	overlayPalette = mustPalette(overlayColors[:])
	outputPalette  = mustPalette(outputColors[:])
)
