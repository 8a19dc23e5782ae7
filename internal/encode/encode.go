// Package encode turns a rendered frame sequence into a single artifact:
// an animated GIF or an interactive HTML page.
package encode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/banshee-data/convviz/internal/frames"
	"github.com/banshee-data/convviz/internal/fsutil"
	"github.com/banshee-data/convviz/internal/render"
)

// DefaultDelay is how long each frame stays on screen.
const DefaultDelay = 300 * time.Millisecond

// ErrEmptySequence is returned when there is nothing to encode.
var ErrEmptySequence = errors.New("no frames to encode")

// Animation is everything an encoder may need. Images is index-aligned with
// Frames; encoders that draw from frame data ignore it.
type Animation struct {
	Title   string
	Caption render.Caption
	Frames  []frames.Frame
	Images  []image.Image
	Delay   time.Duration
}

// Encoder writes an Animation in one format.
type Encoder interface {
	// Ext is the file extension without the dot.
	Ext() string
	// NeedsImages reports whether Animation.Images must be populated.
	NeedsImages() bool
	Encode(w io.Writer, a Animation) error
}

// ForFormat returns the encoder for "gif" or "html".
func ForFormat(format string) (Encoder, error) {
	switch strings.ToLower(format) {
	case "", "gif":
		return GIF{}, nil
	case "html":
		return HTML{}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q (want gif or html)", format)
}

// WriteFile encodes a into path on fsys. The file is only created once
// encoding has succeeded in memory.
func WriteFile(fsys fsutil.FileSystem, path string, enc Encoder, a Animation) error {
	var buf bytes.Buffer
	if err := enc.Encode(&buf, a); err != nil {
		return err
	}
	w, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
