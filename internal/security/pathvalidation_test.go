package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"transposed_conv_K3S2P1.gif", "transposed_conv_K3S2P1.gif"},
		{"../../etc/passwd", "etc_passwd"},
		{"a b  c.html", "a_b_c.html"},
		{"", "unknown"},
		{"...", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestValidatePathWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, ValidatePathWithinDirectory(filepath.Join(dir, "x.gif"), dir))
	assert.NoError(t, ValidatePathWithinDirectory(filepath.Join(dir, "new", "x.gif"), dir))

	err := ValidatePathWithinDirectory(filepath.Join(dir, "..", "x.gif"), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathTraversal))
}

func TestValidatePathWithinDirectory_Symlink(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	link := filepath.Join(dir, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	err := ValidatePathWithinDirectory(filepath.Join(link, "x.gif"), dir)
	assert.True(t, errors.Is(err, ErrPathTraversal))
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	p, err := OutputPath(dir, "conv_K3S1P0.gif")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conv_K3S1P0.gif"), p)

	p, err = OutputPath(dir, "../escape.gif")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.gif"), p)
}
