package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem(t *testing.T) {
	m := NewMemoryFileSystem()
	require.NoError(t, m.MkdirAll("out/gifs", 0o755))
	assert.True(t, m.Exists("out"))
	assert.True(t, m.Exists("out/gifs"))

	w, err := m.Create("out/gifs/conv_K3S1P0.gif")
	require.NoError(t, err)
	_, err = w.Write([]byte("GIF89a"))
	require.NoError(t, err)
	assert.False(t, m.Exists("out/gifs/conv_K3S1P0.gif"), "not visible before close")
	require.NoError(t, w.Close())

	data, err := m.ReadFile("out/gifs/./conv_K3S1P0.gif")
	require.NoError(t, err)
	assert.Equal(t, "GIF89a", string(data))
	assert.Equal(t, []string{filepath.Clean("out/gifs/conv_K3S1P0.gif")}, m.Files())

	_, err = m.ReadFile("missing")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOSFileSystem(t *testing.T) {
	dir := t.TempDir()
	var o OSFileSystem
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, o.MkdirAll(sub, 0o755))
	assert.True(t, o.Exists(sub))

	w, err := o.Create(filepath.Join(sub, "x.html"))
	require.NoError(t, err)
	_, err = w.Write([]byte("<html>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := o.ReadFile(filepath.Join(sub, "x.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
	assert.False(t, o.Exists(filepath.Join(dir, "nope")))
}
