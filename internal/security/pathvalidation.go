// Package security keeps generated artifacts inside the directory the user
// chose for them.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a path resolves outside its base directory.
var ErrPathTraversal = errors.New("path escapes output directory")

// ValidatePathWithinDirectory checks that filePath, once cleaned and made
// absolute, stays inside dir. Existing symlinks on either side are resolved
// first so a link cannot smuggle the path out.
func ValidatePathWithinDirectory(filePath, dir string) error {
	absPath, err := canonical(filePath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", filePath, err)
	}
	absDir, err := canonical(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathTraversal, filePath)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s is outside %s", ErrPathTraversal, filePath, dir)
	}
	return nil
}

// canonical returns the absolute path with the longest existing prefix
// resolved through symlinks.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", err
	}
	rest := ""
	for cur := abs; ; cur = filepath.Dir(cur) {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(cur), rest)
	}
}

// SanitizeFilename replaces anything other than ASCII letters, digits, dot,
// underscore and dash with a single underscore, and caps the length.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '_':
			b.WriteRune(r)
			lastUnderscore = true
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

// OutputPath joins a sanitised file name onto dir and validates the result.
func OutputPath(dir, name string) (string, error) {
	p := filepath.Join(dir, SanitizeFilename(name))
	if err := ValidatePathWithinDirectory(p, dir); err != nil {
		return "", err
	}
	return p, nil
}
