// Package config loads batch animation jobs from JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/convviz/internal/geometry"
)

// DefaultConfigPath is the gallery shipped with the repository.
const DefaultConfigPath = "config/gallery.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Defaults applied to fields a job file leaves out.
const (
	DefaultOutputDir     = "."
	DefaultFormat        = "gif"
	DefaultFrameDuration = 300 * time.Millisecond
)

// JobConfig is a batch of animations sharing output settings. Pointer fields
// are optional; the Get* methods supply defaults.
type JobConfig struct {
	OutputDir     *string `json:"output_dir,omitempty"`
	Format        *string `json:"format,omitempty"`
	FrameDuration *string `json:"frame_duration,omitempty"` // duration string like "300ms"
	Workers       *int    `json:"workers,omitempty"`
	Catalog       *string `json:"catalog,omitempty"`

	Animations []AnimationSpec `json:"animations"`
}

// AnimationSpec is one layer to animate. Omitted sizes fall back to the
// command-line defaults.
type AnimationSpec struct {
	Type    string  `json:"type"`
	Input   *int    `json:"input,omitempty"`
	Kernel  *int    `json:"kernel,omitempty"`
	Stride  *int    `json:"stride,omitempty"`
	Padding *int    `json:"padding,omitempty"`
	Format  *string `json:"format,omitempty"`
}

// LayerConfig converts the entry, filling defaults.
func (a AnimationSpec) LayerConfig() (geometry.LayerConfig, error) {
	cfg := geometry.DefaultLayerConfig()
	if a.Type != "" {
		kind, err := geometry.ParseKind(a.Type)
		if err != nil {
			return geometry.LayerConfig{}, err
		}
		cfg.Kind = kind
	}
	if a.Input != nil {
		cfg.InputSize = *a.Input
	}
	if a.Kernel != nil {
		cfg.KernelSize = *a.Kernel
	}
	if a.Stride != nil {
		cfg.Stride = *a.Stride
	}
	if a.Padding != nil {
		cfg.Padding = *a.Padding
	}
	return cfg, nil
}

// LoadJobConfig reads and validates a job file. The path must end in .json
// and the file must be under 1MB.
func LoadJobConfig(path string) (*JobConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseJobConfig(data)
}

// ParseJobConfig decodes and validates JSON job data.
func ParseJobConfig(data []byte) (*JobConfig, error) {
	cfg := &JobConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every field, and resolves every animation so that a bad
// entry is reported before anything is rendered.
func (c *JobConfig) Validate() error {
	if len(c.Animations) == 0 {
		return errors.New("animations must not be empty")
	}
	if c.Format != nil {
		if err := validFormat(*c.Format); err != nil {
			return err
		}
	}
	if c.FrameDuration != nil && *c.FrameDuration != "" {
		d, err := time.ParseDuration(*c.FrameDuration)
		if err != nil {
			return fmt.Errorf("invalid frame_duration '%s': %w", *c.FrameDuration, err)
		}
		if d < 10*time.Millisecond {
			return fmt.Errorf("frame_duration must be at least 10ms, got %s", d)
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	for i, a := range c.Animations {
		if a.Format != nil {
			if err := validFormat(*a.Format); err != nil {
				return fmt.Errorf("animations[%d]: %w", i, err)
			}
		}
		layer, err := a.LayerConfig()
		if err != nil {
			return fmt.Errorf("animations[%d]: %w", i, err)
		}
		if _, err := geometry.Resolve(layer); err != nil {
			return fmt.Errorf("animations[%d] %s: %w", i, layer.Name(), err)
		}
	}
	return nil
}

func validFormat(f string) error {
	switch strings.ToLower(f) {
	case "gif", "html":
		return nil
	}
	return fmt.Errorf("format must be gif or html, got %q", f)
}

// GetOutputDir returns the output directory.
func (c *JobConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return DefaultOutputDir
	}
	return *c.OutputDir
}

// GetFormat returns the default output format for the batch.
func (c *JobConfig) GetFormat() string {
	if c.Format == nil || *c.Format == "" {
		return DefaultFormat
	}
	return strings.ToLower(*c.Format)
}

// FormatFor returns the format of animation i, falling back to the batch's.
func (c *JobConfig) FormatFor(i int) string {
	if f := c.Animations[i].Format; f != nil && *f != "" {
		return strings.ToLower(*f)
	}
	return c.GetFormat()
}

// GetFrameDuration parses FrameDuration.
func (c *JobConfig) GetFrameDuration() time.Duration {
	if c.FrameDuration == nil || *c.FrameDuration == "" {
		return DefaultFrameDuration
	}
	d, err := time.ParseDuration(*c.FrameDuration)
	if err != nil {
		return DefaultFrameDuration // default on parse error
	}
	return d
}

// GetWorkers returns the render concurrency; 0 means one per frame.
func (c *JobConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetCatalog returns the catalog database path, or "" when not recording.
func (c *JobConfig) GetCatalog() string {
	if c.Catalog == nil {
		return ""
	}
	return *c.Catalog
}
