// Package animate runs the whole pipeline for one layer: resolve the
// geometry, sequence the frames, render them, encode the artifact, write it
// and optionally record it in the catalog.
package animate

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/banshee-data/convviz/internal/catalog"
	"github.com/banshee-data/convviz/internal/config"
	"github.com/banshee-data/convviz/internal/encode"
	"github.com/banshee-data/convviz/internal/frames"
	"github.com/banshee-data/convviz/internal/fsutil"
	"github.com/banshee-data/convviz/internal/geometry"
	"github.com/banshee-data/convviz/internal/monitoring"
	"github.com/banshee-data/convviz/internal/render"
	"github.com/banshee-data/convviz/internal/security"
	"github.com/banshee-data/convviz/internal/timeutil"
)

// Job is one artifact to generate.
type Job struct {
	Layer      geometry.LayerConfig
	Format     string
	OutputDir  string
	FrameDelay time.Duration
	// Workers bounds concurrent frame rendering; 0 means one per frame.
	Workers int
	Render  render.Options
}

// Result describes a written artifact.
type Result struct {
	Path     string
	Geometry geometry.Geometry
	Frames   int
	// RenderID is the catalog ID, empty when no catalog is attached.
	RenderID string
}

// Recorder stores generated artifacts. *catalog.Catalog implements it.
type Recorder interface {
	Record(ctx context.Context, e catalog.Entry) (catalog.Entry, error)
}

// Generator runs jobs against a filesystem and an optional recorder.
type Generator struct {
	FS       fsutil.FileSystem
	Recorder Recorder
	// Clock times each job; nil uses the system clock.
	Clock timeutil.Clock
}

// NewGenerator writes to the real filesystem. rec may be nil.
func NewGenerator(rec Recorder) *Generator {
	return &Generator{FS: fsutil.OSFileSystem{}, Recorder: rec, Clock: timeutil.RealClock{}}
}

func (g *Generator) clock() timeutil.Clock {
	if g.Clock == nil {
		return timeutil.RealClock{}
	}
	return g.Clock
}

// FileName returns "{kind}_K{k}S{s}P{p}.{ext}".
func FileName(layer geometry.LayerConfig, ext string) string {
	return layer.Name() + "." + ext
}

// Generate produces one artifact. An invalid layer fails before any file or
// directory is touched.
func (g *Generator) Generate(ctx context.Context, job Job) (Result, error) {
	layout, err := geometry.Prepare(job.Layer)
	if err != nil {
		return Result{}, err
	}
	enc, err := encode.ForFormat(job.Format)
	if err != nil {
		return Result{}, err
	}
	start := g.clock().Now()
	geom := layout.Geometry
	monitoring.Logf("Layer %s: output %dx%d, %d frames", job.Layer, geom.OutputSize, geom.OutputSize, geom.Frames())

	seq, err := frames.NewSequencer(layout)
	if err != nil {
		return Result{}, err
	}
	all := make([]frames.Frame, 0, seq.Len())
	for f := range seq.All() {
		all = append(all, f)
	}

	caption := render.CaptionFor(geom)
	var imgs []image.Image
	if enc.NeedsImages() {
		imgs, err = render.NewRenderer(caption, job.Render).RenderAll(ctx, all, job.Workers)
		if err != nil {
			return Result{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	dir := job.OutputDir
	if dir == "" {
		dir = config.DefaultOutputDir
	}
	if err := g.FS.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}
	path, err := security.OutputPath(dir, FileName(job.Layer, enc.Ext()))
	if err != nil {
		return Result{}, err
	}

	delay := job.FrameDelay
	if delay <= 0 {
		delay = encode.DefaultDelay
	}
	anim := encode.Animation{
		Title:   job.Layer.Name(),
		Caption: caption,
		Frames:  all,
		Images:  imgs,
		Delay:   delay,
	}
	if err := encode.WriteFile(g.FS, path, enc, anim); err != nil {
		return Result{}, err
	}
	monitoring.Logf("✓ Created: %s (%d frames in %s)", path, len(all), g.clock().Since(start).Round(time.Millisecond))

	res := Result{Path: path, Geometry: geom, Frames: len(all)}
	if g.Recorder != nil {
		e, err := g.Recorder.Record(ctx, catalog.EntryFor(geom, enc.Ext(), path, delay))
		if err != nil {
			return res, err
		}
		res.RenderID = e.ID
	}
	return res, nil
}

// GenerateAll runs jobs in order, stopping at the first failure. Results for
// the jobs that completed are returned alongside the error.
func (g *Generator) GenerateAll(ctx context.Context, jobs []Job) ([]Result, error) {
	out := make([]Result, 0, len(jobs))
	for i, job := range jobs {
		res, err := g.Generate(ctx, job)
		if err != nil {
			return out, fmt.Errorf("job %d (%s): %w", i, job.Layer.Name(), err)
		}
		out = append(out, res)
	}
	return out, nil
}

// JobsFromConfig expands a batch file into jobs.
func JobsFromConfig(cfg *config.JobConfig) ([]Job, error) {
	jobs := make([]Job, 0, len(cfg.Animations))
	for i, a := range cfg.Animations {
		layer, err := a.LayerConfig()
		if err != nil {
			return nil, fmt.Errorf("animations[%d]: %w", i, err)
		}
		jobs = append(jobs, Job{
			Layer:      layer,
			Format:     cfg.FormatFor(i),
			OutputDir:  cfg.GetOutputDir(),
			FrameDelay: cfg.GetFrameDuration(),
			Workers:    cfg.GetWorkers(),
		})
	}
	return jobs, nil
}
