// Command convviz animates how a convolution or transposed-convolution
// kernel slides over its input and fills the output grid.
//
// Single layer:
//
//	convviz -t conv -i 5 -k 3 -s 2 -p 1 -o out
//
// Batch from a job file, recording every artifact in a catalog:
//
//	convviz -config config/gallery.json -catalog gallery.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/convviz/internal/animate"
	"github.com/banshee-data/convviz/internal/catalog"
	"github.com/banshee-data/convviz/internal/config"
	"github.com/banshee-data/convviz/internal/geometry"
	"github.com/banshee-data/convviz/internal/monitoring"
	"github.com/banshee-data/convviz/internal/version"
)

// options holds the parsed command line.
type options struct {
	layer       geometry.LayerConfig
	outputDir   string
	format      string
	duration    time.Duration
	workers     int
	configPath  string
	catalogPath string
	list        bool
	verbose     bool
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	def := geometry.DefaultLayerConfig()
	var o options
	var kind string

	fs := flag.NewFlagSet("convviz", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&o.layer.InputSize, "i", def.InputSize, "Input size")
	fs.IntVar(&o.layer.KernelSize, "k", def.KernelSize, "Kernel size")
	fs.IntVar(&o.layer.Stride, "s", def.Stride, "Stride")
	fs.IntVar(&o.layer.Padding, "p", def.Padding, "Padding")
	fs.StringVar(&kind, "t", "t_conv", "Layer type: conv, t_conv or transposed_conv")
	fs.StringVar(&o.outputDir, "o", config.DefaultOutputDir, "Output directory")
	fs.StringVar(&o.format, "format", config.DefaultFormat, "Output format: gif or html")
	fs.DurationVar(&o.duration, "duration", config.DefaultFrameDuration, "Time each frame is shown")
	fs.IntVar(&o.workers, "workers", 0, "Concurrent frame renderers (0 = one per frame)")
	fs.StringVar(&o.configPath, "config", "", "Batch job file (JSON); overrides the layer flags")
	fs.StringVar(&o.catalogPath, "catalog", "", "SQLite catalog to record generated files in")
	fs.BoolVar(&o.list, "list", false, "List the catalog and exit")
	fs.BoolVar(&o.verbose, "v", false, "Log every frame")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	k, err := geometry.ParseKind(kind)
	if err != nil {
		return options{}, err
	}
	o.layer.Kind = k
	if o.workers < 0 {
		return options{}, fmt.Errorf("workers must be non-negative, got %d", o.workers)
	}
	if o.list && o.catalogPath == "" {
		return options{}, errors.New("-list requires -catalog")
	}
	return o, nil
}

// jobs returns the work described by o: the batch file when one is given,
// otherwise the single layer from the flags.
func (o options) jobs() ([]animate.Job, string, error) {
	if o.configPath == "" {
		return []animate.Job{{
			Layer:      o.layer,
			Format:     o.format,
			OutputDir:  o.outputDir,
			FrameDelay: o.duration,
			Workers:    o.workers,
		}}, o.catalogPath, nil
	}
	cfg, err := config.LoadJobConfig(o.configPath)
	if err != nil {
		return nil, "", err
	}
	jobs, err := animate.JobsFromConfig(cfg)
	if err != nil {
		return nil, "", err
	}
	catalogPath := o.catalogPath
	if catalogPath == "" {
		catalogPath = cfg.GetCatalog()
	}
	return jobs, catalogPath, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}
	monitoring.SetVerbose(o.verbose)

	if o.list {
		return listCatalog(ctx, o.catalogPath, stdout)
	}

	jobs, catalogPath, err := o.jobs()
	if err != nil {
		return err
	}

	gen := animate.NewGenerator(nil)
	if catalogPath != "" {
		cat, err := catalog.Open(catalogPath)
		if err != nil {
			return err
		}
		defer cat.Close()
		gen.Recorder = cat
	}

	results, err := gen.GenerateAll(ctx, jobs)
	for _, r := range results {
		fmt.Fprintln(stdout, r.Path)
	}
	return err
}

func listCatalog(ctx context.Context, path string, w io.Writer) error {
	cat, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer cat.Close()

	entries, err := cat.List(ctx, "")
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d frames\t%s\t%s\n",
			e.ID, e.CreatedAt.Format(time.RFC3339), e.Name, e.Frames, e.Format, e.Path)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		stop()
		log.Fatalf("convviz: %v", err)
	}
}
