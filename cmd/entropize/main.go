package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mugendi/entropize"
	"github.com/mugendi/entropize/internal/config"
	"github.com/mugendi/entropize/internal/utils"
	"github.com/mugendi/entropize/pkg/raster"
	"github.com/mugendi/entropize/pkg/source"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func run() error {
	var args cliArgs
	cliCtx := kong.Parse(
		&args,
		kong.Name("entropize"),
		kong.Description("Entropy-driven image analysis and smart crop positioning"),
		kong.UsageOnError(),
		kong.Vars{"version": entropize.Version},
	)
	return cliCtx.Run(&args.Globals)
}

type cliArgs struct {
	Globals

	Analyze analyzeCmd `cmd:"" help:"Analyze one image and optionally materialize its crop"`
	Batch   batchCmd   `cmd:"" help:"Analyze every image under a directory"`
	Serve   serveCmd   `cmd:"" help:"Run the HTTP analysis API"`
}

type Globals struct {
	Verbose bool             `help:"Enable verbose logging" short:"v"`
	Config  string           `help:"Path to a JSON config file" type:"path"`
	LogFile string           `help:"Also write logs to this file, with rotation"`
	Version kong.VersionFlag `help:"Print version and exit"`
}

// initLogging routes logs to a console writer on stderr so JSON results can
// be piped from stdout, optionally teeing into a rotating file.
func (g *Globals) initLogging() {
	level := zerolog.InfoLevel
	if g.Verbose {
		level = zerolog.DebugLevel
	}

	var out io.Writer = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})
	if g.LogFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   g.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 2,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	log.Logger = log.Output(out).Level(level)
	zerolog.DefaultContextLogger = &log.Logger
}

// loadConfig reads the file named by --config, falling back to the default
// config path when a file exists there, then to built-in defaults.
func (g *Globals) loadConfig() (*config.Config, error) {
	path := g.Config
	if path == "" {
		path = config.GetConfigPath()
		if !utils.FileExists(path) {
			return config.Default(), nil
		}
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// newSource builds the identifier loader with the configured HTTP limits.
func newSource(cfg *config.Config) source.Source {
	h := source.NewHTTP()
	if cfg.Source.TimeoutSeconds > 0 {
		h.Client.Timeout = time.Duration(cfg.Source.TimeoutSeconds) * time.Second
	}
	if cfg.Source.UserAgent != "" {
		h.UserAgent = cfg.Source.UserAgent
	}
	if cfg.Source.MaxBytes > 0 {
		h.MaxBytes = cfg.Source.MaxBytes
	}
	if cfg.Source.MaxPixels > 0 {
		h.MaxPixels = cfg.Source.MaxPixels
	}
	return source.NewAutoWithHTTP(h)
}

// newRasterizer resolves a backend name and, for the imaging backend, the
// configured resample filter.
func newRasterizer(backend, filter string) (raster.Rasterizer, error) {
	r, ok := raster.ByName(backend)
	if !ok {
		return nil, fmt.Errorf("unknown raster backend %q", backend)
	}
	if im, isImaging := r.(*raster.Imaging); isImaging {
		f, ok := raster.FilterByName(filter)
		if !ok {
			return nil, fmt.Errorf("unknown resample filter %q", filter)
		}
		im.Filter = f
	}
	return r, nil
}

// mergeAnalysis overlays non-zero flag values onto the configured analysis
// settings.
func mergeAnalysis(cfg *config.Config, blockSize int, threshold, minVisible float64) entropize.Config {
	ac := entropize.Config{
		BlockSize:            cfg.Analysis.BlockSize,
		HighEntropyThreshold: cfg.Analysis.HighEntropyThreshold,
		MinVisiblePercent:    cfg.Analysis.MinVisiblePercent,
	}
	if blockSize > 0 {
		ac.BlockSize = blockSize
	}
	if threshold > 0 {
		ac.HighEntropyThreshold = threshold
	}
	if minVisible > 0 {
		ac.MinVisiblePercent = minVisible
	}
	return ac
}

func printJSONL[T any](data []T) {
	enc := json.NewEncoder(os.Stdout)
	for _, item := range data {
		if err := enc.Encode(item); err != nil {
			log.Error().Err(err).Msg("Failed to encode item to JSON")
			continue
		}
	}
}
