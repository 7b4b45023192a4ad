package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/mugendi/entropize"
	"github.com/mugendi/entropize/internal/config"
	"github.com/mugendi/entropize/internal/utils"
	"github.com/mugendi/entropize/pkg/entropy"
	"github.com/mugendi/entropize/pkg/overlay"
	"github.com/mugendi/entropize/pkg/raster"
	"github.com/mugendi/entropize/pkg/types"
)

type analyzeCmd struct {
	Source          string  `arg:"" help:"Image file path or http(s) URL"`
	ContainerWidth  int     `help:"Container width in pixels (defaults to the image width)"`
	ContainerHeight int     `help:"Container height in pixels (defaults to the image height)"`
	BlockSize       int     `help:"Entropy block size in pixels"`
	Threshold       float64 `help:"High-entropy fraction to keep (0..1]"`
	MinVisible      float64 `help:"Minimum visible percent of the scaled image (0..100]"`
	Out             string  `help:"Write the materialized crop to this file" type:"path"`
	Overlay         string  `help:"Write a debug overlay to this file" type:"path"`
	Format          string  `help:"Crop output format: jpg|png|webp (defaults to the --out extension)"`
	Quality         int     `help:"Crop output quality (1-100)"`
	Lossless        bool    `help:"WebP lossless output"`
	Raster          string  `help:"Raster backend: imaging|rez"`
	JSON            bool    `help:"Print the analysis result as JSON" default:"true" negatable:""`
}

func (cmd *analyzeCmd) Run(g *Globals) error {
	g.initLogging()

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = log.Logger.WithContext(ctx)

	backend := cmd.Raster
	if backend == "" {
		backend = cfg.Raster.Backend
	}
	rast, err := newRasterizer(backend, cfg.Raster.Filter)
	if err != nil {
		return err
	}

	analyzer := entropize.NewWithConfig(mergeAnalysis(cfg, cmd.BlockSize, cmd.Threshold, cmd.MinVisible))
	analyzer.SetRasterizer(rast)

	img, err := newSource(cfg).Load(ctx, cmd.Source)
	if err != nil {
		return err
	}

	// The buffer is analyzed directly so it stays available for the overlay.
	buf := entropy.BufferFromImage(img)
	container := types.Dimensions{Width: cmd.ContainerWidth, Height: cmd.ContainerHeight}

	result, err := analyzer.AnalyzeBuffer(buf, container)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Debug().
		Int("blocks", len(result.EntropyMap)).
		Float64("centerX", result.EntropyCenter.X).
		Float64("centerY", result.EntropyCenter.Y).
		Str("position", result.CSS.BackgroundPosition).
		Msg("analysis complete")

	if cmd.Out != "" {
		if err := cmd.writeCrop(ctx, analyzer, cfg); err != nil {
			return err
		}
	}

	if cmd.Overlay != "" {
		if err := cmd.writeOverlay(ctx, buf, result, analyzer.Config().BlockSize); err != nil {
			return err
		}
	}

	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return nil
}

func (cmd *analyzeCmd) writeCrop(ctx context.Context, analyzer *entropize.Analyzer, cfg *config.Config) error {
	cropped, err := analyzer.Materialize(ctx)
	if err != nil {
		return err
	}

	format := cmd.Format
	if format == "" {
		format = utils.FileExtension(cmd.Out)
	}
	if format == "" {
		format = cfg.Output.Format
	}
	quality := cmd.Quality
	if quality <= 0 {
		quality = cfg.Raster.Quality
	}

	if err := utils.EnsureDir(filepath.Dir(cmd.Out)); err != nil {
		return err
	}
	if err := raster.Save(cropped, cmd.Out, format, quality, cmd.Lossless || cfg.Raster.Lossless); err != nil {
		return err
	}

	if info, err := os.Stat(cmd.Out); err == nil {
		log.Ctx(ctx).Info().
			Str("path", cmd.Out).
			Str("size", utils.FormatFileSize(info.Size())).
			Msg("wrote crop")
	}
	return nil
}

func (cmd *analyzeCmd) writeOverlay(ctx context.Context, buf *types.PixelBuffer, result *types.AnalysisResult, blockSize int) error {
	ov := overlay.Render(buf, result.EntropyMap, blockSize, result.EntropyCenter)

	format := utils.FileExtension(cmd.Overlay)
	if format == "" {
		format = "png"
	}

	if err := utils.EnsureDir(filepath.Dir(cmd.Overlay)); err != nil {
		return err
	}
	if err := raster.Save(ov, cmd.Overlay, format, 92, false); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("path", cmd.Overlay).Msg("wrote overlay")
	return nil
}
