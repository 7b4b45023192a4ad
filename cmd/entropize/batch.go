package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/mugendi/entropize"
	"github.com/mugendi/entropize/internal/config"
	"github.com/mugendi/entropize/internal/utils"
	"github.com/mugendi/entropize/pkg/entropy"
	"github.com/mugendi/entropize/pkg/raster"
	"github.com/mugendi/entropize/pkg/source"
	"github.com/mugendi/entropize/pkg/types"
)

type batchCmd struct {
	Dir             string  `arg:"" help:"Directory to scan for images"`
	OutDir          string  `help:"Output directory for crops (defaults to config output.dir)"`
	ContainerWidth  int     `help:"Container width in pixels (defaults to each image's width)"`
	ContainerHeight int     `help:"Container height in pixels (defaults to each image's height)"`
	BlockSize       int     `help:"Entropy block size in pixels"`
	Threshold       float64 `help:"High-entropy fraction to keep (0..1]"`
	MinVisible      float64 `help:"Minimum visible percent (0..100]"`
	Crop            bool    `help:"Write cropped images in addition to the JSONL results" default:"true" negatable:""`
}

// batchRecord is one JSONL line of batch output.
type batchRecord struct {
	File   string                `json:"file"`
	Output string                `json:"output,omitempty"`
	Result *types.AnalysisResult `json:"result"`
}

// batchRunner analyzes one file per pool task, with a fresh Analyzer each
// time so tasks share nothing mutable.
type batchRunner struct {
	Analysis  entropize.Config
	Source    source.Source
	Raster    raster.Rasterizer
	Container types.Dimensions
	OutDir    string
	Output    config.OutputConfig
	Quality   int
	Lossless  bool
	WriteCrop bool
}

func (cmd *batchCmd) Run(g *Globals) error {
	g.initLogging()

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = log.Logger.WithContext(ctx)

	if !utils.DirExists(cmd.Dir) {
		return fmt.Errorf("%s is not a directory", cmd.Dir)
	}
	files, err := utils.ListImageFiles(cmd.Dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", cmd.Dir, err)
	}
	if len(files) == 0 {
		log.Ctx(ctx).Warn().Str("dir", cmd.Dir).Msg("no images found")
		return nil
	}
	log.Ctx(ctx).Info().Int("count", len(files)).Msg("found images")

	outDir := cmd.OutDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	if cmd.Crop {
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
		}
	}

	rast, err := newRasterizer(cfg.Raster.Backend, cfg.Raster.Filter)
	if err != nil {
		return err
	}

	runner := &batchRunner{
		Analysis:  mergeAnalysis(cfg, cmd.BlockSize, cmd.Threshold, cmd.MinVisible),
		Source:    newSource(cfg),
		Raster:    rast,
		Container: types.Dimensions{Width: cmd.ContainerWidth, Height: cmd.ContainerHeight},
		OutDir:    outDir,
		Output:    cfg.Output,
		Quality:   cfg.Raster.Quality,
		Lossless:  cfg.Raster.Lossless,
		WriteCrop: cmd.Crop,
	}

	var mu sync.Mutex
	var records []batchRecord

	pooler := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(runtime.NumCPU())
	for _, file := range files {
		pooler.Go(func(ctx context.Context) error {
			rec, err := runner.processImage(ctx, file)
			if err != nil {
				log.Ctx(ctx).Error().Err(err).Str("file", file).Msg("analysis failed")
				return err
			}
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}

	err = pooler.Wait()
	printJSONL(records)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("finished with errors")
		return err
	}
	return nil
}

func (r *batchRunner) processImage(ctx context.Context, file string) (batchRecord, error) {
	log.Ctx(ctx).Info().Str("file", file).Msg("analyzing")

	analyzer := entropize.NewWithConfig(r.Analysis)
	analyzer.SetSource(r.Source)
	analyzer.SetRasterizer(r.Raster)

	img, err := r.Source.Load(ctx, file)
	if err != nil {
		return batchRecord{}, err
	}
	result, err := analyzer.AnalyzeBuffer(entropy.BufferFromImage(img), r.Container)
	if err != nil {
		return batchRecord{}, err
	}

	rec := batchRecord{File: file, Result: result}
	if !r.WriteCrop {
		return rec, nil
	}

	cropped, err := analyzer.Materialize(ctx)
	if err != nil {
		return batchRecord{}, err
	}
	outPath := utils.OutputPath(file, r.OutDir, r.Output.Suffix, r.Output.Format)
	if err := raster.Save(cropped, outPath, r.Output.Format, r.Quality, r.Lossless); err != nil {
		return batchRecord{}, err
	}
	rec.Output = outPath
	return rec, nil
}
