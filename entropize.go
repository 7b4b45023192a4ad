// Package entropize computes visually optimal crops by finding the region
// of an image with the highest information density.
//
// The image is tiled into fixed-size blocks and each block is scored with
// the Shannon entropy of its luminance histogram. The entropy-weighted
// centroid of the highest-scoring blocks becomes the point of interest, and
// a cover-fit solver positions the crop window so that point sits as close
// to the container center as the fit allows. The result carries both a CSS
// description (background-position percentages) and a pixel-space crop
// rectangle for producing an actual raster output.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/mugendi/entropize"
//		"github.com/mugendi/entropize/pkg/types"
//	)
//
//	func main() {
//		analyzer := entropize.New()
//
//		// Analyze an image for an 800x600 container
//		result, err := analyzer.AnalyzeSource(context.Background(), "photo.jpg",
//			types.Dimensions{Width: 800, Height: 600})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Println("background-position:", result.CSS.BackgroundPosition)
//		fmt.Printf("crop %dx%d at (%d,%d)\n",
//			result.Resized.Position.Width, result.Resized.Position.Height,
//			result.Resized.Position.Left, result.Resized.Position.Top)
//
//		// Materialize the crop as pixels
//		img, err := analyzer.Materialize(context.Background())
//		if err != nil {
//			log.Fatal(err)
//		}
//		_ = img
//	}
//
// The package consists of four main components:
//
// 1. Entropy (pkg/entropy): block entropy grid and weighted aggregation
// 2. Crop (pkg/crop): cover-fit solver mapping a focus point to a placement
// 3. Source (pkg/source): file and HTTP pixel loading
// 4. Raster (pkg/raster): crop extraction and resizing backends
//
// The analysis pipeline between loading and rasterizing is synchronous and
// pure: identical pixels and configuration always produce an identical
// result.
package entropize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/mugendi/entropize/pkg/crop"
	"github.com/mugendi/entropize/pkg/entropy"
	"github.com/mugendi/entropize/pkg/probe"
	"github.com/mugendi/entropize/pkg/raster"
	"github.com/mugendi/entropize/pkg/source"
	"github.com/mugendi/entropize/pkg/types"
)

// Version of the entropize library
const Version = "1.0.0"

// ErrNoAnalysis is returned by Materialize when no analysis has completed
// yet on this instance.
var ErrNoAnalysis = errors.New("entropize: no analysis available")

// Config holds configuration for the analyzer. Values are fixed at
// construction; out-of-range fields fall back to their defaults.
type Config struct {
	// BlockSize is the entropy grid block side length in pixels (default 16).
	BlockSize int

	// HighEntropyThreshold is the fraction of highest-entropy blocks used
	// for the point of interest, in (0, 1] (default 0.2).
	HighEntropyThreshold float64

	// MinVisiblePercent is the visibility floor passed to the crop solver
	// (default 50).
	MinVisiblePercent float64

	// Debug enables the debug callback after each analysis.
	Debug bool
}

// Analyzer orchestrates the analysis pipeline: pixel source, entropy
// estimation, aggregation, crop solving and rasterization. It keeps the
// most recent analysis so a crop can be materialized without re-threading
// the buffer; callers needing isolation use separate instances.
type Analyzer struct {
	config     Config
	estimator  *entropy.Estimator
	source     source.Source
	rasterizer raster.Rasterizer
	debugFunc  func(blocks []types.EntropyBlock, center types.Point)

	mu   sync.Mutex
	last *analysis
}

// analysis is one completed pass: the buffer it ran on and its result.
type analysis struct {
	buf    *types.PixelBuffer
	result *types.AnalysisResult
}

// New creates a new Analyzer with default configuration
func New() *Analyzer {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a new Analyzer with custom configuration
func NewWithConfig(config Config) *Analyzer {
	if config.BlockSize <= 0 {
		config.BlockSize = entropy.DefaultBlockSize
	}
	if config.HighEntropyThreshold <= 0 || config.HighEntropyThreshold > 1 {
		config.HighEntropyThreshold = entropy.DefaultHighEntropyThreshold
	}
	if config.MinVisiblePercent <= 0 || config.MinVisiblePercent > 100 {
		config.MinVisiblePercent = crop.DefaultMinVisiblePercent
	}

	return &Analyzer{
		config: config,
		estimator: entropy.NewWithConfig(entropy.Config{
			BlockSize:            config.BlockSize,
			HighEntropyThreshold: config.HighEntropyThreshold,
		}),
		source:     source.NewAuto(),
		rasterizer: raster.NewImaging(),
	}
}

// Config returns the analyzer's effective configuration.
func (a *Analyzer) Config() Config {
	return a.config
}

// SetSource replaces the pixel source used by AnalyzeSource and
// AnalyzeElement. Configure before sharing the analyzer across goroutines.
func (a *Analyzer) SetSource(s source.Source) {
	a.source = s
}

// SetRasterizer replaces the rasterizer used by Materialize.
func (a *Analyzer) SetRasterizer(r raster.Rasterizer) {
	a.rasterizer = r
}

// SetDebugFunc registers a callback invoked with the selected high-entropy
// blocks and the point of interest after each successful analysis. Only
// called when Config.Debug is set; purely presentational.
func (a *Analyzer) SetDebugFunc(fn func(blocks []types.EntropyBlock, center types.Point)) {
	a.debugFunc = fn
}

// Analyze runs the pipeline on an already decoded image.
func (a *Analyzer) Analyze(img image.Image, container types.Dimensions) (*types.AnalysisResult, error) {
	if img == nil {
		return nil, fmt.Errorf("analyze: %w: nil image", crop.ErrInvalidDimensions)
	}
	return a.AnalyzeBuffer(entropy.BufferFromImage(img), container)
}

// AnalyzeBuffer runs the pipeline on a raw pixel buffer: entropy grid, top
// fraction selection, centroid, crop solve. The result is published to the
// instance only after the whole computation succeeds; a failed call leaves
// the previous analysis in place.
func (a *Analyzer) AnalyzeBuffer(buf *types.PixelBuffer, container types.Dimensions) (*types.AnalysisResult, error) {
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("analyze: %w: empty pixel buffer", crop.ErrInvalidDimensions)
	}

	imageSize := types.Dimensions{Width: buf.Width, Height: buf.Height}

	blocks := a.estimator.Blocks(buf)
	top := entropy.TopFraction(blocks, a.config.HighEntropyThreshold)

	// A uniform image has no usable entropy signal; the crop then centers
	// on the geometric middle instead of a numerically undefined centroid.
	var focus *types.Point
	center, ok := entropy.Centroid(top)
	if ok {
		focus = &center
	} else {
		center = types.Point{X: float64(buf.Width) / 2, Y: float64(buf.Height) / 2}
	}

	cropResult, err := crop.Solve(imageSize, container, focus, a.config.MinVisiblePercent)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	result := &types.AnalysisResult{
		CSS:           cropResult.CSS,
		Resized:       cropResult.Resized,
		EntropyMap:    top,
		EntropyCenter: center,
		OriginalSize:  imageSize,
	}

	a.mu.Lock()
	a.last = &analysis{buf: buf, result: result}
	a.mu.Unlock()

	if a.config.Debug && a.debugFunc != nil {
		a.debugFunc(top, center)
	}

	return result, nil
}

// AnalyzeSource loads an image through the pixel source and analyzes it.
// The identifier is a file path or http(s) URL.
func (a *Analyzer) AnalyzeSource(ctx context.Context, identifier string, container types.Dimensions) (*types.AnalysisResult, error) {
	img, err := a.source.Load(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", identifier, err)
	}
	return a.Analyze(img, container)
}

// AnalyzeElement resolves the image identifier and container geometry from
// an HTML element fragment and analyzes the resolved image. The element's
// inline background-image wins over its source attribute; missing geometry
// falls back to the image's own size.
func (a *Analyzer) AnalyzeElement(ctx context.Context, fragment string) (*types.AnalysisResult, error) {
	element, err := probe.Parse(fragment)
	if err != nil {
		return nil, fmt.Errorf("analyze element: %w", err)
	}

	identifier, ok := element.ImageSource()
	if !ok {
		return nil, fmt.Errorf("analyze element <%s>: %w", element.Tag(), probe.ErrNoSource)
	}

	container, _ := element.ContainerDimensions()
	return a.AnalyzeSource(ctx, identifier, container)
}

// Result returns the most recent analysis result, or nil when no analysis
// has completed yet.
func (a *Analyzer) Result() *types.AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return nil
	}
	return a.last.result
}

// Materialize rasterizes the most recent analysis: the crop rectangle is
// extracted from the analyzed pixels and resized to the container size.
// Returns ErrNoAnalysis when called before any successful analysis.
func (a *Analyzer) Materialize(ctx context.Context) (*image.NRGBA, error) {
	a.mu.Lock()
	last := a.last
	a.mu.Unlock()

	if last == nil {
		return nil, fmt.Errorf("materialize: %w", ErrNoAnalysis)
	}
	return a.MaterializeResult(ctx, last.buf, last.result)
}

// MaterializeResult rasterizes an explicit analysis result against the
// buffer it was computed from. The stateless counterpart of Materialize.
func (a *Analyzer) MaterializeResult(ctx context.Context, buf *types.PixelBuffer, result *types.AnalysisResult) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}
	if buf == nil || result == nil {
		return nil, fmt.Errorf("materialize: %w", ErrNoAnalysis)
	}

	out := types.Dimensions{Width: result.Resized.Width, Height: result.Resized.Height}
	img, err := a.rasterizer.ExtractAndResize(buf, result.Resized.Position, out)
	if err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}
	return img, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
