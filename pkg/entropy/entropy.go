package entropy

import (
	"math"

	"github.com/mugendi/entropize/pkg/types"
)

// Default estimator configuration values.
const (
	DefaultBlockSize            = 16
	DefaultHighEntropyThreshold = 0.2
)

// Estimator computes block-wise Shannon entropy over a pixel buffer. The
// image is tiled into BlockSize×BlockSize blocks from the top-left corner
// and each block is scored independently.
type Estimator struct {
	config Config
}

// Config holds configuration for entropy estimation
type Config struct {
	// BlockSize is the side length of the analysis grid blocks, in pixels.
	BlockSize int

	// HighEntropyThreshold is the fraction of highest-entropy blocks kept
	// by TopFraction, in (0, 1].
	HighEntropyThreshold float64
}

// New creates a new Estimator with default configuration
func New() *Estimator {
	return NewWithConfig(Config{
		BlockSize:            DefaultBlockSize,
		HighEntropyThreshold: DefaultHighEntropyThreshold,
	})
}

// NewWithConfig creates a new Estimator with custom configuration.
// Non-positive BlockSize and an out-of-range HighEntropyThreshold fall back
// to the defaults.
func NewWithConfig(config Config) *Estimator {
	if config.BlockSize <= 0 {
		config.BlockSize = DefaultBlockSize
	}
	if config.HighEntropyThreshold <= 0 || config.HighEntropyThreshold > 1 {
		config.HighEntropyThreshold = DefaultHighEntropyThreshold
	}
	return &Estimator{config: config}
}

// Config returns the estimator's effective configuration.
func (e *Estimator) Config() Config {
	return e.config
}

// BlockEntropy computes the base-2 Shannon entropy of the block anchored at
// (bx, by). Each in-bounds pixel is converted to 8-bit luminance and counted
// into a 256-bucket histogram; pixels outside the buffer are skipped.
// Probabilities are taken against the nominal block area BlockSize², so
// partial blocks at the right/bottom edge score lower than their pixel
// diversity alone would suggest. The result is 0 for a uniform full block
// and never exceeds 8.
func (e *Estimator) BlockEntropy(buf *types.PixelBuffer, bx, by int) float64 {
	var histogram [256]int

	for y := by; y < by+e.config.BlockSize; y++ {
		if y < 0 || y >= buf.Height {
			continue
		}
		for x := bx; x < bx+e.config.BlockSize; x++ {
			if x < 0 || x >= buf.Width {
				continue
			}
			off := (y*buf.Width + x) * 4
			r := float64(buf.Pix[off])
			g := float64(buf.Pix[off+1])
			b := float64(buf.Pix[off+2])
			gray := int(math.Round(0.299*r + 0.587*g + 0.114*b))
			histogram[gray]++
		}
	}

	total := float64(e.config.BlockSize * e.config.BlockSize)
	var entropy float64
	for _, count := range histogram {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}

	return entropy
}

// Blocks scores every block of the analysis grid and returns them in scan
// order (row-major from the top-left). Block anchors step by BlockSize and
// cover every (x, y) with x < width and y < height, so edge blocks may be
// partial.
func (e *Estimator) Blocks(buf *types.PixelBuffer) []types.EntropyBlock {
	var blocks []types.EntropyBlock

	for y := 0; y < buf.Height; y += e.config.BlockSize {
		for x := 0; x < buf.Width; x += e.config.BlockSize {
			blocks = append(blocks, types.EntropyBlock{
				X:       x,
				Y:       y,
				Entropy: e.BlockEntropy(buf, x, y),
			})
		}
	}

	return blocks
}
