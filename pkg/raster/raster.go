// Package raster materializes computed crops: it extracts a source
// rectangle from a pixel buffer and resizes it to the destination size.
// Two interchangeable backends are provided, selected at runtime.
package raster

import (
	"errors"
	"fmt"
	"image"

	"github.com/mugendi/entropize/pkg/types"
)

// ErrInvalidRegion is returned when a crop rectangle or output size cannot
// be rasterized. Wrapped by every rejection path, matchable with errors.Is.
var ErrInvalidRegion = errors.New("raster: invalid region")

// Rasterizer extracts pos from a pixel buffer and resizes the extracted
// region to the out dimensions.
type Rasterizer interface {
	ExtractAndResize(buf *types.PixelBuffer, pos types.CropPosition, out types.Dimensions) (*image.NRGBA, error)
}

// ByName returns the rasterizer backend registered under the given name.
func ByName(name string) (Rasterizer, bool) {
	switch name {
	case "", "imaging":
		return NewImaging(), true
	case "rez":
		return &Rez{}, true
	}
	return nil, false
}

// regionRect validates a crop position against the buffer bounds and
// returns the in-bounds rectangle to extract. Negative extents are rejected
// up front; image.Rect would otherwise canonicalize them into a valid
// flipped rectangle.
func regionRect(buf *types.PixelBuffer, pos types.CropPosition) (image.Rectangle, error) {
	if pos.Width <= 0 || pos.Height <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: crop size %dx%d", ErrInvalidRegion, pos.Width, pos.Height)
	}
	rect := image.Rect(pos.Left, pos.Top, pos.Left+pos.Width, pos.Top+pos.Height)
	rect = rect.Intersect(image.Rect(0, 0, buf.Width, buf.Height))
	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: crop %dx%d at (%d,%d) outside image %dx%d",
			ErrInvalidRegion, pos.Width, pos.Height, pos.Left, pos.Top, buf.Width, buf.Height)
	}
	return rect, nil
}

func checkOutput(out types.Dimensions) error {
	if out.Width <= 0 || out.Height <= 0 {
		return fmt.Errorf("%w: output size %dx%d", ErrInvalidRegion, out.Width, out.Height)
	}
	return nil
}
