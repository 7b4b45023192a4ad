package raster

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/mugendi/entropize/pkg/types"
)

// Imaging rasterizes crops with the imaging library's resampling kernels.
type Imaging struct {
	Filter imaging.ResampleFilter
}

// NewImaging creates an Imaging rasterizer with the Lanczos filter.
func NewImaging() *Imaging {
	return &Imaging{Filter: imaging.Lanczos}
}

// ExtractAndResize crops the source rectangle out of the buffer and resizes
// it to the output dimensions.
func (r *Imaging) ExtractAndResize(buf *types.PixelBuffer, pos types.CropPosition, out types.Dimensions) (*image.NRGBA, error) {
	rect, err := regionRect(buf, pos)
	if err != nil {
		return nil, err
	}
	if err := checkOutput(out); err != nil {
		return nil, err
	}

	cropped := imaging.Crop(buf.NRGBA(), rect)
	return imaging.Resize(cropped, out.Width, out.Height, r.Filter), nil
}

// FilterByName maps a configuration name onto a resample filter.
func FilterByName(name string) (imaging.ResampleFilter, bool) {
	switch name {
	case "", "lanczos":
		return imaging.Lanczos, true
	case "linear":
		return imaging.Linear, true
	case "box":
		return imaging.Box, true
	case "nearest":
		return imaging.NearestNeighbor, true
	case "catmullrom":
		return imaging.CatmullRom, true
	}
	return imaging.ResampleFilter{}, false
}
