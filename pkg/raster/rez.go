package raster

import (
	"image"

	"github.com/bamiaux/rez"
	"golang.org/x/image/draw"

	"github.com/mugendi/entropize/pkg/types"
)

// Rez rasterizes crops with the rez resampler, falling back to the slower
// x/image scaler when rez rejects the input format.
type Rez struct{}

// ExtractAndResize crops the source rectangle out of the buffer and resizes
// it to the output dimensions.
func (r *Rez) ExtractAndResize(buf *types.PixelBuffer, pos types.CropPosition, out types.Dimensions) (*image.NRGBA, error) {
	rect, err := regionRect(buf, pos)
	if err != nil {
		return nil, err
	}
	if err := checkOutput(out); err != nil {
		return nil, err
	}

	src := buf.NRGBA().SubImage(rect)
	dst := image.NewNRGBA(image.Rect(0, 0, out.Width, out.Height))

	switch src.(type) {
	case *image.YCbCr, *image.RGBA, *image.NRGBA, *image.Gray:
		if err := rez.Convert(dst, src, rez.NewBilinearFilter()); err != nil {
			draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		}
	default:
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	return dst, nil
}
