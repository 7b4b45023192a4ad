package entropy

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/mugendi/entropize/pkg/types"
)

// BufferFromImage normalizes any image into a tightly packed RGBA pixel
// buffer with a top-left origin, regardless of the source's color model or
// bounds offset.
func BufferFromImage(img image.Image) *types.PixelBuffer {
	nrgba := imaging.Clone(img)
	return &types.PixelBuffer{
		Width:  nrgba.Bounds().Dx(),
		Height: nrgba.Bounds().Dy(),
		Pix:    nrgba.Pix,
	}
}
