// Package overlay renders analysis results onto a copy of the source image
// for visual inspection. It is presentation only and is never imported by
// the analysis pipeline.
package overlay

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/mugendi/entropize/pkg/types"
)

// Render paints an analysis over a clone of the source pixels: the selected
// high-entropy blocks are tinted and outlined gold with intensity scaled by
// entropy, the entropy centroid gets a red crosshair and the geometric
// center a blue marker. The input buffer is not modified.
func Render(buf *types.PixelBuffer, blocks []types.EntropyBlock, blockSize int, center types.Point) *image.NRGBA {
	img := imaging.Clone(buf.NRGBA())
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	if blockSize <= 0 {
		blockSize = 16
	}

	gold := color.NRGBA{255, 204, 0, 255}
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 170, 255, 255}
	cross := int(math.Max(4, 0.01*float64(minInt(w, h)))) // ~1% of min side

	var maxEntropy float64
	for _, b := range blocks {
		if b.Entropy > maxEntropy {
			maxEntropy = b.Entropy
		}
	}

	for _, b := range blocks {
		weight := 0.0
		if maxEntropy > 0 {
			weight = b.Entropy / maxEntropy
		}
		tintRect(img, b.X, b.Y, blockSize, blockSize, gold, 0.15+0.25*weight)
		outlineRect(img, b.X, b.Y, blockSize, blockSize, gold)
	}

	// Entropy centroid crosshair
	px := int(center.X + 0.5)
	py := int(center.Y + 0.5)
	drawHLine(img, py, px-cross, px+cross, red)
	drawVLine(img, px, py-cross, py+cross, red)

	// Geometric center marker
	ix, iy := w/2, h/2
	drawHLine(img, iy, ix-6, ix+6, blue)
	drawVLine(img, ix, iy-6, iy+6, blue)

	return img
}

// tintRect alpha-blends a color over the rectangle, clipped to the image.
func tintRect(img *image.NRGBA, x, y, w, h int, c color.NRGBA, alpha float64) {
	x0 := maxInt(x, 0)
	y0 := maxInt(y, 0)
	x1 := minInt(x+w, img.Bounds().Dx())
	y1 := minInt(y+h, img.Bounds().Dy())

	for yy := y0; yy < y1; yy++ {
		i := yy*img.Stride + x0*4
		for xx := x0; xx < x1; xx++ {
			img.Pix[i+0] = blend(img.Pix[i+0], c.R, alpha)
			img.Pix[i+1] = blend(img.Pix[i+1], c.G, alpha)
			img.Pix[i+2] = blend(img.Pix[i+2], c.B, alpha)
			i += 4
		}
	}
}

func blend(base, over uint8, alpha float64) uint8 {
	return uint8(float64(base)*(1-alpha) + float64(over)*alpha + 0.5)
}

func outlineRect(img *image.NRGBA, x, y, w, h int, c color.NRGBA) {
	drawHLine(img, y, x, x+w, c)
	drawHLine(img, y+h-1, x, x+w, c)
	drawVLine(img, x, y, y+h, c)
	drawVLine(img, x+w-1, y, y+h, c)
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
