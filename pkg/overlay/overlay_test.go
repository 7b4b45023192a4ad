package overlay

import (
	"image/color"
	"testing"

	"github.com/mugendi/entropize/pkg/types"
)

func grayBuffer(width, height int) *types.PixelBuffer {
	buf := &types.PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i+0] = 100
		buf.Pix[i+1] = 100
		buf.Pix[i+2] = 100
		buf.Pix[i+3] = 255
	}
	return buf
}

func TestRender(t *testing.T) {
	buf := grayBuffer(64, 48)
	blocks := []types.EntropyBlock{
		{X: 0, Y: 0, Entropy: 5.0},
		{X: 16, Y: 0, Entropy: 2.0},
	}
	center := types.Point{X: 20, Y: 20}

	img := Render(buf, blocks, 16, center)

	if img == nil {
		t.Fatal("Expected rendered image, got nil")
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("Expected 64x48 overlay, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// Input buffer stays untouched
	if buf.Pix[0] != 100 || buf.Pix[2] != 100 {
		t.Error("Expected source buffer to be unmodified")
	}

	// Block interior is tinted toward gold: red rises, blue falls
	in := img.NRGBAAt(8, 8)
	if in.R <= 100 {
		t.Errorf("Expected tinted red channel above 100, got %d", in.R)
	}
	if in.B >= 100 {
		t.Errorf("Expected tinted blue channel below 100, got %d", in.B)
	}

	// Centroid crosshair
	if got := img.NRGBAAt(20, 20); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("Expected red crosshair at centroid, got %v", got)
	}

	// Geometric center marker
	if got := img.NRGBAAt(32, 24); got != (color.NRGBA{0, 170, 255, 255}) {
		t.Errorf("Expected blue center marker, got %v", got)
	}
}

func TestRenderStrongerBlockTintedMore(t *testing.T) {
	buf := grayBuffer(64, 48)
	blocks := []types.EntropyBlock{
		{X: 0, Y: 0, Entropy: 6.0},
		{X: 16, Y: 16, Entropy: 1.0},
	}

	img := Render(buf, blocks, 16, types.Point{X: 48, Y: 40})

	strong := img.NRGBAAt(8, 8)
	weak := img.NRGBAAt(24, 24)
	if strong.R <= weak.R {
		t.Errorf("Expected stronger block tint %d > weaker %d", strong.R, weak.R)
	}
}

func TestRenderClipsToImage(t *testing.T) {
	buf := grayBuffer(32, 32)
	blocks := []types.EntropyBlock{
		{X: 16, Y: 16, Entropy: 3.0},
		{X: -8, Y: -8, Entropy: 3.0},
	}
	// Centroid far outside the image must not panic
	img := Render(buf, blocks, 16, types.Point{X: 500, Y: -200})

	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Errorf("Expected 32x32 overlay, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestRenderNoBlocks(t *testing.T) {
	buf := grayBuffer(40, 40)

	img := Render(buf, nil, 16, types.Point{X: 10, Y: 10})

	if img == nil {
		t.Fatal("Expected rendered image, got nil")
	}
	// Markers still present
	if got := img.NRGBAAt(10, 10); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("Expected centroid crosshair, got %v", got)
	}
	if got := img.NRGBAAt(20, 20); got != (color.NRGBA{0, 170, 255, 255}) {
		t.Errorf("Expected center marker, got %v", got)
	}
}
