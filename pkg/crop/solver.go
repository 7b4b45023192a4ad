// Package crop solves "cover" fit placements: given an image, a target
// container and an optional point of interest, it computes the offset that
// keeps the point of interest as close to the container center as the fit
// allows, expressed both as CSS background-position percentages and as a
// pixel-space source rectangle for a rasterizer.
package crop

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mugendi/entropize/pkg/types"
)

// ErrInvalidDimensions is returned when an image or container dimension is
// zero or negative, or when the visibility floor is out of range. Raised
// before any division takes place.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// DefaultMinVisiblePercent is used when the caller passes a non-positive
// visibility floor.
const DefaultMinVisiblePercent = 50.0

// Solve computes the optimal cover-fit crop of an image into a container.
//
// The image is scaled by max(containerW/imageW, containerH/imageH) so it
// fully covers the container, then offset so the focus point sits as close
// to the container center as the scaled bounds allow. A nil focus means "no
// point of interest" and falls back to the geometric center. A zero-value
// containerSize defaults to the image size.
//
// minVisiblePercent is validated and carried for compatibility with the
// interchange contract, but the cover-fit clamp is the only visibility
// guarantee applied: offsets never move the container outside the scaled
// image, which keeps the container fully covered at all times.
//
// Solve is a pure function: identical inputs produce identical outputs.
func Solve(imageSize, containerSize types.Dimensions, focus *types.Point, minVisiblePercent float64) (types.CropResult, error) {
	if imageSize.Width <= 0 || imageSize.Height <= 0 {
		return types.CropResult{}, fmt.Errorf("%w: image %dx%d", ErrInvalidDimensions, imageSize.Width, imageSize.Height)
	}
	if containerSize.IsZero() {
		containerSize = imageSize
	}
	if containerSize.Width <= 0 || containerSize.Height <= 0 {
		return types.CropResult{}, fmt.Errorf("%w: container %dx%d", ErrInvalidDimensions, containerSize.Width, containerSize.Height)
	}
	if minVisiblePercent <= 0 {
		minVisiblePercent = DefaultMinVisiblePercent
	}
	if minVisiblePercent > 100 {
		return types.CropResult{}, fmt.Errorf("%w: min visible percent %s out of (0,100]", ErrInvalidDimensions, formatFloat(minVisiblePercent))
	}

	imageW := float64(imageSize.Width)
	imageH := float64(imageSize.Height)
	containerW := float64(containerSize.Width)
	containerH := float64(containerSize.Height)

	// Standard "cover" scale: the smaller side of the image fills the
	// container exactly, the other side overflows.
	scale := math.Max(containerW/imageW, containerH/imageH)
	scaledW := imageW * scale
	scaledH := imageH * scale

	// Both >= 0 by construction of scale; float rounding can push the
	// exact-fit axis a hair negative.
	maxOffsetX := math.Max(scaledW-containerW, 0)
	maxOffsetY := math.Max(scaledH-containerH, 0)

	fx := imageW / 2
	fy := imageH / 2
	if focus != nil {
		fx = focus.X
		fy = focus.Y
	}

	// Offset that centers the focus point in the container, clamped to the
	// freedom the scaled image leaves.
	offsetX := clamp(fx/imageW*scaledW-containerW/2, 0, maxOffsetX)
	offsetY := clamp(fy/imageH*scaledH-containerH/2, 0, maxOffsetY)

	percentX := 50.0
	if maxOffsetX > 0 {
		percentX = offsetX / maxOffsetX * 100
	}
	percentY := 50.0
	if maxOffsetY > 0 {
		percentY = offsetY / maxOffsetY * 100
	}

	// Map the container view back into original-image pixel coordinates.
	left := int(math.Round(offsetX / scaledW * imageW))
	top := int(math.Round(offsetY / scaledH * imageH))
	width := int(math.Round(containerW / scaledW * imageW))
	height := int(math.Round(containerH / scaledH * imageH))

	// Rounding can leave the rectangle a pixel outside the image.
	if width > imageSize.Width {
		width = imageSize.Width
	}
	if height > imageSize.Height {
		height = imageSize.Height
	}
	if left+width > imageSize.Width {
		left = imageSize.Width - width
	}
	if top+height > imageSize.Height {
		top = imageSize.Height - height
	}
	if left < 0 {
		left = 0
	}
	if top < 0 {
		top = 0
	}

	return types.CropResult{
		CSS: types.CSSImage{
			BackgroundPosition: formatFloat(percentX) + "% " + formatFloat(percentY) + "%",
			ObjectFit:          "cover",
			BackgroundSize:     "cover",
		},
		Resized: types.ResizedImage{
			Width:  containerSize.Width,
			Height: containerSize.Height,
			Fit:    "cover",
			Position: types.CropPosition{
				Left:   left,
				Top:    top,
				Width:  width,
				Height: height,
			},
		},
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// formatFloat renders percentages with the shortest exact decimal form and
// never an exponent.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
