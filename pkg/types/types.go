package types

import "image"

// PixelBuffer holds raw RGBA pixel data in row-major order with a top-left
// origin. Samples are channel-interleaved (R, G, B, A), 4 bytes per pixel,
// with a tight stride of Width*4. The buffer is owned by the caller and
// treated as immutable for the duration of an analysis.
type PixelBuffer struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Pix    []uint8 `json:"-"`
}

// NRGBA returns a zero-copy image view of the buffer. Mutating the returned
// image mutates the buffer.
func (b *PixelBuffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Dimensions describes a width/height pair in pixels for images or layout
// units for containers. The zero value means "not specified" where a default
// is defined.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether both dimensions are unset.
func (d Dimensions) IsZero() bool {
	return d.Width == 0 && d.Height == 0
}

// Point is a location in original-image pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EntropyBlock records the entropy measured for one block of the analysis
// grid. X and Y are the block's top-left corner in original-image pixel
// space; Entropy is base-2 Shannon entropy over a 256-level luminance
// histogram, in [0, 8].
type EntropyBlock struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Entropy float64 `json:"entropy"`
}

// CSSImage describes how to position the image in CSS terms.
type CSSImage struct {
	BackgroundPosition string `json:"backgroundPosition"`
	ObjectFit          string `json:"objectFit"`
	BackgroundSize     string `json:"backgroundSize"`
}

// CropPosition is the source sub-rectangle to extract from the original
// image, in original-image pixel coordinates, always clamped inside the
// image bounds.
type CropPosition struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ResizedImage pairs the destination size with the source rectangle a
// rasterizer needs to materialize the crop.
type ResizedImage struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Fit      string       `json:"fit"`
	Position CropPosition `json:"position"`
}

// CropResult is the output of the crop solver: the CSS description and the
// pixel-space extraction instructions for the same placement.
type CropResult struct {
	CSS     CSSImage     `json:"cssImage"`
	Resized ResizedImage `json:"resizedImage"`
}

// AnalysisResult is the stable interchange record produced by one analysis
// pass. EntropyMap is sorted descending by entropy and truncated to the
// configured top fraction; EntropyCenter is the entropy-weighted centroid of
// those blocks (or the geometric center for degenerate images).
type AnalysisResult struct {
	CSS           CSSImage       `json:"cssImage"`
	Resized       ResizedImage   `json:"resizedImage"`
	EntropyMap    []EntropyBlock `json:"entropyMap"`
	EntropyCenter Point          `json:"entropyCenter"`
	OriginalSize  Dimensions     `json:"originalSize"`
}
