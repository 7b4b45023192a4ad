package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Default limits for remote image loading.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxBytes  = 32 << 20
	DefaultMaxPixels = 8192 * 8192
	DefaultUserAgent = "Entropize/1.0 (+https://github.com/mugendi/entropize)"
)

// HTTP downloads and decodes images from http(s) URLs. Responses are capped
// by size, and image headers are inspected before the full decode so an
// oversized image is rejected without allocating its pixels.
type HTTP struct {
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
	MaxPixels int64
}

// NewHTTP creates an HTTP source with default client and limits.
func NewHTTP() *HTTP {
	return &HTTP{
		Client:    &http.Client{Timeout: DefaultTimeout},
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
		MaxPixels: DefaultMaxPixels,
	}
}

// Load downloads the image at the given URL and decodes it, correcting for
// EXIF orientation.
func (h *HTTP) Load(ctx context.Context, imageURL string) (image.Image, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %v", ErrLoad, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported URL scheme %q", ErrLoad, parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	req.Header.Set("User-Agent", h.UserAgent)

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrLoad, resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: URL does not point to an image (Content-Type: %s)", ErrLoad, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if int64(len(data)) > h.MaxBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrLoad, h.MaxBytes)
	}

	// Header pre-flight: reject oversized images before decoding pixels
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unknown or unsupported format: %v", ErrLoad, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > h.MaxPixels {
		return nil, fmt.Errorf("%w: image %dx%d exceeds %d pixels", ErrLoad, cfg.Width, cfg.Height, h.MaxPixels)
	}

	orient := exifOrient(bytes.NewReader(data))

	img, err := decodeBytes(data)
	if err != nil {
		return nil, err
	}
	return reorient(orient, img), nil
}

// decodeBytes decodes image data with the registered decoders, falling back
// to the dedicated WebP decoder.
func decodeBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("%w: unknown or unsupported image format", ErrLoad)
}

// exifOrient reads the EXIF orientation tag, defaulting to 1 (upright) when
// the data carries no usable EXIF block.
func exifOrient(r io.Reader) int {
	x, err := exif.Decode(r)
	if err == nil && x != nil {
		orient, err := x.Get(exif.Orientation)
		if err == nil && orient != nil && orient.Count != 0 {
			if i, err := orient.Int(0); err == nil {
				return i
			}
		}
	}
	return 1
}

// reorient maps an EXIF orientation value onto the pixel transforms that
// bring the image upright.
func reorient(orient int, img image.Image) image.Image {
	switch orient {
	case 2:
		return imaging.FlipV(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.Rotate180(imaging.FlipV(img))
	case 5:
		return imaging.Rotate270(imaging.FlipV(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Rotate90(imaging.FlipV(img))
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}
