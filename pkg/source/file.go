package source

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// File loads images from the local filesystem with EXIF auto-orientation
// and a WebP fallback for files the registered decoders reject.
type File struct{}

// Load decodes the image at the given path.
func (f *File) Load(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	// Registered decoders first, honoring EXIF orientation
	if img, err := imaging.Open(path, imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer file.Close()

	if strings.Contains(strings.ToLower(path), ".webp") {
		if img, err := webp.Decode(file); err == nil {
			return img, nil
		}
		if _, err := file.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(file); err == nil {
				return img, nil
			}
		}
	} else {
		if _, err := file.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(file); err == nil {
				return img, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: unknown image format for %s", ErrLoad, path)
}
