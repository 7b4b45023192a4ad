// Package source resolves image identifiers into decoded pixel data. A
// source identifier is either a filesystem path or an http(s) URL; the Auto
// source picks the right loader by inspecting the identifier at runtime.
package source

import (
	"context"
	"errors"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrLoad is returned when an identifier cannot be resolved or decoded.
// Every failure path of every source wraps it, so callers can match the
// kind with errors.Is regardless of the underlying cause.
var ErrLoad = errors.New("source: load failed")

// Source loads pixel data from a source identifier.
type Source interface {
	Load(ctx context.Context, identifier string) (image.Image, error)
}

// Auto dispatches to an HTTP or file loader depending on the identifier.
type Auto struct {
	file *File
	http *HTTP
}

// NewAuto creates an Auto source with default file and HTTP loaders.
func NewAuto() *Auto {
	return &Auto{
		file: &File{},
		http: NewHTTP(),
	}
}

// NewAutoWithHTTP creates an Auto source that uses the given HTTP loader for
// URLs. Nil falls back to the default loader.
func NewAutoWithHTTP(h *HTTP) *Auto {
	if h == nil {
		h = NewHTTP()
	}
	return &Auto{
		file: &File{},
		http: h,
	}
}

// Load resolves the identifier with the HTTP loader for http(s) URLs and
// the file loader otherwise.
func (a *Auto) Load(ctx context.Context, identifier string) (image.Image, error) {
	if strings.HasPrefix(identifier, "http://") || strings.HasPrefix(identifier, "https://") {
		return a.http.Load(ctx, identifier)
	}
	return a.file.Load(ctx, identifier)
}
