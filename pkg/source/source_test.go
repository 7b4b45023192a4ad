package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// testPNG encodes a small gradient image as PNG bytes
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 11), 64, 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, testPNG(t, width, height), 0o644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}
	return path
}

func TestFileLoad(t *testing.T) {
	path := writeTestPNG(t, 40, 30)

	var f File
	img, err := f.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 40 || bounds.Dy() != 30 {
		t.Errorf("Expected 40x30 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestFileLoadMissing(t *testing.T) {
	var f File
	_, err := f.Load(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad for a missing file, got %v", err)
	}
}

func TestFileLoadNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not pixels"), 0o644); err != nil {
		t.Fatal(err)
	}

	var f File
	_, err := f.Load(context.Background(), path)
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad for a non-image file, got %v", err)
	}
}

func TestHTTPLoad(t *testing.T) {
	data := testPNG(t, 64, 48)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	img, err := NewHTTP().Load(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 48 {
		t.Errorf("Expected 64x48 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestHTTPLoadScheme(t *testing.T) {
	_, err := NewHTTP().Load(context.Background(), "ftp://example.com/image.png")
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad for an unsupported scheme, got %v", err)
	}
}

func TestHTTPLoadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewHTTP().Load(context.Background(), server.URL)
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad for HTTP 404, got %v", err)
	}
}

func TestHTTPLoadContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	_, err := NewHTTP().Load(context.Background(), server.URL)
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad for non-image content type, got %v", err)
	}
}

func TestHTTPLoadMaxBytes(t *testing.T) {
	data := testPNG(t, 64, 64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	h := NewHTTP()
	h.MaxBytes = 16

	_, err := h.Load(context.Background(), server.URL)
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad for oversized response, got %v", err)
	}
}

func TestHTTPLoadMaxPixels(t *testing.T) {
	data := testPNG(t, 64, 64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	h := NewHTTP()
	h.MaxPixels = 100

	_, err := h.Load(context.Background(), server.URL)
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad for too many pixels, got %v", err)
	}
}

func TestAutoDispatch(t *testing.T) {
	auto := NewAuto()

	path := writeTestPNG(t, 20, 20)
	if _, err := auto.Load(context.Background(), path); err != nil {
		t.Errorf("Expected file dispatch to succeed, got %v", err)
	}

	data := testPNG(t, 20, 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	if _, err := auto.Load(context.Background(), server.URL); err != nil {
		t.Errorf("Expected URL dispatch to succeed, got %v", err)
	}
}

func TestAutoWithHTTP(t *testing.T) {
	data := testPNG(t, 20, 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	// The tuned loader's limits apply through the dispatcher
	tuned := NewHTTP()
	tuned.MaxBytes = 10
	if _, err := NewAutoWithHTTP(tuned).Load(context.Background(), server.URL); !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad from the tuned size cap, got %v", err)
	}

	if _, err := NewAutoWithHTTP(nil).Load(context.Background(), server.URL); err != nil {
		t.Errorf("Expected nil loader to fall back to defaults, got %v", err)
	}
}

func TestExifOrientDefault(t *testing.T) {
	// PNG data carries no EXIF block
	if orient := exifOrient(bytes.NewReader(testPNG(t, 8, 8))); orient != 1 {
		t.Errorf("Expected default orientation 1, got %d", orient)
	}
}

func TestReorient(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 30, 10))

	// Orientations 5-8 swap the axes
	rotated := reorient(6, img)
	if rotated.Bounds().Dx() != 10 || rotated.Bounds().Dy() != 30 {
		t.Errorf("Expected 10x30 after reorienting, got %dx%d",
			rotated.Bounds().Dx(), rotated.Bounds().Dy())
	}

	// Orientation 1 is a no-op
	if got := reorient(1, img); got != image.Image(img) {
		t.Error("Expected orientation 1 to return the image unchanged")
	}
}
