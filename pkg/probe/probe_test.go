package probe

import (
	"testing"
)

func TestParse(t *testing.T) {
	el, err := Parse(`<img src="photo.jpg">`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if el.Tag() != "img" {
		t.Errorf("Expected img element, got %s", el.Tag())
	}
}

func TestParseNoElement(t *testing.T) {
	if _, err := Parse("just some text"); err == nil {
		t.Error("Expected an error for a fragment without elements")
	}
}

func TestImageSource(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		source   string
		ok       bool
	}{
		{"img src", `<img src="photo.jpg">`, "photo.jpg", true},
		{"video poster", `<video poster="frame.png"></video>`, "frame.png", true},
		{"image input", `<input type="image" src="button.png">`, "button.png", true},
		{"text input", `<input type="text" src="button.png">`, "", false},
		{"object data", `<object data="figure.svg"></object>`, "figure.svg", true},
		{"embed src", `<embed src="clip.png">`, "clip.png", true},
		{"source src", `<source src="variant.webp">`, "variant.webp", true},
		{"background image", `<div style="background-image: url(bg.jpg)"></div>`, "bg.jpg", true},
		{"quoted url", `<div style="background-image: url('bg.jpg')"></div>`, "bg.jpg", true},
		{"double-quoted url", `<div style='background-image: url("bg.jpg")'></div>`, "bg.jpg", true},
		{"background none", `<div style="background-image: none"></div>`, "", false},
		{"plain div", `<div class="hero"></div>`, "", false},
		{"empty src", `<img src="">`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := Parse(tt.fragment)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			source, ok := el.ImageSource()
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v (source %q)", tt.ok, ok, source)
			}
			if source != tt.source {
				t.Errorf("Expected source %q, got %q", tt.source, source)
			}
		})
	}
}

func TestImageSourcePrecedence(t *testing.T) {
	// The inline background-image wins over the tag's own src
	el, err := Parse(`<img style="background-image: url(bg.jpg)" src="photo.jpg">`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	source, ok := el.ImageSource()
	if !ok || source != "bg.jpg" {
		t.Errorf("Expected background image to win, got %q (ok=%v)", source, ok)
	}
}

func TestContainerDimensions(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		width    int
		height   int
		ok       bool
	}{
		{"style px", `<div style="width: 800px; height: 600px"></div>`, 800, 600, true},
		{"attributes", `<img src="x.jpg" width="640" height="480">`, 640, 480, true},
		{"style wins", `<img src="x.jpg" style="width:300px;height:200px" width="640" height="480">`, 300, 200, true},
		{"fractional px", `<div style="width: 120.5px; height: 80.4px"></div>`, 121, 80, true},
		{"width only", `<div style="width: 800px"></div>`, 0, 0, false},
		{"percent units", `<div style="width: 100%; height: 50%"></div>`, 0, 0, false},
		{"no geometry", `<div></div>`, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := Parse(tt.fragment)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			dims, ok := el.ContainerDimensions()
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v (%+v)", tt.ok, ok, dims)
			}
			if dims.Width != tt.width || dims.Height != tt.height {
				t.Errorf("Expected %dx%d, got %dx%d", tt.width, tt.height, dims.Width, dims.Height)
			}
		})
	}
}

func TestAttr(t *testing.T) {
	el, err := Parse(`<img SRC="photo.jpg" data-x="1">`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if v, ok := el.Attr("src"); !ok || v != "photo.jpg" {
		t.Errorf("Expected case-insensitive attr lookup, got %q (ok=%v)", v, ok)
	}
	if _, ok := el.Attr("missing"); ok {
		t.Error("Expected missing attribute to report ok=false")
	}
}
