// Package probe resolves image identifiers and container geometry from HTML
// element fragments, the way a layout engine would inspect an element: the
// inline background-image declaration wins over tag-specific source
// attributes, and inline style sizes win over width/height attributes.
package probe

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mugendi/entropize/pkg/types"
)

// ErrNoSource is returned when an element carries no resolvable image
// identifier.
var ErrNoSource = errors.New("probe: no image source")

// Element is a parsed HTML element handle.
type Element struct {
	node *html.Node
}

// Parse parses an HTML fragment and returns a handle to its first element.
func Parse(fragment string) (*Element, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("probe: parse failed: %w", err)
	}

	for _, node := range nodes {
		if node.Type == html.ElementNode {
			return &Element{node: node}, nil
		}
	}
	return nil, fmt.Errorf("probe: no element in fragment")
}

// Tag returns the element's lowercase tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val, true
		}
	}
	return "", false
}

// ImageSource resolves the element's image identifier. The inline style's
// background-image URL takes precedence; otherwise the tag-specific source
// attribute is used (img/src, video/poster, input[type=image]/src,
// object/data, embed/src, source/src).
func (e *Element) ImageSource() (string, bool) {
	if style, ok := e.Attr("style"); ok {
		if value, ok := styleValue(style, "background-image"); ok {
			if url, ok := cssURL(value); ok {
				return url, true
			}
		}
	}

	attr := ""
	switch e.Tag() {
	case "img", "embed", "source":
		attr = "src"
	case "video":
		attr = "poster"
	case "object":
		attr = "data"
	case "input":
		if kind, _ := e.Attr("type"); strings.EqualFold(kind, "image") {
			attr = "src"
		}
	}
	if attr == "" {
		return "", false
	}

	value, ok := e.Attr(attr)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// ContainerDimensions resolves the element's container size. Inline style
// width/height take precedence over width/height attributes; ok is false
// unless both axes resolve to positive values.
func (e *Element) ContainerDimensions() (types.Dimensions, bool) {
	var width, height int
	var haveW, haveH bool

	if style, ok := e.Attr("style"); ok {
		if value, ok := styleValue(style, "width"); ok {
			width, haveW = parsePixels(value)
		}
		if value, ok := styleValue(style, "height"); ok {
			height, haveH = parsePixels(value)
		}
	}

	if !haveW {
		if value, ok := e.Attr("width"); ok {
			width, haveW = parsePixels(value)
		}
	}
	if !haveH {
		if value, ok := e.Attr("height"); ok {
			height, haveH = parsePixels(value)
		}
	}

	if !haveW || !haveH {
		return types.Dimensions{}, false
	}
	return types.Dimensions{Width: width, Height: height}, true
}

// styleValue extracts a declaration value from an inline style attribute.
func styleValue(style, property string) (string, bool) {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), property) {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

// cssURL unwraps a CSS url(...) value, tolerating quotes.
func cssURL(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(strings.ToLower(v), "url(") || !strings.HasSuffix(v, ")") {
		return "", false
	}
	inner := strings.Trim(strings.TrimSpace(v[4:len(v)-1]), `"'`)
	if inner == "" {
		return "", false
	}
	return inner, true
}

// parsePixels parses a px-suffixed or bare numeric length. Percentages and
// other units have no pixel meaning here and resolve to false.
func parsePixels(value string) (int, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	v = strings.TrimSuffix(v, "px")
	v = strings.TrimSpace(v)

	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int(math.Round(n)), true
}
