// Package wrap breaks tile labels into lines that fit a tile's width.
//
// Wrapping is greedy and word based: words are separated by single spaces
// and never split, so a word wider than the target still gets a line of its
// own. How wide a piece of text is depends on the [Measurer]:
// [ConstantWidth] approximates every character with the same advance,
// [GlyphMeasurer] uses the real glyph advances of the label font.
package wrap

import (
	"strings"
	"unicode/utf8"

	"github.com/gogpu/gg/text"

	"github.com/matzehuels/ghgmap/pkg/fonts"
)

// DefaultCharWidth is the per-character advance used by the constant-width
// approximation.
const DefaultCharWidth = 6.0

// Measurer estimates the rendered width of a string in pixels.
type Measurer interface {
	Width(s string) float64
}

// MeasurerFunc adapts a function to a Measurer.
type MeasurerFunc func(s string) float64

func (f MeasurerFunc) Width(s string) float64 { return f(s) }

// ConstantWidth measures text as its character count times a fixed
// per-character advance.
type ConstantWidth float64

func (c ConstantWidth) Width(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * float64(c)
}

// GlyphMeasurer measures text with the advance widths of a font face.
type GlyphMeasurer struct {
	face text.Face
}

// NewGlyphMeasurer returns a measurer for the embedded label font at the
// given pixel size.
func NewGlyphMeasurer(size float64) (*GlyphMeasurer, error) {
	face, err := fonts.Face(size)
	if err != nil {
		return nil, err
	}
	return NewFaceMeasurer(face), nil
}

// NewFaceMeasurer returns a measurer backed by an arbitrary face.
func NewFaceMeasurer(face text.Face) *GlyphMeasurer {
	return &GlyphMeasurer{face: face}
}

func (g *GlyphMeasurer) Width(s string) float64 { return g.face.Advance(s) }

// Wrap splits label into lines no wider than width according to m.
//
// A candidate line is accepted only while its measured width is strictly
// below width. The first word of every line is always accepted, so
// strings.Join(Wrap(label, w, m), " ") == label for any w.
func Wrap(label string, width float64, m Measurer) []string {
	if m == nil {
		m = ConstantWidth(DefaultCharWidth)
	}
	words := strings.Split(label, " ")
	lines := make([]string, 0, len(words))

	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.Width(candidate) < width {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
