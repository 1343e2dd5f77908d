// Package fonts provides the font used for treemap labels.
//
// Labels are set in Go Regular, which ships with golang.org/x/image and is
// compiled into the binary, so raster output and glyph-accurate text
// measurement work without any system fonts installed.
package fonts

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name of the embedded face.
const FontFamily = "Go"

// FallbackFontFamily is the font-family list used in SVG and HTML output.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// RegularTTF returns the TrueType font data.
func RegularTTF() []byte {
	return goregular.TTF
}

var (
	ttfBase64     string
	ttfBase64Once sync.Once
)

// RegularTTFBase64 returns the font data as a base64 string for embedding
// in an @font-face rule. The result is cached after first computation.
func RegularTTFBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}

var (
	source     *text.FontSource
	sourceErr  error
	sourceOnce sync.Once
)

// Source returns the parsed font shared by all faces. The font is parsed
// once on first use.
func Source() (*text.FontSource, error) {
	sourceOnce.Do(func() {
		source, sourceErr = text.NewFontSource(goregular.TTF)
		if sourceErr != nil {
			sourceErr = fmt.Errorf("parse go regular: %w", sourceErr)
		}
	})
	return source, sourceErr
}

// Face returns the label face at the given pixel size.
func Face(size float64) (text.Face, error) {
	src, err := Source()
	if err != nil {
		return nil, err
	}
	return src.Face(size), nil
}
