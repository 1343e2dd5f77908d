package sink

import (
	"context"
	"slices"

	"github.com/matzehuels/ghgmap/pkg/render"
	"github.com/matzehuels/ghgmap/pkg/render/treemap"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// RenderPDF renders the scene as PDF via SVG conversion. The zoom button
// and script are never included; a PDF shows one frame.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, s treemap.Scene, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	svgOpts := slices.Concat(r.svgOpts, []SVGOption{WithoutButton(), WithoutScript()})
	svg := RenderSVG(s, svgOpts...)
	return render.ToPDF(ctx, svg)
}
