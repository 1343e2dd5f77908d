// Package render provides visualization rendering for category hierarchies.
//
// # Overview
//
// This package contains the rendering pipeline that turns a positioned
// category tree into visual output. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Treemap visualization (in [treemap] subpackage)
//   - Node-link hierarchy diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). The treemap PDF sink and the
// node-link renderer use them; treemap PNGs are drawn natively.
//
//	svg := sink.RenderSVG(scene)
//	pdf, err := render.ToPDF(ctx, svg)
//
// # Treemap Visualization
//
// The [treemap] subpackage turns a layout plus a zoom frame into a
// [treemap.Scene], a flat list of styled tiles with their label lines.
// Output formats live in [treemap/sink]; label wrapping in [treemap/wrap].
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage draws the category tree as a Graphviz diagram,
// useful for checking the shape of an input file before looking at areas.
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [treemap]: github.com/matzehuels/ghgmap/pkg/render/treemap
// [treemap/sink]: github.com/matzehuels/ghgmap/pkg/render/treemap/sink
// [treemap/wrap]: github.com/matzehuels/ghgmap/pkg/render/treemap/wrap
// [nodelink]: github.com/matzehuels/ghgmap/pkg/render/nodelink
package render
