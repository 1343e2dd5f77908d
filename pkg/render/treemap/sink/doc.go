// Package sink provides output format renderers for treemap scenes.
//
// # Overview
//
// A "sink" transforms a [treemap.Scene] into a final output format. This
// package provides renderers for:
//
//   - SVG: Vector output with browser-side zoom
//   - HTML: A page embedding the SVG with the Zoom/Back button
//   - PNG: Raster image of one frame, drawn in-process
//   - PDF: Print-ready output (requires rsvg-convert)
//   - JSON: Layout data export for external tools
//
// # SVG Output
//
// [RenderSVG] writes one group per tile. Each group records its normal
// geometry and, when the scene was built with a zoom preview, its zoomed
// geometry as data attributes. With [WithInteraction] the SVG also carries
// a small script that swaps between the two on click, with CSS transitions
// doing the animation:
//
//	svg := sink.RenderSVG(scene,
//	    sink.WithInteraction(750*time.Millisecond, "cubic-in-out"),
//	    sink.WithEmbeddedFont(),
//	)
//
// # HTML Output
//
// [RenderHTML] wraps the SVG in a page with a toggle button. When served,
// [WithResizeEndpoint] makes the page fetch a freshly laid out SVG from the
// server whenever the window size changes.
//
// # PNG and PDF Output
//
// [RenderPNG] rasterizes the scene's current frame with gogpu/gg, so it
// needs no external tools. [RenderPDF] converts the SVG through
// [render.ToPDF], which requires librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [treemap.Scene]: github.com/matzehuels/ghgmap/pkg/render/treemap.Scene
// [render.ToPDF]: github.com/matzehuels/ghgmap/pkg/render.ToPDF
package sink
