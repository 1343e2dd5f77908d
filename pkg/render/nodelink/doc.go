// Package nodelink renders the category hierarchy as a node-link diagram.
//
// # Overview
//
// The treemap shows how large categories are; this package shows how they
// nest. Every category becomes a box with an arrow from its parent, laid
// out left to right by Graphviz.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: include declared value and aggregated weight in labels
//   - Highlight: category names drawn with the highlight fill
//   - IncludeRoot: draw the synthetic root and its edges
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
