package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/render"
)

// DefaultHighlightColor fills highlighted categories.
const DefaultHighlightColor = "#7c4dff"

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the declared value and aggregated weight to labels.
	Detailed bool
	// Highlight lists categories filled with HighlightColor.
	Highlight []string
	// HighlightColor defaults to DefaultHighlightColor.
	HighlightColor string
	// IncludeRoot draws the synthetic root node.
	IncludeRoot bool
}

// ToDOT converts a category tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(t *hierarchy.Tree, opts Options) string {
	color := opts.HighlightColor
	if color == "" {
		color = DefaultHighlightColor
	}
	highlight := make(map[string]bool, len(opts.Highlight))
	for _, h := range opts.Highlight {
		highlight[h] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	nodes := t.Descendants()
	for _, n := range nodes {
		if n == t.Root && !opts.IncludeRoot {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		switch {
		case highlight[n.Name]:
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color), "fontcolor=white")
		case n == t.Root:
			attrs = append(attrs, "style=\"rounded,dashed\"")
		case !n.IsLeaf():
			attrs = append(attrs, "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		if n.Parent == nil || (n.Parent == t.Root && !opts.IncludeRoot) {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", n.Parent.Name, n.Name)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *hierarchy.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{n.Name}
	if n.HasValue() {
		parts = append(parts, "value: "+n.DisplayValue())
	}
	if !n.IsLeaf() {
		parts = append(parts, "weight: "+hierarchy.FormatValue(n.Weight()))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin, so the diagram scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
