package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ghgmap/pkg/config"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/render/nodelink"
	"github.com/matzehuels/ghgmap/pkg/render/treemap"
	"github.com/matzehuels/ghgmap/pkg/render/treemap/sink"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// NewController builds a zoom controller over l in the given state. The
// zoomed state is reached through Activate, so a layout without zoom
// targets stays Normal.
func NewController(l *layout.Layout, cfg config.Config, state zoom.State, extra ...zoom.Option) (*zoom.Controller, error) {
	c, err := cfg.NewController(l, extra...)
	if err != nil {
		return nil, err
	}
	if state == zoom.Zoomed {
		c.Activate()
	}
	return c, nil
}

// BuildScene assembles the drawable scene for the controller's current
// state. Tiles are placed where the running transition ends, and each tile
// carries its zoomed geometry so interactive outputs can animate in the
// browser.
func BuildScene(c *zoom.Controller, cfg config.Config) (treemap.Scene, error) {
	opts, err := cfg.SceneOptions()
	if err != nil {
		return treemap.Scene{}, err
	}
	opts.Eligible = c.Eligible
	if preview, ok := c.Preview(); ok {
		opts.Zoomed = &preview
	}
	return treemap.BuildScene(c.Layout(), c.FinalFrame(), opts), nil
}

// RenderTreemap renders the treemap in the requested state to every
// requested format. Formats are rendered concurrently.
func RenderTreemap(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	c, err := NewController(l, *opts.Config, opts.State, zoom.WithDuration(0))
	if err != nil {
		return nil, err
	}
	s, err := BuildScene(c, *opts.Config)
	if err != nil {
		return nil, err
	}
	box, hasBox := zoom.BoundingBox(c.Targets())

	return renderConcurrently(ctx, opts.Formats, func(ctx context.Context, format string) ([]byte, error) {
		var b *layout.Rect
		if hasBox {
			b = &box
		}
		return RenderScene(ctx, s, b, format, opts)
	})
}

// RenderScene renders one treemap format. box is the zoom target region
// recorded in JSON output and may be nil.
func RenderScene(ctx context.Context, s treemap.Scene, box *layout.Rect, format string, opts Options) ([]byte, error) {
	cfg := opts.Config
	switch format {
	case FormatSVG:
		var svgOpts []sink.SVGOption
		if opts.Interactive {
			svgOpts = append(svgOpts,
				sink.WithInteraction(cfg.Duration(), cfg.Zoom.Easing),
				sink.WithEmbeddedFont())
		}
		return sink.RenderSVG(s, svgOpts...), nil
	case FormatHTML:
		htmlOpts := []sink.HTMLOption{sink.WithTransition(cfg.Duration(), cfg.Zoom.Easing)}
		if opts.Title != "" {
			htmlOpts = append(htmlOpts, sink.WithTitle(opts.Title))
		}
		if opts.ResizeEndpoint != "" {
			htmlOpts = append(htmlOpts, sink.WithResizeEndpoint(opts.ResizeEndpoint))
		}
		return sink.RenderHTML(s, htmlOpts...), nil
	case FormatPNG:
		return sink.RenderPNG(s, sink.WithScale(opts.Scale))
	case FormatPDF:
		return sink.RenderPDF(ctx, s)
	case FormatJSON:
		jsonOpts := []sink.JSONOption{sink.WithJSONStyle()}
		if box != nil {
			jsonOpts = append(jsonOpts, sink.WithJSONZoomBox(*box))
		}
		return sink.RenderJSON(s, jsonOpts...)
	default:
		return nil, fmt.Errorf("unsupported treemap format: %s", format)
	}
}

// RenderHierarchy draws the category tree as a node-link diagram.
func RenderHierarchy(ctx context.Context, t *hierarchy.Tree, opts Options) (map[string][]byte, error) {
	cfg := opts.Config
	dot := nodelink.ToDOT(t, nodelink.Options{
		Detailed:       true,
		Highlight:      cfg.Highlight.Names,
		HighlightColor: cfg.Colors.Highlight,
		IncludeRoot:    cfg.Canvas.IncludeRoot,
	})

	return renderConcurrently(ctx, opts.Formats, func(ctx context.Context, format string) ([]byte, error) {
		switch format {
		case FormatDOT:
			return []byte(dot), nil
		case FormatSVG:
			return nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			return nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			return nodelink.RenderPDF(ctx, dot)
		default:
			return nil, fmt.Errorf("unsupported hierarchy format: %s", format)
		}
	})
}

type renderFunc func(ctx context.Context, format string) ([]byte, error)

func renderConcurrently(ctx context.Context, formats []string, fn renderFunc) (map[string][]byte, error) {
	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		g.Go(func() error {
			data, err := fn(gctx, format)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}
