// Package pkg provides the libraries behind ghgmap, a zoomable treemap of
// greenhouse-gas emissions.
//
// # Overview
//
// ghgmap reads a flat Category/Parent/Value table, nests it into a category
// hierarchy and draws every category as a rectangle whose area is
// proportional to its emissions. Categories too small to label legibly can
// be zoomed into: a Zoom button rescales the chart so the small tiles fill
// the canvas, and a Back button (or any click) returns to the full view.
//
// The typical data flow:
//
//	CSV table (file or URL)
//	         ↓
//	    [io] + [hierarchy] (parse rows, build the tree)
//	         ↓
//	    [layout] (squarified treemap geometry)
//	         ↓
//	    [zoom] (Normal/Zoomed state, target frames, transitions)
//	         ↓
//	    [render/treemap] (scene: fills, wrapped labels, opacities)
//	         ↓
//	    SVG/HTML/PNG/PDF/JSON output
//
// # Quick Start
//
//	rows, _ := io.ImportCSV("emissions.csv")
//	tree, _ := hierarchy.Build(rows)
//
//	cfg := config.Default()
//	l := layout.Compute(tree, 1000, 600, cfg.LayoutOptions())
//
//	ctrl, _ := cfg.NewController(l, zoom.WithDuration(0))
//	ctrl.Toggle()
//
//	opts, _ := cfg.SceneOptions()
//	svg := sink.RenderSVG(treemap.BuildScene(l, ctrl.Frame(), opts))
//
// [pipeline] wraps these steps with caching and is what the CLI and the
// HTTP server call.
//
// # Main Packages
//
// [hierarchy] - Category tree built from rows. Leaf weights are their
// values; group weights are the sum of their children.
//
// [layout] - Squarified treemap layout with inner padding. Produces one
// [layout.Tile] per category.
//
// [zoom] - The zoom controller: eligibility predicates, the linear domain
// mapping from the targets' bounding box to the canvas, and animated
// transitions between states.
//
// [render/treemap] - Scene construction and label wrapping
// ([render/treemap/wrap]); output sinks live in [render/treemap/sink].
//
// [render/nodelink] - The category hierarchy as a Graphviz diagram.
//
// [render] - SVG to PDF/PNG conversion through rsvg-convert.
//
// [config] - TOML settings for canvas, colors, labels and zoom rules.
//
// [server] - HTTP API serving rendered charts and per-client zoom views
// kept in [session].
//
// [cache] - Memory, file, Redis and null caches shared by the pipeline and
// the session store. [httputil] caches downloaded datasets. Both connect
// through [retry].
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/layout
//
// [io]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/io
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/hierarchy
// [layout]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/layout
// [layout.Tile]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/layout#Tile
// [zoom]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/zoom
// [render]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/render
// [render/treemap]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/render/treemap
// [render/treemap/wrap]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/render/treemap/wrap
// [render/treemap/sink]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/render/treemap/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/server
// [session]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/httputil
// [retry]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/retry
// [errors]: https://pkg.go.dev/github.com/matzehuels/ghgmap/pkg/errors
package pkg
