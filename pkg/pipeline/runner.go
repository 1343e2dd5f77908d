package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghgmap/pkg/cache"
	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/httputil"
	pkgio "github.com/matzehuels/ghgmap/pkg/io"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Fetcher downloads inputs given as http(s) URLs.
	Fetcher *httputil.Fetcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: httputil.NewFetcher(nil),
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
// The hierarchy visualization skips the layout stage.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	tree, loadHit, err := r.LoadTreeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Tree = tree
	result.TreeHash = tree.Hash()
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = tree.Len()
	result.Stats.MaxDepth = tree.MaxDepth()
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded categories",
		"source", opts.Source(),
		"categories", tree.Len(),
		"depth", tree.MaxDepth(),
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	if opts.IsTreemap() {
		layoutStart := time.Now()
		l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, tree, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		result.Layout = l
		if data, err := layout.MarshalLayout(l); err == nil {
			result.LayoutHash = cache.Hash(data)
		}
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.Stats.TileCount = len(l.Tiles)
		result.CacheInfo.LayoutHit = layoutHit

		r.Logger.Info("computed layout",
			"tiles", len(l.Tiles),
			"width", opts.Width,
			"height", opts.Height,
			"cached", layoutHit,
			"duration", result.Stats.LayoutTime)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, tree, result.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"viz", opts.VizType,
		"formats", opts.Formats,
		"state", opts.State,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadTreeWithCacheInfo reads the input and builds the category tree,
// returning whether the tree came from cache. Trees are keyed by the hash
// of the raw input bytes.
func (r *Runner) LoadTreeWithCacheInfo(ctx context.Context, opts Options) (tree *hierarchy.Tree, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	source := opts.Source()
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)
	defer func() {
		n := 0
		if tree != nil {
			n = tree.Len()
		}
		observability.Pipeline().OnLoadComplete(ctx, source, n, time.Since(start), err)
	}()

	data, err := r.readInput(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.TreeKey(cache.Hash(data))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, ok := r.get(ctx, "tree", cacheKey); ok {
			if t, err := hierarchy.UnmarshalTree(cached); err == nil {
				return t, true, nil
			}
			opts.Logger.Debug("discarding undecodable cached tree", "key", cacheKey)
		}
	}

	rows, err := pkgio.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", source, err)
	}
	tree, err = hierarchy.Build(rows)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", source, err)
	}

	if encoded, err := tree.MarshalBinary(); err == nil {
		r.set(ctx, "tree", cacheKey, encoded, cache.TTLTree)
	}
	return tree, false, nil
}

// readInput returns the raw CSV bytes from opts.Data, a URL or a file.
func (r *Runner) readInput(ctx context.Context, opts Options) ([]byte, error) {
	if opts.Data != nil {
		return opts.Data, nil
	}
	if httputil.IsURL(opts.Input) {
		fetcher := r.Fetcher
		if fetcher == nil {
			fetcher = httputil.NewFetcher(nil)
		}
		data, err := fetcher.Fetch(ctx, opts.Input)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "fetch %s", opts.Input)
		}
		return data, nil
	}
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", opts.Input)
		}
		return nil, fmt.Errorf("read %s: %w", opts.Input, err)
	}
	return data, nil
}

// LoadTree is a convenience wrapper that calls LoadTreeWithCacheInfo and discards the cache hit info.
func (r *Runner) LoadTree(ctx context.Context, opts Options) (*hierarchy.Tree, error) {
	t, _, err := r.LoadTreeWithCacheInfo(ctx, opts)
	return t, err
}

// ComputeLayoutWithCacheInfo lays out the tree for the canvas in opts and
// returns whether the layout came from cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, tree *hierarchy.Tree, opts Options) (l *layout.Layout, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, tree.Len(), opts.Width, opts.Height)
	defer func() {
		n := 0
		if l != nil {
			n = len(l.Tiles)
		}
		observability.Pipeline().OnLayoutComplete(ctx, n, time.Since(start), err)
	}()

	cacheKey := r.Keyer.LayoutKey(tree.Hash(), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.get(ctx, "layout", cacheKey); ok {
			if cached, err := layout.UnmarshalLayout(data); err == nil {
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	l = layout.Compute(tree, opts.Width, opts.Height, opts.Config.LayoutOptions())

	if data, err := layout.MarshalLayout(l); err == nil {
		r.set(ctx, "layout", cacheKey, data, cache.TTLLayout)
	}
	return l, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, tree *hierarchy.Tree, opts Options) (*layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, tree, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns whether
// every requested format came from cache. The treemap needs l; the
// hierarchy visualization only uses tree and keys its artifacts by the
// tree hash.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, tree *hierarchy.Tree, l *layout.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	var keyHash string
	if opts.IsTreemap() {
		if l == nil {
			return nil, false, errors.New(errors.ErrCodeInvalidInput, "treemap rendering requires a layout")
		}
		data, err := layout.MarshalLayout(l)
		if err != nil {
			return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
		}
		keyHash = cache.Hash(data)
	} else {
		if tree == nil {
			return nil, false, errors.New(errors.ErrCodeInvalidInput, "hierarchy rendering requires a tree")
		}
		keyHash = tree.Hash()
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	// Try to get all formats from cache
	if !opts.Refresh {
		cached := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, ok := r.get(ctx, "artifact", r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format)))
			if !ok {
				break
			}
			cached[format] = data
		}
		if len(cached) == len(opts.Formats) {
			return cached, true, nil
		}
	}

	var rendered map[string][]byte
	if opts.IsTreemap() {
		rendered, err = RenderTreemap(ctx, l, opts)
	} else {
		rendered, err = RenderHierarchy(ctx, tree, opts)
	}
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.set(ctx, "artifact", r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, tree *hierarchy.Tree, l *layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, tree, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads a cache entry, reporting backend errors as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

// set writes a cache entry. Write failures only cost a recomputation later,
// so they are logged and dropped.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
