// Package pipeline provides the load → layout → render pipeline for ghgmap.
//
// The CLI commands and the HTTP server share this package so every entry
// point reads the CSV, lays out the treemap and renders artifacts the same
// way, with the same caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the emissions CSV and build the category tree
//  2. Layout: Compute the squarified treemap for a canvas size
//  3. Render: Generate output in various formats (SVG, HTML, PNG, PDF, JSON, DOT)
//
// Each stage is cached by a hash of its inputs and can be run on its own.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "emissions.csv",
//	    Width:   cfg.Canvas.Width,
//	    Height:  cfg.Canvas.Height,
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	tree, err := runner.LoadTree(ctx, opts)
//	l, err := runner.ComputeLayout(ctx, tree, opts)
//	artifacts, err := runner.Render(ctx, tree, l, opts)
package pipeline

import (
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghgmap/pkg/cache"
	"github.com/matzehuels/ghgmap/pkg/config"
	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// Visualization types.
const (
	// VizTreemap draws the emissions as nested rectangles.
	VizTreemap = "treemap"
	// VizHierarchy draws the category tree as a Graphviz node-link diagram.
	VizHierarchy = "hierarchy"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTreemap

// DefaultScale is the default PNG pixel density.
const DefaultScale = 2.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats lists the supported output formats per visualization type.
var ValidFormats = map[string][]string{
	VizTreemap:   {FormatSVG, FormatHTML, FormatPNG, FormatPDF, FormatJSON},
	VizHierarchy: {FormatSVG, FormatPNG, FormatPDF, FormatDOT},
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options. Data takes precedence over Input when both are set.
	Input   string `json:"input,omitempty"`
	Data    []byte `json:"-"`
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options. Sizes are taken as given and zero lays out an empty
	// canvas; callers fill in the configured canvas when no size was asked for.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Render options
	VizType        string     `json:"viz_type,omitempty"`
	Formats        []string   `json:"formats,omitempty"`
	State          zoom.State `json:"state"`
	Scale          float64    `json:"scale,omitempty"`
	Interactive    bool       `json:"interactive,omitempty"`
	Title          string     `json:"title,omitempty"`
	ResizeEndpoint string     `json:"resize_endpoint,omitempty"`

	// Runtime options (not serialized)
	Config *config.Config `json:"-"`
	Logger *log.Logger    `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the category hierarchy.
	Tree *hierarchy.Tree

	// TreeHash is the content hash of the tree rows.
	TreeHash string

	// Layout is nil for the hierarchy visualization, which has no layout
	// stage.
	Layout *layout.Layout

	// LayoutHash is the content hash of the serialized layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	TileCount  int
	MaxDepth   int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the tree came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if _, ok := ValidFormats[vizType]; !ok {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid viz type %q (must be one of: %s, %s)", vizType, VizTreemap, VizHierarchy)
	}
	return nil
}

// ValidateFormat checks that a format is valid for the visualization type.
func ValidateFormat(vizType, format string) error {
	valid := ValidFormats[vizType]
	if !slices.Contains(valid, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid %s format %q (must be one of: %s)", vizType, format, strings.Join(valid, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(vizType string, formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(vizType, f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that an input was given.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" && o.Data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "input file is required")
	}
	o.setCommonDefaults()
	return nil
}

// ValidateForLayout checks the canvas size.
func (o *Options) ValidateForLayout() error {
	o.setCommonDefaults()
	return errors.ValidateDimensions(o.Width, o.Height)
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.VizType, o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	if o.State != zoom.Normal && o.State != zoom.Zoomed {
		return errors.New(errors.ErrCodeInvalidInput, "invalid zoom state %d", int(o.State))
	}
	return nil
}

func (o *Options) setCommonDefaults() {
	if o.Config == nil {
		cfg := config.Default()
		o.Config = &cfg
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsTreemap returns true if this is a treemap visualization.
func (o *Options) IsTreemap() bool {
	return o.VizType == "" || o.VizType == VizTreemap
}

// IsHierarchy returns true if this is a node-link hierarchy visualization.
func (o *Options) IsHierarchy() bool {
	return o.VizType == VizHierarchy
}

// Source names the input for logs and hooks.
func (o *Options) Source() string {
	if o.Data != nil {
		return "<data>"
	}
	return o.Input
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:        o.Width,
		Height:       o.Height,
		PaddingInner: o.Config.Canvas.PaddingInner,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. The
// settings file hash and the page options are folded into ConfigHash.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	settings := strings.Join([]string{
		o.Config.Hash(),
		strconv.FormatBool(o.Interactive),
		o.Title,
		o.ResizeEndpoint,
	}, "\x00")
	opts := cache.ArtifactKeyOpts{
		VizType:    o.VizType,
		Format:     format,
		ConfigHash: cache.Hash([]byte(settings)),
	}
	if o.IsTreemap() {
		opts.State = o.State.String()
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
