// Package treemap turns a positioned category tree into drawable tiles.
//
// [BuildScene] combines a [layout.Layout] with a [zoom.Frame] and the
// visual settings in [Options] to produce a [Scene]: one [SceneTile] per
// drawn category with its rectangle, fill, wrapped label lines and label
// opacities. Scenes carry no state between calls, so the same inputs always
// produce the same scene; the sinks in the sink subpackage turn a scene
// into SVG, HTML, PNG, PDF or JSON.
//
// # Labels
//
// Two label modes are supported. [LabelWrap] wraps the category name to the
// tile's layout width once and keeps those lines while the tile animates,
// with the value on a separate line below. [LabelBlock] re-flows the name
// and value together into the tile's current width on every frame.
//
// [layout.Layout]: github.com/matzehuels/ghgmap/pkg/layout.Layout
// [zoom.Frame]: github.com/matzehuels/ghgmap/pkg/zoom.Frame
package treemap

import (
	"slices"

	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/render/treemap/wrap"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// LabelMode selects how tile labels are laid out.
type LabelMode string

const (
	LabelWrap  LabelMode = "wrap"
	LabelBlock LabelMode = "block"
)

// ParseLabelMode validates a label mode name.
func ParseLabelMode(s string) (LabelMode, error) {
	switch m := LabelMode(s); m {
	case LabelWrap, LabelBlock:
		return m, nil
	case "":
		return LabelWrap, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidConfig, "unknown label mode %q (want wrap or block)", s)
	}
}

// FillNone marks a tile without fill.
const FillNone = "none"

// Label placement inside a tile, in pixels from the tile's top-left corner.
const (
	LabelInsetX   = 4.0
	LabelBaseline = 14.0
	ValueBaseline = 30.0
)

// Style holds colors and type sizes.
type Style struct {
	Background    string  `json:"background"`
	Highlight     string  `json:"highlight"`
	Stroke        string  `json:"stroke"`
	Text          string  `json:"text"`
	StrokeWidth   float64 `json:"stroke_width"`
	FontSize      float64 `json:"font_size"`
	ValueFontSize float64 `json:"value_font_size"`
	LineHeight    float64 `json:"line_height"`
}

// DefaultStyle returns the dark theme.
func DefaultStyle() Style {
	return Style{
		Background:    "#0F0F0F",
		Highlight:     "#7c4dff",
		Stroke:        "#ffffff",
		Text:          "#ffffff",
		StrokeWidth:   0.5,
		FontSize:      15,
		ValueFontSize: 12,
		LineHeight:    15,
	}
}

// Options configures BuildScene.
type Options struct {
	Style       Style
	Highlight   []string       // categories drawn with the highlight fill
	LabelMode   LabelMode      // defaults to LabelWrap
	Measurer    wrap.Measurer  // defaults to wrap.ConstantWidth(6)
	IncludeRoot bool           // draw the synthetic root tile
	Eligible    zoom.Predicate // marks tiles that react to clicks
	Zoomed      *zoom.Frame    // end frame of the zoom, attached to tiles when set
}

// SceneTile is one drawable tile.
type SceneTile struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Value        string       `json:"value,omitempty"`
	Depth        int          `json:"depth"`
	Rect         layout.Rect  `json:"rect"`
	Base         layout.Rect  `json:"base"`
	Zoomed       *layout.Rect `json:"zoomed,omitempty"`
	Fill         string       `json:"fill"`
	Highlight    bool         `json:"highlight,omitempty"`
	Eligible     bool         `json:"eligible,omitempty"`
	Lines        []string     `json:"lines"`
	LabelOpacity float64      `json:"label_opacity"`
	ValueOpacity float64      `json:"value_opacity"`
	// Zoomed-state opacities, set together with Zoomed.
	ZoomedLabelOpacity float64 `json:"zoomed_label_opacity,omitempty"`
	ZoomedValueOpacity float64 `json:"zoomed_value_opacity,omitempty"`
}

// Scene is a drawable snapshot of the treemap.
type Scene struct {
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	State     zoom.State  `json:"state"`
	Button    string      `json:"button"`
	LabelMode LabelMode   `json:"label_mode"`
	Style     Style       `json:"style"`
	Tiles     []SceneTile `json:"tiles"`
}

// BuildScene assembles the scene for one frame. frame must come from a
// controller over l; tiles missing from the frame are drawn at their
// layout position with full opacity.
func BuildScene(l *layout.Layout, frame zoom.Frame, opts Options) Scene {
	opts = withDefaults(opts)

	highlight := make(map[string]bool, len(opts.Highlight))
	for _, h := range opts.Highlight {
		highlight[h] = true
	}
	frames := make(map[string]zoom.TileFrame, len(frame.Tiles))
	for _, tf := range frame.Tiles {
		frames[tf.ID] = tf
	}
	var zoomed map[string]zoom.TileFrame
	if opts.Zoomed != nil {
		zoomed = make(map[string]zoom.TileFrame, len(opts.Zoomed.Tiles))
		for _, tf := range opts.Zoomed.Tiles {
			zoomed[tf.ID] = tf
		}
	}

	s := Scene{
		Width:     l.Width,
		Height:    l.Height,
		State:     frame.State,
		Button:    buttonLabel(frame.State),
		LabelMode: opts.LabelMode,
		Style:     opts.Style,
		Tiles:     make([]SceneTile, 0, len(l.Tiles)),
	}

	for _, t := range l.Tiles {
		if t.ID == hierarchy.RootName && t.ParentID == "" && !opts.IncludeRoot {
			continue
		}
		tf, ok := frames[t.ID]
		if !ok {
			tf = zoom.TileFrame{ID: t.ID, Rect: t.Rect, LabelOpacity: 1, ValueOpacity: 1}
		}

		st := SceneTile{
			ID:           t.ID,
			Name:         t.Name,
			Value:        t.DisplayValue(),
			Depth:        t.Depth,
			Rect:         tf.Rect,
			Base:         t.Rect,
			Fill:         FillNone,
			Highlight:    highlight[t.Name],
			Eligible:     opts.Eligible(t),
			LabelOpacity: tf.LabelOpacity,
			ValueOpacity: tf.ValueOpacity,
		}
		if st.Highlight {
			st.Fill = opts.Style.Highlight
		}
		if z, ok := zoomed[t.ID]; ok {
			r := z.Rect
			st.Zoomed = &r
			st.ZoomedLabelOpacity = z.LabelOpacity
			st.ZoomedValueOpacity = z.ValueOpacity
		}

		switch opts.LabelMode {
		case LabelBlock:
			st.Lines = blockLines(t, tf.Rect.W(), opts.Measurer)
		default:
			st.Lines = wrap.Wrap(t.Name, t.Rect.W(), opts.Measurer)
		}
		s.Tiles = append(s.Tiles, st)
	}
	return s
}

// blockLines flows the name and the value into one text block.
func blockLines(t layout.Tile, width float64, m wrap.Measurer) []string {
	lines := wrap.Wrap(t.Name, width-2*LabelInsetX, m)
	if v := t.DisplayValue(); v != "" {
		lines = append(slices.Clip(lines), v)
	}
	return lines
}

func withDefaults(opts Options) Options {
	def := DefaultStyle()
	if opts.Style == (Style{}) {
		opts.Style = def
	}
	if opts.Style.LineHeight <= 0 {
		opts.Style.LineHeight = def.LineHeight
	}
	if opts.Style.FontSize <= 0 {
		opts.Style.FontSize = def.FontSize
	}
	if opts.Style.ValueFontSize <= 0 {
		opts.Style.ValueFontSize = def.ValueFontSize
	}
	if opts.LabelMode == "" {
		opts.LabelMode = LabelWrap
	}
	if opts.Measurer == nil {
		opts.Measurer = wrap.ConstantWidth(wrap.DefaultCharWidth)
	}
	if opts.Eligible == nil {
		opts.Eligible = zoom.None
	}
	return opts
}

func buttonLabel(s zoom.State) string {
	if s == zoom.Zoomed {
		return zoom.LabelBack
	}
	return zoom.LabelZoom
}
