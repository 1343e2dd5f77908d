package config

import (
	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/render/treemap"
	"github.com/matzehuels/ghgmap/pkg/render/treemap/wrap"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// ZoomPredicate returns the predicate selecting zoom targets, which is also
// the predicate deciding which tiles react to clicks.
func (c Config) ZoomPredicate() zoom.Predicate {
	if c.Zoom.Policy == PolicyNames {
		return zoom.NameIn(c.Zoom.Names...)
	}
	return zoom.ValueBelow(c.Zoom.Threshold)
}

// LabelRules returns the predicates for names and values that are only
// visible while zoomed.
func (c Config) LabelRules() (names, values zoom.Predicate) {
	return zoom.NameIn(c.Labels.ZoomOnlyNames...), zoom.DisplayValueIn(c.Labels.ZoomOnlyValues...)
}

// ZoomOptions returns the controller options for duration, easing and
// label rules.
func (c Config) ZoomOptions() ([]zoom.Option, error) {
	ease, err := zoom.EasingByName(c.Zoom.Easing)
	if err != nil {
		return nil, err
	}
	names, values := c.LabelRules()
	return []zoom.Option{
		zoom.WithDuration(c.Duration()),
		zoom.WithEasing(ease),
		zoom.WithLabelRules(names, values),
	}, nil
}

// NewController builds a zoom controller over l with these settings plus
// any extra options.
func (c Config) NewController(l *layout.Layout, extra ...zoom.Option) (*zoom.Controller, error) {
	opts, err := c.ZoomOptions()
	if err != nil {
		return nil, err
	}
	return zoom.New(l, c.ZoomPredicate(), append(opts, extra...)...), nil
}

// LayoutOptions returns the layout settings.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{PaddingInner: c.Canvas.PaddingInner}
}

// Style returns colors and type sizes.
func (c Config) Style() treemap.Style {
	return treemap.Style{
		Background:    c.Colors.Background,
		Highlight:     c.Colors.Highlight,
		Stroke:        c.Colors.Stroke,
		Text:          c.Colors.Text,
		StrokeWidth:   c.Colors.StrokeWidth,
		FontSize:      c.Labels.FontSize,
		ValueFontSize: c.Labels.ValueFontSize,
		LineHeight:    c.Labels.LineHeight,
	}
}

// Measurer returns the label width measurer.
func (c Config) Measurer() (wrap.Measurer, error) {
	if c.Labels.Measure == MeasureGlyph {
		g, err := wrap.NewGlyphMeasurer(c.Labels.FontSize)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return wrap.ConstantWidth(c.Labels.CharWidth), nil
}

// SceneOptions returns the renderer options. Eligibility and the zoom
// preview are attached by the caller, which owns the controller.
func (c Config) SceneOptions() (treemap.Options, error) {
	mode, err := treemap.ParseLabelMode(c.Labels.Mode)
	if err != nil {
		return treemap.Options{}, err
	}
	m, err := c.Measurer()
	if err != nil {
		return treemap.Options{}, err
	}
	return treemap.Options{
		Style:       c.Style(),
		Highlight:   c.Highlight.Names,
		LabelMode:   mode,
		Measurer:    m,
		IncludeRoot: c.Canvas.IncludeRoot,
	}, nil
}
