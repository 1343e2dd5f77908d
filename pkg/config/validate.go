package config

import (
	"math"
	"regexp"
	"time"

	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/render/treemap"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c Config) Validate() error {
	if !positive(c.Canvas.Width) || !positive(c.Canvas.Height) {
		return invalid("canvas size must be positive, got %vx%v", c.Canvas.Width, c.Canvas.Height)
	}
	if !nonNegative(c.Canvas.PaddingInner) {
		return invalid("canvas.padding_inner cannot be negative, got %v", c.Canvas.PaddingInner)
	}

	for _, f := range []struct{ key, v string }{
		{"colors.background", c.Colors.Background},
		{"colors.highlight", c.Colors.Highlight},
		{"colors.stroke", c.Colors.Stroke},
		{"colors.text", c.Colors.Text},
	} {
		if !hexColor.MatchString(f.v) {
			return invalid("%s must be a hex color like #7c4dff, got %q", f.key, f.v)
		}
	}
	if !nonNegative(c.Colors.StrokeWidth) {
		return invalid("colors.stroke_width cannot be negative, got %v", c.Colors.StrokeWidth)
	}

	switch c.Zoom.Policy {
	case PolicyThreshold:
		if !nonNegative(c.Zoom.Threshold) {
			return invalid("zoom.threshold cannot be negative, got %v", c.Zoom.Threshold)
		}
	case PolicyNames:
		if len(c.Zoom.Names) == 0 {
			return invalid("zoom.names must not be empty when zoom.policy is %q", PolicyNames)
		}
	default:
		return invalid("unknown zoom.policy %q (want %s or %s)", c.Zoom.Policy, PolicyThreshold, PolicyNames)
	}
	if c.Zoom.DurationMS < 0 {
		return invalid("zoom.duration_ms cannot be negative, got %d", c.Zoom.DurationMS)
	}
	if _, err := zoom.EasingByName(c.Zoom.Easing); err != nil {
		return err
	}

	if _, err := treemap.ParseLabelMode(c.Labels.Mode); err != nil {
		return err
	}
	switch c.Labels.Measure {
	case MeasureConstant:
		if !positive(c.Labels.CharWidth) {
			return invalid("labels.char_width must be positive, got %v", c.Labels.CharWidth)
		}
	case MeasureGlyph:
	default:
		return invalid("unknown labels.measure %q (want %s or %s)", c.Labels.Measure, MeasureConstant, MeasureGlyph)
	}
	for _, f := range []struct {
		key string
		v   float64
	}{
		{"labels.font_size", c.Labels.FontSize},
		{"labels.value_font_size", c.Labels.ValueFontSize},
		{"labels.line_height", c.Labels.LineHeight},
	} {
		if !positive(f.v) {
			return invalid("%s must be positive, got %v", f.key, f.v)
		}
	}

	if c.Server.SessionTTL != "" {
		if d, err := time.ParseDuration(c.Server.SessionTTL); err != nil || d <= 0 {
			return invalid("server.session_ttl must be a positive duration, got %q", c.Server.SessionTTL)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
