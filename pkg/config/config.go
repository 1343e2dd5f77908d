// Package config loads ghgmap settings from a TOML file.
//
// Settings are looked up in this order: an explicit path (the --config
// flag), a ghgmap.toml found by walking up from the working directory, and
// finally the built-in defaults returned by [Default]. A file only needs to
// set the keys it wants to change:
//
//	[canvas]
//	width = 1200
//
//	[zoom]
//	policy = "names"
//	names = ["Other"]
//
// Unknown keys are rejected so that typos surface as errors instead of being
// silently ignored.
package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ghgmap/pkg/errors"
)

// FileName is the config file searched for by [Find].
const FileName = "ghgmap.toml"

// Zoom target policies.
const (
	PolicyThreshold = "threshold"
	PolicyNames     = "names"
)

// Text measurement strategies for label wrapping.
const (
	MeasureConstant = "constant"
	MeasureGlyph    = "glyph"
)

// Config is the full settings tree.
type Config struct {
	Canvas    Canvas    `toml:"canvas" json:"canvas"`
	Colors    Colors    `toml:"colors" json:"colors"`
	Highlight Highlight `toml:"highlight" json:"highlight"`
	Zoom      Zoom      `toml:"zoom" json:"zoom"`
	Labels    Labels    `toml:"labels" json:"labels"`
	Server    Server    `toml:"server" json:"server"`
}

// Canvas sets the drawing area and tile spacing.
type Canvas struct {
	Width        float64 `toml:"width" json:"width"`
	Height       float64 `toml:"height" json:"height"`
	PaddingInner float64 `toml:"padding_inner" json:"padding_inner"`
	IncludeRoot  bool    `toml:"include_root" json:"include_root"`
}

type Colors struct {
	Background  string  `toml:"background" json:"background"`
	Highlight   string  `toml:"highlight" json:"highlight"`
	Stroke      string  `toml:"stroke" json:"stroke"`
	Text        string  `toml:"text" json:"text"`
	StrokeWidth float64 `toml:"stroke_width" json:"stroke_width"`
}

// Highlight lists categories filled with the highlight color.
type Highlight struct {
	Names []string `toml:"names" json:"names"`
}

// Zoom selects the tiles the zoom fills the canvas with and how the
// transition animates.
type Zoom struct {
	Policy     string   `toml:"policy" json:"policy"`
	Threshold  float64  `toml:"threshold" json:"threshold"`
	Names      []string `toml:"names" json:"names"`
	DurationMS int      `toml:"duration_ms" json:"duration_ms"`
	Easing     string   `toml:"easing" json:"easing"`
}

// Labels controls label layout and which labels only show when zoomed.
type Labels struct {
	Mode           string   `toml:"mode" json:"mode"`
	Measure        string   `toml:"measure" json:"measure"`
	CharWidth      float64  `toml:"char_width" json:"char_width"`
	FontSize       float64  `toml:"font_size" json:"font_size"`
	ValueFontSize  float64  `toml:"value_font_size" json:"value_font_size"`
	LineHeight     float64  `toml:"line_height" json:"line_height"`
	ZoomOnlyNames  []string `toml:"zoom_only_names" json:"zoom_only_names"`
	ZoomOnlyValues []string `toml:"zoom_only_values" json:"zoom_only_values"`
}

// Server configures the serve command.
type Server struct {
	Addr       string `toml:"addr" json:"addr"`
	Redis      string `toml:"redis" json:"redis"`
	SessionTTL string `toml:"session_ttl" json:"session_ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Canvas: Canvas{Width: 1000, Height: 600, PaddingInner: 2},
		Colors: Colors{
			Background:  "#0F0F0F",
			Highlight:   "#7c4dff",
			Stroke:      "#ffffff",
			Text:        "#ffffff",
			StrokeWidth: 0.5,
		},
		Highlight: Highlight{Names: []string{"Buses", "Railways"}},
		Zoom: Zoom{
			Policy:     PolicyThreshold,
			Threshold:  1.5,
			Names:      []string{"Wastewater treatment and discharge", "Other"},
			DurationMS: 750,
			Easing:     "cubic-in-out",
		},
		Labels: Labels{
			Mode:           "wrap",
			Measure:        MeasureConstant,
			CharWidth:      6,
			FontSize:       15,
			ValueFontSize:  12,
			LineHeight:     15,
			ZoomOnlyNames:  []string{"Wastewater treatment and discharge", "Other"},
			ZoomOnlyValues: []string{"0.74", "0.01"},
		},
		Server: Server{Addr: ":8080", SessionTTL: "30m"},
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse TOML")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Find walks up from startDir looking for [FileName].
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeInternal, err, "resolve start directory")
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !stderrors.Is(err, os.ErrNotExist) {
			return "", false, errors.Wrap(errors.ErrCodeInternal, err, "stat %s", candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Resolve loads the explicit path when set, otherwise the nearest
// ghgmap.toml above startDir, otherwise the defaults. It also returns the
// path that was loaded, or "" for defaults.
func Resolve(explicit, startDir string) (Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Duration returns the zoom transition duration.
func (c Config) Duration() time.Duration {
	return time.Duration(c.Zoom.DurationMS) * time.Millisecond
}

// SessionTTL returns how long an idle server view is kept.
func (c Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// Hash returns a stable digest of the settings, used to key cached
// artifacts.
func (c Config) Hash() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return ""
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// Encode writes the settings as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}
