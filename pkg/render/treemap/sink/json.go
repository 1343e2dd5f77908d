package sink

import (
	"encoding/json"

	"github.com/matzehuels/ghgmap/pkg/layout"
	"github.com/matzehuels/ghgmap/pkg/render/treemap"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	box       *layout.Rect
	withStyle bool
}

// WithJSONZoomBox records the bounding box of the zoom targets, the
// region that fills the canvas in the zoomed state.
func WithJSONZoomBox(box layout.Rect) JSONOption {
	return func(r *jsonRenderer) { r.box = &box }
}

// WithJSONStyle includes colors and type sizes in the output.
func WithJSONStyle() JSONOption { return func(r *jsonRenderer) { r.withStyle = true } }

type jsonOutput struct {
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	State     zoom.State     `json:"state"`
	Button    string         `json:"button"`
	LabelMode string         `json:"label_mode"`
	ZoomBox   *layout.Rect   `json:"zoom_box,omitempty"`
	Style     *treemap.Style `json:"style,omitempty"`
	Tiles     []jsonTile     `json:"tiles"`
}

type jsonTile struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Value        string       `json:"value,omitempty"`
	Depth        int          `json:"depth"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	Width        float64      `json:"width"`
	Height       float64      `json:"height"`
	Zoomed       *layout.Rect `json:"zoomed,omitempty"`
	Fill         string       `json:"fill"`
	Highlight    bool         `json:"highlight,omitempty"`
	Eligible     bool         `json:"eligible,omitempty"`
	Lines        []string     `json:"lines"`
	LabelOpacity float64      `json:"label_opacity"`
	ValueOpacity float64      `json:"value_opacity"`
}

// RenderJSON exports the scene's tiles with their current geometry for
// external tools.
func RenderJSON(s treemap.Scene, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:     s.Width,
		Height:    s.Height,
		State:     s.State,
		Button:    s.Button,
		LabelMode: string(s.LabelMode),
		ZoomBox:   r.box,
		Tiles:     make([]jsonTile, 0, len(s.Tiles)),
	}
	if r.withStyle {
		style := s.Style
		out.Style = &style
	}

	for _, t := range s.Tiles {
		lines := t.Lines
		if lines == nil {
			lines = []string{}
		}
		out.Tiles = append(out.Tiles, jsonTile{
			ID:           t.ID,
			Name:         t.Name,
			Value:        t.Value,
			Depth:        t.Depth,
			X:            t.Rect.X0,
			Y:            t.Rect.Y0,
			Width:        max(0, t.Rect.W()),
			Height:       max(0, t.Rect.H()),
			Zoomed:       t.Zoomed,
			Fill:         t.Fill,
			Highlight:    t.Highlight,
			Eligible:     t.Eligible,
			Lines:        lines,
			LabelOpacity: t.LabelOpacity,
			ValueOpacity: t.ValueOpacity,
		})
	}

	return json.MarshalIndent(out, "", "  ")
}
