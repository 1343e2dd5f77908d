package zoom

import (
	"time"

	"github.com/matzehuels/ghgmap/pkg/layout"
)

// TileFrame is the drawn state of one tile at one instant.
type TileFrame struct {
	ID           string      `json:"id"`
	Rect         layout.Rect `json:"rect"`
	LabelOpacity float64     `json:"label_opacity"`
	ValueOpacity float64     `json:"value_opacity"`
}

// Frame is the drawn state of every tile, parallel to layout.Tiles.
type Frame struct {
	State State       `json:"state"`
	Tiles []TileFrame `json:"tiles"`
}

// Tile returns the frame of the tile with the given ID.
func (f Frame) Tile(id string) (TileFrame, bool) {
	for _, t := range f.Tiles {
		if t.ID == id {
			return t, true
		}
	}
	return TileFrame{}, false
}

func lerpFrames(from, to []TileFrame, p float64) []TileFrame {
	out := make([]TileFrame, len(to))
	for i := range to {
		a, b := from[i], to[i]
		out[i] = TileFrame{
			ID:           b.ID,
			Rect:         a.Rect.Lerp(b.Rect, p),
			LabelOpacity: a.LabelOpacity + (b.LabelOpacity-a.LabelOpacity)*p,
			ValueOpacity: a.ValueOpacity + (b.ValueOpacity-a.ValueOpacity)*p,
		}
	}
	return out
}

// Transition interpolates between two sets of tile frames over time.
type Transition struct {
	From     []TileFrame
	To       []TileFrame
	Start    time.Time
	Duration time.Duration
	Ease     Easing
}

// Progress returns the eased progress at now, in [0, 1].
func (t *Transition) Progress(now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	raw := float64(now.Sub(t.Start)) / float64(t.Duration)
	if raw >= 1 {
		return 1
	}
	ease := t.Ease
	if ease == nil {
		ease = CubicInOut
	}
	return ease(raw)
}

// Done reports whether the transition has reached its end at now.
func (t *Transition) Done(now time.Time) bool {
	return t.Duration <= 0 || !now.Before(t.Start.Add(t.Duration))
}

// At returns the interpolated tile frames at now.
func (t *Transition) At(now time.Time) []TileFrame {
	if t.Done(now) {
		return t.To
	}
	return lerpFrames(t.From, t.To, t.Progress(now))
}
