package zoom

import "github.com/matzehuels/ghgmap/pkg/layout"

// Scale is a linear map from the domain [D0, D1] to the range [R0, R1].
// Values outside the domain extrapolate.
type Scale struct {
	D0, D1 float64
	R0, R1 float64
}

// Map applies the scale to v. A collapsed domain maps every value to the
// middle of the range.
func (s Scale) Map(v float64) float64 {
	d := s.D1 - s.D0
	if d == 0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/d*(s.R1-s.R0)
}

// Mapping remaps rectangles through one scale per axis.
type Mapping struct {
	X, Y Scale
}

// NewMapping returns the mapping that stretches box over a width × height
// canvas.
func NewMapping(box layout.Rect, width, height float64) Mapping {
	return Mapping{
		X: Scale{D0: box.X0, D1: box.X1, R0: 0, R1: width},
		Y: Scale{D0: box.Y0, D1: box.Y1, R0: 0, R1: height},
	}
}

// Apply maps every corner of r. Results may lie outside the canvas.
func (m Mapping) Apply(r layout.Rect) layout.Rect {
	return layout.Rect{
		X0: m.X.Map(r.X0),
		Y0: m.Y.Map(r.Y0),
		X1: m.X.Map(r.X1),
		Y1: m.Y.Map(r.Y1),
	}
}

// BoundingBox returns the smallest rectangle enclosing every tile, or false
// when tiles is empty.
func BoundingBox(tiles []layout.Tile) (layout.Rect, bool) {
	if len(tiles) == 0 {
		return layout.Rect{}, false
	}
	box := tiles[0].Rect
	for _, t := range tiles[1:] {
		box = box.Union(t.Rect)
	}
	return box, true
}
