package layout

import (
	"fmt"
	"math"
)

// epsilon absorbs floating-point error when comparing edges.
const epsilon = 1e-9

// Rect is an axis-aligned rectangle with X0 ≤ X1 and Y0 ≤ Y1.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// W returns the width.
func (r Rect) W() float64 { return r.X1 - r.X0 }

// H returns the height.
func (r Rect) H() float64 { return r.Y1 - r.Y0 }

// Area returns W × H.
func (r Rect) Area() float64 { return r.W() * r.H() }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W() <= epsilon || r.H() <= epsilon }

// Contains reports whether the point lies inside the rectangle, edges
// included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// Overlaps reports whether the interiors of r and o intersect. Rectangles
// that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X0 < o.X1-epsilon && o.X0 < r.X1-epsilon &&
		r.Y0 < o.Y1-epsilon && o.Y0 < r.Y1-epsilon
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

// Lerp interpolates every edge from r toward o. t=0 yields r and t=1
// yields o.
func (r Rect) Lerp(o Rect, t float64) Rect {
	return Rect{
		X0: lerp(r.X0, o.X0, t),
		Y0: lerp(r.Y0, o.Y0, t),
		X1: lerp(r.X1, o.X1, t),
		Y1: lerp(r.Y1, o.Y1, t),
	}
}

// Inset shrinks the rectangle by d on every side, collapsing an axis to its
// midpoint when it would invert.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X0: r.X0 + d, Y0: r.Y0 + d, X1: r.X1 - d, Y1: r.Y1 - d}
	if out.X1 < out.X0 {
		out.X0 = (out.X0 + out.X1) / 2
		out.X1 = out.X0
	}
	if out.Y1 < out.Y0 {
		out.Y0 = (out.Y0 + out.Y1) / 2
		out.Y1 = out.Y0
	}
	return out
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f,%.2f → %.2f,%.2f]", r.X0, r.Y0, r.X1, r.Y1)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
