package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/ghgmap/pkg/hierarchy"
)

// Phi is the golden ratio, the target aspect ratio of squarified rows.
var Phi = (1 + math.Sqrt(5)) / 2

// Options control the tiling.
type Options struct {
	PaddingInner float64 // gap between adjacent siblings, in pixels
	Ratio        float64 // target aspect ratio; zero means Phi
}

// Tile is a positioned node.
type Tile struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Value    *float64 `json:"value,omitempty"`
	Weight   float64  `json:"weight"`
	Depth    int      `json:"depth"`
	ParentID string   `json:"parent_id,omitempty"`
	Children []string `json:"children,omitempty"`
	Rect     Rect     `json:"rect"`
}

// HasValue reports whether the category declared a value.
func (t Tile) HasValue() bool { return t.Value != nil }

// IsLeaf reports whether the tile has no children.
func (t Tile) IsLeaf() bool { return len(t.Children) == 0 }

// DisplayValue formats the declared value, or returns "" when absent.
func (t Tile) DisplayValue() string {
	if t.Value == nil {
		return ""
	}
	return hierarchy.FormatValue(*t.Value)
}

// Layout is the result of Compute. It is never mutated after construction;
// a resize produces a new Layout.
type Layout struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	PaddingInner float64 `json:"padding_inner,omitempty"`
	Tiles        []Tile  `json:"tiles"`

	index map[string]int
}

// Lookup returns the tile with the given ID.
func (l *Layout) Lookup(id string) (Tile, bool) {
	if l.index == nil {
		l.reindex()
	}
	i, ok := l.index[id]
	if !ok {
		return Tile{}, false
	}
	return l.Tiles[i], true
}

// Root returns the tile of the synthetic root.
func (l *Layout) Root() Tile {
	t, _ := l.Lookup(hierarchy.RootName)
	return t
}

// ChildrenOf returns the child tiles of id in layout order.
func (l *Layout) ChildrenOf(id string) []Tile {
	t, ok := l.Lookup(id)
	if !ok {
		return nil
	}
	out := make([]Tile, 0, len(t.Children))
	for _, c := range t.Children {
		if ct, ok := l.Lookup(c); ok {
			out = append(out, ct)
		}
	}
	return out
}

// Hit returns the deepest tile containing the point, or false when the
// point lies outside the canvas.
func (l *Layout) Hit(x, y float64) (Tile, bool) {
	var (
		best  Tile
		found bool
	)
	for _, t := range l.Tiles {
		if !t.Rect.Empty() && t.Rect.Contains(x, y) && (!found || t.Depth >= best.Depth) {
			best, found = t, true
		}
	}
	return best, found
}

func (l *Layout) reindex() {
	l.index = make(map[string]int, len(l.Tiles))
	for i, t := range l.Tiles {
		l.index[t.ID] = i
	}
}

// Compute lays out tree in a width × height canvas.
func Compute(tree *hierarchy.Tree, width, height float64, opts Options) *Layout {
	ratio := opts.Ratio
	if !(ratio > 1) {
		ratio = Phi
	}
	pad := math.Max(0, opts.PaddingInner)

	l := &Layout{
		Width:        width,
		Height:       height,
		PaddingInner: opts.PaddingInner,
		Tiles:        make([]Tile, 0, tree.Len()),
	}
	degenerate := !(width > 0) || !(height > 0)

	// Weights are computed once per node so sorting stays linear in depth.
	weights := make(map[*hierarchy.Node]float64, tree.Len())
	var weigh func(*hierarchy.Node) float64
	weigh = func(n *hierarchy.Node) float64 {
		var w float64
		if n.IsLeaf() {
			w = n.Weight()
		} else {
			for _, c := range n.Children {
				w += weigh(c)
			}
		}
		weights[n] = w
		return w
	}
	weigh(tree.Root)

	var place func(n *hierarchy.Node, r Rect, parentPad float64)
	place = func(n *hierarchy.Node, r Rect, parentPad float64) {
		if degenerate {
			r = Rect{}
		} else {
			r = r.Inset(parentPad)
		}

		kids := slices.Clone(n.Children)
		slices.SortStableFunc(kids, func(a, b *hierarchy.Node) int {
			wa, wb := weights[a], weights[b]
			switch {
			case wa > wb:
				return -1
			case wa < wb:
				return 1
			}
			return 0
		})

		tile := Tile{
			ID:     n.Name,
			Name:   n.Name,
			Value:  n.Value,
			Weight: weights[n],
			Depth:  n.Depth,
			Rect:   r,
		}
		if n.Parent != nil {
			tile.ParentID = n.Parent.Name
		}
		for _, c := range kids {
			tile.Children = append(tile.Children, c.Name)
		}
		l.Tiles = append(l.Tiles, tile)

		if len(kids) == 0 {
			return
		}

		// Children get the parent's box grown by half a gap and each shrinks
		// by the same amount, leaving a full gap between neighbours.
		p := pad / 2
		inner := Rect{}
		if !degenerate {
			inner = r.Inset(-p)
		}
		vals := make([]float64, len(kids))
		for i, c := range kids {
			vals[i] = weights[c]
		}
		rects := squarify(vals, weights[n], inner, ratio)
		for i, c := range kids {
			place(c, rects[i], p)
		}
	}

	place(tree.Root, Rect{X1: width, Y1: height}, 0)
	l.reindex()
	return l
}

// squarify partitions r among values, which must be sorted descending and
// sum to total. Rows run along the shorter side of the remaining space and
// grow while the worst aspect ratio in the row does not get worse.
func squarify(values []float64, total float64, r Rect, ratio float64) []Rect {
	out := make([]Rect, len(values))
	n := len(values)
	x0, y0, x1, y1 := r.X0, r.Y0, r.X1, r.Y1
	value := total

	i0, i1 := 0, 0
	for i0 < n {
		dx, dy := x1-x0, y1-y0
		if !(value > 0) || dx <= 0 || dy <= 0 {
			collapseFrom(out, i0, x0, y0)
			return collapseZero(out, values)
		}

		// Leading zero-weight nodes join the row without affecting it.
		sum := values[i1]
		i1++
		for sum == 0 && i1 < n {
			sum = values[i1]
			i1++
		}
		if sum == 0 {
			collapseFrom(out, i0, x0, y0)
			return out
		}
		minV, maxV := sum, sum
		alpha := math.Max(dy/dx, dx/dy) / (value * ratio)
		beta := sum * sum * alpha
		minRatio := math.Max(maxV/beta, beta/minV)

		for ; i1 < n; i1++ {
			v := values[i1]
			sum += v
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
			beta = sum * sum * alpha
			newRatio := math.Max(maxV/beta, beta/minV)
			if newRatio > minRatio {
				sum -= v
				break
			}
			minRatio = newRatio
		}

		row := values[i0:i1]
		if dx < dy {
			ny := y1
			if dy != 0 {
				ny = y0 + dy*sum/value
			}
			dice(row, sum, out[i0:i1], x0, y0, x1, ny)
			y0 = ny
		} else {
			nx := x1
			if dx != 0 {
				nx = x0 + dx*sum/value
			}
			slice(row, sum, out[i0:i1], x0, y0, nx, y1)
			x0 = nx
		}
		value -= sum
		i0 = i1
	}
	return collapseZero(out, values)
}

// dice lays a row out left to right across the full height.
func dice(values []float64, sum float64, out []Rect, x0, y0, x1, y1 float64) {
	k := 0.0
	if sum > 0 {
		k = (x1 - x0) / sum
	}
	for i, v := range values {
		out[i] = Rect{X0: x0, Y0: y0, X1: x0 + v*k, Y1: y1}
		x0 = out[i].X1
	}
}

// slice lays a row out top to bottom across the full width.
func slice(values []float64, sum float64, out []Rect, x0, y0, x1, y1 float64) {
	k := 0.0
	if sum > 0 {
		k = (y1 - y0) / sum
	}
	for i, v := range values {
		out[i] = Rect{X0: x0, Y0: y0, X1: x1, Y1: y0 + v*k}
		y0 = out[i].Y1
	}
}

func collapseFrom(out []Rect, i int, x, y float64) {
	for ; i < len(out); i++ {
		out[i] = Rect{X0: x, Y0: y, X1: x, Y1: y}
	}
}

// collapseZero makes sure zero-weight entries end up with zero area even
// when they shared a row with positive entries.
func collapseZero(out []Rect, values []float64) []Rect {
	for i, v := range values {
		if v == 0 {
			out[i].X1 = out[i].X0
			out[i].Y1 = out[i].Y0
		}
	}
	return out
}
