package zoom

import "github.com/matzehuels/ghgmap/pkg/layout"

// Predicate selects tiles. The controller uses one predicate both to decide
// which tiles react to clicks and which tiles the zoom frames.
type Predicate func(layout.Tile) bool

// ValueBelow matches tiles that declare a value strictly below threshold.
// Tiles without a value never match.
func ValueBelow(threshold float64) Predicate {
	return func(t layout.Tile) bool {
		return t.Value != nil && *t.Value < threshold
	}
}

// NameIn matches tiles whose name is in names.
func NameIn(names ...string) Predicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(t layout.Tile) bool {
		_, ok := set[t.Name]
		return ok
	}
}

// DisplayValueIn matches tiles whose formatted value is in values.
func DisplayValueIn(values ...string) Predicate {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(t layout.Tile) bool {
		v := t.DisplayValue()
		if v == "" {
			return false
		}
		_, ok := set[v]
		return ok
	}
}

// None matches nothing.
func None(layout.Tile) bool { return false }

// Filter returns the tiles of l that match p, in layout order.
func Filter(l *layout.Layout, p Predicate) []layout.Tile {
	var out []layout.Tile
	for _, t := range l.Tiles {
		if p(t) {
			out = append(out, t)
		}
	}
	return out
}
