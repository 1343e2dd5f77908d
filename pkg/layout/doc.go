// Package layout computes squarified treemap rectangles for a category tree.
//
// # Overview
//
// [Compute] assigns every node of a [hierarchy.Tree] an axis-aligned
// rectangle inside a W×H canvas. The root covers the whole canvas; each
// node's children partition their parent's rectangle in proportion to their
// weights, arranged in rows that keep tiles as close to the golden ratio as
// possible.
//
//	tree, _ := hierarchy.Build(rows)
//	l := layout.Compute(tree, 1000, 600, layout.Options{PaddingInner: 2})
//	for _, t := range l.Tiles {
//	    fmt.Println(t.ID, t.Rect)
//	}
//
// # Ordering
//
// Siblings are sorted by weight, largest first. The sort is stable, so
// categories with equal weight keep their input order. [Layout.Tiles] lists
// tiles in pre-order over the sorted tree, which is also the paint order:
// parents are drawn before their children.
//
// # Padding
//
// PaddingInner is the gap between adjacent siblings. Half of it is taken
// from each side of every child, so the children of a node still extend to
// the node's own edges minus half a gap. With zero padding the children of a
// node tile its rectangle exactly.
//
// # Degenerate Input
//
// A canvas with a non-positive width or height yields zero-area rectangles
// for every node. Nodes with zero weight receive zero-area rectangles at the
// point where they would have been placed. Neither case is an error.
//
// # Serialization
//
// [MarshalLayout] and [UnmarshalLayout] convert a layout to and from the
// JSON format served by the HTTP server and written by the json render
// format.
//
// [hierarchy.Tree]: github.com/matzehuels/ghgmap/pkg/hierarchy.Tree
package layout
