// Package hierarchy builds the category tree that the treemap is drawn from.
//
// Input is a flat sequence of rows, each naming a category, an optional
// parent category and an optional value. [Build] turns the rows into a
// [Tree] rooted at a synthetic node named [RootName]. Rows must be in
// topological order: a parent row appears before any of its children.
//
// # Weights
//
// Only leaves carry weight. A node with children weighs the sum of its
// children's weights; its own declared value is kept for display but never
// used for sizing. A leaf without a value weighs zero.
//
// # Errors
//
// A row that references a parent that has not been seen yet fails the whole
// build with [errors.ErrCodeUnknownParent]. A category that appears twice
// fails with [errors.ErrCodeDuplicateCategory]. Neither case produces a
// partial tree.
package hierarchy

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/ghgmap/pkg/errors"
)

// RootName is the name of the synthetic root node.
const RootName = "Root"

// Row is one record of the input table.
type Row struct {
	Category string
	Parent   string // empty means top-level
	Value    string // parsed with ParseValue
}

// Node is a category in the tree.
type Node struct {
	Name     string
	Value    *float64 // nil for pure grouping nodes
	Children []*Node
	Parent   *Node
	Depth    int
}

// HasValue reports whether the node declared a usable value.
func (n *Node) HasValue() bool { return n.Value != nil }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Weight returns the node's aggregated weight: its own value for a leaf
// (zero when absent), the sum of its children's weights otherwise.
func (n *Node) Weight() float64 {
	if n.IsLeaf() {
		if n.Value == nil {
			return 0
		}
		return *n.Value
	}
	var sum float64
	for _, c := range n.Children {
		sum += c.Weight()
	}
	return sum
}

// DisplayValue formats the declared value the way labels show it.
// Nodes without a value display as the empty string.
func (n *Node) DisplayValue() string {
	if n.Value == nil {
		return ""
	}
	return FormatValue(*n.Value)
}

// Tree is a rooted category hierarchy. It is built once per data load and
// never mutated afterwards.
type Tree struct {
	Root  *Node
	index map[string]*Node
}

// Lookup returns the node with the given name. The root is found under
// RootName.
func (t *Tree) Lookup(name string) (*Node, bool) {
	n, ok := t.index[name]
	return n, ok
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int { return len(t.index) }

// Descendants returns every node in pre-order, root first, children in
// input order.
func (t *Tree) Descendants() []*Node {
	out := make([]*Node, 0, len(t.index))
	var walk func(*Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return out
}

// MaxDepth returns the depth of the deepest node.
func (t *Tree) MaxDepth() int {
	depth := 0
	for _, n := range t.Descendants() {
		depth = max(depth, n.Depth)
	}
	return depth
}

// Rows flattens the tree back into input rows in pre-order.
// Build(t.Rows()) reproduces an identical tree.
func (t *Tree) Rows() []Row {
	nodes := t.Descendants()
	rows := make([]Row, 0, len(nodes)-1)
	for _, n := range nodes[1:] {
		r := Row{Category: n.Name, Value: n.DisplayValue()}
		if n.Parent != nil && n.Parent != t.Root {
			r.Parent = n.Parent.Name
		}
		rows = append(rows, r)
	}
	return rows
}

// Hash returns a content hash of the tree, stable across builds of the same
// rows. It is used as a cache key component.
func (t *Tree) Hash() string {
	h := sha256.New()
	for _, r := range t.Rows() {
		h.Write([]byte(r.Category))
		h.Write([]byte{0})
		h.Write([]byte(r.Parent))
		h.Write([]byte{0})
		h.Write([]byte(r.Value))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Build converts rows into a tree in a single pass over the input.
func Build(rows []Row) (*Tree, error) {
	root := &Node{Name: RootName}
	t := &Tree{
		Root:  root,
		index: map[string]*Node{RootName: root},
	}

	for i, row := range rows {
		name := strings.TrimSpace(row.Category)
		if err := errors.ValidateCategoryName(name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "row %d", i+1)
		}
		if _, exists := t.index[name]; exists {
			return nil, errors.New(errors.ErrCodeDuplicateCategory,
				"row %d: category %q is already defined", i+1, name)
		}

		parent := root
		if p := strings.TrimSpace(row.Parent); p != "" {
			var ok bool
			parent, ok = t.index[p]
			if !ok {
				return nil, errors.New(errors.ErrCodeUnknownParent,
					"row %d: category %q references unknown parent %q", i+1, name, p)
			}
		}

		n := &Node{
			Name:   name,
			Value:  ParseValue(row.Value),
			Parent: parent,
			Depth:  parent.Depth + 1,
		}
		parent.Children = append(parent.Children, n)
		t.index[name] = n
	}
	return t, nil
}

// ParseValue parses a value cell. Empty, unparsable, zero, negative and
// non-finite cells all mean "no value".
func ParseValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0) || math.IsInf(v, 1) {
		return nil
	}
	return &v
}

// FormatValue renders a value with the shortest exact representation.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
