package hierarchy

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// codecVersion is bumped whenever the wire layout changes so stale cache
// entries fail to decode instead of producing a wrong tree.
const codecVersion = 1

type wireTree struct {
	Version int       `msgpack:"v"`
	Rows    []wireRow `msgpack:"rows"`
}

type wireRow struct {
	Category string `msgpack:"c"`
	Parent   string `msgpack:"p,omitempty"`
	Value    string `msgpack:"x,omitempty"`
}

// MarshalBinary encodes the tree as msgpack. The encoding stores the
// flattened rows, so decoding goes through Build and re-validates them.
func (t *Tree) MarshalBinary() ([]byte, error) {
	rows := t.Rows()
	w := wireTree{Version: codecVersion, Rows: make([]wireRow, len(rows))}
	for i, r := range rows {
		w.Rows[i] = wireRow{Category: r.Category, Parent: r.Parent, Value: r.Value}
	}
	return msgpack.Marshal(&w)
}

// UnmarshalTree decodes a tree produced by MarshalBinary.
func UnmarshalTree(data []byte) (*Tree, error) {
	var w wireTree
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if w.Version != codecVersion {
		return nil, fmt.Errorf("decode tree: unsupported version %d", w.Version)
	}
	rows := make([]Row, len(w.Rows))
	for i, r := range w.Rows {
		rows[i] = Row{Category: r.Category, Parent: r.Parent, Value: r.Value}
	}
	return Build(rows)
}
