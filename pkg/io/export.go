package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/ghgmap/pkg/hierarchy"
)

// WriteCSV encodes rows with a Category,Parent,Value header.
func WriteCSV(rows []hierarchy.Row, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnCategory, ColumnParent, ColumnValue}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Category, r.Parent, r.Value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the tree's rows to a file at path.
func ExportCSV(t *hierarchy.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(t.Rows(), f)
}
