package io

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
)

// Column names recognized in the header row.
const (
	ColumnCategory = "Category"
	ColumnParent   = "Parent"
	ColumnValue    = "Value"
)

// ReadCSV decodes category rows from r.
//
// ReadCSV returns an INVALID_INPUT error if the input is empty, malformed,
// or has no Category column. Rows are returned in input order and are not
// validated beyond their shape; tree-level validation happens in
// hierarchy.Build.
func ReadCSV(r io.Reader) ([]hierarchy.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty input: missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read header")
	}

	cols := indexColumns(header)
	catIdx, ok := cols[ColumnCategory]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "missing %q column in header %v", ColumnCategory, header)
	}
	parentIdx, hasParent := cols[ColumnParent]
	valueIdx, hasValue := cols[ColumnValue]

	var rows []hierarchy.Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", perr.Line)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", line)
		}
		if isBlank(rec) {
			continue
		}

		row := hierarchy.Row{Category: field(rec, catIdx)}
		if hasParent {
			row.Parent = field(rec, parentIdx)
		}
		if hasValue {
			row.Value = field(rec, valueIdx)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ImportCSV reads the CSV file at path.
func ImportCSV(path string) ([]hierarchy.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ImportTree reads the CSV file at path and builds its hierarchy.
func ImportTree(path string) (*hierarchy.Tree, error) {
	rows, err := ImportCSV(path)
	if err != nil {
		return nil, err
	}
	t, err := hierarchy.Build(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		// Spreadsheet exports often prefix the first cell with a BOM.
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
