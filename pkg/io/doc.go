// Package io reads and writes the tabular category files the treemap is
// built from.
//
// # CSV Format
//
// The file has a header row naming at least a Category column. Parent and
// Value columns are optional; extra columns are ignored and columns may
// appear in any order:
//
//	Category,Parent,Value
//	Transport,,
//	Buses,Transport,1.2
//	Railways,Transport,0.3
//	Waste,,
//	Wastewater treatment and discharge,Waste,0.74
//
// Rows must list parents before children. An empty Parent makes the row a
// top-level category. A Value that is missing or cannot be parsed leaves the
// category without a value; it is not an error.
//
// # Import
//
// Use [ImportCSV] to read a file from disk or [ReadCSV] to read from any
// io.Reader. Both return rows in file order; pass them to
// [hierarchy.Build] to obtain the tree.
//
// # Export
//
// [WriteCSV] writes rows back in the same format, so
// ReadCSV(WriteCSV(tree.Rows())) round-trips.
//
// [hierarchy.Build]: github.com/matzehuels/ghgmap/pkg/hierarchy.Build
package io
