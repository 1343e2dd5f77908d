package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/ghgmap/pkg/errors"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
)

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// It rejects layouts without a root tile or with duplicate tile IDs.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	seen := make(map[string]bool, len(l.Tiles))
	for _, t := range l.Tiles {
		if seen[t.ID] {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "duplicate tile %q", t.ID)
		}
		seen[t.ID] = true
	}
	if !seen[hierarchy.RootName] {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "layout has no %q tile", hierarchy.RootName)
	}
	l.reindex()
	return &l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l *Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
