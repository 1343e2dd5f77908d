// Package cache stores derived artifacts so repeated runs skip work.
//
// The pipeline caches three stages, each keyed by a hash of its inputs:
// the parsed category tree (by input file content), the computed layout (by
// tree hash and canvas), and rendered artifacts (by layout hash, format and
// settings). Backends:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry under a directory, used by the CLI
//   - [RedisCache]: shared cache for the server (serve --redis)
//
// Keys are produced by a [Keyer] so that callers can namespace them with a
// [ScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Default entry lifetimes.
const (
	TTLTree     = 7 * 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLView     = 30 * time.Minute
)

// Keyer builds cache keys.
type Keyer interface {
	// TreeKey keys a parsed tree by the hash of the input file content.
	TreeKey(inputHash string) string

	// LayoutKey keys a layout by tree hash and canvas settings.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered output by layout hash and render settings.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// ViewKey keys a persisted zoom view.
	ViewKey(id string) string
}

// LayoutKeyOpts holds the settings a layout depends on.
type LayoutKeyOpts struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	PaddingInner float64 `json:"padding_inner"`
}

// ArtifactKeyOpts holds the settings a rendered artifact depends on.
type ArtifactKeyOpts struct {
	VizType    string  `json:"viz_type"`
	Format     string  `json:"format"`
	State      string  `json:"state,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	ConfigHash string  `json:"config_hash"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) TreeKey(inputHash string) string {
	return "tree:" + inputHash
}

func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

func (DefaultKeyer) ViewKey(id string) string {
	return "view:" + id
}

var _ Keyer = DefaultKeyer{}
