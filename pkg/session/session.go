// Package session persists the zoom views handed out by the server.
//
// A view is one viewer's copy of the zoom state machine: the canvas size it
// was laid out for and whether it is zoomed. Only that record is stored;
// the server rebuilds the layout and controller from it, so a view survives
// a restart or moves between instances when the store is backed by Redis.
//
// # Usage
//
//	store := session.NewCacheStore(cache.NewMemoryCache(), nil, session.DefaultTTL)
//
//	v := session.New(1000, 600, session.DefaultTTL)
//	if err := store.Set(ctx, v); err != nil {
//	    return err
//	}
//
//	v, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if v == nil {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/ghgmap/pkg/zoom"
)

// DefaultTTL is how long an untouched view is kept.
const DefaultTTL = 30 * time.Minute

// View is the persisted part of one viewer's zoom state.
type View struct {
	ID        string     `json:"id" msgpack:"id"`
	Width     float64    `json:"width" msgpack:"width"`
	Height    float64    `json:"height" msgpack:"height"`
	State     zoom.State `json:"state" msgpack:"state"`
	CreatedAt time.Time  `json:"created_at" msgpack:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" msgpack:"expires_at"`
}

// New creates a view in the normal state with a random ID.
func New(width, height float64, ttl time.Duration) *View {
	now := time.Now()
	return &View{
		ID:        uuid.NewString(),
		Width:     width,
		Height:    height,
		State:     zoom.Normal,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the view has outlived its TTL.
func (v *View) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}

// Touch extends the view's lifetime by ttl from now.
func (v *View) Touch(ttl time.Duration) {
	v.ExpiresAt = time.Now().Add(ttl)
}

// ValidID reports whether id has the form of a view ID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Store is the interface for view storage backends.
type Store interface {
	// Get retrieves a view by ID.
	// Returns nil, nil if the view doesn't exist or has expired.
	Get(ctx context.Context, id string) (*View, error)

	// Set stores a view until its ExpiresAt.
	Set(ctx context.Context, v *View) error

	// Delete removes a view.
	Delete(ctx context.Context, id string) error
}
