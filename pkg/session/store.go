package session

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/ghgmap/pkg/cache"
)

// CacheStore keeps views in a cache backend, encoded with msgpack. Expiry
// is delegated to the backend's TTL.
type CacheStore struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCacheStore creates a store over c. A nil keyer uses the default keys.
func NewCacheStore(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CacheStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CacheStore{cache: c, keyer: keyer, ttl: ttl}
}

// TTL returns the lifetime given to stored views.
func (s *CacheStore) TTL() time.Duration { return s.ttl }

func (s *CacheStore) Get(ctx context.Context, id string) (*View, error) {
	data, ok, err := s.cache.Get(ctx, s.keyer.ViewKey(id))
	if err != nil {
		return nil, fmt.Errorf("read view: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var v View
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode view: %w", err)
	}
	if v.IsExpired() {
		_ = s.cache.Delete(ctx, s.keyer.ViewKey(id))
		return nil, nil
	}
	return &v, nil
}

func (s *CacheStore) Set(ctx context.Context, v *View) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode view: %w", err)
	}
	ttl := time.Until(v.ExpiresAt)
	if ttl <= 0 {
		ttl = s.ttl
	}
	if err := s.cache.Set(ctx, s.keyer.ViewKey(v.ID), data, ttl); err != nil {
		return fmt.Errorf("write view: %w", err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, s.keyer.ViewKey(id))
}

var _ Store = (*CacheStore)(nil)
