package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when a cached entry exists but has
// exceeded its time-to-live (TTL). The value is still decoded into the
// destination so callers can revalidate it against the origin.
//
//	ok, err := cache.Get(url, &resp)
//	if errors.Is(err, httputil.ErrExpired) {
//	    // send a conditional request using resp.ETag
//	}
var ErrExpired = errors.New("cache entry expired")

// Cache provides file-based caching of JSON-marshalable values.
//
// Each entry is a JSON file named by the SHA-256 of its key, so any string
// (including full URLs) is a safe key. Entries expire by file modification
// time; a TTL of 0 means entries never expire.
//
// Cache operations are not goroutine-safe. Several Cache values, even in
// different processes, may share a directory.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache creates a Cache that stores entries in dir with the given TTL.
// An empty dir selects ~/.cache/ghgmap/http.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "ghgmap", "http")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live for cache entries.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get decodes the entry for key into v.
//
//   - (true, nil): fresh hit
//   - (false, nil): miss, v is unchanged
//   - (true, ErrExpired): stale hit, v holds the stale value
//   - (false, other error): I/O or decode failure
func (c *Cache) Get(key string, v any) (bool, error) {
	path := c.keyPath(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return true, ErrExpired
	}
	return true, nil
}

// Set stores v under key, resetting its age.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), data, 0o644)
}

// Touch marks the entry for key as fresh without rewriting it. It is used
// after the origin confirms a stale entry is unchanged.
func (c *Cache) Touch(key string) error {
	now := time.Now()
	return os.Chtimes(c.keyPath(key), now, now)
}

// Namespace returns a Cache sharing this directory and TTL whose keys are
// prefixed with prefix. Calls can be chained.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
	}
}

// Clear removes every entry in the directory, across all namespaces.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(c.prefix + key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
