package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func testCacheRoundTrip(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "tree:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "tree:abc")
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Set(ctx, "tree:abc", []byte("newer"), 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if data, _, _ := c.Get(ctx, "tree:abc"); string(data) != "newer" {
		t.Errorf("overwrite not visible: %q", data)
	}
	if err := c.Delete(ctx, "tree:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tree:abc"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "tree:abc"); err != nil {
		t.Errorf("Delete twice: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	testCacheRoundTrip(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry file not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry = %v, %v; want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultDir("ghgmap")
	if err != nil || dir != filepath.Join("/tmp/xdg", "ghgmap") {
		t.Errorf("DefaultDir = %q, %v", dir, err)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	testCacheRoundTrip(t, c)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	if err := c.Set(ctx, "view:1", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "view:1"); hit {
		t.Error("expired entry returned")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after expiry", c.Len())
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'z'
	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.TreeKey("abc"); got != "tree:abc" {
		t.Errorf("TreeKey = %q", got)
	}
	if got := k.ViewKey("v1"); got != "view:v1" {
		t.Errorf("ViewKey = %q", got)
	}

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 1000, Height: 600})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 800, Height: 600})
	if lk1 == lk2 || !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey = %q, %q", lk1, lk2)
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", ConfigHash: "c"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", ConfigHash: "c"})
	ak3 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", ConfigHash: "d"})
	if ak1 == ak2 || ak1 == ak3 {
		t.Error("different ArtifactKeyOpts should produce different keys")
	}
	if ak1 != k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", ConfigHash: "c"}) {
		t.Error("ArtifactKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "ghgmap:data:")

	if got := scoped.TreeKey("abc"); got != "ghgmap:data:tree:abc" {
		t.Errorf("TreeKey = %q", got)
	}
	if got := scoped.LayoutKey("h", LayoutKeyOpts{}); !strings.HasPrefix(got, "ghgmap:data:layout:") {
		t.Errorf("LayoutKey = %q", got)
	}
	if got := scoped.ArtifactKey("h", ArtifactKeyOpts{}); !strings.HasPrefix(got, "ghgmap:data:artifact:") {
		t.Errorf("ArtifactKey = %q", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.ViewKey("x"); got != "p:view:x" {
		t.Errorf("nil inner ViewKey = %q", got)
	}
}

func TestNewRedisCacheErrors(t *testing.T) {
	defer func(d time.Duration) { pingDelay = d }(pingDelay)
	pingDelay = time.Millisecond
	ctx := context.Background()

	if _, err := NewRedisCache(ctx, "not a url"); err == nil {
		t.Error("invalid url should fail")
	}
	_, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0")
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("unreachable server error = %v, want ErrUnreachable", err)
	}
}

func TestNewRedisCacheCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled connect error = %v, want context.Canceled", err)
	}
}
