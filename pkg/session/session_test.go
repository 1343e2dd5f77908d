package session

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/ghgmap/pkg/cache"
	"github.com/matzehuels/ghgmap/pkg/zoom"
)

func TestNew(t *testing.T) {
	v := New(800, 500, time.Minute)
	if !ValidID(v.ID) {
		t.Errorf("ID %q is not a uuid", v.ID)
	}
	if v.State != zoom.Normal || v.Width != 800 || v.Height != 500 {
		t.Errorf("view = %+v", v)
	}
	if v.IsExpired() {
		t.Error("fresh view is expired")
	}
	if New(1, 1, time.Minute).ID == v.ID {
		t.Error("IDs should be unique")
	}
}

func TestValidID(t *testing.T) {
	for id, want := range map[string]bool{
		"":                                     false,
		"abc":                                  false,
		"../etc/passwd":                        false,
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8": true,
	} {
		if got := ValidID(id); got != want {
			t.Errorf("ValidID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestCacheStore(t *testing.T) {
	ctx := context.Background()
	store := NewCacheStore(cache.NewMemoryCache(), nil, 0)
	if store.TTL() != DefaultTTL {
		t.Errorf("TTL = %v, want default", store.TTL())
	}

	v := New(1000, 600, store.TTL())
	v.State = zoom.Zoomed
	if err := store.Set(ctx, v); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, v.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.ID != v.ID || got.State != zoom.Zoomed || got.Width != 1000 || got.Height != 600 {
		t.Errorf("round trip = %+v", got)
	}

	if err := store.Delete(ctx, v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, err := store.Get(ctx, v.ID); got != nil || err != nil {
		t.Errorf("Get after Delete = %v, %v", got, err)
	}
}

func TestCacheStoreExpired(t *testing.T) {
	ctx := context.Background()
	store := NewCacheStore(cache.NewMemoryCache(), cache.NewScopedKeyer(nil, "test:"), time.Hour)

	v := New(10, 10, time.Hour)
	if err := store.Set(ctx, v); err != nil {
		t.Fatal(err)
	}
	v.ExpiresAt = time.Now().Add(-time.Second)
	if err := store.Set(ctx, v); err != nil {
		t.Fatal(err)
	}
	if got, err := store.Get(ctx, v.ID); got != nil || err != nil {
		t.Errorf("expired view = %v, %v", got, err)
	}
}
