package cli

import (
	"context"
	"io"
	"testing"

	"github.com/matzehuels/ghgmap/pkg/cache"
)

func TestDisplayURL(t *testing.T) {
	tests := []struct {
		addr, want string
	}{
		{":8080", "http://localhost:8080"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000"},
		{"example.org:80", "http://example.org:80"},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := displayURL(tt.addr); got != tt.want {
				t.Errorf("displayURL(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name, raw, want string
	}{
		{"no credentials", "redis://localhost:6379/0", "redis://localhost:6379/0"},
		{"password", "redis://:secret@cache:6379", "redis://***@cache:6379"},
		{"user and password", "rediss://app:p@ss@cache:6380/1", "rediss://***@cache:6380/1"},
		{"no scheme", "user:pw@host", "user:pw@host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactURL(tt.raw); got != tt.want {
				t.Errorf("redactURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestViewBackend(t *testing.T) {
	if got := viewBackend(""); got != "memory" {
		t.Errorf("viewBackend(\"\") = %q", got)
	}
	if got := viewBackend("redis://:pw@cache:6379"); got != "redis redis://***@cache:6379" {
		t.Errorf("viewBackend(redis) = %q", got)
	}
}

func TestServerCacheDefaultsToMemory(t *testing.T) {
	c := New(io.Discard, LogInfo)
	backend, err := c.serverCache(context.Background(), "")
	if err != nil {
		t.Fatalf("serverCache: %v", err)
	}
	defer backend.Close()
	if _, ok := backend.(*cache.MemoryCache); !ok {
		t.Errorf("backend = %T, want *cache.MemoryCache", backend)
	}
}

func TestServerCacheBadRedisURL(t *testing.T) {
	c := New(io.Discard, LogInfo)
	if _, err := c.serverCache(context.Background(), "not a url"); err == nil {
		t.Error("expected an error for a malformed redis URL")
	}
}
