package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	want := Response{URL: "https://example.org/a.csv", ETag: `"v1"`, Body: []byte("Category\nA\n")}
	if err := c.Set(want.URL, want); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	var got Response
	ok, err := c.Get(want.URL, &got)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.ETag != want.ETag || string(got.Body) != string(want.Body) {
		t.Errorf("Get() = %+v", got)
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	var result string
	ok, err := c.Get("missing", &result)
	if err != nil || ok {
		t.Errorf("Get(missing) = %v, %v", ok, err)
	}
}

func TestCache_Expiration(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Minute)
	if err := c.Set("key", "value"); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(c.keyPath("key"), old, old); err != nil {
		t.Fatal(err)
	}

	var res string
	ok, err := c.Get("key", &res)
	if !ok || !errors.Is(err, ErrExpired) || res != "value" {
		t.Errorf("stale Get() = %v, %v, %q; want stale value", ok, err, res)
	}

	if err := c.Touch("key"); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.Get("key", &res); !ok || err != nil {
		t.Errorf("Get() after Touch = %v, %v", ok, err)
	}
}

func TestCache_Namespace(t *testing.T) {
	c, _ := NewCache(t.TempDir(), 0)
	a := c.Namespace("a:")
	b := c.Namespace("b:")
	_ = a.Set("k", "from a")

	var s string
	if ok, _ := b.Get("k", &s); ok {
		t.Error("namespaces should not share keys")
	}
	if ok, _ := c.Get("a:k", &s); !ok || s != "from a" {
		t.Errorf("prefixed key = %v, %q", ok, s)
	}
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewCache(dir, 0)
	_ = c.Set("x", 1)
	_ = c.Set("y", 2)
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d entries after Clear", len(entries))
	}
}

func TestNewCacheDefaultDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := NewCache("", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(c.Dir()) != "http" || filepath.Base(filepath.Dir(c.Dir())) != "ghgmap" {
		t.Errorf("Dir() = %q", c.Dir())
	}
}

func TestRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{200: false, 404: false, 429: true, 500: true, 503: true} {
		if got := RetryableStatus(code); got != want {
			t.Errorf("RetryableStatus(%d) = %v", code, got)
		}
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.org/data.csv": true,
		"http://localhost:8080/x":      true,
		"emissions.csv":                false,
		"/abs/path.csv":                false,
		"ftp://example.org/x":          false,
		"https://":                     false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func newTestFetcher(c *Cache) *Fetcher {
	f := NewFetcher(c)
	f.Delay = time.Millisecond
	return f
}

func TestFetch(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("Category\nA\n"))
	}))
	defer srv.Close()

	c, _ := NewCache(t.TempDir(), time.Minute)
	f := newTestFetcher(c)
	ctx := context.Background()

	body, err := f.Fetch(ctx, srv.URL)
	if err != nil || string(body) != "Category\nA\n" {
		t.Fatalf("Fetch() = %q, %v", body, err)
	}
	if _, err := f.Fetch(ctx, srv.URL); err != nil {
		t.Fatal(err)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("fresh entry should be served from cache, got %d requests", n)
	}

	old := time.Now().Add(-time.Hour)
	_ = os.Chtimes(c.keyPath(srv.URL), old, old)
	body, err = f.Fetch(ctx, srv.URL)
	if err != nil || string(body) != "Category\nA\n" {
		t.Fatalf("revalidated Fetch() = %q, %v", body, err)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("stale entry should be revalidated once, got %d requests", n)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestFetcher(nil).Fetch(context.Background(), srv.URL)
	if err != nil || string(body) != "ok" {
		t.Fatalf("Fetch() = %q, %v", body, err)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestFetchNotFound(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := newTestFetcher(nil).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("404 should fail")
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("404 should not be retried, got %d requests", n)
	}
}

func TestFetchStaleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewCache(t.TempDir(), time.Minute)
	_ = c.Set(srv.URL, Response{URL: srv.URL, Body: []byte("cached")})
	old := time.Now().Add(-time.Hour)
	_ = os.Chtimes(c.keyPath(srv.URL), old, old)

	body, err := newTestFetcher(c).Fetch(context.Background(), srv.URL)
	if err != nil || string(body) != "cached" {
		t.Errorf("Fetch() = %q, %v; want stale body", body, err)
	}
}
