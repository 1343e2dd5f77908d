package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/ghgmap/pkg/retry"
)

// MaxBodySize caps downloaded files.
const MaxBodySize = 32 << 20

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Response is a downloaded body with the validators needed to revalidate
// it.
type Response struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Body         []byte    `json:"body"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Fetcher downloads files over HTTP, caching and revalidating them.
type Fetcher struct {
	Client   *http.Client
	Cache    *Cache // nil disables caching
	Attempts int
	Delay    time.Duration
}

// NewFetcher returns a fetcher with default retry settings. c may be nil.
func NewFetcher(c *Cache) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: DefaultTimeout},
		Cache:    c,
		Attempts: 3,
		Delay:    time.Second,
	}
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Fetch returns the body at rawURL. A fresh cache entry is returned as is;
// a stale one is revalidated and reused on 304 Not Modified. When the
// origin cannot be reached the stale body is returned rather than failing.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var cached Response
	stale := false
	if f.Cache != nil {
		hit, err := f.Cache.Get(rawURL, &cached)
		switch {
		case hit && err == nil:
			return cached.Body, nil
		case hit && errors.Is(err, ErrExpired):
			stale = true
		}
	}

	var resp Response
	notModified := false
	err := retry.Do(ctx, f.Attempts, f.Delay, func() error {
		var err error
		resp, notModified, err = f.get(ctx, rawURL, cached, stale)
		return err
	})
	if err != nil {
		if stale {
			return cached.Body, nil
		}
		return nil, err
	}

	if notModified {
		if f.Cache != nil {
			_ = f.Cache.Touch(rawURL)
		}
		return cached.Body, nil
	}
	if f.Cache != nil {
		_ = f.Cache.Set(rawURL, resp)
	}
	return resp.Body, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string, cached Response, conditional bool) (Response, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, false, err
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	if conditional {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, false, ctx.Err()
		}
		return Response{}, false, retry.Transient(fmt.Errorf("get %s: %w", rawURL, err))
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotModified && conditional {
		return Response{}, true, nil
	}
	if res.StatusCode != http.StatusOK {
		err := fmt.Errorf("get %s: %s", rawURL, res.Status)
		if RetryableStatus(res.StatusCode) {
			return Response{}, false, retry.Transient(err)
		}
		return Response{}, false, err
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxBodySize+1))
	if err != nil {
		return Response{}, false, retry.Transient(fmt.Errorf("read %s: %w", rawURL, err))
	}
	if len(body) > MaxBodySize {
		return Response{}, false, fmt.Errorf("get %s: body exceeds %d bytes", rawURL, MaxBodySize)
	}
	return Response{
		URL:          rawURL,
		ETag:         res.Header.Get("ETag"),
		LastModified: res.Header.Get("Last-Modified"),
		Body:         body,
		FetchedAt:    time.Now(),
	}, false, nil
}
