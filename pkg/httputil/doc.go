// Package httputil fetches remote emissions CSV files.
//
// # Overview
//
// The render, inspect and serve commands accept an http(s) URL in place of
// a local CSV path. This package provides what those downloads need:
//
//   - [Fetcher]: GET with retries and conditional revalidation
//   - [Cache]: File-based storage of downloaded bodies
//   - [RetryableStatus]: Which responses are retried
//
// # Caching
//
// [Cache] stores responses under ~/.cache/ghgmap/http/ with a TTL. A fresh
// entry is served without touching the network. An expired entry is
// revalidated with If-None-Match / If-Modified-Since, so an unchanged file
// costs one 304 response instead of a full download.
//
//	c, err := httputil.NewCache("", time.Hour)
//	f := httputil.NewFetcher(c)
//	body, err := f.Fetch(ctx, "https://example.org/emissions.csv")
//
// # Retry
//
// [Fetcher] retries a download through the retry package for transient
// failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// The delay doubles after each attempt. Other 4xx responses fail
// immediately.
//
// The cache can be cleared via `ghgmap cache clear` or by deleting the
// cache directory.
package httputil
