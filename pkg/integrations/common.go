package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

const httpTimeout = 30 * time.Second

// UserAgent is sent with every request made through this package.
const UserAgent = "vLLM-Wheel-Scraper/1.0"

var (
	// ErrNotFound is returned when a resource doesn't exist upstream (404).
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when the upstream API reports quota
	// exhaustion (403 or 429). Callers should stop issuing requests to
	// that surface rather than retry.
	ErrRateLimited = errors.New("rate limited")
)

// NewHTTPClient creates an HTTP client with a standard timeout for scraping requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// ResolveURL resolves ref against base, returning ref unchanged when it is
// already absolute or when either side fails to parse. Directory-listing
// pages link files both relatively and absolutely, so adapters funnel every
// href through this.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
