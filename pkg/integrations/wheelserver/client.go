// Package wheelserver fetches and parses autoindex-style directory listings
// from a wheel hosting server. Listing pages are plain HTML whose anchors
// point at wheel files, sdists, and nested directories.
package wheelserver

import (
	"context"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mgoin/vllm-wheels/pkg/cache"
	"github.com/mgoin/vllm-wheels/pkg/integrations"
)

// Entry is a single anchor extracted from a directory listing page.
type Entry struct {
	// Name is the cleaned display name: the last path segment of the href
	// with any query string or fragment removed.
	Name string `json:"name"`
	// Href is the raw anchor target as it appeared in the page.
	Href string `json:"href"`
	// URL is the href resolved against the page URL.
	URL string `json:"url"`
	// IsDir reports whether the href ends in a slash.
	IsDir bool `json:"is_dir"`
}

// Client fetches directory listing pages with caching and retries.
type Client struct {
	*integrations.Client
}

// NewClient creates a listing client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client: integrations.NewClient(backend, "listing:", cacheTTL, nil),
	}
}

// List fetches a directory listing page and returns its entries in document
// order. Self and parent links are dropped.
func (c *Client) List(ctx context.Context, pageURL string, refresh bool) ([]Entry, error) {
	var entries []Entry
	err := c.Cached(ctx, pageURL, refresh, &entries, func() error {
		page, err := c.GetText(ctx, pageURL)
		if err != nil {
			return err
		}
		entries = ParseListing(pageURL, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseListing extracts anchor entries from a listing page body. Anchors
// without an href, self links, and parent links are skipped. Malformed HTML
// is tolerated; the tokenizer yields whatever anchors it can recognize.
func ParseListing(pageURL, body string) []Entry {
	var entries []Entry
	tok := html.NewTokenizer(strings.NewReader(body))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return entries
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tok.TagName()
			if len(name) != 1 || name[0] != 'a' || !hasAttr {
				continue
			}
			href := anchorHref(tok)
			if href == "" {
				continue
			}
			e := Entry{
				Name:  CleanName(href),
				Href:  href,
				URL:   integrations.ResolveURL(pageURL, href),
				IsDir: strings.HasSuffix(href, "/"),
			}
			if e.Name == "" || e.Name == "." || e.Name == ".." {
				continue
			}
			entries = append(entries, e)
		}
	}
}

func anchorHref(tok *html.Tokenizer) string {
	for {
		key, val, more := tok.TagAttr()
		if string(key) == "href" {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}

// CleanName reduces an href to its display name: strip any fragment and
// query string, then take the last non-empty path segment.
func CleanName(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimSuffix(href, "/")
	if i := strings.LastIndexByte(href, '/'); i >= 0 {
		href = href[i+1:]
	}
	return href
}
