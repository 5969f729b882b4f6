package pypi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mgoin/vllm-wheels/pkg/cache"
	"github.com/mgoin/vllm-wheels/pkg/integrations"
)

// Client provides access to the PyPI JSON API for published version listings.
// It handles HTTP requests with caching and automatic retries.
type Client struct {
	*integrations.Client
	// BaseURL is the API endpoint; override to target a different host.
	BaseURL string
}

// NewClient creates a PyPI client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "pypi:", cacheTTL, nil),
		BaseURL: "https://pypi.org/pypi",
	}
}

// Versions retrieves published version strings for a package, newest first.
// At most max versions are returned; max <= 0 means unbounded. Ordering is
// reverse lexicographic over the raw version strings.
func (c *Client) Versions(ctx context.Context, pkg string, max int, refresh bool) ([]string, error) {
	key := "versions:" + pkg

	var versions []string
	err := c.Cached(ctx, key, refresh, &versions, func() error {
		var data apiResponse
		url := fmt.Sprintf("%s/%s/json", c.BaseURL, pkg)
		if err := c.Get(ctx, url, &data); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: pypi package %s", err, pkg)
			}
			return err
		}
		versions = versions[:0]
		for v := range data.Releases {
			versions = append(versions, v)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(versions)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if max > 0 && len(versions) > max {
		versions = versions[:max]
	}
	return versions, nil
}

type apiResponse struct {
	Releases map[string][]struct{} `json:"releases"`
}
