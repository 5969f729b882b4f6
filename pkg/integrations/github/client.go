package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mgoin/vllm-wheels/pkg/cache"
	"github.com/mgoin/vllm-wheels/pkg/integrations"
)

const maxPerPage = 100

// Client provides access to the GitHub API for commit and release listings.
// It handles HTTP requests with caching, automatic retries, and optional
// authentication.
type Client struct {
	*integrations.Client
	// BaseURL is the API endpoint; override to target a different host.
	BaseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests
// (lower rate limits).
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return &Client{
		Client:  integrations.NewClient(backend, "github:", cacheTTL, headers),
		BaseURL: "https://api.github.com",
	}
}

// Commits retrieves the most recent commit SHAs for a repository, newest
// first. The repo is given as "owner/name". At most max commits are
// returned; max <= 0 asks for a full page. The API caps a single page
// at 100.
func (c *Client) Commits(ctx context.Context, repo string, max int, refresh bool) ([]Commit, error) {
	perPage := pageSize(max)
	key := fmt.Sprintf("commits:%s:%d", repo, perPage)

	var commits []Commit
	err := c.Cached(ctx, key, refresh, &commits, func() error {
		url := fmt.Sprintf("%s/repos/%s/commits?per_page=%d", c.BaseURL, repo, perPage)
		if err := c.Get(ctx, url, &commits); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: github repo %s", err, repo)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if max > 0 && len(commits) > max {
		commits = commits[:max]
	}
	return commits, nil
}

// pageSize maps a result bound to a per_page value; non-positive bounds
// request a full page.
func pageSize(max int) int {
	if max <= 0 || max > maxPerPage {
		return maxPerPage
	}
	return max
}

// Releases retrieves the most recent releases for a repository, newest
// first, including their downloadable assets.
func (c *Client) Releases(ctx context.Context, repo string, max int, refresh bool) ([]Release, error) {
	perPage := pageSize(max)
	key := fmt.Sprintf("releases:%s:%d", repo, perPage)

	var releases []Release
	err := c.Cached(ctx, key, refresh, &releases, func() error {
		url := fmt.Sprintf("%s/repos/%s/releases?per_page=%d", c.BaseURL, repo, perPage)
		if err := c.Get(ctx, url, &releases); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: github repo %s", err, repo)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if max > 0 && len(releases) > max {
		releases = releases[:max]
	}
	return releases, nil
}
