package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mgoin/vllm-wheels/pkg/cache"
	"github.com/mgoin/vllm-wheels/pkg/integrations"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(cache.NewNullCache(), "", time.Minute)
	c.BaseURL = srv.URL
	return c
}

func TestCommits(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/vllm-project/vllm/commits" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("per_page"); got != "5" {
			t.Errorf("per_page = %q, want 5", got)
		}
		w.Write([]byte(`[{"sha":"aaa"},{"sha":"bbb"},{"sha":"ccc"}]`))
	}))

	commits, err := c.Commits(context.Background(), "vllm-project/vllm", 5, false)
	if err != nil {
		t.Fatalf("Commits() error = %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("len(commits) = %d, want 3", len(commits))
	}
	if commits[0].SHA != "aaa" {
		t.Errorf("commits[0].SHA = %q, want aaa", commits[0].SHA)
	}
}

func TestCommitsTruncatesToMax(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"sha":"aaa"},{"sha":"bbb"},{"sha":"ccc"}]`))
	}))

	commits, err := c.Commits(context.Background(), "vllm-project/vllm", 2, false)
	if err != nil {
		t.Fatalf("Commits() error = %v", err)
	}
	if len(commits) != 2 {
		t.Errorf("len(commits) = %d, want 2", len(commits))
	}
}

func TestCommitsUnboundedMax(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("per_page = %q, want 100", got)
		}
		w.Write([]byte(`[{"sha":"aaa"},{"sha":"bbb"},{"sha":"ccc"}]`))
	}))

	commits, err := c.Commits(context.Background(), "vllm-project/vllm", 0, false)
	if err != nil {
		t.Fatalf("Commits() error = %v", err)
	}
	if len(commits) != 3 {
		t.Errorf("len(commits) = %d with max=0, want 3", len(commits))
	}
}

func TestCommitsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.Commits(context.Background(), "vllm-project/nonexistent", 5, false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("Commits() error = %v, want ErrNotFound", err)
	}
}

func TestCommitsRateLimited(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.Commits(context.Background(), "vllm-project/vllm", 5, false)
	if !errors.Is(err, integrations.ErrRateLimited) {
		t.Errorf("Commits() error = %v, want ErrRateLimited", err)
	}
}

func TestReleases(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/vllm-project/vllm/releases" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[
			{"tag_name":"v0.9.2","name":"v0.9.2","published_at":"2025-07-07T00:00:00Z","assets":[
				{"name":"vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl","browser_download_url":"https://example.com/vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl","size":12345}
			]},
			{"tag_name":"v0.9.1","name":"v0.9.1","published_at":"2025-06-10T00:00:00Z","assets":[]}
		]`))
	}))

	releases, err := c.Releases(context.Background(), "vllm-project/vllm", 20, false)
	if err != nil {
		t.Fatalf("Releases() error = %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("len(releases) = %d, want 2", len(releases))
	}
	if releases[0].TagName != "v0.9.2" {
		t.Errorf("TagName = %q, want v0.9.2", releases[0].TagName)
	}
	if len(releases[0].Assets) != 1 || releases[0].Assets[0].Size != 12345 {
		t.Errorf("unexpected assets: %+v", releases[0].Assets)
	}
}

func TestAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), "tok", time.Minute)
	c.BaseURL = srv.URL
	if _, err := c.Commits(context.Background(), "vllm-project/vllm", 1, false); err != nil {
		t.Fatalf("Commits() error = %v", err)
	}
}
