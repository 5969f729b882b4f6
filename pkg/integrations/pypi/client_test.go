package pypi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/mgoin/vllm-wheels/pkg/cache"
	"github.com/mgoin/vllm-wheels/pkg/integrations"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(cache.NewNullCache(), time.Minute)
	c.BaseURL = srv.URL
	return c
}

func TestVersions(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vllm/json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"releases":{"0.9.0":[],"0.9.2":[],"0.9.1":[]}}`))
	}))

	versions, err := c.Versions(context.Background(), "vllm", 20, false)
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	want := []string{"0.9.2", "0.9.1", "0.9.0"}
	if !reflect.DeepEqual(versions, want) {
		t.Errorf("Versions() = %v, want %v", versions, want)
	}
}

func TestVersionsTruncatesToMax(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"releases":{"0.9.0":[],"0.9.2":[],"0.9.1":[]}}`))
	}))

	versions, err := c.Versions(context.Background(), "vllm", 1, false)
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	want := []string{"0.9.2"}
	if !reflect.DeepEqual(versions, want) {
		t.Errorf("Versions() = %v, want %v", versions, want)
	}
}

func TestVersionsUnboundedMax(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"releases":{"0.9.0":[],"0.9.2":[],"0.9.1":[]}}`))
	}))

	versions, err := c.Versions(context.Background(), "vllm", 0, false)
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	if len(versions) != 3 {
		t.Errorf("Versions() with max=0 = %v, want all 3", versions)
	}
}

func TestVersionsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.Versions(context.Background(), "nonexistent-pkg", 20, false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("Versions() error = %v, want ErrNotFound", err)
	}
}
