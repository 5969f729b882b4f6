package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRoutesIndex(t *testing.T) {
	c := New(io.Discard, LogInfo)
	srv := httptest.NewServer(c.routes(t.TempDir()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "vLLM Wheels") {
		t.Error("index page missing title")
	}
}

func TestRoutesDataFiles(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataDir, "wheels.json"), []byte(`{"results":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	srv := httptest.NewServer(c.routes(dataDir))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/data/wheels.json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS header = %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"results":{}}` {
		t.Errorf("body = %q", body)
	}
}

func TestRoutesDataMissingFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	srv := httptest.NewServer(c.routes(t.TempDir()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/data/absent.json")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRoutesHealthz(t *testing.T) {
	c := New(io.Discard, LogInfo)
	srv := httptest.NewServer(c.routes(t.TempDir()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
