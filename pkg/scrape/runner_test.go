package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mgoin/vllm-wheels/pkg/cache"
	"github.com/mgoin/vllm-wheels/pkg/integrations/github"
	"github.com/mgoin/vllm-wheels/pkg/integrations/pypi"
	"github.com/mgoin/vllm-wheels/pkg/integrations/wheelserver"
	"github.com/mgoin/vllm-wheels/pkg/snapshot"
)

var (
	hashA = strings.Repeat("a", 40)
	hashB = strings.Repeat("b", 39) + "0"
	hashC = strings.Repeat("c", 39) + "1"
	hashD = strings.Repeat("d", 39) + "2"
)

func anchors(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><pre>\n")
	for _, h := range hrefs {
		fmt.Fprintf(&b, "<a href=%q>%s</a>\n", h, h)
	}
	b.WriteString("</pre></body></html>")
	return b.String()
}

// newWheelServer serves a fixed path-to-page map; unknown paths 404.
func newWheelServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGitHubServer(t *testing.T, commitsJSON, releasesJSON string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/commits"):
			io.WriteString(w, commitsJSON)
		case strings.HasSuffix(r.URL.Path, "/releases"):
			io.WriteString(w, releasesJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPyPIServer(t *testing.T, releasesJSON string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, releasesJSON)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestRunner(t *testing.T, wheels *httptest.Server, gh *httptest.Server, py *httptest.Server, opts Options) *Runner {
	t.Helper()
	backend := cache.NewNullCache()

	listings := wheelserver.NewClient(backend, time.Minute)

	ghClient := github.NewClient(backend, "", time.Minute)
	if gh != nil {
		ghClient.BaseURL = gh.URL
	}

	pyClient := pypi.NewClient(backend, time.Minute)
	if py != nil {
		pyClient.BaseURL = py.URL
	}

	opts.BaseURL = wheels.URL + "/"
	if opts.Repo == "" {
		opts.Repo = "vllm-project/vllm"
	}
	if opts.Package == "" {
		opts.Package = "vllm"
	}
	return NewRunner(testLogger(), listings, ghClient, pyClient, opts)
}

func TestRunSingleCommit(t *testing.T) {
	wheels := newWheelServer(t, map[string]string{
		"/" + hashA + "/": anchors(
			"vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl",
			"vllm-0.9.2.tar.gz",
		),
	})

	r := newTestRunner(t, wheels, nil, nil, Options{Commit: hashA, MaxCommits: 50})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if snap.Mode != snapshot.ModeSingleCommit {
		t.Errorf("Mode = %q", snap.Mode)
	}
	group := snap.Results[hashA]
	if len(group) != 2 {
		t.Fatalf("len(group) = %d, want 2: %+v", len(group), group)
	}
	if group[0].Commit != hashA {
		t.Errorf("Commit = %q, want %q", group[0].Commit, hashA)
	}
	if snap.Sources.Commits != 1 {
		t.Errorf("Sources.Commits = %d, want 1", snap.Sources.Commits)
	}
}

func TestRunCommitVllmSubdirectory(t *testing.T) {
	wheels := newWheelServer(t, map[string]string{
		"/":                    anchors(hashA + "/"),
		"/" + hashA + "/vllm/": anchors("vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl"),
	})
	gh := newGitHubServer(t, `[]`, `[]`)

	r := newTestRunner(t, wheels, gh, nil, Options{MaxCommits: 50})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	group := snap.Results[hashA]
	if len(group) != 1 {
		t.Fatalf("len(group) = %d, want 1: %+v", len(group), group)
	}
	if !strings.HasSuffix(group[0].URL, "/"+hashA+"/vllm/vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl") {
		t.Errorf("URL = %q", group[0].URL)
	}
}

func TestRunCommitBareDirectoryAnchor(t *testing.T) {
	// Autoindex pages do not always put a trailing slash on directory
	// links; a bare "vllm" anchor is still followed, and one that merely
	// points back at an already-fetched path is not fetched twice.
	wheels := newWheelServer(t, map[string]string{
		"/" + hashA + "/":           anchors("vllm"),
		"/" + hashA + "/vllm/":      anchors("vllm"),
		"/" + hashA + "/vllm/vllm/": anchors("vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl"),
	})

	r := newTestRunner(t, wheels, nil, nil, Options{Commit: hashA})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	group := snap.Results[hashA]
	if len(group) != 1 {
		t.Fatalf("len(group) = %d, want 1: %+v", len(group), group)
	}
	if !strings.HasSuffix(group[0].URL, "/"+hashA+"/vllm/vllm/vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl") {
		t.Errorf("URL = %q", group[0].URL)
	}
}

func TestRunCommitGitHubFallbackProbesAvailability(t *testing.T) {
	// Server index lists one commit; GitHub supplies two more, of which
	// only one actually serves wheels.
	wheels := newWheelServer(t, map[string]string{
		"/":               anchors(hashA + "/"),
		"/" + hashA + "/": anchors("vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl"),
		"/" + hashC + "/": anchors("vllm-0.9.3.dev1-cp38-abi3-manylinux1_x86_64.whl"),
	})
	gh := newGitHubServer(t, fmt.Sprintf(`[{"sha":%q},{"sha":%q}]`, hashC, hashD), `[]`)

	r := newTestRunner(t, wheels, gh, nil, Options{MaxCommits: 50})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, ok := snap.Results[hashA]; !ok {
		t.Errorf("missing server-discovered commit %s", hashA)
	}
	if _, ok := snap.Results[hashC]; !ok {
		t.Errorf("missing github-probed commit %s", hashC)
	}
	if _, ok := snap.Results[hashD]; ok {
		t.Errorf("commit without wheels %s should not appear", hashD)
	}
	if snap.Sources.Commits != 2 {
		t.Errorf("Sources.Commits = %d, want 2", snap.Sources.Commits)
	}
}

func TestRunNightlyPathFallback(t *testing.T) {
	wheels := newWheelServer(t, map[string]string{
		"/nightly/vllm/": anchors("vllm-0.9.3.dev1-cp38-abi3-manylinux1_x86_64.whl"),
	})

	r := newTestRunner(t, wheels, nil, nil, Options{Nightly: true})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if snap.Mode != snapshot.ModeNightly {
		t.Errorf("Mode = %q", snap.Mode)
	}
	group := snap.Results["nightly"]
	if len(group) != 1 {
		t.Fatalf("len(group) = %d, want 1", len(group))
	}
	if group[0].Source != "nightly" {
		t.Errorf("Source = %q", group[0].Source)
	}
	if snap.Sources.Nightly != 1 {
		t.Errorf("Sources.Nightly = %d", snap.Sources.Nightly)
	}
}

func TestRunReleaseVersions(t *testing.T) {
	wheels := newWheelServer(t, map[string]string{
		"/v0.9.2/": anchors("vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl"),
	})
	py := newPyPIServer(t, `{"releases":{"0.9.1":[],"0.9.2":[]}}`)
	gh := newGitHubServer(t, `[]`, `[]`)

	r := newTestRunner(t, wheels, gh, py, Options{
		ReleaseVersions: true,
		MaxVersions:     1,
	})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	group := snap.Results["version_0.9.2"]
	if len(group) != 1 {
		t.Fatalf("len(group) = %d, want 1: keys %v", len(group), keysOf(snap))
	}
	if group[0].Source != "release_version" || group[0].VersionDirectory != "0.9.2" {
		t.Errorf("provenance = %q/%q", group[0].Source, group[0].VersionDirectory)
	}
	if _, ok := snap.Results["version_0.9.1"]; ok {
		t.Error("version_0.9.1 present despite MaxVersions=1")
	}
	if snap.Sources.ReleaseVersions != 1 {
		t.Errorf("Sources.ReleaseVersions = %d", snap.Sources.ReleaseVersions)
	}
}

func TestRunGithubReleases(t *testing.T) {
	wheels := newWheelServer(t, nil)
	releases := `[
		{"tag_name":"v0.9.2","name":"v0.9.2","prerelease":false,"assets":[
			{"name":"vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl","browser_download_url":"https://example.com/w.whl","size":111},
			{"name":"source.tar.gz","browser_download_url":"https://example.com/s.tar.gz","size":5}
		]},
		{"tag_name":"v0.9.1","name":"v0.9.1","prerelease":false,"assets":[]}
	]`
	gh := newGitHubServer(t, `[]`, releases)

	r := newTestRunner(t, wheels, gh, nil, Options{GithubReleases: true, MaxReleases: 20})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if snap.Mode != snapshot.ModeGithubReleases {
		t.Errorf("Mode = %q", snap.Mode)
	}
	group := snap.Results["release_v0.9.2"]
	if len(group) != 1 {
		t.Fatalf("len(group) = %d, want 1: keys %v", len(group), keysOf(snap))
	}
	a := group[0]
	if a.ReleaseTag != "v0.9.2" || a.Source != "github_release" || a.Size != 111 {
		t.Errorf("unexpected artifact: %+v", a)
	}
	if _, ok := snap.Results["release_v0.9.1"]; ok {
		t.Error("release without wheel assets should not appear")
	}
	// Releases alone suppress the default commit scrape.
	if snap.Sources.Commits != 0 {
		t.Errorf("Sources.Commits = %d, want 0", snap.Sources.Commits)
	}
}

func TestRunWheelsOnly(t *testing.T) {
	wheels := newWheelServer(t, map[string]string{
		"/" + hashA + "/": anchors(
			"vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl",
			"vllm-0.9.2.tar.gz",
		),
	})

	r := newTestRunner(t, wheels, nil, nil, Options{Commit: hashA, WheelsOnly: true})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	group := snap.Results[hashA]
	if len(group) != 1 || !group[0].IsWheel() {
		t.Errorf("unexpected group: %+v", group)
	}
}

func TestRunLegacyMode(t *testing.T) {
	wheels := newWheelServer(t, map[string]string{
		"/simple/":      anchors("vllm/", "other-pkg/"),
		"/simple/vllm/": anchors("vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl"),
	})

	r := newTestRunner(t, wheels, nil, nil, Options{LegacyMode: true})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if snap.Mode != snapshot.ModeLegacy {
		t.Errorf("Mode = %q", snap.Mode)
	}
	if len(snap.Results["vllm"]) != 1 {
		t.Errorf("vllm group = %+v", snap.Results["vllm"])
	}
	if _, ok := snap.Results["other-pkg"]; ok {
		t.Error("package with no files should not appear")
	}
}

func TestRunLegacyModeAllSources(t *testing.T) {
	// Legacy mode swaps in package discovery but does not turn the other
	// surfaces off when their flags are set alongside it.
	wheels := newWheelServer(t, map[string]string{
		"/simple/":      anchors("vllm/"),
		"/simple/vllm/": anchors("vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl"),
		"/nightly/":     anchors("vllm-0.9.3.dev1-cp38-abi3-manylinux1_x86_64.whl"),
	})
	gh := newGitHubServer(t, `[]`, `[]`)
	py := newPyPIServer(t, `{"releases":{}}`)

	r := newTestRunner(t, wheels, gh, py, Options{LegacyMode: true, AllSources: true, MaxCommits: 50})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if snap.Mode != snapshot.ModeLegacy {
		t.Errorf("Mode = %q", snap.Mode)
	}
	if len(snap.Results["vllm"]) != 1 {
		t.Errorf("vllm group = %+v, keys %v", snap.Results["vllm"], keysOf(snap))
	}
	if len(snap.Results["nightly"]) != 1 {
		t.Errorf("nightly group = %+v, keys %v", snap.Results["nightly"], keysOf(snap))
	}
}

func TestRunRateLimitAbandonsSource(t *testing.T) {
	// First commit listing succeeds; the second is rate limited, so the
	// third is never requested and the run still completes.
	var hits3 int
	wheels := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			io.WriteString(w, anchors(hashA+"/", hashB+"/", hashC+"/"))
		case "/" + hashA + "/":
			io.WriteString(w, anchors("vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl"))
		case "/" + hashB + "/":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/" + hashC + "/":
			hits3++
			io.WriteString(w, anchors("vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer wheels.Close()
	gh := newGitHubServer(t, `[]`, `[]`)

	r := newTestRunner(t, wheels, gh, nil, Options{MaxCommits: 50})
	snap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, ok := snap.Results[hashA]; !ok {
		t.Error("commit scraped before the rate limit should be kept")
	}
	if _, ok := snap.Results[hashC]; ok {
		t.Error("candidates after a rate limit should be abandoned")
	}
	if hits3 != 0 {
		t.Errorf("third commit was requested %d times after rate limit", hits3)
	}
}

func TestRunCancelledContext(t *testing.T) {
	wheels := newWheelServer(t, map[string]string{
		"/" + hashA + "/": anchors("vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t, wheels, nil, nil, Options{Commit: hashA})
	if _, err := r.Run(ctx); err == nil {
		t.Error("Run() with cancelled context returned nil error")
	}
}

func TestOptionsMode(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want snapshot.Mode
	}{
		{"default", Options{}, snapshot.ModeMultiSource},
		{"legacy", Options{LegacyMode: true}, snapshot.ModeLegacy},
		{"single commit", Options{Commit: hashA}, snapshot.ModeSingleCommit},
		{"releases only", Options{GithubReleases: true}, snapshot.ModeGithubReleases},
		{"nightly only", Options{Nightly: true}, snapshot.ModeNightly},
		{"all sources", Options{GithubReleases: true, Nightly: true, AllSources: true}, snapshot.ModeMultiSource},
		{"versions only", Options{ReleaseVersions: true}, snapshot.ModeMultiSource},
	}
	for _, tt := range tests {
		if got := tt.opts.Mode(); got != tt.want {
			t.Errorf("%s: Mode() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestOptionsScrapeCommits(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"default", Options{}, true},
		{"legacy", Options{LegacyMode: true}, false},
		{"releases only", Options{GithubReleases: true}, false},
		{"nightly only", Options{Nightly: true}, false},
		{"versions only", Options{ReleaseVersions: true}, true},
		{"all sources", Options{GithubReleases: true, AllSources: true}, true},
	}
	for _, tt := range tests {
		if got := tt.opts.scrapeCommits(); got != tt.want {
			t.Errorf("%s: scrapeCommits() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func keysOf(s *snapshot.Snapshot) []string {
	keys := make([]string, 0, len(s.Results))
	for k := range s.Results {
		keys = append(keys, k)
	}
	return keys
}
