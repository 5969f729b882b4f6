// Package snapshot defines the scrape output document and its derived
// reports. A snapshot groups scraped artifacts by source key and carries
// enough provenance to regenerate stats and CSV exports without rescraping.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

// Mode describes which scrape surfaces produced a snapshot.
type Mode string

const (
	ModeMultiSource    Mode = "multi-source"
	ModeSingleCommit   Mode = "single-commit"
	ModeGithubReleases Mode = "github-releases"
	ModeNightly        Mode = "nightly"
	ModeLegacy         Mode = "legacy"
)

// SourceCounts tallies how many groups of each kind a snapshot holds.
// Package groups from legacy scrapes count toward Commits.
type SourceCounts struct {
	Commits         int `json:"commits"`
	GithubReleases  int `json:"github_releases"`
	Nightly         int `json:"nightly"`
	ReleaseVersions int `json:"release_versions"`
}

// Snapshot is the top-level scrape output document.
type Snapshot struct {
	ScrapeID   string                      `json:"scrape_id"`
	ScrapeTime time.Time                   `json:"scrape_time"`
	BaseURL    string                      `json:"base_url"`
	Mode       Mode                        `json:"mode"`
	Sources    SourceCounts                `json:"sources"`
	Results    map[string][]wheel.Artifact `json:"results"`
}

// New creates an empty snapshot stamped with a fresh scrape ID and the
// current time.
func New(baseURL string, mode Mode) *Snapshot {
	return &Snapshot{
		ScrapeID:   uuid.NewString(),
		ScrapeTime: time.Now(),
		BaseURL:    baseURL,
		Mode:       mode,
		Results:    make(map[string][]wheel.Artifact),
	}
}

// Add records one source's artifacts under its key. If wheelsOnly is set,
// non-wheel artifacts are dropped first. Groups that end up empty are not
// added and do not count toward source totals.
func (s *Snapshot) Add(key SourceKey, artifacts []wheel.Artifact, wheelsOnly bool) {
	if wheelsOnly {
		var kept []wheel.Artifact
		for _, a := range artifacts {
			if a.IsWheel() {
				kept = append(kept, a)
			}
		}
		artifacts = kept
	}
	if len(artifacts) == 0 {
		return
	}
	s.Results[key.String()] = artifacts

	switch key.Kind {
	case KindRelease:
		s.Sources.GithubReleases++
	case KindVersion:
		s.Sources.ReleaseVersions++
	case KindNightly:
		s.Sources.Nightly++
	default:
		s.Sources.Commits++
	}
}

// TotalFiles returns the number of artifacts across all groups.
func (s *Snapshot) TotalFiles() int {
	n := 0
	for _, files := range s.Results {
		n += len(files)
	}
	return n
}

// TotalWheels returns the number of wheel artifacts across all groups.
func (s *Snapshot) TotalWheels() int {
	n := 0
	for _, files := range s.Results {
		for _, f := range files {
			if f.IsWheel() {
				n++
			}
		}
	}
	return n
}

// Write serializes the snapshot as two-space-indented JSON to path.
func (s *Snapshot) Write(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot previously written with [Snapshot.Write].
func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	if s.Results == nil {
		s.Results = make(map[string][]wheel.Artifact)
	}
	return &s, nil
}
