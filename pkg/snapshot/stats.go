package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Stats is the derived summary document served alongside the snapshot.
type Stats struct {
	LastUpdated    time.Time      `json:"last_updated"`
	TotalSources   int            `json:"total_sources"`
	TotalFiles     int            `json:"total_files"`
	TotalWheels    int            `json:"total_wheels"`
	SourceCounts   SourceCounts   `json:"source_counts"`
	PythonVersions map[string]int `json:"python_versions"`
	Platforms      map[string]int `json:"platforms"`
}

// ComputeStats derives summary statistics from a snapshot. Source counts
// are recomputed from the result keys rather than trusted from the
// snapshot header, so stats stay correct for hand-edited or merged files.
func ComputeStats(s *Snapshot) *Stats {
	st := &Stats{
		LastUpdated:    time.Now(),
		TotalSources:   len(s.Results),
		TotalFiles:     s.TotalFiles(),
		PythonVersions: make(map[string]int),
		Platforms:      make(map[string]int),
	}

	for key, files := range s.Results {
		switch ParseSourceKey(key).Kind {
		case KindRelease:
			st.SourceCounts.GithubReleases++
		case KindVersion:
			st.SourceCounts.ReleaseVersions++
		case KindNightly:
			st.SourceCounts.Nightly++
		default:
			st.SourceCounts.Commits++
		}

		for _, f := range files {
			if !f.IsWheel() {
				continue
			}
			st.TotalWheels++
			st.PythonVersions[orUnknown(f.PythonTag)]++
			st.Platforms[orUnknown(f.PlatformTag)]++
		}
	}
	return st
}

// Write serializes the stats as two-space-indented JSON to path.
func (st *Stats) Write(path string) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
