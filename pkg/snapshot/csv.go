package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

var csvHeader = []string{
	"filename", "source_type", "source_info", "version",
	"python_tag", "abi_tag", "platform_tag", "url",
	"install_command", "commit", "release_tag", "size", "scraped_at",
}

// WriteCSV exports the snapshot's wheel artifacts as a flat CSV at path.
// Source and non-wheel artifacts are skipped. The header row is written
// even when the snapshot holds no wheels. Rows are ordered by source key,
// then by the order artifacts were scraped within each group.
func WriteCSV(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	keys := make([]string, 0, len(s.Results))
	for k := range s.Results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	base := strings.TrimSuffix(s.BaseURL, "/")
	scrapedAt := s.ScrapeTime.Format("2006-01-02T15:04:05")

	for _, key := range keys {
		parsed := ParseSourceKey(key)
		for _, a := range s.Results[key] {
			if !a.IsWheel() {
				continue
			}
			row := []string{
				a.Filename,
				csvSourceType(parsed.Kind),
				parsed.ID,
				a.Version,
				a.PythonTag,
				a.ABITag,
				a.PlatformTag,
				a.URL,
				installCommand(parsed, a, base),
				a.Commit,
				a.ReleaseTag,
				csvSize(a.Size),
				scrapedAt,
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func csvSourceType(kind SourceKind) string {
	switch kind {
	case KindRelease:
		return "github_release"
	case KindVersion:
		return "release_version"
	case KindNightly:
		return "nightly"
	default:
		return "commit"
	}
}

// installCommand builds the uv invocation that would install this wheel.
// Index-backed sources point at the matching extra index under the scrape
// base URL; release assets are installed directly from their download URL.
func installCommand(key SourceKey, a wheel.Artifact, base string) string {
	switch key.Kind {
	case KindRelease:
		return fmt.Sprintf("uv pip install %s --torch-backend auto", a.URL)
	case KindVersion:
		return fmt.Sprintf("uv pip install -U vllm==%s --extra-index-url %s/%s --torch-backend auto", key.ID, base, key.ID)
	case KindNightly:
		return fmt.Sprintf("uv pip install vllm --extra-index-url %s/nightly --torch-backend auto", base)
	default:
		return fmt.Sprintf("uv pip install vllm --extra-index-url %s/%s --torch-backend auto", base, key.String())
	}
}

func csvSize(size int64) string {
	if size == 0 {
		return ""
	}
	return strconv.FormatInt(size, 10)
}
