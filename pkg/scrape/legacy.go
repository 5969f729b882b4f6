package scrape

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mgoin/vllm-wheels/pkg/integrations"
	"github.com/mgoin/vllm-wheels/pkg/integrations/wheelserver"
	"github.com/mgoin/vllm-wheels/pkg/snapshot"
	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

// legacyIndexPaths are the index roots probed for package directories,
// covering the standard simple layout and historical accelerator-specific
// indexes.
var legacyIndexPaths = []string{
	"",
	"simple/",
	"nightly/",
	"cu118/",
	"cu121/",
	"cu124/",
	"cu126/",
	"cpu/",
}

// LegacySource scrapes a conventional package-per-directory index. Results
// are keyed by package name rather than by commit or version.
type LegacySource struct {
	listings *wheelserver.Client
	log      *log.Logger
	baseURL  string
}

// NewLegacySource creates a legacy-index adapter for the given server.
func NewLegacySource(listings *wheelserver.Client, logger *log.Logger, baseURL string) *LegacySource {
	return &LegacySource{listings: listings, log: logger, baseURL: baseURL}
}

func (s *LegacySource) Kind() snapshot.SourceKind { return snapshot.KindPackage }

// Discover walks the known index roots and collects directory links that
// look like package names. File links and absolute URLs are skipped.
func (s *LegacySource) Discover(ctx context.Context, limit int) ([]string, error) {
	seen := make(map[string]bool)
	var packages []string

	for _, path := range legacyIndexPaths {
		indexURL := integrations.ResolveURL(s.baseURL, path)
		entries, err := s.listings.List(ctx, indexURL, false)
		if err != nil {
			if errors.Is(err, integrations.ErrRateLimited) {
				return packages, err
			}
			continue
		}

		found := 0
		for _, e := range entries {
			if isFileLink(e.Href) || strings.HasPrefix(e.Href, "http") {
				continue
			}
			found++
			if !seen[e.Name] {
				seen[e.Name] = true
				packages = append(packages, e.Name)
			}
		}
		if found > 0 {
			s.log.Debug("found packages in index", "path", path, "count", found)
		}
	}

	if limit > 0 && len(packages) > limit {
		packages = packages[:limit]
	}
	return packages, nil
}

// ListArtifacts tries the known per-package paths and returns the first
// non-empty listing. Unlike the commit adapter, unparseable .whl names are
// kept as unknown-typed records.
func (s *LegacySource) ListArtifacts(ctx context.Context, pkg string) ([]wheel.Artifact, error) {
	candidates := []string{
		integrations.ResolveURL(s.baseURL, "simple/"+pkg+"/"),
		integrations.ResolveURL(s.baseURL, "nightly/"+pkg+"/"),
		integrations.ResolveURL(s.baseURL, pkg+"/"),
		integrations.ResolveURL(s.baseURL, "simple/"+pkg),
		integrations.ResolveURL(s.baseURL, "nightly/"+pkg),
	}

	for _, url := range candidates {
		entries, err := s.listings.List(ctx, url, false)
		if err != nil {
			if errors.Is(err, integrations.ErrRateLimited) {
				return nil, err
			}
			continue
		}

		var artifacts []wheel.Artifact
		for _, e := range entries {
			if e.IsDir || !isFileLink(e.Name) {
				continue
			}
			a := wheel.Parse(e.Name)
			a.URL = e.URL
			artifacts = append(artifacts, a)
		}
		if len(artifacts) > 0 {
			return artifacts, nil
		}
	}
	return nil, nil
}

func isFileLink(name string) bool {
	return strings.HasSuffix(name, ".whl") ||
		strings.HasSuffix(name, ".tar.gz") ||
		strings.HasSuffix(name, ".zip")
}
