package scrape

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/mgoin/vllm-wheels/pkg/integrations"
	"github.com/mgoin/vllm-wheels/pkg/integrations/pypi"
	"github.com/mgoin/vllm-wheels/pkg/integrations/wheelserver"
	"github.com/mgoin/vllm-wheels/pkg/snapshot"
	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

// VersionSource scrapes per-version wheel directories for versions the
// package has published on PyPI.
type VersionSource struct {
	listings *wheelserver.Client
	pypi     *pypi.Client
	log      *log.Logger
	baseURL  string
	pkg      string
}

// NewVersionSource creates a release-version adapter for the given server
// and package.
func NewVersionSource(listings *wheelserver.Client, py *pypi.Client, logger *log.Logger, baseURL, pkg string) *VersionSource {
	return &VersionSource{listings: listings, pypi: py, log: logger, baseURL: baseURL, pkg: pkg}
}

func (s *VersionSource) Kind() snapshot.SourceKind { return snapshot.KindVersion }

// Discover lists published versions from PyPI, newest first.
func (s *VersionSource) Discover(ctx context.Context, limit int) ([]string, error) {
	versions, err := s.pypi.Versions(ctx, s.pkg, limit, false)
	if err != nil {
		return nil, err
	}
	s.log.Info("discovered published versions", "package", s.pkg, "count", len(versions))
	return versions, nil
}

// ListArtifacts tries the known per-version directory layouts, plain and
// v-prefixed, and returns the first non-empty listing.
func (s *VersionSource) ListArtifacts(ctx context.Context, version string) ([]wheel.Artifact, error) {
	candidates := []string{
		integrations.ResolveURL(s.baseURL, version+"/"),
		integrations.ResolveURL(s.baseURL, version+"/vllm/"),
		integrations.ResolveURL(s.baseURL, "v"+version+"/"),
		integrations.ResolveURL(s.baseURL, "v"+version+"/vllm/"),
	}

	for _, url := range candidates {
		entries, err := s.listings.List(ctx, url, false)
		if err != nil {
			if errors.Is(err, integrations.ErrRateLimited) {
				return nil, err
			}
			continue
		}
		artifacts := artifactsFromEntries(entries, func(a *wheel.Artifact) {
			a.Source = "release_version"
			a.VersionDirectory = version
		})
		if len(artifacts) > 0 {
			return artifacts, nil
		}
	}
	return nil, nil
}
