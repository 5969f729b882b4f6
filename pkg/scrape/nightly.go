package scrape

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/mgoin/vllm-wheels/pkg/integrations"
	"github.com/mgoin/vllm-wheels/pkg/integrations/wheelserver"
	"github.com/mgoin/vllm-wheels/pkg/snapshot"
	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

// NightlySource scrapes the nightly wheel index. The index has moved across
// a few layouts over time, so several known paths are tried in order and
// the first one serving files wins.
type NightlySource struct {
	listings *wheelserver.Client
	log      *log.Logger
	baseURL  string
}

// NewNightlySource creates a nightly adapter for the given server.
func NewNightlySource(listings *wheelserver.Client, logger *log.Logger, baseURL string) *NightlySource {
	return &NightlySource{listings: listings, log: logger, baseURL: baseURL}
}

func (s *NightlySource) Kind() snapshot.SourceKind { return snapshot.KindNightly }

// Discover returns the single fixed nightly identifier.
func (s *NightlySource) Discover(ctx context.Context, limit int) ([]string, error) {
	return []string{"nightly"}, nil
}

// ListArtifacts tries the known nightly paths and returns the first
// non-empty listing.
func (s *NightlySource) ListArtifacts(ctx context.Context, id string) ([]wheel.Artifact, error) {
	candidates := []string{
		integrations.ResolveURL(s.baseURL, "nightly/"),
		integrations.ResolveURL(s.baseURL, "nightly/vllm/"),
		integrations.ResolveURL(s.baseURL, "nightly/simple/vllm/"),
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
			a.Source = "nightly"
		})
		if len(artifacts) > 0 {
			return artifacts, nil
		}
	}
	s.log.Debug("no nightly wheels found", "base", s.baseURL)
	return nil, nil
}
