package scrape

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mgoin/vllm-wheels/pkg/integrations/github"
	"github.com/mgoin/vllm-wheels/pkg/snapshot"
	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

// ReleaseSource scrapes wheel assets attached to GitHub releases. Asset
// metadata comes from the API directly; no HTML listing is involved.
type ReleaseSource struct {
	github *github.Client
	log    *log.Logger
	repo   string

	// byTag memoizes the release listing between Discover and ListArtifacts.
	byTag map[string]github.Release
}

// NewReleaseSource creates a release adapter for the given repository.
func NewReleaseSource(gh *github.Client, logger *log.Logger, repo string) *ReleaseSource {
	return &ReleaseSource{
		github: gh,
		log:    logger,
		repo:   repo,
		byTag:  make(map[string]github.Release),
	}
}

func (s *ReleaseSource) Kind() snapshot.SourceKind { return snapshot.KindRelease }

// Discover lists recent release tags that carry at least one wheel asset.
func (s *ReleaseSource) Discover(ctx context.Context, limit int) ([]string, error) {
	releases, err := s.github.Releases(ctx, s.repo, limit, false)
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, rel := range releases {
		hasWheel := false
		for _, a := range rel.Assets {
			if strings.HasSuffix(a.Name, ".whl") {
				hasWheel = true
				break
			}
		}
		if !hasWheel {
			continue
		}
		s.byTag[rel.TagName] = rel
		tags = append(tags, rel.TagName)
	}
	s.log.Info("discovered releases with wheel assets", "repo", s.repo, "count", len(tags))
	return tags, nil
}

// ListArtifacts returns the wheel assets of one release tag. Assets whose
// names fail tag parsing are dropped.
func (s *ReleaseSource) ListArtifacts(ctx context.Context, tag string) ([]wheel.Artifact, error) {
	rel, ok := s.byTag[tag]
	if !ok {
		releases, err := s.github.Releases(ctx, s.repo, 100, false)
		if err != nil {
			return nil, err
		}
		for _, r := range releases {
			s.byTag[r.TagName] = r
			if r.TagName == tag {
				rel, ok = r, true
			}
		}
		if !ok {
			return nil, nil
		}
	}

	var artifacts []wheel.Artifact
	for _, asset := range rel.Assets {
		if !strings.HasSuffix(asset.Name, ".whl") {
			continue
		}
		a := wheel.Parse(asset.Name)
		if !a.IsWheel() {
			continue
		}
		a.URL = asset.BrowserDownloadURL
		a.Source = "github_release"
		a.ReleaseTag = tag
		a.Size = asset.Size
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}
