package scrape

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mgoin/vllm-wheels/pkg/integrations"
	"github.com/mgoin/vllm-wheels/pkg/integrations/github"
	"github.com/mgoin/vllm-wheels/pkg/integrations/wheelserver"
	"github.com/mgoin/vllm-wheels/pkg/snapshot"
	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

var commitDirRE = regexp.MustCompile(`^[a-f0-9]{40}$`)

// minServerCommits is the threshold below which server-side discovery is
// considered incomplete and GitHub history is probed as a supplement.
const minServerCommits = 10

// CommitSource scrapes per-commit wheel directories under the server root.
type CommitSource struct {
	listings *wheelserver.Client
	github   *github.Client
	log      *log.Logger

	baseURL string
	repo    string

	// Commit, when set, restricts discovery to that single hash.
	Commit string
	// UseGitHub skips server-side discovery and walks GitHub history,
	// keeping only commits whose directory yields files.
	UseGitHub bool
	// Delay paces wheel-availability probes against the server.
	Delay time.Duration
}

// NewCommitSource creates a commit adapter for the given server and repo.
func NewCommitSource(listings *wheelserver.Client, gh *github.Client, logger *log.Logger, baseURL, repo string) *CommitSource {
	return &CommitSource{
		listings: listings,
		github:   gh,
		log:      logger,
		baseURL:  baseURL,
		repo:     repo,
		Delay:    100 * time.Millisecond,
	}
}

func (s *CommitSource) Kind() snapshot.SourceKind { return snapshot.KindCommit }

// Discover finds commit hashes with wheel directories. Server-side anchors
// matching a 40-char hex name are preferred; when few are found, or
// UseGitHub is set, recent GitHub commits are probed for availability.
func (s *CommitSource) Discover(ctx context.Context, limit int) ([]string, error) {
	if s.Commit != "" {
		return []string{s.Commit}, nil
	}

	var commits []string
	if !s.UseGitHub {
		entries, err := s.listings.List(ctx, s.baseURL, false)
		if err != nil {
			if errors.Is(err, integrations.ErrRateLimited) {
				return nil, err
			}
			s.log.Warn("could not fetch server index", "url", s.baseURL, "err", err)
		}
		for _, e := range entries {
			if commitDirRE.MatchString(e.Name) {
				commits = append(commits, e.Name)
			}
		}
		s.log.Info("discovered commits from server index", "count", len(commits))
	}

	if s.UseGitHub || len(commits) < minServerCommits {
		probed, err := s.probeGitHubCommits(ctx, limit, commits)
		if err != nil {
			return commits, err
		}
		commits = probed
	}

	if limit > 0 && len(commits) > limit {
		commits = commits[:limit]
	}
	return commits, nil
}

// probeGitHubCommits walks recent repository commits and keeps those whose
// wheel directory actually serves files, pacing requests between probes.
// Server-discovered commits stay first in the result.
func (s *CommitSource) probeGitHubCommits(ctx context.Context, limit int, known []string) ([]string, error) {
	s.log.Info("probing recent commits via github", "repo", s.repo)

	ghCommits, err := s.github.Commits(ctx, s.repo, limit, false)
	if err != nil {
		if errors.Is(err, integrations.ErrRateLimited) {
			return known, err
		}
		s.log.Warn("github commit listing failed", "err", err)
		return known, nil
	}

	seen := make(map[string]bool, len(known))
	for _, c := range known {
		seen[c] = true
	}

	commits := known
	for _, c := range ghCommits {
		if seen[c.SHA] {
			continue
		}
		if err := pause(ctx, s.Delay); err != nil {
			return commits, err
		}
		files, err := s.ListArtifacts(ctx, c.SHA)
		if err != nil {
			if errors.Is(err, integrations.ErrRateLimited) {
				return commits, err
			}
			s.log.Debug("probe failed", "commit", short(c.SHA), "err", err)
			continue
		}
		if len(files) == 0 {
			s.log.Debug("no wheels for commit", "commit", short(c.SHA))
			continue
		}
		s.log.Debug("found wheels for commit", "commit", short(c.SHA))
		seen[c.SHA] = true
		commits = append(commits, c.SHA)
	}
	return commits, nil
}

// ListArtifacts collects files from <base>/<hash>/ and <base>/<hash>/vllm/,
// recursing one level into directory links. Both paths contribute; a path
// that does not resolve is skipped.
func (s *CommitSource) ListArtifacts(ctx context.Context, hash string) ([]wheel.Artifact, error) {
	candidates := []string{
		integrations.ResolveURL(s.baseURL, hash+"/"),
		integrations.ResolveURL(s.baseURL, hash+"/vllm/"),
	}

	var all []wheel.Artifact
	for _, url := range candidates {
		entries, err := s.listings.List(ctx, url, false)
		if err != nil {
			if errors.Is(err, integrations.ErrRateLimited) {
				return all, err
			}
			continue
		}

		for _, e := range entries {
			// Autoindex pages are inconsistent about trailing slashes;
			// a bare "vllm" anchor is still a directory link.
			if !e.IsDir && e.Name != "vllm" {
				continue
			}
			subURL := e.URL
			if !strings.HasSuffix(subURL, "/") {
				subURL += "/"
			}
			if subURL == candidates[0] || subURL == candidates[1] {
				continue
			}
			sub, err := s.listings.List(ctx, subURL, false)
			if err != nil {
				if errors.Is(err, integrations.ErrRateLimited) {
					return all, err
				}
				continue
			}
			all = append(all, artifactsFromEntries(sub, func(a *wheel.Artifact) {
				a.Commit = hash
			})...)
		}

		all = append(all, artifactsFromEntries(entries, func(a *wheel.Artifact) {
			a.Commit = hash
		})...)
	}
	return all, nil
}

func short(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
