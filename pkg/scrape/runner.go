package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mgoin/vllm-wheels/pkg/integrations"
	"github.com/mgoin/vllm-wheels/pkg/integrations/github"
	"github.com/mgoin/vllm-wheels/pkg/integrations/pypi"
	"github.com/mgoin/vllm-wheels/pkg/integrations/wheelserver"
	"github.com/mgoin/vllm-wheels/pkg/snapshot"
)

// Options selects which surfaces a run scrapes and how far each goes.
type Options struct {
	BaseURL string

	// Commit restricts the commit adapter to a single hash.
	Commit          string
	GithubReleases  bool
	Nightly         bool
	ReleaseVersions bool
	AllSources      bool
	LegacyMode      bool

	WheelsOnly bool

	MaxCommits  int
	MaxReleases int
	MaxVersions int

	// UseGitHub forces commit discovery through GitHub history.
	UseGitHub bool
	Repo      string
	Package   string

	// Delay is the fixed pause between candidate requests.
	Delay time.Duration
}

// Mode resolves the snapshot mode label for these options.
func (o Options) Mode() snapshot.Mode {
	mode := snapshot.ModeMultiSource
	if o.LegacyMode {
		mode = snapshot.ModeLegacy
	}
	switch {
	case o.Commit != "":
		mode = snapshot.ModeSingleCommit
	case o.GithubReleases && !o.AllSources:
		mode = snapshot.ModeGithubReleases
	case o.Nightly && !o.AllSources:
		mode = snapshot.ModeNightly
	}
	return mode
}

// scrapeCommits reports whether the default commit scrape runs. Selecting
// releases or nightly alone suppresses it; all-sources restores it. The
// release-versions surface does not suppress it.
func (o Options) scrapeCommits() bool {
	return (!o.LegacyMode && !o.GithubReleases && !o.Nightly) || o.AllSources
}

// Runner walks the selected sources sequentially and assembles a snapshot.
// Requests are paced by Options.Delay; a candidate that fails is skipped
// with a warning, and a rate-limited source abandons its remaining
// candidates. Only context cancellation aborts a run.
type Runner struct {
	log      *log.Logger
	listings *wheelserver.Client
	github   *github.Client
	pypi     *pypi.Client
	opts     Options
}

// NewRunner creates a runner over the given clients.
func NewRunner(logger *log.Logger, listings *wheelserver.Client, gh *github.Client, py *pypi.Client, opts Options) *Runner {
	return &Runner{log: logger, listings: listings, github: gh, pypi: py, opts: opts}
}

// Run executes the scrape and returns the snapshot. The returned snapshot
// is valid even when some sources were skipped; err is non-nil only when
// the context was cancelled.
func (r *Runner) Run(ctx context.Context) (*snapshot.Snapshot, error) {
	snap := snapshot.New(r.opts.BaseURL, r.opts.Mode())

	// Legacy mode replaces the commit scrape, not the whole run; the
	// other surfaces still fire when their flags are set.
	if r.opts.LegacyMode {
		src := NewLegacySource(r.listings, r.log, r.opts.BaseURL)
		if err := r.runSource(ctx, snap, src, 0); err != nil {
			return snap, err
		}
	}

	if r.opts.GithubReleases || r.opts.AllSources {
		src := NewReleaseSource(r.github, r.log, r.opts.Repo)
		if err := r.runSource(ctx, snap, src, r.opts.MaxReleases); err != nil {
			return snap, err
		}
	}

	if r.opts.Nightly || r.opts.AllSources {
		src := NewNightlySource(r.listings, r.log, r.opts.BaseURL)
		if err := r.runSource(ctx, snap, src, 1); err != nil {
			return snap, err
		}
	}

	if r.opts.ReleaseVersions || r.opts.AllSources {
		src := NewVersionSource(r.listings, r.pypi, r.log, r.opts.BaseURL, r.opts.Package)
		if err := r.runSource(ctx, snap, src, r.opts.MaxVersions); err != nil {
			return snap, err
		}
	}

	if r.opts.scrapeCommits() {
		src := NewCommitSource(r.listings, r.github, r.log, r.opts.BaseURL, r.opts.Repo)
		src.Commit = r.opts.Commit
		src.UseGitHub = r.opts.UseGitHub
		if r.opts.Delay > 0 {
			src.Delay = r.opts.Delay
		}
		if err := r.runSource(ctx, snap, src, r.opts.MaxCommits); err != nil {
			return snap, err
		}
	}

	return snap, nil
}

func (r *Runner) runSource(ctx context.Context, snap *snapshot.Snapshot, src Source, limit int) error {
	kind := string(src.Kind())

	ids, err := src.Discover(ctx, limit)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Partial discovery results are still worth scraping.
		r.log.Warn("discovery incomplete", "source", kind, "err", err)
	}
	if len(ids) == 0 {
		r.log.Info("no candidates found", "source", kind)
		return nil
	}
	r.log.Info("scraping candidates", "source", kind, "count", len(ids))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			if err := pause(ctx, r.opts.Delay); err != nil {
				return err
			}
		}
		artifacts, err := src.ListArtifacts(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, integrations.ErrRateLimited) {
				r.log.Warn("rate limited, abandoning source", "source", kind, "remaining", len(ids)-i)
				return nil
			}
			r.log.Warn("skipping candidate", "source", kind, "id", id, "err", err)
			continue
		}
		snap.Add(key(src.Kind(), id), artifacts, r.opts.WheelsOnly)
	}
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
