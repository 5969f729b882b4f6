package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgoin/vllm-wheels/pkg/integrations/github"
	"github.com/mgoin/vllm-wheels/pkg/integrations/pypi"
	"github.com/mgoin/vllm-wheels/pkg/integrations/wheelserver"
	"github.com/mgoin/vllm-wheels/pkg/scrape"
	"github.com/mgoin/vllm-wheels/pkg/snapshot"
	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

// scrapeOpts holds the command-line flags for the scrape command.
type scrapeOpts struct {
	baseURL string
	output  string

	commit          string
	githubReleases  bool
	nightly         bool
	releaseVersions bool
	allSources      bool
	legacyMode      bool

	wheelsOnly bool
	latestOnly bool

	maxCommits  int
	maxReleases int
	maxVersions int

	useGitHub   bool
	repo        string
	pkg         string
	delay       time.Duration
	githubToken string

	cacheKind  string
	cacheTTL   time.Duration
	redisAddr  string
	configPath string
}

// scrapeCommand creates the scrape command.
func (c *CLI) scrapeCommand() *cobra.Command {
	opts := scrapeOpts{
		baseURL:     defaultBaseURL,
		output:      filepath.Join("data", "wheels.json"),
		maxCommits:  50,
		maxReleases: 20,
		maxVersions: 20,
		repo:        "vllm-project/vllm",
		pkg:         "vllm",
		delay:       100 * time.Millisecond,
		cacheKind:   "file",
		cacheTTL:    defaultCacheTTL,
		redisAddr:   "localhost:6379",
	}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Discover wheel artifacts and write the snapshot JSON",
		Long: `Discover wheel artifacts across the configured surfaces and write them
as a grouped JSON snapshot.

Commits are scraped by default. Selecting --github-releases or --nightly
alone scrapes only that surface; --all-sources scrapes everything.

Examples:
  vllm-wheels scrape
  vllm-wheels scrape --commit 33f460b17a54acb3b6cc0b03f4a17876cff5eafd
  vllm-wheels scrape --github-releases
  vllm-wheels scrape --all-sources -o data/wheels.json
  vllm-wheels scrape --legacy-mode --wheels-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScrape(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.baseURL, "base-url", opts.baseURL, "base URL of the wheel server")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output snapshot path")
	cmd.Flags().StringVar(&opts.commit, "commit", "", "scrape a single commit hash only")
	cmd.Flags().BoolVar(&opts.githubReleases, "github-releases", false, "scrape GitHub release assets")
	cmd.Flags().BoolVar(&opts.nightly, "nightly", false, "scrape the nightly index")
	cmd.Flags().BoolVar(&opts.releaseVersions, "release-versions", false, "scrape per-version directories for published versions")
	cmd.Flags().BoolVar(&opts.allSources, "all-sources", false, "scrape commits, releases, nightly, and release versions")
	cmd.Flags().BoolVar(&opts.legacyMode, "legacy-mode", false, "use package-based index discovery")
	cmd.Flags().BoolVar(&opts.wheelsOnly, "wheels-only", false, "keep only wheel files, not source distributions")
	cmd.Flags().BoolVar(&opts.latestOnly, "latest-only", false, "show only the latest version per package (legacy mode display)")
	cmd.Flags().IntVar(&opts.maxCommits, "max-commits", opts.maxCommits, "maximum number of commits to check")
	cmd.Flags().IntVar(&opts.maxReleases, "max-releases", opts.maxReleases, "maximum number of releases to check")
	cmd.Flags().IntVar(&opts.maxVersions, "max-versions", opts.maxVersions, "maximum number of published versions to check")
	cmd.Flags().BoolVar(&opts.useGitHub, "use-github", false, "force commit discovery through the GitHub API")
	cmd.Flags().StringVar(&opts.repo, "repo", opts.repo, "GitHub repository (owner/name)")
	cmd.Flags().StringVar(&opts.pkg, "package", opts.pkg, "package name on PyPI")
	cmd.Flags().DurationVar(&opts.delay, "delay", opts.delay, "pause between candidate requests")
	cmd.Flags().StringVar(&opts.githubToken, "github-token", "", "GitHub API token (defaults to GITHUB_TOKEN)")
	cmd.Flags().StringVar(&opts.cacheKind, "cache", opts.cacheKind, "response cache backend: file, redis, or none")
	cmd.Flags().DurationVar(&opts.cacheTTL, "cache-ttl", opts.cacheTTL, "how long upstream responses stay cached")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "redis address for the redis cache backend")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML config file with flag defaults")

	return cmd
}

func (c *CLI) runScrape(cmd *cobra.Command, opts *scrapeOpts) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyConfig(cmd, cfg, opts)

	baseURL := strings.TrimRight(opts.baseURL, "/") + "/"

	token := opts.githubToken
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	backend := c.newCacheBackend(ctx, opts.cacheKind, opts.redisAddr)
	defer backend.Close()

	runner := scrape.NewRunner(
		c.Logger,
		wheelserver.NewClient(backend, opts.cacheTTL),
		github.NewClient(backend, token, opts.cacheTTL),
		pypi.NewClient(backend, opts.cacheTTL),
		scrape.Options{
			BaseURL:         baseURL,
			Commit:          opts.commit,
			GithubReleases:  opts.githubReleases,
			Nightly:         opts.nightly,
			ReleaseVersions: opts.releaseVersions,
			AllSources:      opts.allSources,
			LegacyMode:      opts.legacyMode,
			WheelsOnly:      opts.wheelsOnly,
			MaxCommits:      opts.maxCommits,
			MaxReleases:     opts.maxReleases,
			MaxVersions:     opts.maxVersions,
			UseGitHub:       opts.useGitHub,
			Repo:            opts.repo,
			Package:         opts.pkg,
			Delay:           opts.delay,
		},
	)

	prog := newProgress(c.Logger)
	snap, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Scraped %d sources", len(snap.Results)))

	printScrapeSummary(snap, opts.legacyMode, opts.latestOnly)

	if opts.output != "" {
		if dir := filepath.Dir(opts.output); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := snap.Write(opts.output); err != nil {
			return err
		}
		printFile(opts.output)
		printNextStep("Generate stats", fmt.Sprintf("%s stats -i %s", appName, opts.output))
	}
	return nil
}

// applyConfig layers config file values under flags the user did not set.
func applyConfig(cmd *cobra.Command, cfg *Config, opts *scrapeOpts) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if cfg.BaseURL != "" && !set("base-url") {
		opts.baseURL = cfg.BaseURL
	}
	if cfg.Repo != "" && !set("repo") {
		opts.repo = cfg.Repo
	}
	if cfg.Package != "" && !set("package") {
		opts.pkg = cfg.Package
	}
	if cfg.Output != "" && !set("output") {
		opts.output = cfg.Output
	}
	if cfg.Cache != "" && !set("cache") {
		opts.cacheKind = cfg.Cache
	}
	if cfg.CacheTTL.Duration > 0 && !set("cache-ttl") {
		opts.cacheTTL = cfg.CacheTTL.Duration
	}
	if cfg.RedisAddr != "" && !set("redis-addr") {
		opts.redisAddr = cfg.RedisAddr
	}
	if cfg.Delay.Duration > 0 && !set("delay") {
		opts.delay = cfg.Delay.Duration
	}
	if cfg.GithubToken != "" && !set("github-token") {
		opts.githubToken = cfg.GithubToken
	}
	if cfg.MaxCommits > 0 && !set("max-commits") {
		opts.maxCommits = cfg.MaxCommits
	}
	if cfg.MaxReleases > 0 && !set("max-releases") {
		opts.maxReleases = cfg.MaxReleases
	}
	if cfg.MaxVersions > 0 && !set("max-versions") {
		opts.maxVersions = cfg.MaxVersions
	}
}

// printScrapeSummary prints per-source counts and run totals. In legacy
// mode with latestOnly, only each package's newest version is shown.
func printScrapeSummary(snap *snapshot.Snapshot, legacy, latestOnly bool) {
	keys := make([]string, 0, len(snap.Results))
	for k := range snap.Results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		files := snap.Results[key]
		if legacy && latestOnly {
			files = latestVersionOnly(files)
		}
		printInfo("%s", describeKey(key))
		wheels := 0
		for _, f := range files {
			if f.IsWheel() {
				wheels++
			}
		}
		printDetail("%d files, %d wheels", len(files), wheels)
	}

	printKeyValue("Mode", string(snap.Mode))
	printKeyValue("Sources", fmt.Sprintf("%d", len(snap.Results)))
	printKeyValue("Total files", fmt.Sprintf("%d", snap.TotalFiles()))
	printKeyValue("Wheel files", fmt.Sprintf("%d", snap.TotalWheels()))
}

// latestVersionOnly keeps the files of the newest version in the group,
// using reverse lexicographic order over version strings.
func latestVersionOnly(files []wheel.Artifact) []wheel.Artifact {
	latest := ""
	for _, f := range files {
		if f.Version > latest {
			latest = f.Version
		}
	}
	if latest == "" {
		return files
	}
	var kept []wheel.Artifact
	for _, f := range files {
		if f.Version == latest {
			kept = append(kept, f)
		}
	}
	return kept
}

func describeKey(key string) string {
	parsed := snapshot.ParseSourceKey(key)
	switch parsed.Kind {
	case snapshot.KindRelease:
		return "GitHub release " + parsed.ID
	case snapshot.KindVersion:
		return "Release version " + parsed.ID
	case snapshot.KindNightly:
		return "Nightly wheels"
	case snapshot.KindPackage:
		return "Package " + parsed.ID
	default:
		return "Commit " + parsed.ID
	}
}
