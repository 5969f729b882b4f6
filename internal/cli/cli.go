package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mgoin/vllm-wheels/pkg/buildinfo"
	"github.com/mgoin/vllm-wheels/pkg/cache"
)

const (
	// appName is the application name used for directories and display.
	appName = "vllm-wheels"

	// defaultBaseURL is the wheel server scraped when no override is given.
	defaultBaseURL = "https://wheels.vllm.ai/"

	// defaultCacheTTL is how long upstream responses stay cached.
	defaultCacheTTL = time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Scrape and browse vLLM wheel artifacts",
		Long:         `vllm-wheels discovers wheel artifacts across the vLLM wheel server, GitHub releases, and PyPI version listings, and maintains the JSON, stats, and CSV files behind the wheel browser page.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.scrapeCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCacheBackend selects the response cache backend. The file backend is
// the default; "none" disables caching and "redis" shares entries across
// machines. Backend setup failures degrade to the null cache rather than
// aborting the command.
func (c *CLI) newCacheBackend(ctx context.Context, kind, redisAddr string) cache.Cache {
	switch kind {
	case "none":
		return cache.NewNullCache()
	case "redis":
		backend, err := cache.NewRedisCache(ctx, redisAddr)
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", redisAddr, "err", err)
			return cache.NewNullCache()
		}
		return backend
	default:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		backend, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
			return cache.NewNullCache()
		}
		return backend
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/vllm-wheels/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
