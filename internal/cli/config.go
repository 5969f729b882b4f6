package cli

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds file-based defaults for the scrape command. Values act as
// defaults only; explicitly set flags always win.
type Config struct {
	BaseURL     string   `toml:"base_url"`
	Repo        string   `toml:"repo"`
	Package     string   `toml:"package"`
	Output      string   `toml:"output"`
	Cache       string   `toml:"cache"`
	CacheTTL    duration `toml:"cache_ttl"`
	RedisAddr   string   `toml:"redis_addr"`
	Delay       duration `toml:"delay"`
	GithubToken string   `toml:"github_token"`
	MaxCommits  int      `toml:"max_commits"`
	MaxReleases int      `toml:"max_releases"`
	MaxVersions int      `toml:"max_versions"`
}

// duration wraps time.Duration so TOML values can use "30s" notation.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// loadConfig reads a TOML config file. An empty path yields an empty config.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}
