// Package cli implements the vllm-wheels command-line interface.
//
// This package provides commands for scraping wheel artifacts into a JSON
// snapshot, deriving stats and CSV reports from it, serving the browsable
// data directory over HTTP, and managing the upstream response cache. The
// CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - scrape: Discover wheel artifacts and write the snapshot JSON
//   - stats: Derive summary statistics from a snapshot
//   - export: Flatten a snapshot into CSV
//   - serve: Serve the data directory and browser page over HTTP
//   - browse: Explore a snapshot interactively in the terminal
//   - cache: Manage the upstream response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration. Safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
