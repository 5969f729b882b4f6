package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mgoin/vllm-wheels/pkg/snapshot"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		input  = filepath.Join("data", "wheels.json")
		output = filepath.Join("data", "stats.json")
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Derive summary statistics from a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.Read(input)
			if err != nil {
				return err
			}

			st := snapshot.ComputeStats(snap)

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := st.Write(output); err != nil {
				return err
			}

			printSuccess("Generated stats: %d wheels from %d sources", st.TotalWheels, st.TotalSources)
			printStatsBreakdown(st)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", input, "snapshot JSON path")
	cmd.Flags().StringVarP(&output, "output", "o", output, "stats JSON path")
	return cmd
}

func printStatsBreakdown(st *snapshot.Stats) {
	printKeyValue("Commits", fmt.Sprintf("%d", st.SourceCounts.Commits))
	printKeyValue("Releases", fmt.Sprintf("%d", st.SourceCounts.GithubReleases))
	printKeyValue("Nightly", fmt.Sprintf("%d", st.SourceCounts.Nightly))
	printKeyValue("Versions", fmt.Sprintf("%d", st.SourceCounts.ReleaseVersions))

	for _, tag := range sortedTags(st.PythonVersions) {
		printDetail("python %s: %d wheels", tag, st.PythonVersions[tag])
	}
	for _, tag := range sortedTags(st.Platforms) {
		printDetail("platform %s: %d wheels", tag, st.Platforms[tag])
	}
}

func sortedTags(m map[string]int) []string {
	tags := make([]string, 0, len(m))
	for t := range m {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
