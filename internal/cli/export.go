package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgoin/vllm-wheels/pkg/snapshot"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		input  = filepath.Join("data", "wheels.json")
		output = filepath.Join("data", "wheels.csv")
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Flatten a snapshot into CSV",
		Long: `Flatten a snapshot into one CSV row per wheel, including per-source
install commands. Source distributions are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.Read(input)
			if err != nil {
				return err
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := snapshot.WriteCSV(snap, output); err != nil {
				return err
			}

			printSuccess("Exported %d wheels", snap.TotalWheels())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", input, "snapshot JSON path")
	cmd.Flags().StringVarP(&output, "output", "o", output, "CSV output path")
	return cmd
}
