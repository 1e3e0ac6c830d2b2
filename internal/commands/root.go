package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerflow",
		Short:   "Batch pipeline from bank and card exports to categorized spending tables",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("project", ".", "project directory containing "+configFile)

	rootCmd.AddCommand(
		newInitCommand(),
		newRunCommand(),
		newImportCommand(),
		newLayersCommand(),
		newStatusCommand(),
		newRulesCommand(),
		newExportCommand(),
		newSummaryCommand(),
		newScheduleCommand(),
	)

	return rootCmd
}
