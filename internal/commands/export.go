package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/export"
)

func newExportCommand() *cobra.Command {
	var dir string
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the marts tables to CSV files or an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(cmd)
			if err != nil {
				return err
			}
			ctx := proj.context(cmd.Context())

			if dir == "" {
				dir = proj.cfg.Export.Dir
			}
			dir = proj.path(dir)

			st, err := proj.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			counts, err := export.Dir(ctx, st, dir, format)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			tables := make([]string, 0, len(counts))
			for t := range counts {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			out := cmd.OutOrStdout()
			for _, t := range tables {
				fmt.Fprintf(out, "%-20s %d rows\n", t, counts[t])
			}
			fmt.Fprintf(out, "Exported %d tables to %s\n", len(tables), dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default export.dir from config)")
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "output format (csv or xlsx)")

	return cmd
}
