package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/id"
	"github.com/cleared-dev/ledgerflow/internal/marts"
	"github.com/cleared-dev/ledgerflow/internal/store"
)

func newSummaryCommand() *cobra.Command {
	var from, to, table string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print monthly totals per meta-category",
		Long: "Group a marts table by year_month and meta_category. --from and --to take\n" +
			"YYYY-MM values and are compared as strings.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isMartsTable(table) {
				return fmt.Errorf("unknown marts table %q", table)
			}
			for _, ym := range []string{from, to} {
				if ym == "" {
					continue
				}
				if _, _, err := id.ParseYearMonth(ym); err != nil {
					return err
				}
			}

			proj, err := loadProject(cmd)
			if err != nil {
				return err
			}
			ctx := proj.context(cmd.Context())

			st, err := proj.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			raw, err := st.ReadTable(ctx, store.MartsSchema(table))
			if err != nil {
				return fmt.Errorf("reading %s: %w (run `ledgerflow run` first)", table, err)
			}
			rows, err := store.ScanMarts(raw)
			if err != nil {
				return err
			}

			filtered := rows[:0]
			for _, r := range rows {
				if from != "" && r.YearMonth < from {
					continue
				}
				if to != "" && r.YearMonth > to {
					continue
				}
				filtered = append(filtered, r)
			}

			printSummary(cmd, marts.MonthlySummary(filtered))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first year_month to include (YYYY-MM)")
	cmd.Flags().StringVar(&to, "to", "", "last year_month to include (YYYY-MM)")
	cmd.Flags().StringVar(&table, "table", store.MartsSpendingTable, "marts table to summarize")

	return cmd
}

func isMartsTable(name string) bool {
	for _, t := range store.MartsTables {
		if t == name {
			return true
		}
	}
	return false
}

func printSummary(cmd *cobra.Command, totals []marts.MonthlyTotal) {
	out := cmd.OutOrStdout()
	if len(totals) == 0 {
		fmt.Fprintln(out, "No transactions.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tMETA CATEGORY\tCOUNT\tTOTAL")
	month := ""
	for _, t := range totals {
		ym := t.YearMonth
		if ym == month {
			ym = ""
		}
		month = t.YearMonth
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", ym, t.MetaCategory, t.Count, t.Total.StringFixed(2))
	}
	tw.Flush()
}
