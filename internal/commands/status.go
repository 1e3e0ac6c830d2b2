package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

func newStatusCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last completed run of each layer and recent attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Store: %s\n\n", st.Driver())
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "LAYER\tLAST COMPLETED\tROWS\tRUN")
			for _, l := range model.Layers {
				run, ok, err := st.LastCompleted(ctx, l)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(tw, "%s\tnever\t-\t-\n", l)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l, run.FinishedAt.Format(time.RFC3339), run.Rows, run.RunID)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			runs, err := st.Runs(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return nil
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Recent layer runs:")
			tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tRUN\tLAYER\tSTATUS\tROWS\tERROR")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					r.StartedAt.Format(time.RFC3339), r.RunID, r.Layer, r.Status, r.Rows, r.Error)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent layer runs to show")

	return cmd
}
