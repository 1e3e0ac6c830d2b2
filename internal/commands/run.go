package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/model"
	"github.com/cleared-dev/ledgerflow/internal/pipeline"
)

func newRunCommand() *cobra.Command {
	var from, to, layer string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rebuild pipeline layers (all of them by default)",
		Long: "Rebuild raw, staging and marts tables in dependency order. Every layer is a full\n" +
			"refresh. With --layer only that layer runs and its upstream must have completed\n" +
			"in an earlier run.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if layer != "" {
				if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
					return fmt.Errorf("--layer cannot be combined with --from/--to")
				}
				from, to = layer, layer
			}
			fromLayer, err := pipeline.ParseLayer(from)
			if err != nil {
				return err
			}
			toLayer, err := pipeline.ParseLayer(to)
			if err != nil {
				return err
			}
			return runPipeline(cmd, fromLayer, toLayer)
		},
	}

	cmd.Flags().StringVar(&from, "from", string(model.LayerRaw), "first layer to run")
	cmd.Flags().StringVar(&to, "to", string(model.LayerMarts), "last layer to run")
	cmd.Flags().StringVar(&layer, "layer", "", "run a single layer")

	return cmd
}

func runPipeline(cmd *cobra.Command, from, to model.Layer) error {
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

	p, err := proj.pipeline(st)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, from, to)
	if report != nil {
		printReport(cmd.OutOrStdout(), report)
	}
	return err
}

func printReport(w io.Writer, r *pipeline.Report) {
	fmt.Fprintf(w, "Run %s: %s\n", r.RunID, r.Status)
	for _, lr := range r.Layers {
		fmt.Fprintf(w, "  %-8s %-10s", lr.Layer, lr.Status)
		if lr.Status == model.StatusCompleted || lr.Status == model.StatusFailed {
			fmt.Fprintf(w, " %6d rows  %3d issues  %s", lr.Rows(), len(lr.Issues), lr.Duration.Round(time.Millisecond))
		}
		fmt.Fprintln(w)

		tables := make([]string, 0, len(lr.Tables))
		for t := range lr.Tables {
			tables = append(tables, t)
		}
		sort.Strings(tables)
		for _, t := range tables {
			fmt.Fprintf(w, "    %-36s %d\n", t, lr.Tables[t])
		}
		if lr.Err != nil {
			fmt.Fprintf(w, "    error: %v\n", lr.Err)
		}
	}
}
