package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/model"
	"github.com/cleared-dev/ledgerflow/internal/store"
)

// layerTables lists the tables each layer rebuilds.
var layerTables = map[model.Layer][]string{
	model.LayerRaw:     {store.RawBankTable, store.RawCardTable},
	model.LayerStaging: {store.StagingBankTable, store.StagingCardTable},
	model.LayerMarts:   store.MartsTables,
}

func newLayersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List pipeline layers in dependency order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, l := range model.Layers {
				upstream, ok := l.Upstream()
				dep := "-"
				if ok {
					dep = string(upstream)
				}
				fmt.Fprintf(out, "%d. %-8s depends on: %s\n", i+1, l, dep)
				for _, t := range layerTables[l] {
					fmt.Fprintf(out, "     %s\n", t)
				}
			}
			return nil
		},
	}
}
