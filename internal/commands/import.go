package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/importer"
	"github.com/cleared-dev/ledgerflow/internal/model"
)

func newImportCommand() *cobra.Command {
	var dryRun bool
	var source string
	var limit int

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load source exports into the raw layer",
		Long: "Import every bank and credit card export under the data directory into the raw\n" +
			"tables. With --dry-run the files are parsed and summarized but nothing is written.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dryRun {
				return runPipeline(cmd, model.LayerRaw, model.LayerRaw)
			}
			return runImportDryRun(cmd, model.SourceType(source), limit)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse files and print what would be imported")
	cmd.Flags().StringVar(&source, "source", "", "limit a dry run to one source (bank or credit_card)")
	cmd.Flags().IntVar(&limit, "limit", 10, "rows to print per source in a dry run")

	return cmd
}

func runImportDryRun(cmd *cobra.Command, source model.SourceType, limit int) error {
	if source != "" && !source.Valid() {
		return fmt.Errorf("unknown source %q (want %s or %s)", source, model.SourceBank, model.SourceCreditCard)
	}

	proj, err := loadProject(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	im := importer.New(nil)
	dirs := proj.dirs()
	for _, src := range model.SourceTypes {
		if source != "" && src != source {
			continue
		}
		res, err := im.ImportDir(dirs[src], src)
		if err != nil {
			return fmt.Errorf("importing %s: %w", src, err)
		}
		printImportResult(out, res, limit)
	}
	return nil
}

func printImportResult(w io.Writer, res *importer.Result, limit int) {
	fmt.Fprintf(w, "%s: %d files, %d transactions, %d row errors, %d rejected files, %d duplicates\n",
		res.Source, res.Files, len(res.Transactions), len(res.RowErrors), len(res.StructureErrors), len(res.Duplicates))

	for _, se := range res.StructureErrors {
		fmt.Fprintf(w, "  rejected: %v\n", se)
	}
	for _, re := range res.RowErrors {
		fmt.Fprintf(w, "  skipped: %v\n", re)
	}

	if limit <= 0 || len(res.Transactions) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tACCOUNT\tDATE\tAMOUNT\tDESCRIPTION")
	for i, txn := range res.Transactions {
		if i == limit {
			break
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			txn.TransactionID, txn.SourceAccount, txn.PostedDate.Format("2006-01-02"),
			txn.Amount.StringFixed(2), txn.RawDescription)
	}
	tw.Flush()
}
