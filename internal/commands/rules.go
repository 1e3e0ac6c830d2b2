package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/id"
	"github.com/cleared-dev/ledgerflow/internal/model"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect categorization rules",
	}

	cmd.AddCommand(newRulesTestCommand(), newRulesCheckCommand())

	return cmd
}

func newRulesTestCommand() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "test <description>",
		Short: "Show which rule a description matches",
		Long: "Normalize a description the way the staging layer does and print the first\n" +
			"rule that matches it. Weekend and weekday refinements are not applied.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := model.SourceType(source)
			if !src.Valid() {
				return fmt.Errorf("unknown source %q (want %s or %s)", source, model.SourceBank, model.SourceCreditCard)
			}

			proj, err := loadProject(cmd)
			if err != nil {
				return err
			}
			c, err := proj.categorizer()
			if err != nil {
				return err
			}

			desc := id.NormalizeText(strings.Join(args, " "))
			rs := c.RuleSet(src)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Normalized: %s\n", desc)
			if r := rs.Match(desc); r != nil {
				fmt.Fprintf(out, "Rule:       %s (%s)\n", r.Name, r.Matcher)
				fmt.Fprintf(out, "Category:   %s\n", r.Category)
				return nil
			}
			fmt.Fprintf(out, "Rule:       none\n")
			fmt.Fprintf(out, "Category:   %s (fallback)\n", rs.Fallback)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", string(model.SourceBank), "rule set to test against (bank or credit_card)")

	return cmd
}

func newRulesCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify every category the rules can produce is in the taxonomy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(cmd)
			if err != nil {
				return err
			}
			c, err := proj.categorizer()
			if err != nil {
				return err
			}
			tax, err := proj.taxonomy()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			missing := 0
			for _, src := range model.SourceTypes {
				cats := c.Categories(src)
				m := tax.Missing(cats)
				if len(m) == 0 {
					fmt.Fprintf(out, "%s: %d categories, all mapped\n", src, len(cats))
					continue
				}
				missing += len(m)
				fmt.Fprintf(out, "%s: %d of %d categories missing from taxonomy: %s\n",
					src, len(m), len(cats), strings.Join(m, ", "))
			}
			if missing > 0 {
				return fmt.Errorf("%d categories have no meta-category", missing)
			}
			return nil
		},
	}
}
