package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/categorize"
	"github.com/cleared-dev/ledgerflow/internal/config"
	"github.com/cleared-dev/ledgerflow/internal/taxonomy"
)

const (
	bankRulesFile = "config/bank_rules.yaml"
	cardRulesFile = "config/card_rules.yaml"
	taxonomyFile  = "config/category-taxonomy.csv"
)

func newInitCommand() *cobra.Command {
	var driver string
	var dsn string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledgerflow project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, driver, dsn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledgerflow project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "sqlite", "database driver (sqlite or postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN (default ledgerflow.db for sqlite)")

	return cmd
}

func runInit(dir, driver, dsn string) error {
	if _, err := os.Stat(filepath.Join(dir, configFile)); err == nil {
		return fmt.Errorf("%s already exists in %s", configFile, dir)
	}

	cfg := config.Default()
	cfg.Database.Driver = driver
	if dsn != "" {
		cfg.Database.DSN = dsn
	}
	cfg.Rules.Bank = bankRulesFile
	cfg.Rules.Card = cardRulesFile
	cfg.Taxonomy.Path = taxonomyFile
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Create directory structure.
	dirs := []string{
		filepath.Join(cfg.Data.Root, cfg.Data.BankDir),
		filepath.Join(cfg.Data.Root, cfg.Data.CardDir),
		"config",
		filepath.Dir(cfg.Quality.Log),
		cfg.Export.Dir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write ledgerflow.yaml.
	if err := config.Save(filepath.Join(dir, configFile), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write the built-in rule tables so they can be edited.
	for path, rs := range map[string]*categorize.RuleSet{
		bankRulesFile: categorize.DefaultBankRules(),
		cardRulesFile: categorize.DefaultCardRules(),
	} {
		data, err := categorize.MarshalRuleSet(rs)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, path), data, 0o644); err != nil {
			return fmt.Errorf("writing rules: %w", err)
		}
	}

	// Write the category taxonomy.
	if err := taxonomy.Default().Save(filepath.Join(dir, taxonomyFile)); err != nil {
		return fmt.Errorf("writing taxonomy: %w", err)
	}

	// Write .gitignore.
	gitignore := "ledgerflow.db\n" + cfg.Export.Dir + "/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}
