package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/categorize"
	"github.com/cleared-dev/ledgerflow/internal/config"
	"github.com/cleared-dev/ledgerflow/internal/importer"
	"github.com/cleared-dev/ledgerflow/internal/logger"
	"github.com/cleared-dev/ledgerflow/internal/model"
	"github.com/cleared-dev/ledgerflow/internal/pipeline"
	"github.com/cleared-dev/ledgerflow/internal/store"
	"github.com/cleared-dev/ledgerflow/internal/taxonomy"
)

const configFile = config.FileName

// project is a loaded ledgerflow.yaml plus everything derived from it.
type project struct {
	root string
	cfg  *config.Config
	log  zerolog.Logger
}

// loadProject reads the config of the project selected by --project,
// applies environment overrides and validates it.
func loadProject(cmd *cobra.Command) (*project, error) {
	dir, err := cmd.Flags().GetString("project")
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, configFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s not found in %s (run `ledgerflow init` first)", configFile, root)
		}
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", configFile, err)
	}

	log, err := logger.Build(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Out: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}
	return &project{root: root, cfg: cfg, log: log}, nil
}

func (p *project) context(ctx context.Context) context.Context {
	return logger.WithContext(ctx, p.log)
}

func (p *project) path(rel string) string {
	return config.Resolve(p.root, rel)
}

func (p *project) openStore(ctx context.Context) (*store.SQLStore, error) {
	st, err := store.Open(ctx, strings.ToLower(p.cfg.Database.Driver), p.cfg.DSN(p.root))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

func (p *project) dirs() map[model.SourceType]string {
	return map[model.SourceType]string{
		model.SourceBank:       p.cfg.BankPath(p.root),
		model.SourceCreditCard: p.cfg.CardPath(p.root),
	}
}

// categorizer returns the built-in rule tables, replaced by the configured
// rule files where set.
func (p *project) categorizer() (*categorize.Categorizer, error) {
	c := categorize.NewDefault()
	if p.cfg.Rules.Bank != "" {
		rs, err := categorize.LoadRuleSet(p.path(p.cfg.Rules.Bank))
		if err != nil {
			return nil, err
		}
		c.Bank = rs
	}
	if p.cfg.Rules.Card != "" {
		rs, err := categorize.LoadRuleSet(p.path(p.cfg.Rules.Card))
		if err != nil {
			return nil, err
		}
		c.Card = rs
	}
	return c, nil
}

func (p *project) taxonomy() (*taxonomy.Service, error) {
	if p.cfg.Taxonomy.Path == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.Load(p.path(p.cfg.Taxonomy.Path))
}

func (p *project) pipeline(backend store.Backend) (*pipeline.Pipeline, error) {
	c, err := p.categorizer()
	if err != nil {
		return nil, err
	}
	tax, err := p.taxonomy()
	if err != nil {
		return nil, err
	}
	steps := pipeline.DefaultSteps(importer.New(nil), p.dirs(), c, tax.AggregatorConfig())
	return pipeline.New(backend, pipeline.Options{QualityLog: p.path(p.cfg.Quality.Log)}, steps...)
}
