package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/cleared-dev/ledgerflow/internal/categorize"
	"github.com/cleared-dev/ledgerflow/internal/importer"
	"github.com/cleared-dev/ledgerflow/internal/logger"
	"github.com/cleared-dev/ledgerflow/internal/marts"
	"github.com/cleared-dev/ledgerflow/internal/model"
	"github.com/cleared-dev/ledgerflow/internal/quality"
	"github.com/cleared-dev/ledgerflow/internal/staging"
	"github.com/cleared-dev/ledgerflow/internal/store"
)

// StepResult is what one layer produced. Issues carry Kind, Source, Ref and
// Detail; the pipeline stamps the rest.
type StepResult struct {
	Tables map[string]int // rows written per table
	Issues []quality.Issue
}

func newStepResult() StepResult {
	return StepResult{Tables: make(map[string]int)}
}

// Step rebuilds one layer. Run must only write through tx so the pipeline
// can discard everything if it fails.
type Step interface {
	Layer() model.Layer
	Run(ctx context.Context, tx store.Store) (StepResult, error)
}

// RawStep imports the source directories into the raw tables.
type RawStep struct {
	Importer *importer.Importer
	Dirs     map[model.SourceType]string
}

func (s *RawStep) Layer() model.Layer { return model.LayerRaw }

func (s *RawStep) Run(ctx context.Context, tx store.Store) (StepResult, error) {
	log := logger.FromContext(ctx)
	out := newStepResult()

	for _, source := range model.SourceTypes {
		dir := s.Dirs[source]
		res, err := s.Importer.ImportDir(dir, source)
		if err != nil {
			return out, fmt.Errorf("importing %s: %w", source, err)
		}

		for _, re := range res.RowErrors {
			log.Debug().Str("file", re.File).Int("row", re.Row).Str("reason", re.Reason).Msg("row skipped")
			out.Issues = append(out.Issues, quality.Issue{
				Kind:   quality.KindRowError,
				Source: string(source),
				Ref:    fmt.Sprintf("%s:%d", re.File, re.Row),
				Detail: fmt.Sprintf("%s: %v", re.Reason, re.Err),
			})
		}
		for _, se := range res.StructureErrors {
			log.Warn().Str("path", se.Path).Str("reason", se.Reason).Msg("file rejected")
			out.Issues = append(out.Issues, quality.Issue{
				Kind:   quality.KindStructureError,
				Source: string(source),
				Ref:    se.Path,
				Detail: se.Error(),
			})
		}
		for _, d := range res.Duplicates {
			out.Issues = append(out.Issues, quality.Issue{
				Kind:   quality.KindDuplicateIdentity,
				Source: string(source),
				Ref:    d.TransactionID,
				Detail: fmt.Sprintf("%s: %s", d.File, d.Description),
			})
		}

		schema := store.RawSchema(source)
		if err := tx.ReplaceTable(ctx, schema, store.RawRows(res.Transactions)); err != nil {
			return out, err
		}
		out.Tables[schema.Table] = len(res.Transactions)
	}
	return out, nil
}

// StagingStep normalizes and categorizes the raw tables.
type StagingStep struct {
	Categorizer *categorize.Categorizer
}

func (s *StagingStep) Layer() model.Layer { return model.LayerStaging }

func (s *StagingStep) Run(ctx context.Context, tx store.Store) (StepResult, error) {
	out := newStepResult()

	for _, source := range model.SourceTypes {
		rows, err := tx.ReadTable(ctx, store.RawSchema(source))
		if err != nil {
			return out, fmt.Errorf("reading raw %s: %w", source, err)
		}
		raws, err := store.ScanRaw(rows)
		if err != nil {
			return out, fmt.Errorf("decoding raw %s: %w", source, err)
		}

		res := staging.Transform(raws, s.Categorizer)
		if len(res.Transactions) != len(raws) {
			return out, fmt.Errorf("staging %s produced %d rows from %d raw rows", source, len(res.Transactions), len(raws))
		}
		for _, fb := range res.Fallbacks {
			out.Issues = append(out.Issues, quality.Issue{
				Kind:   quality.KindCategorizationFallback,
				Source: string(fb.Source),
				Ref:    fb.TransactionID,
				Detail: fb.Description,
			})
		}

		schema := store.StagingSchema(source)
		if err := tx.ReplaceTable(ctx, schema, store.StagingRows(res.Transactions)); err != nil {
			return out, err
		}
		out.Tables[schema.Table] = len(res.Transactions)
	}
	return out, nil
}

// MartsStep aggregates the staging tables into the marts tables.
type MartsStep struct {
	Config marts.Config
}

func (s *MartsStep) Layer() model.Layer { return model.LayerMarts }

func (s *MartsStep) Run(ctx context.Context, tx store.Store) (StepResult, error) {
	out := newStepResult()

	bySource := make(map[model.SourceType][]model.StagingTransaction, len(model.SourceTypes))
	for _, source := range model.SourceTypes {
		rows, err := tx.ReadTable(ctx, store.StagingSchema(source))
		if err != nil {
			return out, fmt.Errorf("reading staging %s: %w", source, err)
		}
		txns, err := store.ScanStaging(rows)
		if err != nil {
			return out, fmt.Errorf("decoding staging %s: %w", source, err)
		}
		bySource[source] = txns
	}

	res, err := marts.Aggregate(bySource[model.SourceBank], bySource[model.SourceCreditCard], s.Config)
	if err != nil {
		return out, err
	}
	if violations := marts.Validate(res); len(violations) > 0 {
		errs := make([]error, len(violations))
		for i, v := range violations {
			errs[i] = v
		}
		return out, fmt.Errorf("partition check: %w", errors.Join(errs...))
	}

	tables := map[string][]model.MartsTransaction{
		store.MartsTransactionsTable: res.Transactions,
		store.MartsSpendingTable:     res.Spending,
		store.MartsIncomeTable:       res.Income,
		store.MartsSavingsTable:      res.Savings,
	}
	for _, table := range store.MartsTables {
		rows := tables[table]
		if err := tx.ReplaceTable(ctx, store.MartsSchema(table), store.MartsRows(rows)); err != nil {
			return out, err
		}
		out.Tables[table] = len(rows)
	}
	return out, nil
}

// DefaultSteps returns the three layer steps wired to their components.
func DefaultSteps(im *importer.Importer, dirs map[model.SourceType]string, c *categorize.Categorizer, cfg marts.Config) []Step {
	return []Step{
		&RawStep{Importer: im, Dirs: dirs},
		&StagingStep{Categorizer: c},
		&MartsStep{Config: cfg},
	}
}
