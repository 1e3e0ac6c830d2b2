package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerflow/internal/categorize"
	"github.com/cleared-dev/ledgerflow/internal/importer"
	"github.com/cleared-dev/ledgerflow/internal/marts"
	"github.com/cleared-dev/ledgerflow/internal/model"
	"github.com/cleared-dev/ledgerflow/internal/quality"
	"github.com/cleared-dev/ledgerflow/internal/store"
	"github.com/cleared-dev/ledgerflow/internal/taxonomy"
)

var testDirs = map[model.SourceType]string{
	model.SourceBank:       "../../testdata/data/bank_accounts",
	model.SourceCreditCard: "../../testdata/data/credit_cards",
}

func clock() func() time.Time {
	t := time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func runIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("run-%d", n)
	}
}

func defaultSteps(cfg marts.Config) []Step {
	return DefaultSteps(importer.New(nil), testDirs, categorize.NewDefault(), cfg)
}

func newTestPipeline(t *testing.T, backend store.Backend, opts Options, steps ...Step) *Pipeline {
	t.Helper()
	if opts.Now == nil {
		opts.Now = clock()
	}
	if opts.NewRunID == nil {
		opts.NewRunID = runIDs()
	}
	if len(steps) == 0 {
		steps = defaultSteps(taxonomy.Default().AggregatorConfig())
	}
	p, err := New(backend, opts, steps...)
	require.NoError(t, err)
	return p
}

func tableLen(t *testing.T, s store.Store, schema store.Schema) int {
	t.Helper()
	rows, err := s.ReadTable(context.Background(), schema)
	require.NoError(t, err)
	return len(rows)
}

func TestRunAll_EndToEnd(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemStore()
	qlog := filepath.Join(t.TempDir(), "logs", "quality.csv")
	p := newTestPipeline(t, backend, Options{QualityLog: qlog})

	report, err := p.RunAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, model.StatusCompleted, report.Status)
	require.Len(t, report.Layers, 3)
	for _, lr := range report.Layers {
		assert.Equal(t, model.StatusCompleted, lr.Status, "layer %s", lr.Layer)
		assert.NoError(t, lr.Err)
	}

	raw, _ := report.Layer(model.LayerRaw)
	assert.Equal(t, map[string]int{
		store.RawBankTable: 7,
		store.RawCardTable: 8,
	}, raw.Tables)
	assert.Equal(t, map[quality.Kind]int{
		quality.KindRowError:          2,
		quality.KindStructureError:    1,
		quality.KindDuplicateIdentity: 1,
	}, quality.CountByKind(raw.Issues))

	stg, _ := report.Layer(model.LayerStaging)
	assert.Equal(t, map[string]int{
		store.StagingBankTable: 7,
		store.StagingCardTable: 8,
	}, stg.Tables)
	assert.Equal(t, map[quality.Kind]int{quality.KindCategorizationFallback: 2}, quality.CountByKind(stg.Issues))

	m, _ := report.Layer(model.LayerMarts)
	assert.Equal(t, map[string]int{
		store.MartsTransactionsTable: 12,
		store.MartsSpendingTable:     10,
		store.MartsIncomeTable:       2,
		store.MartsSavingsTable:      1,
	}, m.Tables)

	// One staging row per raw row.
	for _, source := range model.SourceTypes {
		assert.Equal(t, tableLen(t, backend, store.RawSchema(source)), tableLen(t, backend, store.StagingSchema(source)))
	}

	logged, err := quality.Read(qlog)
	require.NoError(t, err)
	assert.Len(t, logged, 6)
	for _, issue := range logged {
		assert.Equal(t, "run-1", issue.RunID)
	}

	runs, err := backend.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.Equal(t, model.StatusCompleted, r.Status)
	}
	last, found, err := backend.LastCompleted(ctx, model.LayerRaw)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 15, last.Rows)
}

func TestRunAll_MartsContents(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemStore()
	p := newTestPipeline(t, backend, Options{})
	_, err := p.RunAll(ctx)
	require.NoError(t, err)

	rows, err := backend.ReadTable(ctx, store.MartsSchema(store.MartsSavingsTable))
	require.NoError(t, err)
	savings, err := store.ScanMarts(rows)
	require.NoError(t, err)
	require.Len(t, savings, 1)
	assert.Equal(t, "TRANSFER_TO_BROKERAGE", savings[0].Category)
	assert.Equal(t, "1000", savings[0].Amount.String())

	rows, err = backend.ReadTable(ctx, store.MartsSchema(store.MartsTransactionsTable))
	require.NoError(t, err)
	txns, err := store.ScanMarts(rows)
	require.NoError(t, err)
	for _, txn := range txns {
		assert.NotEqual(t, "TRANSFER_TO_BROKERAGE", txn.Category)
		assert.NotEqual(t, "CREDIT_CARD_PAYMENT", txn.Category)
		assert.NotEmpty(t, txn.MetaCategory)
	}

	rows, err = backend.ReadTable(ctx, store.MartsSchema(store.MartsSpendingTable))
	require.NoError(t, err)
	spending, err := store.ScanMarts(rows)
	require.NoError(t, err)
	var safeway *model.MartsTransaction
	for i := range spending {
		if spending[i].NormalizedDescription == "SAFEWAY #2790" {
			safeway = &spending[i]
		}
	}
	require.NotNil(t, safeway)
	assert.Equal(t, "GROCERIES", safeway.Category)
	assert.Equal(t, "GROCERIES", safeway.MetaCategory)
	assert.Equal(t, "2024-03", safeway.YearMonth)
	assert.Equal(t, "87.43", safeway.Amount.String())
	assert.Equal(t, model.SourceCreditCard, safeway.Source)
}

func TestRunAll_Idempotent(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemStore()
	p := newTestPipeline(t, backend, Options{})

	_, err := p.RunAll(ctx)
	require.NoError(t, err)
	first := map[string][]store.Row{}
	for _, table := range store.MartsTables {
		rows, err := backend.ReadTable(ctx, store.MartsSchema(table))
		require.NoError(t, err)
		first[table] = rows
	}
	rawFirst, err := backend.ReadTable(ctx, store.RawSchema(model.SourceBank))
	require.NoError(t, err)

	_, err = p.RunAll(ctx)
	require.NoError(t, err)
	for _, table := range store.MartsTables {
		rows, err := backend.ReadTable(ctx, store.MartsSchema(table))
		require.NoError(t, err)
		assert.Equal(t, first[table], rows, table)
	}
	rawSecond, err := backend.ReadTable(ctx, store.RawSchema(model.SourceBank))
	require.NoError(t, err)
	assert.Equal(t, rawFirst, rawSecond)
}

func TestRunAll_SQLite(t *testing.T) {
	ctx := context.Background()
	backend, err := store.Open(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "ledgerflow.db"))
	require.NoError(t, err)
	defer backend.Close()

	p := newTestPipeline(t, backend, Options{})
	report, err := p.RunAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, report.Status)
	assert.Equal(t, 12, tableLen(t, backend, store.MartsSchema(store.MartsTransactionsTable)))

	// Marts alone runs on the persisted staging tables.
	report, err = p.RunLayer(ctx, model.LayerMarts)
	require.NoError(t, err)
	assert.Equal(t, "run-2", report.RunID)
}

func TestRunLayer_DependencyError(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemStore()
	p := newTestPipeline(t, backend, Options{})

	report, err := p.RunLayer(ctx, model.LayerStaging)
	require.Error(t, err)

	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, model.LayerStaging, depErr.Layer)
	assert.Equal(t, model.LayerRaw, depErr.Upstream)

	assert.Equal(t, model.StatusFailed, report.Status)
	failed, ok := report.FailedLayer()
	require.True(t, ok)
	assert.Equal(t, model.LayerStaging, failed)

	_, err = backend.ReadTable(ctx, store.StagingSchema(model.SourceBank))
	assert.ErrorIs(t, err, store.ErrTableNotFound)

	runs, err := backend.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.StatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "upstream layer raw")
}

func TestRunLayer_UsesPersistedUpstream(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemStore()
	p := newTestPipeline(t, backend, Options{})

	_, err := p.RunLayer(ctx, model.LayerRaw)
	require.NoError(t, err)

	report, err := p.Run(ctx, model.LayerStaging, model.LayerMarts)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, report.Status)
	require.Len(t, report.Layers, 2)
	assert.Equal(t, model.LayerStaging, report.Layers[0].Layer)
}

// fakeStep writes one table and then fails when err is set.
type fakeStep struct {
	layer model.Layer
	err   error
	calls int
}

var fakeSchema = store.Schema{Table: "fake", Columns: []store.Column{{Name: "layer", Type: store.Text}}}

func (f *fakeStep) Layer() model.Layer { return f.layer }

func (f *fakeStep) Run(ctx context.Context, tx store.Store) (StepResult, error) {
	f.calls++
	if err := tx.ReplaceTable(ctx, fakeSchema, []store.Row{{string(f.layer)}}); err != nil {
		return StepResult{}, err
	}
	res := StepResult{
		Tables: map[string]int{"fake": 1},
		Issues: []quality.Issue{{Kind: quality.KindRowError, Ref: "x:2", Detail: "bad"}},
	}
	return res, f.err
}

func TestRun_FailureStopsDownstream(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemStore()
	boom := errors.New("boom")
	raw := &fakeStep{layer: model.LayerRaw}
	stg := &fakeStep{layer: model.LayerStaging, err: boom}
	mrt := &fakeStep{layer: model.LayerMarts}
	p := newTestPipeline(t, backend, Options{}, raw, stg, mrt)

	report, err := p.RunAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var layerErr *LayerError
	require.ErrorAs(t, err, &layerErr)
	assert.Equal(t, model.LayerStaging, layerErr.Layer)
	assert.Equal(t, report.RunID, layerErr.RunID)

	assert.Equal(t, 1, raw.calls)
	assert.Equal(t, 1, stg.calls)
	assert.Equal(t, 0, mrt.calls)

	require.Len(t, report.Layers, 3)
	assert.Equal(t, model.StatusCompleted, report.Layers[0].Status)
	assert.Equal(t, model.StatusFailed, report.Layers[1].Status)
	assert.Equal(t, model.StatusPending, report.Layers[2].Status)
	assert.Len(t, report.Layers[1].Issues, 1)
	assert.Equal(t, map[string]int{"fake": 1}, report.Layers[0].Tables)
	assert.Empty(t, report.Layers[1].Tables)
	assert.Zero(t, report.Layers[1].Rows())

	// The failed layer's write was rolled back.
	rows, err := backend.ReadTable(ctx, fakeSchema)
	require.NoError(t, err)
	assert.Equal(t, []store.Row{{"raw"}}, rows)

	_, found, err := backend.LastCompleted(ctx, model.LayerStaging)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRun_MappingErrorKeepsPreviousMarts(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemStore()
	good := newTestPipeline(t, backend, Options{})
	_, err := good.RunAll(ctx)
	require.NoError(t, err)

	cfg := taxonomy.Default().AggregatorConfig()
	delete(cfg.MetaCategories, "GROCERIES")
	bad := newTestPipeline(t, backend, Options{}, defaultSteps(cfg)...)

	report, err := bad.RunLayer(ctx, model.LayerMarts)
	require.Error(t, err)
	var mapErr *marts.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, []string{"GROCERIES"}, mapErr.Categories)
	assert.Equal(t, model.StatusFailed, report.Status)

	assert.Equal(t, 12, tableLen(t, backend, store.MartsSchema(store.MartsTransactionsTable)))
	assert.Equal(t, 10, tableLen(t, backend, store.MartsSchema(store.MartsSpendingTable)))
}

func TestRun_InvalidRange(t *testing.T) {
	p := newTestPipeline(t, store.NewMemStore(), Options{})

	_, err := p.Run(context.Background(), model.LayerMarts, model.LayerRaw)
	assert.Error(t, err)

	_, err = p.Run(context.Background(), "gold", model.LayerMarts)
	assert.ErrorIs(t, err, ErrUnknownLayer)
}

func TestNew_StepValidation(t *testing.T) {
	backend := store.NewMemStore()

	_, err := New(backend, Options{}, &fakeStep{layer: model.LayerRaw}, &fakeStep{layer: model.LayerStaging})
	assert.Error(t, err)

	_, err = New(backend, Options{},
		&fakeStep{layer: model.LayerRaw}, &fakeStep{layer: model.LayerRaw},
		&fakeStep{layer: model.LayerStaging}, &fakeStep{layer: model.LayerMarts})
	assert.Error(t, err)

	_, err = New(backend, Options{}, &fakeStep{layer: "gold"})
	assert.ErrorIs(t, err, ErrUnknownLayer)
}

func TestRunLayer_FailedLayerReportsNoTables(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemStore()

	raw := model.RawTransaction{
		TransactionID:  "0123456789abcdef",
		SourceAccount:  "Chase1234",
		SourceType:     model.SourceBank,
		PostedDate:     time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.RequireFromString("-85.00"),
		RawDescription: "Verizon Wireless Payments",
		SourceFile:     "Chase1234_Activity_20240331.csv",
	}
	require.NoError(t, backend.ReplaceTable(ctx, store.RawSchema(model.SourceBank), store.RawRows([]model.RawTransaction{raw})))
	at := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, backend.RecordRun(ctx, model.LayerRun{
		RunID: "earlier", Layer: model.LayerRaw, Status: model.StatusCompleted, Rows: 1, StartedAt: at, FinishedAt: at,
	}))

	p := newTestPipeline(t, backend, Options{})
	report, err := p.RunLayer(ctx, model.LayerStaging)
	require.ErrorIs(t, err, store.ErrTableNotFound)

	lr, ok := report.Layer(model.LayerStaging)
	require.True(t, ok)
	assert.Equal(t, model.StatusFailed, lr.Status)
	assert.Empty(t, lr.Tables)
	assert.Zero(t, lr.Rows())

	_, err = backend.ReadTable(ctx, store.StagingSchema(model.SourceBank))
	assert.ErrorIs(t, err, store.ErrTableNotFound)

	runs, err := backend.Runs(ctx, 0)
	require.NoError(t, err)
	for _, r := range runs {
		if r.RunID == report.RunID {
			assert.Equal(t, model.StatusFailed, r.Status)
			assert.Zero(t, r.Rows)
		}
	}
}
