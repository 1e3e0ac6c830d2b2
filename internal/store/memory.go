package store

import (
	"cmp"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// MemStore is an in-memory Backend. InTx works on a snapshot of the tables
// and swaps it in only when fn succeeds.
type MemStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
	runs   []model.LayerRun
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string][]Row)}
}

// ReadTable returns a copy of the table's rows.
func (m *MemStore) ReadTable(_ context.Context, schema Schema) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return readTable(m.tables, schema)
}

// ReplaceTable replaces the table's rows.
func (m *MemStore) ReplaceTable(_ context.Context, schema Schema, rows []Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return replaceTable(m.tables, schema, rows)
}

// InTx runs fn against a snapshot and commits it if fn returns nil.
func (m *MemStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{tables: make(map[string][]Row, len(m.tables))}
	for name, rows := range m.tables {
		tx.tables[name] = rows
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.tables = tx.tables
	return nil
}

// Close is a no-op.
func (m *MemStore) Close() error { return nil }

// RecordRun inserts or updates the entry for (RunID, Layer).
func (m *MemStore) RecordRun(_ context.Context, run model.LayerRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.runs {
		if r.RunID == run.RunID && r.Layer == run.Layer {
			m.runs[i] = run
			return nil
		}
	}
	m.runs = append(m.runs, run)
	return nil
}

// LastCompleted returns the most recently finished completed run of layer.
func (m *MemStore) LastCompleted(_ context.Context, layer model.Layer) (model.LayerRun, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last model.LayerRun
	found := false
	for _, r := range m.runs {
		if r.Layer != layer || r.Status != model.StatusCompleted {
			continue
		}
		if !found || r.FinishedAt.After(last.FinishedAt) {
			last = r
			found = true
		}
	}
	return last, found, nil
}

// Runs returns up to limit entries, newest first.
func (m *MemStore) Runs(_ context.Context, limit int) ([]model.LayerRun, error) {
	m.mu.RLock()
	out := make([]model.LayerRun, len(m.runs))
	copy(out, m.runs)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memTx is the Store handed to InTx callbacks. The parent's lock is held
// for its whole lifetime.
type memTx struct {
	tables map[string][]Row
}

func (t *memTx) ReadTable(_ context.Context, schema Schema) ([]Row, error) {
	return readTable(t.tables, schema)
}

func (t *memTx) ReplaceTable(_ context.Context, schema Schema, rows []Row) error {
	return replaceTable(t.tables, schema, rows)
}

func (t *memTx) InTx(_ context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func readTable(tables map[string][]Row, schema Schema) ([]Row, error) {
	rows, ok := tables[schema.Table]
	if !ok {
		return nil, fmt.Errorf("%s: %w", schema.Table, ErrTableNotFound)
	}
	return copyRows(rows), nil
}

func replaceTable(tables map[string][]Row, schema Schema, rows []Row) error {
	for i, row := range rows {
		if len(row) != len(schema.Columns) {
			return fmt.Errorf("%s row %d: %d values for %d columns", schema.Table, i+1, len(row), len(schema.Columns))
		}
	}
	out := copyRows(rows)
	sortRows(schema, out)
	tables[schema.Table] = out
	return nil
}

// sortRows orders rows by schema.OrderBy the way an ORDER BY would.
func sortRows(schema Schema, rows []Row) {
	var idx []int
	for _, name := range schema.OrderBy {
		for i, c := range schema.Columns {
			if c.Name == name {
				idx = append(idx, i)
			}
		}
	}
	if len(idx) == 0 {
		return
	}
	sort.SliceStable(rows, func(a, b int) bool {
		for _, i := range idx {
			if c := compareValues(rows[a][i], rows[b][i]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// compareValues orders NULL first, then by the value's natural order.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return 0
}

func copyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = append(Row(nil), row...)
	}
	return out
}
