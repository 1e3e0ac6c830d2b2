// Package store is the table-oriented storage handle the pipeline runs on.
//
// The pipeline needs three operations: read a whole table, replace a whole
// table, and run a unit of work in a transaction. ReplaceTable always drops
// and recreates the table, so a layer's output never mixes with a previous
// run. Inside InTx either every replacement commits or none does.
package store

import (
	"context"
	"errors"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// ErrTableNotFound is returned when reading a table that was never built.
var ErrTableNotFound = errors.New("table not found")

// ColumnType is the logical type of a column.
type ColumnType int

const (
	Text    ColumnType = iota // string
	Integer                   // int
	Decimal                   // decimal.Decimal
	Date                      // time.Time, day precision
)

// Column is one named, typed column.
type Column struct {
	Name string
	Type ColumnType
}

// Schema describes a table. OrderBy fixes read order for backends without
// an inherent row order.
type Schema struct {
	Table   string
	Columns []Column
	OrderBy []string
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Row holds one value per schema column. A nil value is NULL.
type Row []any

// Store reads and replaces whole tables.
type Store interface {
	ReadTable(ctx context.Context, schema Schema) ([]Row, error)
	ReplaceTable(ctx context.Context, schema Schema, rows []Row) error
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// RunLog persists layer attempts across pipeline runs.
type RunLog interface {
	RecordRun(ctx context.Context, run model.LayerRun) error
	LastCompleted(ctx context.Context, layer model.Layer) (model.LayerRun, bool, error)
	Runs(ctx context.Context, limit int) ([]model.LayerRun, error)
}

// Backend is a Store that also keeps the run log.
type Backend interface {
	Store
	RunLog
	Close() error
}
