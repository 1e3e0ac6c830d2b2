package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	dateLayout = "2006-01-02"
	// Fixed width so lexical order matches time order.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

type dialect struct {
	name       string
	sqlDriver  string
	types      map[ColumnType]string
	tableQuery string
}

func (d dialect) placeholder(i int) string {
	if d.name == DriverPostgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name:      DriverSQLite,
		sqlDriver: "sqlite",
		types: map[ColumnType]string{
			Text:    "TEXT",
			Integer: "INTEGER",
			Decimal: "TEXT",
			Date:    "TEXT",
		},
		tableQuery: "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
	},
	DriverPostgres: {
		name:      DriverPostgres,
		sqlDriver: "pgx",
		types: map[ColumnType]string{
			Text:    "TEXT",
			Integer: "INTEGER",
			Decimal: "NUMERIC",
			Date:    "DATE",
		},
		tableQuery: "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1",
	},
}

func lookupDialect(driver string) (dialect, error) {
	d, ok := dialects[strings.ToLower(driver)]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
	return d, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// SQLStore is a Backend over database/sql.
type SQLStore struct {
	db      *sql.DB
	q       querier
	tx      *sql.Tx
	dialect dialect
}

// Open connects to the database, applies migrations and returns the store.
// For sqlite the dsn is a file path; its directory is created if needed.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}

	if d.name == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.name, err)
	}
	if d.name == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d.name, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLStore{db: db, q: db, dialect: d}, nil
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Driver returns the configured driver name.
func (s *SQLStore) Driver() string {
	return s.dialect.name
}

// InTx runs fn in a transaction. A nested call joins the outer transaction.
func (s *SQLStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	child := &SQLStore{db: s.db, q: tx, tx: tx, dialect: s.dialect}

	if err := fn(child); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReplaceTable drops the table, recreates it from schema and inserts rows.
func (s *SQLStore) ReplaceTable(ctx context.Context, schema Schema, rows []Row) error {
	if s.tx == nil {
		return s.InTx(ctx, func(tx Store) error {
			return tx.ReplaceTable(ctx, schema, rows)
		})
	}

	if _, err := s.q.ExecContext(ctx, "DROP TABLE IF EXISTS "+schema.Table); err != nil {
		return fmt.Errorf("drop %s: %w", schema.Table, err)
	}
	if _, err := s.q.ExecContext(ctx, s.dialect.createTable(schema)); err != nil {
		return fmt.Errorf("create %s: %w", schema.Table, err)
	}
	if len(rows) == 0 {
		return nil
	}

	stmt, err := s.q.PrepareContext(ctx, s.dialect.insert(schema))
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", schema.Table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(schema.Columns) {
			return fmt.Errorf("%s row %d: %d values for %d columns", schema.Table, i+1, len(row), len(schema.Columns))
		}
		args := make([]any, len(row))
		for j, v := range row {
			arg, err := encodeValue(schema.Columns[j], v)
			if err != nil {
				return fmt.Errorf("%s row %d: %w", schema.Table, i+1, err)
			}
			args[j] = arg
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s row %d: %w", schema.Table, i+1, err)
		}
	}
	return nil
}

// ReadTable returns every row of the table ordered by schema.OrderBy.
func (s *SQLStore) ReadTable(ctx context.Context, schema Schema) ([]Row, error) {
	exists, err := s.tableExists(ctx, schema.Table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", schema.Table, ErrTableNotFound)
	}

	query := "SELECT " + strings.Join(schema.Names(), ", ") + " FROM " + schema.Table
	if len(schema.OrderBy) > 0 {
		query += " ORDER BY " + strings.Join(schema.OrderBy, ", ")
	}

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", schema.Table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		raw := make([]any, len(schema.Columns))
		ptrs := make([]any, len(raw))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", schema.Table, err)
		}
		row := make(Row, len(raw))
		for i, v := range raw {
			row[i], err = decodeValue(schema.Columns[i], v)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", schema.Table, len(out)+1, err)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", schema.Table, err)
	}
	return out, nil
}

func (s *SQLStore) tableExists(ctx context.Context, table string) (bool, error) {
	var name string
	err := s.q.QueryRowContext(ctx, s.dialect.tableQuery, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("look up table %s: %w", table, err)
	}
	return true, nil
}

func (d dialect) createTable(schema Schema) string {
	defs := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		defs[i] = c.Name + " " + d.types[c.Type]
	}
	return "CREATE TABLE " + schema.Table + " (" + strings.Join(defs, ", ") + ")"
}

func (d dialect) insert(schema Schema) string {
	marks := make([]string, len(schema.Columns))
	for i := range marks {
		marks[i] = d.placeholder(i + 1)
	}
	return "INSERT INTO " + schema.Table + " (" + strings.Join(schema.Names(), ", ") +
		") VALUES (" + strings.Join(marks, ", ") + ")"
}

func encodeValue(col Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch col.Type {
	case Text:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("column %s: expected string, got %T", col.Name, v)
		}
		return s, nil
	case Integer:
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("column %s: expected int, got %T", col.Name, v)
		}
		return int64(n), nil
	case Decimal:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return nil, fmt.Errorf("column %s: expected decimal, got %T", col.Name, v)
		}
		return d.String(), nil
	case Date:
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("column %s: expected time, got %T", col.Name, v)
		}
		return t.Format(dateLayout), nil
	}
	return nil, fmt.Errorf("column %s: unknown type %d", col.Name, col.Type)
}

func decodeValue(col Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch col.Type {
	case Text:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Integer:
		switch n := v.(type) {
		case int64:
			return int(n), nil
		case int32:
			return int(n), nil
		case string:
			i, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			return i, nil
		}
	case Decimal:
		switch n := v.(type) {
		case string:
			d, err := decimal.NewFromString(n)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			return d, nil
		case float64:
			return decimal.NewFromFloat(n), nil
		case int64:
			return decimal.NewFromInt(n), nil
		}
	case Date:
		switch t := v.(type) {
		case time.Time:
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		case string:
			if len(t) > len(dateLayout) {
				t = t[:len(dateLayout)]
			}
			parsed, err := time.Parse(dateLayout, t)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			return parsed, nil
		}
	}
	return nil, fmt.Errorf("column %s: cannot decode %T", col.Name, v)
}

// RecordRun inserts or updates the run log entry for (RunID, Layer).
func (s *SQLStore) RecordRun(ctx context.Context, run model.LayerRun) error {
	p := s.dialect.placeholder
	query := fmt.Sprintf(`INSERT INTO pipeline_runs
		(run_id, layer, status, row_count, error, started_at, finished_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s)
		ON CONFLICT (run_id, layer) DO UPDATE SET
			status = excluded.status,
			row_count = excluded.row_count,
			error = excluded.error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at`,
		p(1), p(2), p(3), p(4), p(5), p(6), p(7))

	_, err := s.q.ExecContext(ctx, query,
		run.RunID, string(run.Layer), string(run.Status), int64(run.Rows), run.Error,
		formatTime(run.StartedAt), formatTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("record run %s/%s: %w", run.RunID, run.Layer, err)
	}
	return nil
}

const runColumns = "run_id, layer, status, row_count, error, started_at, finished_at"

// LastCompleted returns the most recent completed run of layer.
func (s *SQLStore) LastCompleted(ctx context.Context, layer model.Layer) (model.LayerRun, bool, error) {
	query := "SELECT " + runColumns + " FROM pipeline_runs WHERE layer = " + s.dialect.placeholder(1) +
		" AND status = " + s.dialect.placeholder(2) + " ORDER BY finished_at DESC LIMIT 1"

	rows, err := s.q.QueryContext(ctx, query, string(layer), string(model.StatusCompleted))
	if err != nil {
		return model.LayerRun{}, false, fmt.Errorf("query last completed %s: %w", layer, err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return model.LayerRun{}, false, err
	}
	if len(runs) == 0 {
		return model.LayerRun{}, false, nil
	}
	return runs[0], true, nil
}

// Runs returns up to limit run log entries, newest first. A limit of zero
// or less returns all of them.
func (s *SQLStore) Runs(ctx context.Context, limit int) ([]model.LayerRun, error) {
	query := "SELECT " + runColumns + " FROM pipeline_runs ORDER BY started_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT " + s.dialect.placeholder(1)
		args = append(args, int64(limit))
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]model.LayerRun, error) {
	defer rows.Close()

	var runs []model.LayerRun
	for rows.Next() {
		var r model.LayerRun
		var layer, status, started, finished string
		var count int64
		if err := rows.Scan(&r.RunID, &layer, &status, &count, &r.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Layer = model.Layer(layer)
		r.Status = model.LayerStatus(status)
		r.Rows = int(count)

		var err error
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("run %s started_at: %w", r.RunID, err)
		}
		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("run %s finished_at: %w", r.RunID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
