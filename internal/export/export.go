// Package export writes stored tables out as CSV files or an Excel workbook
// for downstream reporting tools.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/ledgerflow/internal/store"
)

// Formats accepted by Dir.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// WorkbookName is the file written for FormatXLSX.
const WorkbookName = "marts.xlsx"

// FormatValue renders one cell. Decimals keep two places, dates are
// YYYY-MM-DD and NULL is empty.
func FormatValue(col store.Column, v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case decimal.Decimal:
		return x.StringFixed(2)
	case time.Time:
		return x.Format("2006-01-02")
	}
	return fmt.Sprintf("%v", v)
}

// WriteTable writes a header row and every row as CSV.
func WriteTable(w io.Writer, schema store.Schema, rows []store.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Names()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	record := make([]string, len(schema.Columns))
	for i, row := range rows {
		if len(row) != len(schema.Columns) {
			return fmt.Errorf("row %d: %d values for %d columns", i+1, len(row), len(schema.Columns))
		}
		for j, col := range schema.Columns {
			record[j] = FormatValue(col, row[j])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSheet writes schema and rows to a new sheet of xl named after the
// table. Numbers are stored as numbers so spreadsheets can sum them.
func WriteSheet(xl *excelize.File, schema store.Schema, rows []store.Row) error {
	sheet := schema.Table
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if _, err := xl.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	header := make([]any, len(schema.Columns))
	for i, name := range schema.Names() {
		header[i] = name
	}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if len(row) != len(schema.Columns) {
			return fmt.Errorf("row %d: %d values for %d columns", i+1, len(row), len(schema.Columns))
		}
		cells := make([]any, len(row))
		for j, col := range schema.Columns {
			switch v := row[j].(type) {
			case decimal.Decimal:
				f, _ := v.Round(2).Float64()
				cells[j] = f
			case int:
				cells[j] = v
			default:
				cells[j] = FormatValue(col, v)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xl.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return nil
}

// Dir reads every marts table from st and writes it to dir in format. It
// returns the rows written per table.
func Dir(ctx context.Context, st store.Store, dir, format string) (map[string]int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	tables := make(map[string][]store.Row, len(store.MartsTables))
	for _, table := range store.MartsTables {
		rows, err := st.ReadTable(ctx, store.MartsSchema(table))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", table, err)
		}
		tables[table] = rows
	}

	counts := make(map[string]int, len(tables))
	switch format {
	case FormatCSV, "":
		for _, table := range store.MartsTables {
			if err := writeCSVFile(filepath.Join(dir, table+".csv"), store.MartsSchema(table), tables[table]); err != nil {
				return nil, err
			}
			counts[table] = len(tables[table])
		}
	case FormatXLSX:
		xl := excelize.NewFile()
		defer xl.Close()
		for _, table := range store.MartsTables {
			if err := WriteSheet(xl, store.MartsSchema(table), tables[table]); err != nil {
				return nil, fmt.Errorf("%s: %w", table, err)
			}
			counts[table] = len(tables[table])
		}
		// Drop the empty default sheet.
		if err := xl.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("removing default sheet: %w", err)
		}
		if err := xl.SaveAs(filepath.Join(dir, WorkbookName)); err != nil {
			return nil, fmt.Errorf("saving workbook: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	return counts, nil
}

func writeCSVFile(path string, schema store.Schema, rows []store.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteTable(f, schema, rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
