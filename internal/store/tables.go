package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Table names.
const (
	RawBankTable           = "raw_bank_account_transactions"
	RawCardTable           = "raw_credit_card_transactions"
	StagingBankTable       = "staging_bank_account_transactions"
	StagingCardTable       = "staging_credit_card_transactions"
	MartsTransactionsTable = "marts_transactions"
	MartsSpendingTable     = "marts_spending"
	MartsIncomeTable       = "marts_income"
	MartsSavingsTable      = "marts_savings"
)

var rowOrder = []string{"posted_date", "transaction_id"}

var rawColumns = []Column{
	{"transaction_id", Text},
	{"source_account", Text},
	{"source_type", Text},
	{"posted_date", Date},
	{"amount", Decimal},
	{"raw_description", Text},
	{"balance", Decimal},
	{"institution_category", Text},
	{"source_file", Text},
}

var stagingColumns = append(append([]Column{}, rawColumns...),
	Column{"normalized_description", Text},
	Column{"year", Integer},
	Column{"month", Integer},
	Column{"day_of_week", Integer},
	Column{"year_month", Text},
	Column{"category", Text},
)

var martsColumns = []Column{
	{"transaction_id", Text},
	{"source", Text},
	{"account_or_card_number", Text},
	{"posted_date", Date},
	{"amount", Decimal},
	{"normalized_description", Text},
	{"year", Integer},
	{"month", Integer},
	{"day_of_week", Integer},
	{"year_month", Text},
	{"category", Text},
	{"meta_category", Text},
}

// RawSchema returns the raw table schema for source.
func RawSchema(source model.SourceType) Schema {
	table := RawBankTable
	if source == model.SourceCreditCard {
		table = RawCardTable
	}
	return Schema{Table: table, Columns: rawColumns, OrderBy: rowOrder}
}

// StagingSchema returns the staging table schema for source.
func StagingSchema(source model.SourceType) Schema {
	table := StagingBankTable
	if source == model.SourceCreditCard {
		table = StagingCardTable
	}
	return Schema{Table: table, Columns: stagingColumns, OrderBy: rowOrder}
}

// MartsSchema returns the schema of one marts table.
func MartsSchema(table string) Schema {
	return Schema{Table: table, Columns: martsColumns, OrderBy: rowOrder}
}

// MartsTables lists the marts tables.
var MartsTables = []string{MartsTransactionsTable, MartsSpendingTable, MartsIncomeTable, MartsSavingsTable}

func rawValues(t model.RawTransaction) []any {
	var balance any
	if t.Balance.Valid {
		balance = t.Balance.Decimal
	}
	return []any{
		t.TransactionID,
		t.SourceAccount,
		string(t.SourceType),
		t.PostedDate,
		t.Amount,
		t.RawDescription,
		balance,
		t.InstitutionCategory,
		t.SourceFile,
	}
}

// RawRows converts raw transactions to rows.
func RawRows(txns []model.RawTransaction) []Row {
	rows := make([]Row, len(txns))
	for i, t := range txns {
		rows[i] = rawValues(t)
	}
	return rows
}

// StagingRows converts staging transactions to rows.
func StagingRows(txns []model.StagingTransaction) []Row {
	rows := make([]Row, len(txns))
	for i, t := range txns {
		rows[i] = append(rawValues(t.RawTransaction),
			t.NormalizedDescription, t.Year, t.Month, t.DayOfWeek, t.YearMonth, t.Category)
	}
	return rows
}

// MartsRows converts marts transactions to rows.
func MartsRows(txns []model.MartsTransaction) []Row {
	rows := make([]Row, len(txns))
	for i, t := range txns {
		rows[i] = Row{
			t.TransactionID,
			t.Source.UnionSource(),
			t.AccountOrCardNumber,
			t.PostedDate,
			t.Amount,
			t.NormalizedDescription,
			t.Year,
			t.Month,
			t.DayOfWeek,
			t.YearMonth,
			t.Category,
			t.MetaCategory,
		}
	}
	return rows
}

// rowReader pulls typed values out of a row, remembering the first error.
type rowReader struct {
	row Row
	i   int
	err error
}

func (r *rowReader) next() any {
	if r.i >= len(r.row) {
		if r.err == nil {
			r.err = fmt.Errorf("row has %d values, need more", len(r.row))
		}
		r.i++
		return nil
	}
	v := r.row[r.i]
	r.i++
	return v
}

func (r *rowReader) text() string {
	v := r.next()
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok && r.err == nil {
		r.err = fmt.Errorf("column %d: expected string, got %T", r.i-1, v)
	}
	return s
}

func (r *rowReader) integer() int {
	v := r.next()
	if v == nil {
		return 0
	}
	n, ok := v.(int)
	if !ok && r.err == nil {
		r.err = fmt.Errorf("column %d: expected int, got %T", r.i-1, v)
	}
	return n
}

func (r *rowReader) decimal() decimal.NullDecimal {
	v := r.next()
	if v == nil {
		return decimal.NullDecimal{}
	}
	d, ok := v.(decimal.Decimal)
	if !ok && r.err == nil {
		r.err = fmt.Errorf("column %d: expected decimal, got %T", r.i-1, v)
	}
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

func (r *rowReader) date() time.Time {
	v := r.next()
	if v == nil {
		return time.Time{}
	}
	t, ok := v.(time.Time)
	if !ok && r.err == nil {
		r.err = fmt.Errorf("column %d: expected time, got %T", r.i-1, v)
	}
	return t
}

func (r *rowReader) raw() model.RawTransaction {
	return model.RawTransaction{
		TransactionID:       r.text(),
		SourceAccount:       r.text(),
		SourceType:          model.SourceType(r.text()),
		PostedDate:          r.date(),
		Amount:              r.decimal().Decimal,
		RawDescription:      r.text(),
		Balance:             r.decimal(),
		InstitutionCategory: r.text(),
		SourceFile:          r.text(),
	}
}

// ScanRaw converts rows read with RawSchema back to transactions.
func ScanRaw(rows []Row) ([]model.RawTransaction, error) {
	txns := make([]model.RawTransaction, 0, len(rows))
	for i, row := range rows {
		r := &rowReader{row: row}
		t := r.raw()
		if r.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, r.err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// ScanStaging converts rows read with StagingSchema back to transactions.
func ScanStaging(rows []Row) ([]model.StagingTransaction, error) {
	txns := make([]model.StagingTransaction, 0, len(rows))
	for i, row := range rows {
		r := &rowReader{row: row}
		t := model.StagingTransaction{
			RawTransaction:        r.raw(),
			NormalizedDescription: r.text(),
			Year:                  r.integer(),
			Month:                 r.integer(),
			DayOfWeek:             r.integer(),
			YearMonth:             r.text(),
			Category:              r.text(),
		}
		if r.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, r.err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// ScanMarts converts rows read with MartsSchema back to transactions.
func ScanMarts(rows []Row) ([]model.MartsTransaction, error) {
	txns := make([]model.MartsTransaction, 0, len(rows))
	for i, row := range rows {
		r := &rowReader{row: row}
		t := model.MartsTransaction{
			TransactionID:         r.text(),
			Source:                parseUnionSource(r.text()),
			AccountOrCardNumber:   r.text(),
			PostedDate:            r.date(),
			Amount:                r.decimal().Decimal,
			NormalizedDescription: r.text(),
			Year:                  r.integer(),
			Month:                 r.integer(),
			DayOfWeek:             r.integer(),
			YearMonth:             r.text(),
			Category:              r.text(),
			MetaCategory:          r.text(),
		}
		if r.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, r.err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func parseUnionSource(s string) model.SourceType {
	if s == model.SourceBank.UnionSource() {
		return model.SourceBank
	}
	return model.SourceType(s)
}
