package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/ledgerflow/internal/model"
	"github.com/cleared-dev/ledgerflow/internal/store"
)

func sampleMarts() []model.MartsTransaction {
	return []model.MartsTransaction{{
		TransactionID:         "0123456789abcdef",
		Source:                model.SourceCreditCard,
		AccountOrCardNumber:   "Chase5678",
		PostedDate:            time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:                decimal.RequireFromString("87.43"),
		NormalizedDescription: "SAFEWAY, #2790",
		Year:                  2024,
		Month:                 3,
		DayOfWeek:             5,
		YearMonth:             "2024-03",
		Category:              "GROCERIES",
		MetaCategory:          "GROCERIES",
	}}
}

func seed(t *testing.T) *store.MemStore {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemStore()
	for _, table := range store.MartsTables {
		var rows []store.Row
		if table != store.MartsIncomeTable {
			rows = store.MartsRows(sampleMarts())
		}
		require.NoError(t, st.ReplaceTable(ctx, store.MartsSchema(table), rows))
	}
	return st
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	schema := store.MartsSchema(store.MartsSpendingTable)
	require.NoError(t, WriteTable(&buf, schema, store.MartsRows(sampleMarts())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(schema.Names(), ","), lines[0])
	assert.Equal(t,
		`0123456789abcdef,credit_card,Chase5678,2024-03-15,87.43,"SAFEWAY, #2790",2024,3,5,2024-03,GROCERIES,GROCERIES`,
		lines[1])
}

func TestWriteTable_RowWidth(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, store.MartsSchema(store.MartsSpendingTable), []store.Row{{"x"}})
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	col := store.Column{Name: "c", Type: store.Decimal}
	assert.Equal(t, "", FormatValue(col, nil))
	assert.Equal(t, "-5.50", FormatValue(col, decimal.RequireFromString("-5.5")))
	assert.Equal(t, "7", FormatValue(store.Column{Name: "c", Type: store.Integer}, 7))
}

func TestDir_CSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	counts, err := Dir(context.Background(), seed(t), dir, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		store.MartsTransactionsTable: 1,
		store.MartsSpendingTable:     1,
		store.MartsIncomeTable:       0,
		store.MartsSavingsTable:      1,
	}, counts)

	for _, table := range store.MartsTables {
		data, err := os.ReadFile(filepath.Join(dir, table+".csv"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "transaction_id,source,"), table)
	}
}

func TestDir_XLSX(t *testing.T) {
	dir := t.TempDir()
	_, err := Dir(context.Background(), seed(t), dir, FormatXLSX)
	require.NoError(t, err)

	xl, err := excelize.OpenFile(filepath.Join(dir, WorkbookName))
	require.NoError(t, err)
	defer xl.Close()

	assert.ElementsMatch(t, store.MartsTables, xl.GetSheetList())

	rows, err := xl.GetRows(store.MartsSpendingTable)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "transaction_id", rows[0][0])
	assert.Equal(t, "SAFEWAY, #2790", rows[1][5])
	assert.Equal(t, "87.43", rows[1][4])
}

func TestDir_MissingTable(t *testing.T) {
	_, err := Dir(context.Background(), store.NewMemStore(), t.TempDir(), FormatCSV)
	assert.ErrorIs(t, err, store.ErrTableNotFound)
}

func TestDir_UnknownFormat(t *testing.T) {
	_, err := Dir(context.Background(), seed(t), t.TempDir(), "parquet")
	assert.Error(t, err)
}
