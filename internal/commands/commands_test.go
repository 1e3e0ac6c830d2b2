package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerflow/internal/commands"
	"github.com/cleared-dev/ledgerflow/internal/quality"
	"github.com/cleared-dev/ledgerflow/internal/store"
)

// runLedgerflow executes the CLI in-process and returns stdout.
func runLedgerflow(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := commands.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// newProject initializes a project in a temp dir.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runLedgerflow(t, "init", dir)
	require.NoError(t, err)
	return dir
}

// withFixtures copies the sample exports into the project's data dir.
func withFixtures(t *testing.T, dir string) string {
	t.Helper()
	for _, sub := range []string{"bank_accounts", "credit_cards"} {
		src := filepath.Join("..", "..", "testdata", "data", sub)
		entries, err := os.ReadDir(src)
		require.NoError(t, err)
		for _, e := range entries {
			data, err := os.ReadFile(filepath.Join(src, e.Name()))
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "data", sub, e.Name()), data, 0o644))
		}
	}
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runLedgerflow(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized ledgerflow project")

	for _, d := range []string{
		filepath.Join("data", "bank_accounts"),
		filepath.Join("data", "credit_cards"),
		"config",
		"logs",
		"exports",
	} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	for _, f := range []string{
		"ledgerflow.yaml",
		".gitignore",
		filepath.Join("config", "bank_rules.yaml"),
		filepath.Join("config", "card_rules.yaml"),
		filepath.Join("config", "category-taxonomy.csv"),
	} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "file %s should exist", f)
	}

	data, err := os.ReadFile(filepath.Join(dir, "ledgerflow.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "driver: sqlite")
	assert.Contains(t, string(data), "config/card_rules.yaml")
}

func TestInit_AlreadyInitialized(t *testing.T) {
	dir := newProject(t)
	_, err := runLedgerflow(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInit_UnsupportedDriver(t *testing.T) {
	_, err := runLedgerflow(t, "init", t.TempDir(), "--driver", "oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestMissingConfig(t *testing.T) {
	_, err := runLedgerflow(t, "run", "--project", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledgerflow init")
}

func TestLayers(t *testing.T) {
	out, err := runLedgerflow(t, "layers")
	require.NoError(t, err)
	assert.Contains(t, out, "depends on: -")
	assert.Contains(t, out, "depends on: raw")
	assert.Contains(t, out, "depends on: staging")
	assert.Contains(t, out, store.MartsSavingsTable)
}

func TestRun_EndToEnd(t *testing.T) {
	dir := withFixtures(t, newProject(t))

	out, err := runLedgerflow(t, "run", "--project", dir)
	require.NoError(t, err)
	assert.Contains(t, out, ": completed")
	assert.Contains(t, out, store.RawBankTable)
	assert.Contains(t, out, store.MartsTransactionsTable)
	assert.NotContains(t, out, "error:")

	issues, err := quality.Read(filepath.Join(dir, "logs", "quality.csv"))
	require.NoError(t, err)
	assert.Len(t, issues, 6)

	out, err = runLedgerflow(t, "status", "--project", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "never")
	assert.Contains(t, out, "Recent layer runs:")
	assert.Equal(t, 3, strings.Count(out, "completed"))
}

func TestRun_Idempotent(t *testing.T) {
	dir := withFixtures(t, newProject(t))

	_, err := runLedgerflow(t, "run", "--project", dir)
	require.NoError(t, err)
	first, err := runLedgerflow(t, "summary", "--project", dir, "--table", store.MartsTransactionsTable)
	require.NoError(t, err)

	_, err = runLedgerflow(t, "run", "--project", dir)
	require.NoError(t, err)
	second, err := runLedgerflow(t, "summary", "--project", dir, "--table", store.MartsTransactionsTable)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_LayerWithoutUpstream(t *testing.T) {
	dir := withFixtures(t, newProject(t))

	out, err := runLedgerflow(t, "run", "--project", dir, "--layer", "staging")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream layer raw has not completed")
	assert.Contains(t, out, "failed")

	_, err = runLedgerflow(t, "import", "--project", dir)
	require.NoError(t, err)
	_, err = runLedgerflow(t, "run", "--project", dir, "--layer", "staging")
	assert.NoError(t, err)
}

func TestRun_FlagErrors(t *testing.T) {
	dir := newProject(t)

	_, err := runLedgerflow(t, "run", "--project", dir, "--layer", "marts", "--from", "raw")
	assert.Error(t, err)

	_, err = runLedgerflow(t, "run", "--project", dir, "--layer", "gold")
	assert.Error(t, err)

	_, err = runLedgerflow(t, "run", "--project", dir, "--from", "marts", "--to", "raw")
	assert.Error(t, err)
}

func TestStatus_NoRuns(t *testing.T) {
	dir := newProject(t)
	out, err := runLedgerflow(t, "status", "--project", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Store: sqlite")
	assert.Equal(t, 3, strings.Count(out, "never"))
	assert.NotContains(t, out, "Recent layer runs:")
}

func TestImport_DryRun(t *testing.T) {
	dir := withFixtures(t, newProject(t))

	out, err := runLedgerflow(t, "import", "--project", dir, "--dry-run", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "bank: 1 files, 7 transactions, 2 row errors, 1 rejected files, 1 duplicates")
	assert.Contains(t, out, "credit_card: 1 files, 8 transactions, 0 row errors, 0 rejected files, 0 duplicates")
	assert.Contains(t, out, "activity_export.csv")
	assert.Contains(t, out, "Chase5678")

	_, err = os.Stat(filepath.Join(dir, "ledgerflow.db"))
	assert.True(t, os.IsNotExist(err), "dry run must not create the database")
}

func TestImport_DryRunSource(t *testing.T) {
	dir := withFixtures(t, newProject(t))

	out, err := runLedgerflow(t, "import", "--project", dir, "--dry-run", "--source", "credit_card")
	require.NoError(t, err)
	assert.NotContains(t, out, "bank:")
	assert.Contains(t, out, "SAFEWAY #2790")

	_, err = runLedgerflow(t, "import", "--project", dir, "--dry-run", "--source", "brokerage")
	assert.Error(t, err)
}

func TestRulesTest(t *testing.T) {
	dir := newProject(t)

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"card rule", []string{"safeway   #2790", "--source", "credit_card"}, "Category:   GROCERIES"},
		{"bank rule", []string{"CLEARCOVER INC PAYROLL PPD ID: 1234"}, "Category:   SALARY"},
		{"fallback", []string{"zelle to someone"}, "Category:   OTHER (fallback)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"rules", "test", "--project", dir}, tt.args...)
			out, err := runLedgerflow(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestRulesTest_UnknownSource(t *testing.T) {
	_, err := runLedgerflow(t, "rules", "test", "--project", newProject(t), "x", "--source", "cash")
	assert.Error(t, err)
}

func TestRulesCheck(t *testing.T) {
	dir := newProject(t)

	out, err := runLedgerflow(t, "rules", "check", "--project", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "bank:")
	assert.Contains(t, out, "all mapped")

	path := filepath.Join(dir, "config", "category-taxonomy.csv")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "GROCERIES,") {
			kept = append(kept, line)
		}
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(kept, "\n")), 0o644))

	out, err = runLedgerflow(t, "rules", "check", "--project", dir)
	require.Error(t, err)
	assert.Contains(t, out, "missing from taxonomy: GROCERIES")
}

func TestExport(t *testing.T) {
	dir := withFixtures(t, newProject(t))
	_, err := runLedgerflow(t, "run", "--project", dir)
	require.NoError(t, err)

	out, err := runLedgerflow(t, "export", "--project", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 4 tables")
	for _, table := range store.MartsTables {
		_, err := os.Stat(filepath.Join(dir, "exports", table+".csv"))
		assert.NoError(t, err, table)
	}

	xlsxDir := filepath.Join(t.TempDir(), "xlsx")
	_, err = runLedgerflow(t, "export", "--project", dir, "--format", "xlsx", "--dir", xlsxDir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(xlsxDir, "marts.xlsx"))
	assert.NoError(t, err)
}

func TestExport_BeforeRun(t *testing.T) {
	_, err := runLedgerflow(t, "export", "--project", newProject(t))
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	dir := withFixtures(t, newProject(t))
	_, err := runLedgerflow(t, "run", "--project", dir)
	require.NoError(t, err)

	out, err := runLedgerflow(t, "summary", "--project", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "META CATEGORY")
	assert.Contains(t, out, "GROCERIES")
	assert.Contains(t, out, "87.43")

	out, err = runLedgerflow(t, "summary", "--project", dir, "--from", "2024-04")
	require.NoError(t, err)
	assert.NotContains(t, out, "87.43")
	assert.Contains(t, out, "18.20")

	out, err = runLedgerflow(t, "summary", "--project", dir, "--from", "2025-01")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions.")

	_, err = runLedgerflow(t, "summary", "--project", dir, "--table", "raw_bank_account_transactions")
	assert.Error(t, err)
}

func TestSummary_InvalidMonth(t *testing.T) {
	dir := newProject(t)
	for _, ym := range []string{"2024-3", "2024-13", "March"} {
		_, err := runLedgerflow(t, "summary", "--project", dir, "--from", ym)
		require.Error(t, err, ym)
		assert.Contains(t, err.Error(), "year_month", ym)
	}
	_, err := runLedgerflow(t, "summary", "--project", dir, "--to", "2024-3")
	assert.Error(t, err)
}

func TestSchedule_InvalidCron(t *testing.T) {
	_, err := runLedgerflow(t, "schedule", "--project", newProject(t), "--cron", "not a cron")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}
