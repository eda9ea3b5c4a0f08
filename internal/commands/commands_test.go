package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bukutani/bukutani/internal/commands"
	"github.com/bukutani/bukutani/internal/config"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvOwner, config.EnvData, config.EnvLogLevel, config.EnvBackend} {
		t.Setenv(k, "")
	}
}

func runBukutani(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runBukutani(t, args...)
	require.NoError(t, err, "bukutani %s\n%s", strings.Join(args, " "), out)
	return out
}

// recordedID extracts the transaction ID from "Recorded <kind> <id> ...".
func recordedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 3, out)
	require.Equal(t, "Recorded", fields[0], out)
	return fields[2]
}

func initDir(t *testing.T, extra ...string) string {
	t.Helper()
	isolateEnv(t)
	dir := t.TempDir()
	mustRun(t, append([]string{"init", dir, "--owner", "siti"}, extra...)...)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initDir(t)

	for _, d := range []string{"import", filepath.Join("import", "processed"), filepath.Join("data", "siti")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "siti", cfg.Owner)
	assert.Equal(t, config.BackendCSV, cfg.Storage.Backend)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := initDir(t)

	_, err := runBukutani(t, "init", dir, "--owner", "budi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	mustRun(t, "init", dir, "--owner", "budi", "--force")
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "budi", cfg.Owner)
}

func TestInit_NeedsOwner(t *testing.T) {
	isolateEnv(t)
	_, err := runBukutani(t, "init", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--owner")
}

func TestInit_BadBackend(t *testing.T) {
	isolateEnv(t)
	_, err := runBukutani(t, "init", t.TempDir(), "--owner", "siti", "--backend", "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestRecordReportReverse(t *testing.T) {
	for _, backend := range []string{config.BackendCSV, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := initDir(t, "--backend", backend)

			mustRun(t, "--dir", dir, "income", "add",
				"--amount", "100000", "--source", "Penjualan Padi", "--method", "Tunai", "--date", "2025-03-14")
			out := mustRun(t, "--dir", dir, "expense", "add",
				"--amount", "75000", "--sub", "Urea", "--method", "payable", "--memo", "pupuk dasar", "--date", "2025-03-15")
			expenseID := recordedID(t, out)

			out = mustRun(t, "--dir", dir, "journal")
			assert.Contains(t, out, "2025-03-001a")
			assert.Contains(t, out, "2025-03-002b")
			assert.Contains(t, out, "Utang Dagang")
			assert.Contains(t, out, "100000.00")

			out = mustRun(t, "--dir", dir, "statement")
			assert.Contains(t, out, "100000.00")
			assert.Contains(t, out, "75000.00")
			assert.Contains(t, out, "25000.00")

			out = mustRun(t, "--dir", dir, "list", "expense")
			assert.Contains(t, out, expenseID)
			assert.Contains(t, out, "Pupuk")

			out = mustRun(t, "--dir", dir, "delete", "expense", expenseID)
			assert.Contains(t, out, "Deleted")

			out = mustRun(t, "--dir", dir, "journal")
			assert.Contains(t, out, "Pembatalan: pupuk dasar")

			out = mustRun(t, "--dir", dir, "list", "expense")
			assert.Contains(t, out, "No pengeluaran transactions.")

			out = mustRun(t, "--dir", dir, "ledger", "Utang Dagang")
			assert.Contains(t, out, "== Utang Dagang ==")
			assert.NotContains(t, out, "== Kas ==")

			out = mustRun(t, "--dir", dir, "verify")
			assert.Contains(t, out, "Journal OK.")
		})
	}
}

func TestDelete_Missing(t *testing.T) {
	dir := initDir(t)
	out := mustRun(t, "--dir", dir, "delete", "income", "no-such-id")
	assert.Contains(t, out, "nothing changed")
}

func TestRecord_InvalidInput(t *testing.T) {
	dir := initDir(t)

	_, err := runBukutani(t, "--dir", dir, "income", "add", "--amount", "0", "--source", "Penjualan Padi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transaction")

	_, err = runBukutani(t, "--dir", dir, "income", "add", "--amount", "10", "--source", "Penjualan Padi", "--method", "Utang")
	require.Error(t, err)

	_, err = runBukutani(t, "--dir", dir, "expense", "add", "--amount", "10", "--sub", "Urea", "--method", "barter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--method")

	_, err = runBukutani(t, "--dir", dir, "income", "add", "--amount", "sepuluh", "--source", "Lain-lain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--amount")
}

func TestPeriodFlags(t *testing.T) {
	dir := initDir(t)
	mustRun(t, "--dir", dir, "income", "add", "--amount", "10", "--source", "Lain-lain", "--date", "2025-03-31 18:00:00")
	mustRun(t, "--dir", dir, "income", "add", "--amount", "20", "--source", "Lain-lain", "--date", "2025-04-01")

	out := mustRun(t, "--dir", dir, "summary", "--from", "2025-03-01", "--to", "2025-03-31")
	assert.Contains(t, out, "10.00")
	assert.NotContains(t, out, "30.00")

	out = mustRun(t, "--dir", dir, "summary")
	assert.Contains(t, out, "30.00")

	_, err := runBukutani(t, "--dir", dir, "journal", "--from", "2025-04-02", "--to", "2025-04-01")
	require.Error(t, err)
}

func TestOwnerOverride(t *testing.T) {
	dir := initDir(t)
	mustRun(t, "--dir", dir, "income", "add", "--amount", "10", "--source", "Lain-lain")

	out := mustRun(t, "--dir", dir, "--owner", "budi", "journal")
	assert.Contains(t, out, "Journal is empty.")

	t.Setenv(config.EnvOwner, "budi")
	out = mustRun(t, "--dir", dir, "list", "income")
	assert.Contains(t, out, "No pemasukan transactions.")
}

func TestNoOwner(t *testing.T) {
	isolateEnv(t)
	_, err := runBukutani(t, "--dir", t.TempDir(), "journal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no owner")
}

func TestCategories(t *testing.T) {
	dir := initDir(t)
	out := mustRun(t, "--dir", dir, "categories")
	assert.Contains(t, out, "Penjualan Padi")
	assert.Contains(t, out, "Pupuk: Urea")
	assert.Contains(t, out, "Piutang Dagang")
}

func TestImport_ScansImportDir(t *testing.T) {
	dir := initDir(t)
	income := "Tanggal,Sumber,Jumlah,Metode,Keterangan,Username\n" +
		"2024-06-01 08:00:00,Penjualan Padi,1500000,Tunai,panen,siti\n" +
		"2024-06-02 08:00:00,Penjualan Padi,0,Tunai,salah,siti\n" +
		"2024-06-03 08:00:00,Penjualan Padi,5,Tunai,,budi\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "pemasukan.csv"), []byte(income), 0o644))

	out := mustRun(t, "--dir", dir, "import")
	assert.Contains(t, out, "pemasukan.csv: imported 1, already imported 0, skipped 1 (other owners), rejected 1")

	_, err := os.Stat(filepath.Join(dir, "import", "processed", "pemasukan.csv"))
	assert.NoError(t, err)

	out = mustRun(t, "--dir", dir, "statement")
	assert.Contains(t, out, "1500000.00")

	out = mustRun(t, "--dir", dir, "import")
	assert.Contains(t, out, "No CSV files")
}

func TestImport_KeepThenReimport(t *testing.T) {
	dir := initDir(t)
	expense := "Tanggal,Kategori,Sub Kategori,Jumlah,Keterangan,Metode,Username\n" +
		"2024-06-02,Pupuk,Urea,300000,,Utang,siti\n" +
		"2024-06-03,Pupuk,Urea,300000,,Utang,siti\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "pengeluaran.csv"), []byte(expense), 0o644))

	out := mustRun(t, "--dir", dir, "import", "--keep")
	assert.Contains(t, out, "imported 2, already imported 0")

	out = mustRun(t, "--dir", dir, "import")
	assert.Contains(t, out, "imported 0, already imported 2")

	out = mustRun(t, "--dir", dir, "statement")
	assert.Contains(t, out, "600000.00")
	assert.NotContains(t, out, "1200000.00")

	out = mustRun(t, "--dir", dir, "verify")
	assert.Contains(t, out, "Journal OK.")
}

func TestImport_ExplicitFileNeedsFormat(t *testing.T) {
	dir := initDir(t)
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Tanggal,Kategori,Sub Kategori,Jumlah,Keterangan,Metode,Username\n2024-06-02,Pupuk,Urea,300000,,Utang,siti\n"), 0o644))

	_, err := runBukutani(t, "--dir", dir, "import", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	out := mustRun(t, "--dir", dir, "import", path, "--format", "pengeluaran")
	assert.Contains(t, out, "imported 1")
	_, err = os.Stat(path)
	assert.NoError(t, err, "explicit files are not moved")
}

func TestVersion(t *testing.T) {
	out := mustRun(t, "--version")
	assert.Contains(t, out, "dev")
}
