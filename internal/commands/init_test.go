package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/extracto/internal/config"
	"github.com/cleared-dev/extracto/internal/history"
	"github.com/cleared-dev/extracto/internal/importer"
	"github.com/cleared-dev/extracto/internal/model"
	"github.com/cleared-dev/extracto/internal/output"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "extracto-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "extracto")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/extracto")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runExtracto(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Stdin = nil
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_WritesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := runExtracto(t, "init", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Len(t, cfg.Sources, 3)
	assert.Len(t, cfg.Accounts, 4)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runExtracto(t, "init", dir)
	require.NoError(t, err)

	out, err := runExtracto(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")

	_, err = runExtracto(t, "init", dir, "--force")
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runExtracto(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:")
}

func writeConfig(t *testing.T, dir string) {
	t.Helper()
	cfg := config.Default()
	cfg.Sources = []config.Source{{
		Name:    "brou",
		Pattern: "detalle*.csv",
		Comma:   ";",
		Output:  config.OutputConfig{Local: "brou_detalle_movimientos.xlsx"},
	}}
	cfg.Accounts = []config.Account{{Label: "Débito BROU $", File: "brou_detalle_movimientos.xlsx"}}
	require.NoError(t, config.Save(filepath.Join(dir, config.FileName), cfg))
}

const detalleCSV = `Fecha;Descripción;Débito;Crédito
10/03/2024;Compra Farmacia;450,30;
11/03/2024;Sueldo;;1.000,00
`

func TestStatements_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "detalle_marzo.csv"), []byte(detalleCSV), 0o644))

	out, err := runExtracto(t, "statements", "--dir", dir, "--no-prompt")
	require.NoError(t, err, out)
	assert.Contains(t, out, "wrote brou_detalle_movimientos.xlsx (2 rows)")

	g, err := importer.DefaultRegistry().LoadFile(filepath.Join(dir, "brou_detalle_movimientos.xlsx"))
	require.NoError(t, err)
	require.Equal(t, 3, g.NumRows())
	assert.Equal(t, "Compra Farmacia", g.Cell(1, 1).String())
}

func TestStatements_AllSkippedFails(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "detalle_vacio.csv"), []byte("sin encabezado\n"), 0o644))

	out, err := runExtracto(t, "statements", "--dir", dir, "--no-prompt")
	require.Error(t, err)
	assert.Contains(t, out, "every artifact was skipped")
}

func TestFilter_NoLedger(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)

	out, err := runExtracto(t, "filter", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "reference ledger not found")
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "detalle_marzo.csv"), []byte(detalleCSV), 0o644))

	// Debit rows carry a negative net amount in the ledger.
	ledger := model.NewGrid([][]model.Cell{
		{model.Text("Comprobante")},
		{},
		{model.Text("Fecha"), model.Text("Descripción"), model.Text("Cuenta"), model.Text("Importe")},
		{model.Text("2024-03-10"), model.Text("COMPRA FARMACIA"), model.Text("Débito BROU $"), model.Number(-450.30)},
	})
	require.NoError(t, output.SaveXLSX(filepath.Join(dir, "comprobante.xlsx"), ledger))

	out, err := runExtracto(t, "run", "--dir", dir, "--no-prompt")
	require.NoError(t, err, out)
	assert.Contains(t, out, "removed 1 of 2 rows")

	g, err := importer.DefaultRegistry().LoadFile(filepath.Join(dir, "brou_detalle_movimientos.xlsx"))
	require.NoError(t, err)
	require.Equal(t, 2, g.NumRows())
	assert.Equal(t, "Sueldo", g.Cell(1, 1).String())

	entries, err := history.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, history.ActionTableWritten, entries[0].Action)
	assert.Equal(t, history.ActionRowsRemoved, entries[1].Action)
}

func TestRun_WithoutLedger(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "detalle_marzo.csv"), []byte(detalleCSV), 0o644))

	out, err := runExtracto(t, "run", "--dir", dir, "--no-prompt")
	require.NoError(t, err, out)
	assert.Contains(t, out, "filter skipped")
}

func TestStatements_JSONLogs(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "detalle_marzo.csv"), []byte(detalleCSV), 0o644))
	// A plain file where the logs directory belongs makes the history write fail.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs"), nil, 0o644))

	out, err := runExtracto(t, "statements", "--dir", dir, "--no-prompt", "--log-format", "json")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"message":"failed to write history"`)
	assert.Contains(t, out, "wrote brou_detalle_movimientos.xlsx (2 rows)")
}

func TestUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)

	out, err := runExtracto(t, "statements", "--dir", dir, "--log-format", "xml")
	require.Error(t, err)
	assert.Contains(t, out, `unknown log format "xml"`)
}
