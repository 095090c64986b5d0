package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Owners = map[string][]string{"gonza": {"4521", "CI 1.234.567-8"}}

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Sources, got.Sources)
	assert.Equal(t, cfg.Accounts, got.Accounts)
	assert.Equal(t, cfg.Owners, got.Owners)
	assert.Equal(t, cfg.Ledger, got.Ledger)
	assert.Equal(t, cfg.Rates, got.Rates)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	require.Len(t, cfg.Sources, 3)
	assert.Equal(t, "itau", cfg.Sources[0].Name)
	assert.Nil(t, cfg.Sources[0].HeaderRow)
	require.NotNil(t, cfg.Sources[1].HeaderRow)
	assert.Equal(t, 17, *cfg.Sources[1].HeaderRow)
	assert.Equal(t, "latin1", cfg.Sources[2].Encoding)
	assert.Equal(t, "Moneda", cfg.Sources[2].CurrencyColumn)

	require.Len(t, cfg.Accounts, 4)
	assert.Equal(t, "Débito Itaú $ Gonza", cfg.Accounts[3].Label)
	assert.Equal(t, []string{"comprobante.xlsx", "cromprobante.xlsx"}, cfg.Ledger.Candidates)
	assert.Equal(t, 2, cfg.Ledger.HeaderRow)
	assert.Equal(t, ProviderDated, cfg.Rates.Provider)
	assert.Equal(t, 10*time.Second, cfg.Rates.Timeout)
	assert.Equal(t, "EXTRACTO_RATE_API_KEY", cfg.Rates.APIKeyEnv)
	assert.True(t, cfg.Rates.Manual)
	require.NoError(t, cfg.Validate())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	minimal := "sources:\n  - name: brou\n    pattern: \"*.xls\"\n    output:\n      local: out.xlsx\n"
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Rates.Base)
	assert.Equal(t, "UYU", cfg.Rates.Target)
	assert.Equal(t, 2, cfg.Ledger.HeaderRow)
	assert.Equal(t, ProviderDated, cfg.Rates.Provider)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "sources:\n  - pattern: x\n    output: {local: a}\n", "name is required"},
		{"missing pattern", "sources:\n  - name: a\n    output: {local: a}\n", "pattern is required"},
		{"no outputs", "sources:\n  - name: a\n    pattern: x\n", "output path"},
		{"duplicate", "sources:\n  - {name: a, pattern: x, output: {local: a}}\n  - {name: a, pattern: y, output: {local: b}}\n", "duplicate"},
		{"bad comma", "sources:\n  - {name: a, pattern: x, comma: ';;', output: {local: a}}\n", "single character"},
		{"bad account", "accounts:\n  - label: A\n", "label and file"},
		{"duplicate account", "accounts:\n  - {label: A, file: a.xlsx}\n  - {label: ' A', file: b.xlsx}\n", "duplicate label"},
		{"bad provider", "rates:\n  provider: bcu\n", "unknown provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOutputPath(t *testing.T) {
	src := Source{Name: "itau", Output: OutputConfig{Local: "{source}_{owner}_{currency}.xlsx"}}

	assert.Equal(t, "itau_gonza_local.xlsx", src.OutputPath("LOCAL", "gonza"))
	assert.Empty(t, src.OutputPath("USD", "gonza"))
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "pattern: Estado_De_Cuenta*.xls")
	assert.Contains(t, contents, "header_row: 17")
	assert.Contains(t, contents, "provider: dated")
	assert.Contains(t, contents, "timeout: 10s")
}
