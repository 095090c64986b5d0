package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "extracto.yaml"

// Config represents the top-level extracto.yaml configuration.
type Config struct {
	Sources  []Source            `yaml:"sources"`
	Owners   map[string][]string `yaml:"owners,omitempty"`
	Accounts []Account           `yaml:"accounts"`
	Ledger   LedgerConfig        `yaml:"ledger"`
	Rates    RatesConfig         `yaml:"rates"`
}

// Source describes one family of statement artifacts.
type Source struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	// HeaderRow pins the header to a 0-based row; nil scans for the date marker.
	HeaderRow      *int                `yaml:"header_row,omitempty"`
	Comma          string              `yaml:"comma,omitempty"`
	Encoding       string              `yaml:"encoding,omitempty"`
	Keywords       map[string][]string `yaml:"keywords,omitempty"`
	SkipMarkers    []string            `yaml:"skip_markers,omitempty"`
	CurrencyColumn string              `yaml:"currency_column,omitempty"`
	Output         OutputConfig        `yaml:"output"`
}

// OutputConfig holds the path templates for each currency table.
// Templates may reference {source}, {owner} and {currency}.
type OutputConfig struct {
	Local string `yaml:"local"`
	USD   string `yaml:"usd"`
}

// Account maps a reference-ledger account label to its filtered artifact.
type Account struct {
	Label string `yaml:"label"`
	File  string `yaml:"file"`
}

// LedgerConfig locates the reference ledger.
type LedgerConfig struct {
	Candidates []string `yaml:"candidates"`
	HeaderRow  int      `yaml:"header_row"`
}

// RatesConfig controls exchange-rate resolution.
type RatesConfig struct {
	Provider  string        `yaml:"provider"` // "dated" or "latest"
	Base      string        `yaml:"base"`
	Target    string        `yaml:"target"`
	Endpoint  string        `yaml:"endpoint,omitempty"`
	Timeout   time.Duration `yaml:"timeout"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Manual    bool          `yaml:"manual"`
}

// Rate providers.
const (
	ProviderDated  = "dated"
	ProviderLatest = "latest"
)

// Load reads an extracto.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate reports the first structural problem in cfg.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
		if s.Pattern == "" {
			return fmt.Errorf("source %s: pattern is required", s.Name)
		}
		if s.Output.Local == "" && s.Output.USD == "" {
			return fmt.Errorf("source %s: at least one output path is required", s.Name)
		}
		if s.HeaderRow != nil && *s.HeaderRow < 0 {
			return fmt.Errorf("source %s: header_row must not be negative", s.Name)
		}
		if len([]rune(s.Comma)) > 1 {
			return fmt.Errorf("source %s: comma must be a single character", s.Name)
		}
	}
	labels := make(map[string]bool, len(c.Accounts))
	for i, a := range c.Accounts {
		label := strings.TrimSpace(a.Label)
		if label == "" || a.File == "" {
			return fmt.Errorf("accounts[%d]: label and file are required", i)
		}
		if labels[label] {
			return fmt.Errorf("accounts[%d]: duplicate label %q", i, label)
		}
		labels[label] = true
	}
	switch c.Rates.Provider {
	case ProviderDated, ProviderLatest:
	default:
		return fmt.Errorf("rates: unknown provider %q", c.Rates.Provider)
	}
	return nil
}

// OutputPath expands the template for currency, returning "" when the
// source writes no table for it.
func (s Source) OutputPath(currency, owner string) string {
	tmpl := s.Output.Local
	if currency == "USD" {
		tmpl = s.Output.USD
	}
	if tmpl == "" {
		return ""
	}
	return strings.NewReplacer(
		"{source}", s.Name,
		"{owner}", owner,
		"{currency}", strings.ToLower(currency),
	).Replace(tmpl)
}

func (c *Config) applyDefaults() {
	if len(c.Ledger.Candidates) == 0 {
		c.Ledger.Candidates = []string{"comprobante.xlsx", "cromprobante.xlsx"}
	}
	if c.Ledger.HeaderRow == 0 {
		c.Ledger.HeaderRow = 2
	}
	if c.Rates.Provider == "" {
		c.Rates.Provider = ProviderDated
	}
	if c.Rates.Base == "" {
		c.Rates.Base = "USD"
	}
	if c.Rates.Target == "" {
		c.Rates.Target = "UYU"
	}
	if c.Rates.Timeout <= 0 {
		c.Rates.Timeout = 10 * time.Second
	}
	if c.Rates.APIKeyEnv == "" {
		c.Rates.APIKeyEnv = "EXTRACTO_RATE_API_KEY"
	}
}

// Default returns a Config reproducing the usual three statement sources
// and four reconciled accounts.
func Default() *Config {
	brouHeader := 17
	cfg := &Config{
		Sources: []Source{
			{
				Name:    "itau",
				Pattern: "Estado_De_Cuenta*.xls",
				Output: OutputConfig{
					Local: "itau_debito_pesos.xlsx",
					USD:   "itau_debito_dolares.xlsx",
				},
			},
			{
				Name:      "brou",
				Pattern:   "Detalle_Movimiento_Cuenta.xls",
				HeaderRow: &brouHeader,
				Output: OutputConfig{
					Local: "brou_detalle_movimientos.xlsx",
					USD:   "brou_detalle_movimientos_dolares.xlsx",
				},
			},
			{
				Name:           "card",
				Pattern:        "movimientos.csv",
				Encoding:       "latin1",
				Keywords:       map[string][]string{"description": {"nombre"}},
				SkipMarkers:    []string{"RECIBO DE PAGO"},
				CurrencyColumn: "Moneda",
				Output: OutputConfig{
					Local: "movimientos_pesos.xlsx",
					USD:   "movimientos_dolares.xlsx",
				},
			},
		},
		Accounts: []Account{
			{Label: "Crédito Itaú $", File: "movimientos_pesos.xlsx"},
			{Label: "Crédito Itaú U$S", File: "movimientos_dolares.xlsx"},
			{Label: "Débito BROU $", File: "brou_detalle_movimientos.xlsx"},
			{Label: "Débito Itaú $ Gonza", File: "itau_debito_pesos.xlsx"},
		},
		Rates: RatesConfig{Manual: true},
	}
	cfg.applyDefaults()
	return cfg
}
