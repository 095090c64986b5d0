// Package extract finds the transaction table inside a loosely laid out
// statement grid and turns its rows into records.
package extract

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/extracto/internal/canon"
	"github.com/cleared-dev/extracto/internal/model"
)

// BalanceMarkers identify opening and closing balance rows.
var BalanceMarkers = []string{"SALDO ANTERIOR", "SALDO FINAL"}

// Options configures an Extractor for one kind of source.
type Options struct {
	Locator        HeaderLocator // nil scans for DateMarker
	Roles          RoleTable     // nil uses DefaultRoleTable
	SkipMarkers    []string      // extra description markers, matched upper-case
	CurrencyColumn string        // header label of a per-row currency column
	OwnerCodes     map[string][]string
}

// Layout is what the extractor learned about a grid.
type Layout struct {
	HeaderRow   int
	Roles       Roles
	Currency    model.Currency
	CurrencyCol int // -1 when the whole grid shares Currency
	Owner       string
}

// Statement is the result of extracting one artifact.
type Statement struct {
	Label   string
	Layout  Layout
	Records []model.Record
}

// Extractor turns statement grids into records.
type Extractor struct {
	opts    Options
	markers []string
	log     zerolog.Logger
}

// New creates an Extractor.
func New(opts Options, log zerolog.Logger) *Extractor {
	if opts.Locator == nil {
		opts.Locator = ScanLocator{Marker: DateMarker}
	}
	if opts.Roles == nil {
		opts.Roles = DefaultRoleTable
	}
	markers := append([]string(nil), BalanceMarkers...)
	for _, m := range opts.SkipMarkers {
		markers = append(markers, strings.ToUpper(m))
	}
	return &Extractor{opts: opts, markers: markers, log: log}
}

// Inspect locates the header, infers column roles and tags the grid with
// its currency and owner.
func (e *Extractor) Inspect(label string, g model.Grid) (Layout, error) {
	headerRow, err := e.opts.Locator.Locate(g)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", label, err)
	}
	header := g.Row(headerRow)
	roles, err := InferColumnRoles(header, e.opts.Roles)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", label, err)
	}

	layout := Layout{
		HeaderRow:   headerRow,
		Roles:       roles,
		Currency:    DetectCurrency(g),
		CurrencyCol: -1,
		Owner:       DetectOwner(label, g, e.opts.OwnerCodes),
	}
	if e.opts.CurrencyColumn != "" {
		col, ok := findColumn(header, e.opts.CurrencyColumn)
		if !ok {
			return Layout{}, fmt.Errorf("%s: %w: no %q column", label, ErrColumnsNotFound, e.opts.CurrencyColumn)
		}
		layout.CurrencyCol = col
	}
	return layout, nil
}

// Extract inspects g and collects all of its records.
func (e *Extractor) Extract(label string, g model.Grid) (Statement, error) {
	layout, err := e.Inspect(label, g)
	if err != nil {
		return Statement{}, err
	}
	var records []model.Record
	for rec := range e.Records(label, g, layout) {
		records = append(records, rec)
	}
	e.log.Info().
		Str("artifact", label).
		Int("header_row", layout.HeaderRow).
		Str("currency", string(layout.Currency)).
		Str("owner", layout.Owner).
		Int("records", len(records)).
		Msg("extracted statement")
	return Statement{Label: label, Layout: layout, Records: records}, nil
}

// Records yields one record per transaction row below the header. The
// sequence reads g afresh on every iteration.
func (e *Extractor) Records(label string, g model.Grid, layout Layout) iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		for i := layout.HeaderRow + 1; i < g.NumRows(); i++ {
			rec, ok := e.record(label, g, i, layout)
			if !ok {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

func (e *Extractor) record(label string, g model.Grid, row int, layout Layout) (model.Record, bool) {
	dateCol, _ := layout.Roles.Column(RoleDate)
	descCol, _ := layout.Roles.Column(RoleDescription)

	date := canon.DisplayDate(g.Cell(row, dateCol))
	if date == "" {
		return model.Record{}, false
	}

	desc := strings.TrimSpace(g.Cell(row, descCol).String())
	upper := strings.ToUpper(desc)
	for _, m := range e.markers {
		if strings.Contains(upper, m) {
			return model.Record{}, false
		}
	}

	credit, debit := decimal.Zero, decimal.Zero
	if col, ok := layout.Roles.Column(RoleAmount); ok {
		amount := e.amount(label, g, row, col)
		if amount.IsNegative() {
			credit = amount.Abs()
		} else {
			debit = amount
		}
	} else {
		debitCol, _ := layout.Roles.Column(RoleDebit)
		creditCol, _ := layout.Roles.Column(RoleCredit)
		debit = e.amount(label, g, row, debitCol)
		credit = e.amount(label, g, row, creditCol)
	}

	if credit.IsZero() && debit.IsZero() && desc == "" {
		return model.Record{}, false
	}

	currency := layout.Currency
	if layout.CurrencyCol >= 0 {
		v := g.Cell(row, layout.CurrencyCol).String()
		switch {
		case IsUSD(v):
			currency = model.CurrencyUSD
		case IsLocal(v):
			currency = model.CurrencyLocal
		default:
			e.log.Warn().Str("artifact", label).Int("row", row).Str("currency", v).Msg("row with unrecognized currency dropped")
			return model.Record{}, false
		}
	}

	return model.Record{
		Date:        date,
		Description: desc,
		Credit:      credit,
		Debit:       debit,
		Currency:    currency,
		Owner:       layout.Owner,
		SourceID:    label,
		Row:         row,
	}, true
}

// amount reads a money cell. Unreadable values become zero and are logged.
func (e *Extractor) amount(label string, g model.Grid, row, col int) decimal.Decimal {
	c := g.Cell(row, col)
	d, err := canon.ParseAmount(c)
	if err != nil {
		if c.Kind == model.CellDate {
			e.log.Warn().Str("artifact", label).Int("row", row).Int("column", col).Time("value", c.Time).
				Msg("date in amount column, the cell's number format was read as a date; amount coerced to zero")
		} else if !errors.Is(err, canon.ErrEmpty) {
			e.log.Warn().Err(err).Str("artifact", label).Int("row", row).Int("column", col).Msg("amount coerced to zero")
		}
		return decimal.Zero
	}
	return d
}

func findColumn(header []model.Cell, label string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(label))
	for i, c := range header {
		if strings.Contains(strings.ToLower(strings.TrimSpace(c.String())), want) {
			return i, true
		}
	}
	return 0, false
}

// ExtractRecords yields the records below headerRow using the default
// options and no logging.
func ExtractRecords(g model.Grid, headerRow int, roles Roles) iter.Seq[model.Record] {
	e := New(Options{}, zerolog.Nop())
	layout := Layout{HeaderRow: headerRow, Roles: roles, Currency: model.CurrencyLocal, CurrencyCol: -1, Owner: model.UnknownOwner}
	return e.Records("", g, layout)
}
