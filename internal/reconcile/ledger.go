package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/extracto/internal/canon"
	"github.com/cleared-dev/extracto/internal/model"
)

var (
	// ErrLedgerColumns means the reference ledger header lacks a required column.
	ErrLedgerColumns = errors.New("reference ledger columns not found")
	// ErrLedgerNotFound means none of the candidate ledger files exists.
	ErrLedgerNotFound = errors.New("reference ledger not found")
)

// DefaultLedgerHeaderRow is the 0-based row holding the ledger's labels.
const DefaultLedgerHeaderRow = 2

// Ledger column labels, compared after canonicalization.
var (
	ledgerDate        = "Fecha"
	ledgerDescription = "Descripción"
	ledgerAccount     = "Cuenta"
	ledgerAmount      = "Importe"
)

// LedgerRow is one transaction of the reference ledger.
type LedgerRow struct {
	Date        model.Cell
	Description string
	Account     string
	Amount      model.Cell
}

// ReadLedger reads the rows below headerRow. Rows missing a date, a
// description, an account or an amount are dropped.
func ReadLedger(g model.Grid, headerRow int) ([]LedgerRow, error) {
	if headerRow < 0 || headerRow >= g.NumRows() {
		return nil, fmt.Errorf("%w: header row %d outside grid of %d rows", ErrLedgerColumns, headerRow, g.NumRows())
	}

	cols := make(map[string]int)
	for j, c := range g.Row(headerRow) {
		label := canon.Description(c.String())
		if _, seen := cols[label]; !seen && label != "" {
			cols[label] = j
		}
	}
	index := func(name string) (int, error) {
		col, ok := cols[canon.Description(name)]
		if !ok {
			return 0, fmt.Errorf("%w: missing %q", ErrLedgerColumns, name)
		}
		return col, nil
	}

	dateCol, err := index(ledgerDate)
	if err != nil {
		return nil, err
	}
	descCol, err := index(ledgerDescription)
	if err != nil {
		return nil, err
	}
	acctCol, err := index(ledgerAccount)
	if err != nil {
		return nil, err
	}
	amountCol, err := index(ledgerAmount)
	if err != nil {
		return nil, err
	}

	var rows []LedgerRow
	for i := headerRow + 1; i < g.NumRows(); i++ {
		date := g.Cell(i, dateCol)
		desc := g.Cell(i, descCol)
		acct := g.Cell(i, acctCol)
		amount := g.Cell(i, amountCol)
		if date.IsEmpty() || desc.IsEmpty() || acct.IsEmpty() || amount.IsEmpty() {
			continue
		}
		rows = append(rows, LedgerRow{
			Date:        date,
			Description: desc.String(),
			Account:     strings.TrimSpace(acct.String()),
			Amount:      amount,
		})
	}
	return rows, nil
}

// BuildKeysets groups ledger rows by account. Rows whose date or
// description canonicalize to nothing are left out.
func BuildKeysets(rows []LedgerRow) Index {
	ix := make(Index)
	for _, r := range rows {
		k := NewKey(r.Date, r.Description, canon.Amount(r.Amount))
		if !k.Matchable() {
			continue
		}
		ks, ok := ix[r.Account]
		if !ok {
			ks = make(Keyset)
			ix[r.Account] = ks
		}
		ks.Add(k)
	}
	return ix
}
