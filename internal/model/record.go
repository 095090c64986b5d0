package model

import "github.com/shopspring/decimal"

// Currency is the denomination of a statement or row.
type Currency string

const (
	CurrencyLocal Currency = "LOCAL"
	CurrencyUSD   Currency = "USD"
)

// UnknownOwner is the owner assigned when no identifying code matches.
const UnknownOwner = "unknown"

// Record is one transaction extracted from a statement grid.
type Record struct {
	Date        string          // DD/MM/YYYY when parseable, raw text otherwise
	Description string          // trimmed, not canonicalized
	Credit      decimal.Decimal // incoming funds, >= 0
	Debit       decimal.Decimal // outgoing funds, >= 0
	Currency    Currency
	Owner       string
	Account     string // reference account the record belongs to, if any
	SourceID    string // artifact label
	Row         int    // 0-based row index in the source grid
}

// Net returns credit minus debit.
func (r Record) Net() decimal.Decimal {
	return r.Credit.Sub(r.Debit)
}
