// Package output builds and writes the workbooks produced by a run.
package output

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/extracto/internal/model"
)

// Header is the column order of every statement table.
var Header = []string{"Fecha", "Descripcion", "Creditos", "Debitos", "Cotizacion"}

const (
	numFields = 5
	colDate   = 0
	colDesc   = 1
	colCredit = 2
	colDebit  = 3
	colRate   = 4
)

// MarshalRecord converts a record to a table row carrying rate.
func MarshalRecord(r model.Record, rate decimal.Decimal) []model.Cell {
	row := make([]model.Cell, numFields)
	row[colDate] = model.Text(r.Date)
	row[colDesc] = model.Text(r.Description)
	row[colCredit] = money(r.Credit)
	row[colDebit] = money(r.Debit)
	row[colRate] = model.Number(rate.InexactFloat64())
	return row
}

// StatementGrid lays records out under Header, every row sharing rate.
func StatementGrid(records []model.Record, rate decimal.Decimal) model.Grid {
	rows := make([][]model.Cell, 0, len(records)+1)
	header := make([]model.Cell, numFields)
	for i, h := range Header {
		header[i] = model.Text(h)
	}
	rows = append(rows, header)
	for _, r := range records {
		rows = append(rows, MarshalRecord(r, rate))
	}
	return model.NewGrid(rows)
}

// Subset returns the header row of g followed by the given rows, in order.
func Subset(g model.Grid, rows []int) model.Grid {
	out := make([][]model.Cell, 0, len(rows)+1)
	if g.NumRows() > 0 {
		out = append(out, g.Row(0))
	}
	for _, i := range rows {
		if i <= 0 || i >= g.NumRows() {
			continue
		}
		out = append(out, g.Row(i))
	}
	return model.NewGrid(out)
}

func money(d decimal.Decimal) model.Cell {
	return model.Number(d.Round(2).InexactFloat64())
}
