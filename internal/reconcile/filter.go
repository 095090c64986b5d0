package reconcile

import (
	"fmt"

	"github.com/cleared-dev/extracto/internal/canon"
	"github.com/cleared-dev/extracto/internal/extract"
	"github.com/cleared-dev/extracto/internal/model"
)

// Filter drops every record whose key is in ks and returns the rest in
// order along with the number removed. Records with an unmatchable key are
// always kept.
func Filter(records []model.Record, ks Keyset) ([]model.Record, int) {
	return partition(records, func(model.Record) Keyset { return ks })
}

// Filter tests each record only against the keyset of its own account.
func (ix Index) Filter(records []model.Record) ([]model.Record, int) {
	return partition(records, func(r model.Record) Keyset { return ix.For(r.Account) })
}

func partition(records []model.Record, keyset func(model.Record) Keyset) ([]model.Record, int) {
	kept := make([]model.Record, 0, len(records))
	removed := 0
	for _, r := range records {
		k := RecordKey(r)
		if k.Matchable() && keyset(r).Contains(k) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	return kept, removed
}

// TableRecords reads a previously written statement table (header on the
// first row) without dropping any row, so that the kept rows can be
// written back unchanged.
func TableRecords(g model.Grid, account string) ([]model.Record, error) {
	if g.NumRows() == 0 {
		return nil, nil
	}
	roles, err := extract.InferColumnRoles(g.Row(0), extract.DefaultRoleTable)
	if err != nil {
		return nil, fmt.Errorf("reading table for %q: %w", account, err)
	}
	dateCol, _ := roles.Column(extract.RoleDate)
	descCol, _ := roles.Column(extract.RoleDescription)

	records := make([]model.Record, 0, g.NumRows()-1)
	for i := 1; i < g.NumRows(); i++ {
		r := model.Record{
			Date:        canon.DisplayDate(g.Cell(i, dateCol)),
			Description: g.Cell(i, descCol).String(),
			Account:     account,
			Row:         i,
		}
		if col, ok := roles.Column(extract.RoleAmount); ok {
			amount := canon.Amount(g.Cell(i, col))
			if amount.IsNegative() {
				r.Credit = amount.Abs()
			} else {
				r.Debit = amount
			}
		} else {
			debitCol, _ := roles.Column(extract.RoleDebit)
			creditCol, _ := roles.Column(extract.RoleCredit)
			r.Debit = canon.Amount(g.Cell(i, debitCol))
			r.Credit = canon.Amount(g.Cell(i, creditCol))
		}
		records = append(records, r)
	}
	return records, nil
}
