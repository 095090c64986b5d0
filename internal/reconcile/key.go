// Package reconcile removes statement records that the reference ledger
// already holds, matching on an exact (date, description, amount) key.
package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/extracto/internal/canon"
	"github.com/cleared-dev/extracto/internal/model"
)

// Key is the canonical identity of a transaction. It is only used for set
// membership.
type Key struct {
	Date        string // YYYY-MM-DD, "" when unknown
	Description string
	Cents       int64
}

// NewKey canonicalizes the three fields of a transaction.
func NewKey(date model.Cell, description string, amount decimal.Decimal) Key {
	return Key{
		Date:        canon.Date(date),
		Description: canon.Description(description),
		Cents:       canon.Cents(amount),
	}
}

// RecordKey builds the key of a statement record from its net amount.
func RecordKey(r model.Record) Key {
	return NewKey(model.Text(r.Date), r.Description, r.Net())
}

// Matchable reports whether the key can ever be found in a keyset.
func (k Key) Matchable() bool {
	return k.Date != "" && k.Description != ""
}

// Keyset is the set of keys recorded for one account.
type Keyset map[Key]struct{}

// Add inserts k. Duplicates collapse into one member.
func (ks Keyset) Add(k Key) {
	ks[k] = struct{}{}
}

// Contains reports whether k is a member.
func (ks Keyset) Contains(k Key) bool {
	_, ok := ks[k]
	return ok
}

// Index holds one keyset per account label.
type Index map[string]Keyset

// For returns the keyset of account, or nil.
func (ix Index) For(account string) Keyset {
	return ix[account]
}

// Accounts returns the number of accounts with at least one key.
func (ix Index) Accounts() int {
	n := 0
	for _, ks := range ix {
		if len(ks) > 0 {
			n++
		}
	}
	return n
}

// Labels returns the account labels present in the index, sorted.
func (ix Index) Labels() []string {
	labels := make([]string, 0, len(ix))
	for l := range ix {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
