// Package accounts maps reference-ledger account labels to the artifacts
// filtered against them.
package accounts

import (
	"sort"
	"strings"

	"github.com/cleared-dev/extracto/internal/config"
)

// Service provides in-memory lookup over the configured accounts.
type Service struct {
	accounts []config.Account
	byLabel  map[string]config.Account
}

// NewService creates a Service from a slice of accounts. A later entry
// with the same label replaces an earlier one in place.
func NewService(accounts []config.Account) *Service {
	byLabel := make(map[string]config.Account, len(accounts))
	var order []string
	for _, a := range accounts {
		k := key(a.Label)
		if _, ok := byLabel[k]; !ok {
			order = append(order, k)
		}
		byLabel[k] = a
	}
	unique := make([]config.Account, len(order))
	for i, k := range order {
		unique[i] = byLabel[k]
	}
	return &Service{accounts: unique, byLabel: byLabel}
}

// All returns one account per label in configuration order.
func (s *Service) All() []config.Account {
	return s.accounts
}

// Exists reports whether a ledger label is configured.
func (s *Service) Exists(label string) bool {
	_, ok := s.byLabel[key(label)]
	return ok
}

// Unknown returns the labels that are not configured, sorted.
func (s *Service) Unknown(labels []string) []string {
	var out []string
	for _, l := range labels {
		if !s.Exists(l) {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

func key(label string) string {
	return strings.TrimSpace(label)
}
