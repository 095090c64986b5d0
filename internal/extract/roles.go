package extract

import (
	"fmt"
	"strings"

	"github.com/cleared-dev/extracto/internal/model"
)

// Role is the meaning of a statement column.
type Role int

const (
	RoleDate Role = iota
	RoleDescription
	RoleAmount
	RoleDebit
	RoleCredit
)

func (r Role) String() string {
	switch r {
	case RoleDate:
		return "date"
	case RoleDescription:
		return "description"
	case RoleAmount:
		return "amount"
	case RoleDebit:
		return "debit"
	case RoleCredit:
		return "credit"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole is the inverse of Role.String.
func ParseRole(name string) (Role, error) {
	for _, r := range []Role{RoleDate, RoleDescription, RoleAmount, RoleDebit, RoleCredit} {
		if strings.EqualFold(strings.TrimSpace(name), r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown column role %q", name)
}

// RoleKeywords lists the lowercase substrings that identify a role.
type RoleKeywords struct {
	Role     Role
	Keywords []string
}

// RoleTable is consulted in order; earlier roles claim columns first.
type RoleTable []RoleKeywords

// DefaultRoleTable is the keyword table for Spanish-language statements.
var DefaultRoleTable = RoleTable{
	{RoleDate, []string{"fecha"}},
	{RoleDescription, []string{"descripcion", "descripción", "detalle", "concepto"}},
	{RoleAmount, []string{"importe", "monto"}},
	{RoleDebit, []string{"debito", "débito"}},
	{RoleCredit, []string{"credito", "crédito"}},
}

// With returns a copy of t with extra keywords appended to the given roles.
func (t RoleTable) With(extra map[Role][]string) RoleTable {
	out := make(RoleTable, len(t))
	for i, rk := range t {
		kw := append([]string(nil), rk.Keywords...)
		for _, k := range extra[rk.Role] {
			kw = append(kw, strings.ToLower(k))
		}
		out[i] = RoleKeywords{Role: rk.Role, Keywords: kw}
	}
	return out
}

// Roles maps each resolved role to its column index.
type Roles map[Role]int

// Column returns the column for role r.
func (r Roles) Column(role Role) (int, bool) {
	col, ok := r[role]
	return col, ok
}

// HasSplitAmounts reports whether separate debit and credit columns exist.
func (r Roles) HasSplitAmounts() bool {
	_, d := r[RoleDebit]
	_, c := r[RoleCredit]
	return d && c
}

// Resolve assigns each role the first unclaimed header cell whose lowercased
// label contains one of its keywords. It does not validate the result.
func (t RoleTable) Resolve(header []model.Cell) Roles {
	labels := make([]string, len(header))
	for i, c := range header {
		labels[i] = strings.ToLower(strings.TrimSpace(c.String()))
	}

	roles := make(Roles)
	claimed := make(map[int]bool)
	for _, rk := range t {
		for col, label := range labels {
			if claimed[col] || label == "" {
				continue
			}
			if containsAny(label, rk.Keywords) {
				roles[rk.Role] = col
				claimed[col] = true
				break
			}
		}
	}
	return roles
}

// InferColumnRoles resolves header against table and checks that a date,
// a description and either an amount or a debit/credit pair were found.
func InferColumnRoles(header []model.Cell, table RoleTable) (Roles, error) {
	roles := table.Resolve(header)
	if _, ok := roles[RoleDate]; !ok {
		return nil, fmt.Errorf("%w: no date column", ErrColumnsNotFound)
	}
	if _, ok := roles[RoleDescription]; !ok {
		return nil, fmt.Errorf("%w: no description column", ErrColumnsNotFound)
	}
	if _, ok := roles[RoleAmount]; !ok && !roles.HasSplitAmounts() {
		return nil, fmt.Errorf("%w: no amount column and no debit/credit pair", ErrColumnsNotFound)
	}
	return roles, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
