package extract

import (
	"sort"
	"strings"

	"github.com/cleared-dev/extracto/internal/model"
)

const (
	currencyScanRows = 15
	currencyScanCols = 10
)

var (
	usdTokens   = []string{"DÓLAR", "DOLAR", "USD"}
	localTokens = []string{"PESO", "UYU"}
)

// IsUSD reports whether text names the US dollar.
func IsUSD(text string) bool {
	return containsToken(text, usdTokens)
}

// IsLocal reports whether text names the local currency.
func IsLocal(text string) bool {
	return containsToken(text, localTokens)
}

func containsToken(text string, tokens []string) bool {
	upper := strings.ToUpper(text)
	for _, tok := range tokens {
		if strings.Contains(upper, tok) {
			return true
		}
	}
	return false
}

// DetectCurrency looks for a dollar token in the top-left corner of g.
func DetectCurrency(g model.Grid) model.Currency {
	rows := min(currencyScanRows, g.NumRows())
	cols := min(currencyScanCols, g.NumCols())
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c := g.Cell(i, j)
			if c.IsEmpty() {
				continue
			}
			if IsUSD(c.String()) {
				return model.CurrencyUSD
			}
		}
	}
	return model.CurrencyLocal
}

// DetectOwner matches identifying codes against the artifact label first and
// then against every cell. Owners are tried in key order.
func DetectOwner(label string, g model.Grid, codes map[string][]string) string {
	owners := make([]string, 0, len(codes))
	for owner := range codes {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	for _, owner := range owners {
		if matchesAny(label, codes[owner]) {
			return owner
		}
	}
	for _, owner := range owners {
		for i := 0; i < g.NumRows(); i++ {
			for j := 0; j < g.NumCols(); j++ {
				c := g.Cell(i, j)
				if c.IsEmpty() {
					continue
				}
				if matchesAny(c.String(), codes[owner]) {
					return owner
				}
			}
		}
	}
	return model.UnknownOwner
}

func matchesAny(s string, codes []string) bool {
	for _, code := range codes {
		if code != "" && strings.Contains(s, code) {
			return true
		}
	}
	return false
}
