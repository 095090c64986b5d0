package canon

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/extracto/internal/model"
)

// ParseAmount reads a money value rounded to cents. Text uses "." for
// thousands and "," for decimals ("1.234,56"); a leading "-" makes it
// negative.
func ParseAmount(c model.Cell) (decimal.Decimal, error) {
	switch c.Kind {
	case model.CellNumber:
		return decimal.NewFromFloat(c.Number).Round(2), nil
	case model.CellEmpty:
		return decimal.Zero, ErrEmpty
	case model.CellDate:
		return decimal.Zero, fmt.Errorf("%w: date is not an amount", ErrUnparseable)
	}
	return parseAmountText(c.Text)
}

func parseAmountText(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}
	negative := strings.HasPrefix(s, "-")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", ErrUnparseable, raw)
	}
	if negative {
		d = d.Neg()
	}
	return d.Round(2), nil
}

// Amount is ParseAmount with failures coerced to 0.00.
func Amount(c model.Cell) decimal.Decimal {
	d, err := ParseAmount(c)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Cents returns d rounded to two places as an integer count of cents.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}
