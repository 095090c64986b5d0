package canon

import (
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/extracto/internal/model"
)

const (
	isoLayout     = "2006-01-02"
	displayLayout = "02/01/2006"
)

// Accepted text layouts, tried in order. DD/MM/YY must come before
// DD/MM/YYYY: a four-digit year leaves trailing text under the short layout.
var dateLayouts = []string{
	"2/1/06",
	"2/1/2006",
	isoLayout,
}

// ParseDate reads a calendar value from a cell.
func ParseDate(c model.Cell) (time.Time, error) {
	switch c.Kind {
	case model.CellDate:
		return c.Time, nil
	case model.CellEmpty:
		return time.Time{}, ErrEmpty
	case model.CellNumber:
		return time.Time{}, fmt.Errorf("%w: number %v is not a date", ErrUnparseable, c.Number)
	}

	s := strings.TrimSpace(c.Text)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrUnparseable, s)
}

// Date returns the ISO form (YYYY-MM-DD) of a cell, or "" when it does not
// hold a recognizable date.
func Date(c model.Cell) string {
	t, err := ParseDate(c)
	if err != nil {
		return ""
	}
	return t.Format(isoLayout)
}

// DisplayDate returns DD/MM/YYYY for a recognizable date and the original
// trimmed text otherwise. Empty cells yield "".
func DisplayDate(c model.Cell) string {
	t, err := ParseDate(c)
	if err == nil {
		return t.Format(displayLayout)
	}
	return strings.TrimSpace(c.String())
}
