package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/extracto/internal/model"
)

var (
	// ErrHeaderNotFound means no row of the grid could serve as a header.
	ErrHeaderNotFound = errors.New("header row not found")
	// ErrColumnsNotFound means the header lacks a date, a description or
	// a usable amount representation.
	ErrColumnsNotFound = errors.New("required columns not found")
)

// DateMarker is the substring that identifies a header row.
const DateMarker = "fecha"

// HeaderLocator finds the index of the header row in a grid.
type HeaderLocator interface {
	Locate(g model.Grid) (int, error)
}

// ScanLocator returns the first row with a cell containing Marker,
// case-insensitively.
type ScanLocator struct {
	Marker string
}

// Locate implements HeaderLocator.
func (l ScanLocator) Locate(g model.Grid) (int, error) {
	marker := strings.ToLower(l.Marker)
	if marker == "" {
		marker = DateMarker
	}
	for i := 0; i < g.NumRows(); i++ {
		for j := 0; j < g.NumCols(); j++ {
			c := g.Cell(i, j)
			if c.Kind != model.CellText {
				continue
			}
			if strings.Contains(strings.ToLower(strings.TrimSpace(c.Text)), marker) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: no cell contains %q", ErrHeaderNotFound, marker)
}

// FixedLocator returns a known row offset for sources with a stable layout.
type FixedLocator struct {
	Row int
}

// Locate implements HeaderLocator.
func (l FixedLocator) Locate(g model.Grid) (int, error) {
	if l.Row < 0 || l.Row >= g.NumRows() {
		return 0, fmt.Errorf("%w: row %d outside grid of %d rows", ErrHeaderNotFound, l.Row, g.NumRows())
	}
	return l.Row, nil
}

// LocateHeaderRow scans g for the first row mentioning the date marker.
func LocateHeaderRow(g model.Grid) (int, error) {
	return ScanLocator{Marker: DateMarker}.Locate(g)
}
