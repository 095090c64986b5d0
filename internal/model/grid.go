package model

import (
	"strconv"
	"strings"
	"time"
)

// CellKind classifies the value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is one untyped spreadsheet value as read by a loader.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// Text returns a text cell. Blank text is stored as an empty cell.
func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// Date returns a calendar cell.
func Date(t time.Time) Cell { return Cell{Kind: CellDate, Time: t} }

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// String renders the cell as text. Dates use DD/MM/YYYY.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Time.Format("02/01/2006")
	default:
		return ""
	}
}

// Grid is an immutable rectangular matrix of cells, 0-indexed.
type Grid struct {
	rows  [][]Cell
	width int
}

// NewGrid copies rows into a Grid, padding short rows with empty cells.
func NewGrid(rows [][]Cell) Grid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	out := make([][]Cell, len(rows))
	for i, r := range rows {
		row := make([]Cell, width)
		copy(row, r)
		out[i] = row
	}
	return Grid{rows: out, width: width}
}

// TextGrid builds a Grid from plain strings.
func TextGrid(rows [][]string) Grid {
	cells := make([][]Cell, len(rows))
	for i, r := range rows {
		cells[i] = make([]Cell, len(r))
		for j, v := range r {
			cells[i][j] = Text(v)
		}
	}
	return NewGrid(cells)
}

// NumRows returns the number of rows.
func (g Grid) NumRows() int { return len(g.rows) }

// NumCols returns the width of every row.
func (g Grid) NumCols() int { return g.width }

// Cell returns the cell at (row, col), or an empty cell when out of range.
func (g Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= g.width {
		return Cell{}
	}
	return g.rows[row][col]
}

// Row returns a copy of row i.
func (g Grid) Row(i int) []Cell {
	if i < 0 || i >= len(g.rows) {
		return nil
	}
	return append([]Cell(nil), g.rows[i]...)
}
