package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/extracto/internal/model"
)

// XLSXLoader reads the first sheet of an Office Open XML workbook. Numeric
// cells become numbers and date-formatted cells become dates.
type XLSXLoader struct{}

// Format returns the file extension handled.
func (l *XLSXLoader) Format() string { return "xlsx" }

// Load implements Loader.
func (l *XLSXLoader) Load(r io.ReadSeeker) (model.Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Grid{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return model.Grid{}, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return model.Grid{}, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Grid{}, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}

	rows := make([][]model.Cell, len(formatted))
	for i, row := range formatted {
		rows[i] = make([]model.Cell, len(row))
		for j, text := range row {
			rawText := text
			if i < len(raw) && j < len(raw[i]) {
				rawText = raw[i][j]
			}
			rows[i][j] = xlsxCell(f, sheet, i, j, text, rawText)
		}
	}
	return model.NewGrid(rows), nil
}

func xlsxCell(f *excelize.File, sheet string, row, col int, text, raw string) model.Cell {
	if strings.TrimSpace(raw) == "" {
		return model.Text(text)
	}
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.Text(text)
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return model.Number(num)
	}
	if typ, err := f.GetCellType(sheet, axis); err == nil && (typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString) {
		return model.Text(text)
	}
	if isDateStyle(f, sheet, axis) {
		if t, err := excelize.ExcelDateToTime(num, false); err == nil {
			return model.Date(t)
		}
	}
	return model.Number(num)
}

// isDateStyle reports whether the cell's number format renders a date.
func isDateStyle(f *excelize.File, sheet, axis string) bool {
	id, err := f.GetCellStyle(sheet, axis)
	if err != nil || id == 0 {
		return false
	}
	style, err := f.GetStyle(id)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return looksLikeDateFormat(*style.CustomNumFmt)
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22:
		return true
	case style.NumFmt >= 45 && style.NumFmt <= 47:
		return true
	}
	return false
}

func looksLikeDateFormat(format string) bool {
	lower := strings.ToLower(format)
	return (strings.Contains(lower, "d") && strings.Contains(lower, "m")) || strings.Contains(lower, "yy")
}
