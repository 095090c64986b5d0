package importer

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/extracto/internal/model"
)

// extrame/xls renders cells with a built-in date format (14-17, 22, ...) as
// "YYYY.MM", dropping the day.
var monthOnly = regexp.MustCompile(`^(19|20)\d{2}\.(0[1-9]|1[0-2])$`)

// XLSLoader reads the first sheet of a legacy BIFF workbook.
type XLSLoader struct {
	Charset string // defaults to utf-8
	Log     zerolog.Logger
}

// Format returns the file extension handled.
func (l *XLSLoader) Format() string { return "xls" }

// Load implements Loader. Cells holding a plain decimal number become
// numeric cells, RFC3339 timestamps become dates, and everything else stays
// text.
func (l *XLSLoader) Load(r io.ReadSeeker) (model.Grid, error) {
	charset := l.Charset
	if charset == "" {
		charset = "utf-8"
	}
	wb, err := xls.OpenReader(r, charset)
	if err != nil {
		return model.Grid{}, fmt.Errorf("opening XLS workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return model.Grid{}, fmt.Errorf("XLS workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return model.Grid{}, fmt.Errorf("could not read first XLS sheet")
	}

	rows := make([][]model.Cell, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]model.Cell, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = l.cell(i, j, row.Col(j))
		}
		rows[i] = cells
	}
	return model.NewGrid(rows), nil
}

// cell converts one rendered value, warning about values the reader has
// already damaged.
func (l *XLSLoader) cell(row, col int, s string) model.Cell {
	c := xlsCell(s)
	if c.Kind == model.CellNumber && monthOnly.MatchString(strings.TrimSpace(s)) {
		l.Log.Warn().Int("row", row).Int("column", col).Str("value", strings.TrimSpace(s)).
			Msg("value looks like a month-only date; the day of a built-in XLS date format is lost")
	}
	return c
}

func xlsCell(s string) model.Cell {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return model.Cell{}
	}
	// Custom-format numeric cells arrive as RFC3339 timestamps.
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return model.Date(t)
	}
	// European-formatted text ("1.234,56") never parses here.
	if !strings.Contains(trimmed, ",") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return model.Number(f)
		}
	}
	return model.Text(s)
}
