package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/extracto/internal/model"
)

// SheetName is the sheet every workbook is written to.
const SheetName = "Sheet1"

// WriteXLSX writes g as a single-sheet workbook.
func WriteXLSX(w io.Writer, g model.Grid) error {
	f, err := build(g)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes g to path, creating parent directories.
func SaveXLSX(path string, g model.Grid) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := build(g)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func build(g model.Grid) (*excelize.File, error) {
	f := excelize.NewFile()
	for i := 0; i < g.NumRows(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := make([]any, g.NumCols())
		for j := range values {
			values[j] = cellValue(g.Cell(i, j))
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return f, nil
}

func cellValue(c model.Cell) any {
	switch c.Kind {
	case model.CellText:
		return c.Text
	case model.CellNumber:
		return c.Number
	case model.CellDate:
		return c.Time
	default:
		return nil
	}
}
