// Package sheet reads semi-structured, hand-maintained spreadsheets: it
// locates the header row, maps drifting column labels to indices, and folds
// raw rows into logical records.
package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is a named 2-D array of raw cell values. No schema is assumed; cells
// are whatever excelize formatted them as.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook holds every sheet of one spreadsheet file, loaded eagerly so the
// file handle can be released before the import loop starts.
type Workbook struct {
	Path   string
	Sheets []Sheet
}

// OpenWorkbook loads all sheets of an xlsx file.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("no sheets found in %s", path)
	}

	wb := &Workbook{Path: path}
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

// Cell returns the trimmed value at col of row, or "" when the row is too
// short. Hand-authored sheets routinely have ragged rows.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return trim(row[col])
}

// IsEmptyRow reports whether every cell of the row is blank.
func IsEmptyRow(row []string) bool {
	for _, cell := range row {
		if trim(cell) != "" {
			return false
		}
	}
	return true
}
