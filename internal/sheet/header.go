package sheet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHeaderNotFound means no row inside the scan window carried all marker
// labels. The caller skips the sheet; it is fatal only when there is no other
// sheet to fall back to.
var ErrHeaderNotFound = errors.New("header row not found")

// HeaderRow maps drifting, hand-typed column labels to indices for one sheet.
// Lookup is case-insensitive and substring-tolerant: a configured label
// "Reg Date" matches a header cell "Reg Date (dd/mm/yyyy)". Callers must
// order lookups from most specific to least specific when two labels share a
// substring.
type HeaderRow struct {
	Index int
	cells []string
}

// ResolveHeader scans the first window rows for the first row containing all
// marker labels (case-insensitive substring match per cell).
func ResolveHeader(rows [][]string, markers []string, window int) (*HeaderRow, error) {
	if window <= 0 || window > len(rows) {
		window = len(rows)
	}

	for i := 0; i < window; i++ {
		if rowHasAll(rows[i], markers) {
			h := &HeaderRow{Index: i, cells: make([]string, len(rows[i]))}
			for j, cell := range rows[i] {
				h.cells[j] = strings.ToLower(trim(cell))
			}
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: markers %v not present in first %d rows", ErrHeaderNotFound, markers, window)
}

// Column returns the index of the first header cell containing label
// (case-insensitive), or -1.
func (h *HeaderRow) Column(label string) int {
	needle := strings.ToLower(trim(label))
	if needle == "" {
		return -1
	}
	for i, cell := range h.cells {
		if cell != "" && strings.Contains(cell, needle) {
			return i
		}
	}
	return -1
}

// Require resolves a label and errors when the column is absent. Used for
// columns a pipeline cannot run without.
func (h *HeaderRow) Require(label string) (int, error) {
	col := h.Column(label)
	if col < 0 {
		return -1, fmt.Errorf("required column %q not found in header row %d", label, h.Index)
	}
	return col, nil
}

func rowHasAll(row []string, markers []string) bool {
	for _, marker := range markers {
		needle := strings.ToLower(trim(marker))
		found := false
		for _, cell := range row {
			if needle != "" && strings.Contains(strings.ToLower(trim(cell)), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return len(markers) > 0
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
