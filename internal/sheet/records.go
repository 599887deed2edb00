package sheet

import (
	"strconv"
	"strings"
)

// Record is one logical business record rebuilt from one primary row plus
// zero or more continuation rows below it.
type Record struct {
	// SheetRow is the zero-based absolute index of the primary row, in the
	// sheet's own coordinate space (the same space drawing anchors use).
	SheetRow int
	// Fields are the raw cells of the primary row.
	Fields []string
	// Continuations holds the record's multi-valued field (machine serials),
	// first-seen order, deduplicated after trimming, case-insensitively.
	Continuations []string
}

// Field returns the trimmed primary-row cell at col.
func (r Record) Field(col int) string {
	return Cell(r.Fields, col)
}

// GroupOptions steers record-boundary detection for one sheet layout.
type GroupOptions struct {
	// StartColumn is the record-start field: a row with a non-empty value
	// here opens a new record. A negative value means every non-empty row
	// opens a record (one-row-per-record layouts).
	StartColumn int
	// ContinuationColumn is the multi-valued field collected across the
	// record's rows; -1 when the layout has none.
	ContinuationColumn int
	// SequenceColumn, when >= 0, additionally requires a positive number in
	// that column for a row to open a record (offer sheets number their
	// records in the first column; summary rows below the data do not).
	SequenceColumn int
}

// GroupRecords walks the data rows after headerIdx and folds them into
// ordered logical records. A row with an empty record-start field is folded
// into the current record as a continuation line; an empty row closes the
// current record.
func GroupRecords(rows [][]string, headerIdx int, opts GroupOptions) []Record {
	var records []Record
	var current *Record

	flush := func() {
		if current != nil {
			records = append(records, *current)
			current = nil
		}
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if IsEmptyRow(row) {
			flush()
			continue
		}

		if startsRecord(row, opts) {
			flush()
			current = &Record{SheetRow: i, Fields: row}
			addContinuation(current, row, opts.ContinuationColumn)
			continue
		}

		// Continuation line; without an open record it is stray and dropped.
		if current != nil {
			addContinuation(current, row, opts.ContinuationColumn)
		}
	}
	flush()

	return records
}

func startsRecord(row []string, opts GroupOptions) bool {
	if opts.StartColumn < 0 {
		return true
	}
	if Cell(row, opts.StartColumn) == "" {
		return false
	}
	if opts.SequenceColumn >= 0 {
		n, err := strconv.ParseFloat(Cell(row, opts.SequenceColumn), 64)
		if err != nil || n <= 0 {
			return false
		}
	}
	return true
}

func addContinuation(rec *Record, row []string, col int) {
	if col < 0 {
		return
	}
	value := Cell(row, col)
	if value == "" {
		return
	}
	for _, seen := range rec.Continuations {
		if strings.EqualFold(seen, value) {
			return
		}
	}
	rec.Continuations = append(rec.Continuations, value)
}
