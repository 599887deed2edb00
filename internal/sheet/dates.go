package sheet

import (
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

// NormalizeDate converts a cell value to ISO form (2006-01-02). Excel may
// deliver a date as a serial number counted from the 1900 epoch, or as text
// in a handful of regional layouts. Unparseable values are returned as-is so
// the caller can decide whether they matter.
func NormalizeDate(cellValue string) string {
	v := strings.TrimSpace(cellValue)
	if v == "" || strings.HasPrefix(v, "####") {
		return ""
	}

	if num, err := strconv.ParseFloat(v, 64); err == nil {
		// Excel serial dates count days from the 1900 epoch; day 1 resolves
		// to 1899-12-30 because of the historical leap-year bug.
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(num)).Format("2006-01-02")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return v
}

// ParseAmount converts a money-ish cell ("1,20,000.50", "₹ 45000") to a
// float. Returns 0 for blank or unparseable values.
func ParseAmount(cellValue string) float64 {
	v := strings.TrimSpace(cellValue)
	if v == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseFlag interprets the yes/no style cells of hand-maintained sheets.
func ParseFlag(cellValue string) bool {
	switch strings.ToLower(strings.TrimSpace(cellValue)) {
	case "1", "y", "yes", "true", "open":
		return true
	default:
		return false
	}
}
