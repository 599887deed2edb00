package sheet

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"########", ""},
		{"2025-02-01", "2025-02-01"},
		{"01/02/2025", "2025-02-01"},
		{"01.02.2025", "2025-02-01"},
		{"45692", "2025-02-04"}, // Excel serial for 4 Feb 2025
		{"not a date", "not a date"},
	}
	for _, c := range cases {
		if got := NormalizeDate(c.in); got != c.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"45000", 45000},
		{"1,20,000.50", 120000.50},
		{"Rs. 9,500", 9500},
		{"n/a", 0},
	}
	for _, c := range cases {
		if got := ParseAmount(c.in); got != c.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseFlag(t *testing.T) {
	for _, yes := range []string{"Y", "yes", "1", "Open", "TRUE"} {
		if !ParseFlag(yes) {
			t.Errorf("ParseFlag(%q) = false, want true", yes)
		}
	}
	for _, no := range []string{"", "N", "no", "closed", "0"} {
		if ParseFlag(no) {
			t.Errorf("ParseFlag(%q) = true, want false", no)
		}
	}
}
