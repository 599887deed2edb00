package sheet

import (
	"errors"
	"testing"
)

func TestResolveHeaderSkipsTitleRows(t *testing.T) {
	rows := [][]string{
		{"Offer Funnel 2025"},
		{},
		{"prepared by sales team"},
		{"S.No", "Reg Date (dd/mm/yyyy)", "Company", "Machine Sl No"},
		{"1", "01/02/2025", "Acme Pumps", "SN-1"},
	}

	h, err := ResolveHeader(rows, []string{"S.No", "Company"}, 10)
	if err != nil {
		t.Fatalf("resolve header: %v", err)
	}
	if h.Index != 3 {
		t.Fatalf("header index = %d, want 3", h.Index)
	}
	if col := h.Column("Reg Date"); col != 1 {
		t.Fatalf("Reg Date column = %d, want 1", col)
	}
	if col := h.Column("Company"); col != 2 {
		t.Fatalf("Company column = %d, want 2", col)
	}
}

func TestResolveHeaderAnyPositionInWindow(t *testing.T) {
	header := []string{"Product Name", "Part ID", "HSN Code"}
	for pos := 0; pos < 10; pos++ {
		rows := make([][]string, 0, pos+2)
		for i := 0; i < pos; i++ {
			rows = append(rows, []string{"filler"})
		}
		rows = append(rows, header)
		rows = append(rows, []string{"Widget", "P-001", "8413"})

		h, err := ResolveHeader(rows, []string{"Product Name", "Part ID"}, 10)
		if err != nil {
			t.Fatalf("pos %d: resolve header: %v", pos, err)
		}
		if h.Index != pos {
			t.Fatalf("pos %d: header index = %d", pos, h.Index)
		}
	}
}

func TestResolveHeaderNotFound(t *testing.T) {
	rows := [][]string{
		{"just", "some", "cells"},
		{"more", "cells"},
	}
	_, err := ResolveHeader(rows, []string{"Product Name", "Part ID"}, 10)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("err = %v, want ErrHeaderNotFound", err)
	}
}

func TestResolveHeaderWindowLimit(t *testing.T) {
	rows := make([][]string, 12)
	for i := range rows {
		rows[i] = []string{"title"}
	}
	rows[11] = []string{"Product Name", "Part ID"}

	if _, err := ResolveHeader(rows, []string{"Product Name", "Part ID"}, 10); !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("err = %v, want ErrHeaderNotFound for header outside window", err)
	}
}

func TestColumnIsCaseInsensitive(t *testing.T) {
	h, err := ResolveHeader([][]string{{"PART ID", "product name"}}, []string{"part id"}, 1)
	if err != nil {
		t.Fatalf("resolve header: %v", err)
	}
	if col := h.Column("Part ID"); col != 0 {
		t.Fatalf("Part ID column = %d, want 0", col)
	}
	if col := h.Column("missing"); col != -1 {
		t.Fatalf("missing column = %d, want -1", col)
	}
}

func TestRequire(t *testing.T) {
	h, err := ResolveHeader([][]string{{"Part ID"}}, []string{"Part ID"}, 1)
	if err != nil {
		t.Fatalf("resolve header: %v", err)
	}
	if _, err := h.Require("Part ID"); err != nil {
		t.Fatalf("require existing column: %v", err)
	}
	if _, err := h.Require("Serial"); err == nil {
		t.Fatal("expected error for absent required column")
	}
}
