package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeCatalogFixture(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

var catalogHeader = []interface{}{
	"HSN Code", "Product Name", "Part ID", "Image", "Use/Application",
	"Model/Spec", "Manufacturing Unit", "Tech Sheet",
}

func TestImportPartsClassifiesRows(t *testing.T) {
	s, f := newTestSession(t)

	path := writeCatalogFixture(t, [][]interface{}{
		{"Spare Part Catalog"},
		catalogHeader,
		{"8479", "Anilox Roller", "AP-001", "", "Coating", "AX-90", "Pune", "TS-11"},
		{"8479", "", "AP-002"}, // no product name
		{"8479", "Doctor Blade", ""}, // no part id
		{"8479", "Gear Pump", "AP-003"},
		{"8479", "Anilox Roller", "AP-001"}, // duplicate
	})

	stats, err := s.ImportParts(context.Background(), path, "")
	if err != nil {
		t.Fatalf("ImportParts: %v", err)
	}
	if stats.TotalRows != 5 {
		t.Errorf("TotalRows = %d, want 5", stats.TotalRows)
	}
	if stats.Created != 2 || stats.Errors != 1 || stats.Skipped != 1 || stats.Duplicates != 1 {
		t.Fatalf("stats = %+v, want 2/1/1/1 created/errors/skipped/duplicates", stats)
	}
	if len(f.parts.created) != 2 {
		t.Fatalf("created %d parts, want 2", len(f.parts.created))
	}
	first := f.parts.created[0]
	if first.PartNo != "AP-001" || first.Name != "Anilox Roller" || first.HSNCode != "8479" {
		t.Errorf("first part = %+v", first)
	}
	if first.UseApplication != "Coating" || first.ModelSpec != "AX-90" || first.ManufacturingUnit != "Pune" || first.TechSheet != "TS-11" {
		t.Errorf("first part attributes = %+v", first)
	}
}

func TestImportPartsPairsFolderImagesByPosition(t *testing.T) {
	s, f := newTestSession(t)

	path := writeCatalogFixture(t, [][]interface{}{
		catalogHeader,
		{"", "Anilox Roller", "AP-001"},
		{"", "Gear Pump", "AP-002"},
	})

	imagesDir := t.TempDir()
	for _, name := range []string{"01-roller.png", "02-pump.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(imagesDir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}

	stats, err := s.ImportParts(context.Background(), path, imagesDir)
	if err != nil {
		t.Fatalf("ImportParts: %v", err)
	}
	if stats.Created != 2 || stats.ImagesAttached != 2 {
		t.Fatalf("stats = %+v, want 2 created 2 images", stats)
	}
	if uri := f.parts.photos[1]; !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("part 1 photo = %q, want png data URI", uri)
	}
	if uri := f.parts.photos[2]; !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Errorf("part 2 photo = %q, want jpeg data URI", uri)
	}
}

func TestImportPartsAttachesBrochureImageByName(t *testing.T) {
	s, f := newTestSession(t)

	path := writeCatalogFixture(t, [][]interface{}{
		catalogHeader,
		{"", "Anilox Roller", "AP-001", "roller.png"},
		{"", "Gear Pump", "AP-002"},
	})

	imagesDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(imagesDir, "roller.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	stats, err := s.ImportParts(context.Background(), path, imagesDir)
	if err != nil {
		t.Fatalf("ImportParts: %v", err)
	}
	if stats.Created != 2 || stats.ImagesAttached != 1 {
		t.Fatalf("stats = %+v, want 2 created 1 image", stats)
	}
	if uri := f.parts.photos[1]; !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("part 1 photo = %q, want png data URI", uri)
	}
	if _, ok := f.parts.photos[2]; ok {
		t.Error("part 2 unexpectedly received a photo")
	}
}

func TestImportPartsRequiresHeader(t *testing.T) {
	s, _ := newTestSession(t)

	path := writeCatalogFixture(t, [][]interface{}{
		{"just a title"},
		{"no", "usable", "columns"},
	})

	if _, err := s.ImportParts(context.Background(), path, ""); err == nil {
		t.Fatal("expected header resolution error")
	}
}
