package importer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fieldserve/server/internal/drawing"
	"github.com/fieldserve/server/internal/parts"
	"github.com/fieldserve/server/internal/sheet"
)

// ImportParts loads the spare-part catalog from the first sheet of the
// workbook at path. Images embedded in the workbook are bound to their rows
// by drawing-anchor position. With --images, a brochure cell naming a file
// in that folder attaches it directly; when the run ends with no images at
// all, folder files are paired with the created parts in order instead.
func (s *Session) ImportParts(ctx context.Context, path, imagesDir string) (Stats, error) {
	started := time.Now()
	s.resetCaches()

	var stats Stats
	wb, err := sheet.OpenWorkbook(path)
	if err != nil {
		return stats, fmt.Errorf("open workbook: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return stats, errors.New("workbook has no sheets")
	}
	sh := wb.Sheets[0]

	defer s.recordRun(ctx, "parts", path, started, &stats)

	header, err := sheet.ResolveHeader(sh.Rows, partHeaderMarkers, s.scanWindow)
	if err != nil {
		return stats, fmt.Errorf("sheet %q: %w", sh.Name, err)
	}
	cols := resolvePartColumns(header)

	// Embedded images are best-effort: a catalog without pictures still
	// imports, it just records no attachments.
	images, err := drawing.ExtractSheetImages(path, 0)
	if err != nil && !errors.Is(err, drawing.ErrNoDrawings) {
		log.Printf("extract embedded images: %v", err)
	}
	if images != nil && images.Skipped() > 0 {
		log.Printf("embedded images: %d anchors could not be resolved", images.Skipped())
	}

	records := sheet.GroupRecords(sh.Rows, header.Index, sheet.GroupOptions{
		StartColumn:        -1,
		ContinuationColumn: -1,
		SequenceColumn:     -1,
	})
	stats.TotalRows = len(records)

	var createdIDs []int64
	for _, rec := range records {
		if err := s.throttle(ctx); err != nil {
			return stats, err
		}

		partNo := rec.Field(cols.partNo)
		if partNo == "" {
			stats.Skipped++
			log.Printf("sheet %q row %d: no part id, skipping", sh.Name, rec.SheetRow+1)
			continue
		}
		name := rec.Field(cols.name)
		if name == "" {
			stats.Errors++
			log.Printf("part %s: no product name", partNo)
			continue
		}

		exists, err := s.parts.ExistsByPartNo(ctx, partNo)
		if err != nil {
			stats.Errors++
			log.Printf("part %s: %v", partNo, err)
			continue
		}
		if exists {
			stats.Duplicates++
			continue
		}

		id, err := s.parts.Create(ctx, parts.SparePart{
			PartNo:            partNo,
			HSNCode:           rec.Field(cols.hsn),
			Name:              name,
			UseApplication:    rec.Field(cols.use),
			ModelSpec:         rec.Field(cols.model),
			ManufacturingUnit: rec.Field(cols.unit),
			TechSheet:         rec.Field(cols.techSheet),
		}, s.actor.ID)
		if err != nil {
			stats.Errors++
			log.Printf("part %s: %v", partNo, err)
			continue
		}
		stats.Created++
		createdIDs = append(createdIDs, id)

		if images != nil {
			if img := images.ImageAt(rec.SheetRow); img != nil {
				if err := s.parts.AttachPhoto(ctx, id, img.DataURI()); err != nil {
					log.Printf("part %s: attach photo: %v", partNo, err)
				} else {
					stats.ImagesAttached++
				}
				continue
			}
		}

		// No embedded image for this row. A brochure cell naming a file in
		// the images folder takes precedence over positional pairing.
		if imagesDir != "" {
			if fileName := rec.Field(cols.image); fileName != "" {
				if s.attachNamedImage(ctx, id, filepath.Join(imagesDir, fileName)) {
					stats.ImagesAttached++
				}
			}
		}
	}

	if stats.ImagesAttached == 0 && imagesDir != "" && len(createdIDs) > 0 {
		attached, err := s.attachFolderImages(ctx, imagesDir, createdIDs)
		stats.ImagesAttached += attached
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// attachNamedImage attaches the file at path when it exists and is readable.
// A dangling brochure reference is reported, not fatal.
func (s *Session) attachNamedImage(ctx context.Context, partID int64, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("brochure image %s: %v", filepath.Base(path), err)
		return false
	}
	uri := "data:" + imageMIME(path) + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := s.parts.AttachPhoto(ctx, partID, uri); err != nil {
		log.Printf("attach %s: %v", filepath.Base(path), err)
		return false
	}
	return true
}

// attachFolderImages pairs the image files of dir, in name order, with the
// parts created this run, in creation order. A count mismatch is reported
// but the shorter prefix is still attached.
func (s *Session) attachFolderImages(ctx context.Context, dir string, partIDs []int64) (int, error) {
	files, err := listImageFiles(dir)
	if err != nil {
		return 0, fmt.Errorf("read images dir: %w", err)
	}
	if len(files) == 0 {
		return 0, nil
	}
	if len(files) != len(partIDs) {
		log.Printf("images dir %s: %d files for %d new parts, pairing by position", dir, len(files), len(partIDs))
	}

	attached := 0
	for i, file := range files {
		if i >= len(partIDs) {
			break
		}
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("read %s: %v", file, err)
			continue
		}
		uri := "data:" + imageMIME(file) + ";base64," + base64.StdEncoding.EncodeToString(data)
		if err := s.parts.AttachPhoto(ctx, partIDs[i], uri); err != nil {
			log.Printf("attach %s: %v", filepath.Base(file), err)
			continue
		}
		attached++
	}
	return attached, nil
}

func listImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func imageMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
