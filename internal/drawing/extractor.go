// Package drawing recovers images embedded inside an xlsx container and maps
// them to the sheet rows their anchors point at. It reads the zip package
// directly: the media files, the drawing-relationships part and the drawing
// part, resolving anchor -> relationship id -> media file -> bytes.
//
// Extraction is best-effort by design: spreadsheet producers are sloppy about
// drawing XML, so a malformed anchor is skipped with a reason instead of
// failing the workbook.
package drawing

import (
	"archive/zip"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

// ErrNoDrawings means the container holds no drawing part for the sheet.
// Callers degrade to an image-less import.
var ErrNoDrawings = errors.New("no drawings in workbook")

// InlineImage is one embedded picture, ready to be stored inline.
type InlineImage struct {
	Name string
	MIME string
	Data []byte
}

// DataURI encodes the image as a data: URI for inline storage.
func (img *InlineImage) DataURI() string {
	return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// AnchorResult is the outcome for one anchor: either a bound image or the
// reason it was skipped. Skips are collected, not swallowed.
type AnchorResult struct {
	Row        int
	Image      *InlineImage
	SkipReason string
}

// SheetImages maps drawing-space row indices (zero-based, fixed by the
// original sheet geometry) to extracted images.
type SheetImages struct {
	Anchors []AnchorResult
	byRow   map[int]*InlineImage
}

// ImageAt returns the image anchored at the given zero-based sheet row, or
// nil.
func (s *SheetImages) ImageAt(row int) *InlineImage {
	if s == nil {
		return nil
	}
	return s.byRow[row]
}

// Skipped counts anchors that could not be bound.
func (s *SheetImages) Skipped() int {
	n := 0
	for _, a := range s.Anchors {
		if a.SkipReason != "" {
			n++
		}
	}
	return n
}

// ExtractSheetImages opens an xlsx file as a zip archive and extracts the
// images anchored on the given sheet (zero-based index).
func ExtractSheetImages(xlsxPath string, sheetIndex int) (*SheetImages, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", xlsxPath, err)
	}
	defer r.Close()
	return ExtractFromReader(&r.Reader, sheetIndex)
}

// ExtractFromReader is ExtractSheetImages over an already-open zip reader.
func ExtractFromReader(r *zip.Reader, sheetIndex int) (*SheetImages, error) {
	drawingPath := drawingPathForSheet(r, sheetIndex)
	if drawingPath == "" {
		return nil, ErrNoDrawings
	}

	drawingXML, err := readZipFile(r, drawingPath)
	if err != nil || drawingXML == nil {
		return nil, ErrNoDrawings
	}

	media := indexMedia(r)
	rels := parseDrawingRels(r, drawingPath)
	anchors := parseAnchors(drawingXML)

	out := &SheetImages{byRow: make(map[int]*InlineImage)}
	for _, a := range anchors {
		result := AnchorResult{Row: a.row}
		switch {
		case a.row < 0:
			result.SkipReason = "anchor has no from-row coordinate"
		case a.embedRelID == "":
			result.SkipReason = "anchor has no picture reference"
		default:
			target, ok := rels[a.embedRelID]
			if !ok {
				result.SkipReason = fmt.Sprintf("relationship %s not in drawing rels", a.embedRelID)
				break
			}
			data, ok := media[target]
			if !ok {
				result.SkipReason = fmt.Sprintf("media file %s not in archive", target)
				break
			}
			result.Image = &InlineImage{Name: target, MIME: mimeForName(target), Data: data}
			out.byRow[a.row] = result.Image
		}
		out.Anchors = append(out.Anchors, result)
	}

	return out, nil
}

// ---------------------------------------------------------------------------
// Container part resolution
// ---------------------------------------------------------------------------

// drawingPathForSheet resolves the drawing part for a sheet through the
// worksheet's relationship part, falling back to the conventional
// xl/drawings/drawingN.xml name.
func drawingPathForSheet(r *zip.Reader, sheetIndex int) string {
	relsPath := fmt.Sprintf("xl/worksheets/_rels/sheet%d.xml.rels", sheetIndex+1)
	if relsXML, err := readZipFile(r, relsPath); err == nil && relsXML != nil {
		for _, rel := range parseRelationships(relsXML) {
			if strings.Contains(strings.ToLower(rel.Type), "drawing") {
				return resolveTarget(rel.Target, "xl/worksheets")
			}
		}
	}

	fallback := fmt.Sprintf("xl/drawings/drawing%d.xml", sheetIndex+1)
	if zipHasFile(r, fallback) {
		return fallback
	}
	return ""
}

// indexMedia reads every entry under xl/media and keys its bytes by base
// name.
func indexMedia(r *zip.Reader) map[string][]byte {
	media := make(map[string][]byte)
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, "xl/media/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		media[path.Base(f.Name)] = data
	}
	return media
}

// parseDrawingRels maps relationship id -> media base name for the drawing's
// relationship part, keeping only targets under the media directory.
func parseDrawingRels(r *zip.Reader, drawingPath string) map[string]string {
	relsPath := path.Join(path.Dir(drawingPath), "_rels", path.Base(drawingPath)+".rels")
	relsXML, err := readZipFile(r, relsPath)
	if err != nil || relsXML == nil {
		return map[string]string{}
	}

	rels := make(map[string]string)
	for _, rel := range parseRelationships(relsXML) {
		if strings.Contains(rel.Target, "media/") {
			rels[rel.ID] = path.Base(rel.Target)
		}
	}
	return rels
}

type relationship struct {
	ID     string
	Type   string
	Target string
}

func parseRelationships(data []byte) []relationship {
	var rels []relationship
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var rel relationship
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				rel.ID = attr.Value
			case "Type":
				rel.Type = attr.Value
			case "Target":
				rel.Target = attr.Value
			}
		}
		rels = append(rels, rel)
	}
	return rels
}

// ---------------------------------------------------------------------------
// Anchor parsing
// ---------------------------------------------------------------------------

type anchor struct {
	row        int
	embedRelID string
}

// parseAnchors token-walks the drawing XML and collects, per anchor element,
// the zero-based from-row and the embedded picture's relationship id.
func parseAnchors(data []byte) []anchor {
	var anchors []anchor
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok {
			switch se.Name.Local {
			case "twoCellAnchor", "oneCellAnchor", "absoluteAnchor":
				anchors = append(anchors, parseAnchor(decoder))
			}
		}
	}
	return anchors
}

func parseAnchor(decoder *xml.Decoder) anchor {
	a := anchor{row: -1}
	depth := 1
	inFrom := false

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "from":
				inFrom = true
			case "row":
				if inFrom && a.row < 0 {
					if text, err := readElementText(decoder); err == nil {
						if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
							a.row = n
						}
					}
					depth--
				}
			case "blip":
				for _, attr := range t.Attr {
					if attr.Name.Local == "embed" {
						a.embedRelID = attr.Value
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "from" {
				inFrom = false
			}
			depth--
		}
	}
	return a
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

func zipHasFile(r *zip.Reader, name string) bool {
	for _, f := range r.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text string
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text, err
		}
		switch t := token.(type) {
		case xml.CharData:
			text += string(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text, nil
}

func resolveTarget(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

func mimeForName(name string) string {
	if strings.EqualFold(path.Ext(name), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
