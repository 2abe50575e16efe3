package analysis

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// AnalyzeXLSX profiles one sheet of an .xlsx workbook. sheetName wins over
// sheetIndex, which is 1-based; both empty selects the first sheet.
func AnalyzeXLSX(ctx context.Context, file string, opt Options, sheetName string, sheetIndex int) (*Report, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	var wb struct {
		Sheets []struct {
			Name    string `xml:"name,attr"`
			SheetID int    `xml:"sheetId,attr"`
			RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sheets>sheet"`
	}
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := decodeZipXML(&zr.Reader, "xl/workbook.xml", &wb); err != nil {
		return nil, err
	}
	if err := decodeZipXML(&zr.Reader, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	targets := map[string]string{}
	for _, r := range rels.Items {
		targets[r.ID] = normalizeRelPath(r.Target)
	}

	target := ""
	if sheetName != "" {
		names := make([]string, 0, len(wb.Sheets))
		for _, s := range wb.Sheets {
			names = append(names, s.Name)
			if strings.EqualFold(s.Name, sheetName) {
				target = targets[s.RID]
			}
		}
		if target == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				sheetName, filepath.Base(file), strings.Join(names, ", "))
		}
	} else {
		idx := max(sheetIndex, 1)
		for _, s := range wb.Sheets {
			if s.SheetID == idx {
				target = targets[s.RID]
				break
			}
		}
		if target == "" {
			target = fmt.Sprintf("xl/worksheets/sheet%d.xml", idx)
		}
	}

	var sst struct {
		Items []struct {
			T string   `xml:"t"`
			R []string `xml:"r>t"`
		} `xml:"si"`
	}
	if err := decodeZipXML(&zr.Reader, "xl/sharedStrings.xml", &sst); err != nil {
		return nil, err
	}
	shared := make([]string, len(sst.Items))
	for i, si := range sst.Items {
		shared[i] = si.T + strings.Join(si.R, "")
	}

	f, err := openZipEntry(&zr.Reader, target)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("open xlsx: missing worksheet %s", target)
	}
	defer f.Close()
	return analyzeRecords(ctx, filepath.Base(file), &sheetReader{dec: xml.NewDecoder(f), shared: shared}, opt)
}

func openZipEntry(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			return rc, nil
		}
	}
	return nil, nil
}

// decodeZipXML decodes entry name into v; a missing entry leaves v untouched.
func decodeZipXML(zr *zip.Reader, name string, v any) error {
	rc, err := openZipEntry(zr, name)
	if err != nil || rc == nil {
		return err
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

type sheetCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline string `xml:"is>t"`
}

// sheetReader streams worksheet rows and satisfies recordReader.
type sheetReader struct {
	dec    *xml.Decoder
	shared []string
}

func (r *sheetReader) Read() ([]string, error) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read sheet: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row struct {
			Cells []sheetCell `xml:"c"`
		}
		if err := r.dec.DecodeElement(&row, &se); err != nil {
			return nil, fmt.Errorf("read sheet row: %w", err)
		}
		var out []string
		for i, c := range row.Cells {
			col := colIndexFromRef(c.Ref)
			if col < 0 {
				col = i
			}
			for len(out) <= col {
				out = append(out, "")
			}
			out[col] = r.cellValue(c)
		}
		return out, nil
	}
}

func (r *sheetReader) cellValue(c sheetCell) string {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(r.shared) {
			return ""
		}
		return r.shared[idx]
	case "inlineStr":
		return c.Inline
	default:
		return c.Value
	}
}

// colIndexFromRef maps a cell reference such as "C12" to its 0-based column,
// or -1 when the reference has no letters.
func colIndexFromRef(ref string) int {
	idx := 0
	for _, ch := range strings.ToUpper(ref) {
		if ch < 'A' || ch > 'Z' {
			break
		}
		idx = idx*26 + int(ch-'A'+1)
	}
	return idx - 1
}

// normalizeRelPath turns a workbook relationship target into a zip entry name.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
