package analysis

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeXLSX(t *testing.T) string {
	t.Helper()
	files := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="1" r:id="rId1"/><sheet name="Data" sheetId="2" r:id="rId2"/></sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>Region</t></si><si><t>Sales</t></si><si><t>North</t></si><si><r><t>So</t></r><r><t>uth</t></r></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>memo</t></is></c></row>
</sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>10</v></c></row>
<row r="3"><c r="A3" t="s"><v>3</v></c></row>
<row r="4"><c r="A4" t="s"><v>2</v></c><c r="B4"><v>14</v></c></row>
</sheetData></worksheet>`,
	}
	p := filepath.Join(t.TempDir(), "sales.xlsx")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create xlsx: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return p
}

func TestAnalyzeXLSXSheetSelection(t *testing.T) {
	p := writeXLSX(t)
	opt := DefaultOptions()
	opt.SampleRows = 2

	rep, err := AnalyzeXLSX(context.Background(), p, opt, "data", 0)
	if err != nil {
		t.Fatalf("AnalyzeXLSX: %v", err)
	}
	if rep.Rows != 3 || len(rep.Columns) != 2 {
		t.Fatalf("rows=%d columns=%d", rep.Rows, len(rep.Columns))
	}
	region, sales := rep.Columns[0], rep.Columns[1]
	if region.Name != "Region" || region.DataType() != "text" {
		t.Fatalf("region: %s %s", region.Name, region.DataType())
	}
	if got := region.Category.Counts(); got["North"] != 2 || got["South"] != 1 {
		t.Fatalf("region counts: %v", got)
	}
	if sales.DataType() != "int" || sales.NullCount != 1 {
		t.Fatalf("sales: %s nulls=%d", sales.DataType(), sales.NullCount)
	}
	if sum := sales.Statistics()["sum"]; sum != 24.0 {
		t.Fatalf("sales sum: %v", sum)
	}
	md := rep.Markdown()
	if !strings.Contains(md, "File: sales.xlsx") || !strings.Contains(md, "| North | 10 |") {
		t.Fatalf("markdown:\n%s", md)
	}

	byIndex, err := AnalyzeXLSX(context.Background(), p, opt, "", 1)
	if err != nil {
		t.Fatalf("AnalyzeXLSX by index: %v", err)
	}
	if len(byIndex.Columns) != 1 || byIndex.Columns[0].Name != "memo" {
		t.Fatalf("first sheet: %+v", byIndex.Columns)
	}
}

func TestAnalyzeXLSXUnknownSheet(t *testing.T) {
	_, err := AnalyzeXLSX(context.Background(), writeXLSX(t), DefaultOptions(), "Missing", 0)
	if err == nil || !strings.Contains(err.Error(), "Available sheets: Notes, Data") {
		t.Fatalf("expected sheet listing, got %v", err)
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"styles.xml", "xl/styles.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
	if got := colIndexFromRef("AB7"); got != 27 {
		t.Errorf("colIndexFromRef(AB7) = %d", got)
	}
}
