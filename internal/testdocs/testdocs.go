// Package testdocs builds small DOCX documents for tests: application
// tables, protocol templates, attendance sheets and consent forms.
package testdocs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// Run describes one run of a synthetic paragraph.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Font      string
	SizePt    float64
}

// AddParagraph appends a body paragraph made of runs.
func AddParagraph(doc *document.Document, runs ...Run) document.Paragraph {
	p := doc.AddParagraph()
	for _, in := range runs {
		AddRunTo(p, in)
	}
	return p
}

// AddRunTo appends one styled run to p.
func AddRunTo(p document.Paragraph, in Run) {
	r := p.AddRun()
	r.AddText(in.Text)
	rp := r.Properties()
	if in.Bold {
		rp.SetBold(true)
	}
	if in.Italic {
		rp.SetItalic(true)
	}
	if in.Underline {
		rp.X().U = wml.NewCT_Underline()
		rp.X().U.ValAttr = wml.ST_UnderlineSingle
	}
	if in.Font != "" {
		rp.SetFontFamily(in.Font)
	}
	if in.SizePt > 0 {
		rp.SetSize(measurement.Distance(in.SizePt) * measurement.Point)
	}
}

// AddTable appends a table with one row per entry of rows.
func AddTable(doc *document.Document, rows ...[]string) document.Table {
	tbl := doc.AddTable()
	for _, values := range rows {
		row := tbl.AddRow()
		for _, v := range values {
			row.AddCell().AddParagraph().AddRun().AddText(v)
		}
	}
	return tbl
}

// Shade marks every cell of row with a background fill, a formatting marker
// tests use to check that cloned rows keep the template's cell properties.
func Shade(row document.Row, fill string) {
	for _, c := range row.Cells() {
		tcPr := c.X().TcPr
		if tcPr == nil {
			tcPr = wml.NewCT_TcPr()
			c.X().TcPr = tcPr
		}
		tcPr.Shd = wml.NewCT_Shd()
		tcPr.Shd.ValAttr = wml.ST_ShdClear
		tcPr.Shd.FillAttr = &wml.ST_HexColor{ST_HexColorRGB: &fill}
	}
}

// Save writes doc to path.
func Save(t testing.TB, doc *document.Document, path string) string {
	t.Helper()
	if err := doc.SaveToFile(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	return path
}

// Bytes serialises doc.
func Bytes(t testing.TB, doc *document.Document) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		t.Fatalf("save document: %v", err)
	}
	return buf.Bytes()
}

// Reopen round-trips doc through its serialised form.
func Reopen(t testing.TB, doc *document.Document) *document.Document {
	t.Helper()
	b := Bytes(t, doc)
	out, err := document.Read(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	return out
}

// Open reads the document at path.
func Open(t testing.TB, path string) *document.Document {
	t.Helper()
	doc, err := document.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	return doc
}

// ApplicationHeader is the header row of a synthetic application table.
var ApplicationHeader = []string{"№", "ФИО", "СНИЛС", "Должность", "Программы"}

// WriteApplication writes an application document whose single table holds
// the header row followed by rows.
func WriteApplication(t testing.TB, path string, rows ...[]string) string {
	t.Helper()
	doc := document.New()
	AddParagraph(doc, Run{Text: "Заявка на обучение"})
	AddTable(doc, append([][]string{ApplicationHeader}, rows...)...)
	return Save(t, doc, path)
}

// ProtocolHeader is the roster header of protocol templates.
var ProtocolHeader = []string{"№", "ФИО", "Должность", "Организация", "Результат", "Рег. номер", "Дата", "Подпись"}

// WriteProtocolTemplate writes a protocol template. The title is split over
// two runs at the "№" sign, the bold prefix and an underlined placeholder,
// and the theme sits in its own paragraph. Table 0 is a commission table and
// table 1 the roster with its template row at index 1.
func WriteProtocolTemplate(t testing.TB, path, title, theme string) string {
	t.Helper()
	doc := document.New()
	head, tail, ok := strings.Cut(title, "№")
	if ok {
		head += "№"
	}
	AddParagraph(doc, Run{Text: head, Bold: true, Font: "Times New Roman", SizePt: 14}, Run{Text: tail, Underline: true})
	AddParagraph(doc, Run{Text: "по программе "}, Run{Text: theme, Italic: true})
	AddTable(doc, []string{"Председатель комиссии", ""})
	roster := AddTable(doc, ProtocolHeader, make([]string, len(ProtocolHeader)))
	Shade(roster.Rows()[1], "EEEEEE")
	return Save(t, doc, path)
}

// WriteAttendanceTemplate writes an attendance sheet: the group label
// paragraph and table 0 with three header rows and the template row at 3.
func WriteAttendanceTemplate(t testing.TB, path, label string) string {
	t.Helper()
	doc := document.New()
	AddParagraph(doc, Run{Text: "ЛИСТ ПОСЕЩЕНИЯ", Bold: true})
	AddParagraph(doc, Run{Text: label})
	AddTable(doc,
		[]string{"Учебный центр", ""},
		[]string{"Даты", ""},
		[]string{"№", "ФИО"},
		[]string{"", ""},
	)
	return Save(t, doc, path)
}

// WriteConsentTemplate writes a consent form with the organisation
// placeholder paragraph and table 0 whose template row is 1.
func WriteConsentTemplate(t testing.TB, path, placeholder string) string {
	t.Helper()
	doc := document.New()
	AddParagraph(doc, Run{Text: "Я, работник "}, Run{Text: placeholder})
	AddTable(doc, []string{"№", "ФИО"}, []string{"", ""})
	return Save(t, doc, path)
}
