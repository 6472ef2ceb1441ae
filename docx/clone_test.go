package docx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"

	"github.com/aerissecure/protocols/internal/testdocs"
)

func rosterTable(doc *document.Document) document.Table {
	tbl := testdocs.AddTable(doc, []string{"№", "ФИО", "Дата"}, []string{"", "", ""})
	testdocs.Shade(tbl.Rows()[1], "DDEEFF")
	return tbl
}

func cellText(c document.Cell) string {
	var s string
	for _, p := range c.Paragraphs() {
		s += paragraphText(p)
	}
	return s
}

func TestFillTableRowCounts(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("%d records", n), func(t *testing.T) {
			doc := document.New()
			tbl := rosterTable(doc)

			var rows [][]string
			for i := 1; i <= n; i++ {
				rows = append(rows, []string{fmt.Sprintf("%d.", i), fmt.Sprintf("Person %d", i), ""})
			}
			if err := FillTable(tbl, 1, rows, nil); err != nil {
				t.Fatalf("FillTable: %v", err)
			}

			tbl = testdocs.Reopen(t, doc).Tables()[0]
			got := tbl.Rows()
			if len(got) != 1+n {
				t.Fatalf("table has %d rows, want header + %d", len(got), n)
			}
			if cellText(got[0].Cells()[1]) != "ФИО" {
				t.Error("header row must stay first")
			}
			for i := 1; i <= n; i++ {
				cells := got[i].Cells()
				if len(cells) != 3 {
					t.Fatalf("row %d has %d cells", i, len(cells))
				}
				if want := fmt.Sprintf("Person %d", i); cellText(cells[1]) != want {
					t.Errorf("row %d name = %q, want %q", i, cellText(cells[1]), want)
				}
				if cellText(cells[2]) != "" {
					t.Errorf("row %d date should be blank", i)
				}
				tcPr := cells[0].X().TcPr
				if tcPr == nil || tcPr.Shd == nil || tcPr.Shd.FillAttr == nil || *tcPr.Shd.FillAttr.ST_HexColorRGB != "DDEEFF" {
					t.Errorf("row %d lost the template cell shading", i)
				}
			}
		})
	}
}

func TestRowClonerCopiesAreIndependent(t *testing.T) {
	doc := document.New()
	tbl := rosterTable(doc)

	cl, err := NewRowCloner(tbl, 1)
	if err != nil {
		t.Fatal(err)
	}
	a, err := cl.Next()
	if err != nil {
		t.Fatal(err)
	}
	b, err := cl.Next()
	if err != nil {
		t.Fatal(err)
	}
	cl.Close()

	FillCell(a.Cells()[1], "first", DefaultCellFormat())
	FillCell(b.Cells()[1], "second", DefaultCellFormat())
	if cellText(a.Cells()[1]) != "first" || cellText(b.Cells()[1]) != "second" {
		t.Error("clones share content")
	}
	if len(tbl.Rows()) != 3 {
		t.Errorf("table has %d rows, want 3", len(tbl.Rows()))
	}
}

func TestNewRowClonerIndexOutOfRange(t *testing.T) {
	doc := document.New()
	tbl := rosterTable(doc)
	for _, idx := range []int{-1, 2, 10} {
		if _, err := NewRowCloner(tbl, idx); !errors.Is(err, ErrRowIndex) {
			t.Errorf("index %d: err = %v, want ErrRowIndex", idx, err)
		}
	}
}

func TestFillCellFormat(t *testing.T) {
	doc := document.New()
	tbl := testdocs.AddTable(doc, []string{"  old text  "})
	cell := tbl.Rows()[0].Cells()[0]
	cell.AddParagraph().AddRun().AddText("second paragraph")

	FillCell(cell, "  Иванов И.И.\n", CellFormat{FontFamily: "Times New Roman", FontSizePt: 10, Align: AlignRight})

	paras := cell.Paragraphs()
	if len(paras) != 1 {
		t.Fatalf("cell has %d paragraphs, want 1", len(paras))
	}
	runs := paras[0].Runs()
	if len(runs) != 1 || runs[0].Text() != "Иванов И.И." {
		t.Fatalf("cell runs = %v", runs)
	}
	if jc := paras[0].X().PPr.Jc; jc == nil || jc.ValAttr != wml.ST_JcRight {
		t.Error("paragraph should be right aligned")
	}
	st := ResolveRunStyle(runs[0])
	if st.FontFamily != "Times New Roman" || st.FontSizePt != 10 {
		t.Errorf("run style = %s", st)
	}
	if ea := runs[0].X().RPr.RFonts.EastAsiaAttr; ea == nil || *ea != "Times New Roman" {
		t.Error("east asian font should be set too")
	}
}

func TestFillCellEmptyValueKeepsStyledRun(t *testing.T) {
	doc := document.New()
	cell := testdocs.AddTable(doc, []string{"x"}).Rows()[0].Cells()[0]
	FillCell(cell, "", DefaultCellFormat())

	runs := cell.Paragraphs()[0].Runs()
	if len(runs) != 1 || runs[0].Text() != "" {
		t.Fatalf("want one empty run, got %d", len(runs))
	}
	if ResolveRunStyle(runs[0]).FontSizePt != 10 {
		t.Error("empty cell should still carry the font size")
	}
}

func TestFormatFor(t *testing.T) {
	formats := []CellFormat{{Align: AlignCenter}, {Align: AlignLeft}}
	if formatFor(formats, 0).Align != AlignCenter || formatFor(formats, 5).Align != AlignLeft {
		t.Error("columns past the end should reuse the last format")
	}
	if formatFor(nil, 3) != DefaultCellFormat() {
		t.Error("no formats means the default format")
	}
}
