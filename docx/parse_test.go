package docx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"

	"github.com/aerissecure/protocols/internal/testdocs"
)

func sampleDocument(t *testing.T) []byte {
	t.Helper()
	doc := document.New()
	testdocs.AddParagraph(doc,
		testdocs.Run{Text: "ПРОТОКОЛ ", Bold: true, Font: "Times New Roman", SizePt: 12},
		testdocs.Run{Text: "№1", Italic: true, Underline: true},
	)
	tbl := testdocs.AddTable(doc, []string{"№", "ФИО", "СНИЛС"}, []string{"1", "Иванов И.И.", "123"})

	merged := tbl.AddRow()
	c := merged.AddCell()
	c.AddParagraph().AddRun().AddText("объединено")
	c.X().TcPr = wml.NewCT_TcPr()
	c.X().TcPr.GridSpan = wml.NewCT_DecimalNumber()
	c.X().TcPr.GridSpan.ValAttr = 2
	merged.AddCell().AddParagraph().AddRun().AddText("x")

	return testdocs.Bytes(t, doc)
}

func TestParseDocumentModel(t *testing.T) {
	b := sampleDocument(t)
	mdl, err := ParseDocumentModel(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("ParseDocumentModel failed: %v", err)
	}
	if len(mdl.Blocks) != 2 || len(mdl.Paragraphs) != 1 || len(mdl.Tables) != 1 {
		t.Fatalf("unexpected model: %s", mdl)
	}
	if mdl.Blocks[0].Paragraph == nil || mdl.Blocks[1].Table == nil {
		t.Fatal("blocks should keep body order")
	}

	p := mdl.Paragraphs[0]
	if p.Text() != "ПРОТОКОЛ №1" {
		t.Errorf("paragraph text = %q", p.Text())
	}
	first, second := p.Runs[0].Style, p.Runs[1].Style
	if !first.Bold.IsOn() || first.FontFamily != "Times New Roman" || first.FontSizePt != 12 {
		t.Errorf("first run style = %s", first)
	}
	if first.Italic != FlagUnset {
		t.Errorf("italic should be unset on the first run, got %s", first.Italic)
	}
	if !second.Italic.IsOn() || !second.IsUnderlined() || second.Bold != FlagUnset {
		t.Errorf("second run style = %s", second)
	}

	rows := mdl.Tables[0].Rows
	if got := strings.Join(rows[1].Texts(), "|"); got != "1|Иванов И.И.|123" {
		t.Errorf("row texts = %q", got)
	}
	if got := rows[2].Texts(); len(got) != 3 || got[0] != "объединено" || got[1] != "объединено" || got[2] != "x" {
		t.Errorf("merged cell should cover both grid columns, got %q", got)
	}
}

func TestOnOff(t *testing.T) {
	if onOff(nil) != FlagUnset {
		t.Error("missing element is unset")
	}
	if onOff(wml.NewCT_OnOff()) != FlagOn {
		t.Error("element without value is on")
	}
	if onOff(onOffElement(FlagOff)) != FlagOff {
		t.Error("explicit off should round trip")
	}
}

func TestHeadingLevel(t *testing.T) {
	cases := map[string]int{"Heading1": 1, "Heading3": 3, "Normal": 0, "HeadingX": 0}
	for in, want := range cases {
		if got := headingLevel(in); got != want {
			t.Errorf("headingLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestDocxToHTML(t *testing.T) {
	b := sampleDocument(t)
	html, err := DocxToHTML(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("DocxToHTML failed: %v", err)
	}
	for _, want := range []string{"font-weight:bold;", "font-style:italic;", "text-decoration:underline;", `colspan="2"`, "Иванов И.И."} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestPlaceholdersAndPreviewMarks(t *testing.T) {
	doc := document.New()
	testdocs.AddParagraph(doc, testdocs.Run{Text: "ПРОТОКОЛ №"}, testdocs.Run{Text: "___", Bold: true}, testdocs.Run{Text: "__"})
	testdocs.AddParagraph(doc, testdocs.Run{Text: "a_b__c"})
	testdocs.AddTable(doc, []string{"Дата", "«____» 2024"})

	m := BuildDocumentModel(testdocs.Reopen(t, doc))
	if got := Placeholders(m); len(got) != 2 || got[0] != "_____" || got[1] != "____" {
		t.Errorf("Placeholders = %q", got)
	}

	html := RenderDocumentHTML(m)
	if !strings.Contains(html, `<meta charset="utf-8">`) {
		t.Error("preview should declare utf-8")
	}
	if !strings.Contains(html, `<mark class="placeholder">____</mark>`) {
		t.Error("table placeholder should be marked")
	}
	if strings.Contains(html, "<mark class=\"placeholder\">__</mark>") {
		t.Error("short underscore runs are not placeholders")
	}
}
