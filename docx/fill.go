package docx

import (
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// Alignment is the horizontal alignment of a filled cell.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignCenter Alignment = "center"
)

func (a Alignment) jc() wml.ST_Jc {
	switch a {
	case AlignRight:
		return wml.ST_JcRight
	case AlignCenter:
		return wml.ST_JcCenter
	default:
		return wml.ST_JcLeft
	}
}

// CellFormat is the font and alignment written into every filled cell.
type CellFormat struct {
	FontFamily string    `yaml:"font_family"`
	FontSizePt float64   `yaml:"font_size_pt"`
	Align      Alignment `yaml:"align"`
}

// DefaultCellFormat is Times New Roman 10pt, left aligned.
func DefaultCellFormat() CellFormat {
	return CellFormat{FontFamily: "Times New Roman", FontSizePt: 10, Align: AlignLeft}
}

// FillCell replaces the content of c with a single run holding the trimmed
// value. The first paragraph's properties (spacing, indents) are kept; font
// and alignment come from f. An empty value still yields a styled empty run.
func FillCell(c document.Cell, value string, f CellFormat) {
	var ppr *wml.CT_PPr
	if ps := c.Paragraphs(); len(ps) > 0 {
		ppr = ps[0].X().PPr
	}
	c.X().EG_BlockLevelElts = nil

	p := c.AddParagraph()
	if ppr != nil {
		p.X().PPr = ppr
	}
	p.Properties().SetAlignment(f.Align.jc())

	r := p.AddRun()
	r.AddText(strings.TrimSpace(value))
	rp := r.Properties()
	if f.FontFamily != "" {
		fonts := rp.X().RFonts
		if fonts == nil {
			fonts = wml.NewCT_Fonts()
			rp.X().RFonts = fonts
		}
		fonts.AsciiAttr = &f.FontFamily
		fonts.HAnsiAttr = &f.FontFamily
		fonts.EastAsiaAttr = &f.FontFamily
	}
	if f.FontSizePt > 0 {
		rp.SetSize(measurement.Distance(f.FontSizePt) * measurement.Point)
	}
}

// FillTable writes one cloned row per entry of rows, replacing the template
// row at index templateRow. formats is indexed by column; columns past its
// end use the last format. Values beyond the row's cell count are dropped and
// missing values leave the remaining cells as cloned.
func FillTable(t document.Table, templateRow int, rows [][]string, formats []CellFormat) error {
	cl, err := NewRowCloner(t, templateRow)
	if err != nil {
		return err
	}
	defer cl.Close()

	for i, values := range rows {
		row, err := cl.Next()
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		cells := row.Cells()
		for j := 0; j < len(cells) && j < len(values); j++ {
			FillCell(cells[j], values[j], formatFor(formats, j))
		}
	}
	return nil
}

func formatFor(formats []CellFormat, col int) CellFormat {
	switch {
	case len(formats) == 0:
		return DefaultCellFormat()
	case col < len(formats):
		return formats[col]
	default:
		return formats[len(formats)-1]
	}
}
