package docx

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/ofc/sharedTypes"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// OpenDocumentModel reads the DOCX file at path and builds its DocumentModel.
func OpenDocumentModel(path string) (DocumentModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return DocumentModel{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return DocumentModel{}, err
	}
	mdl, err := ParseDocumentModel(f, info.Size())
	if err != nil {
		return DocumentModel{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return mdl, nil
}

// ParseDocumentModel reads a DOCX document from the provided reader and size
// and builds a DocumentModel intermediate representation.
func ParseDocumentModel(r io.ReaderAt, size int64) (DocumentModel, error) {
	doc, err := document.Read(r, size)
	if err != nil {
		return DocumentModel{}, err
	}
	return BuildDocumentModel(doc), nil
}

// BuildDocumentModel builds the IR of an already loaded document.
func BuildDocumentModel(doc *document.Document) DocumentModel {
	var mdl DocumentModel

	// ---- Build lookup maps from underlying XML ptr -> high-level wrapper ----
	pMap := make(map[*wml.CT_P]document.Paragraph)
	for _, p := range doc.Paragraphs() {
		pMap[p.X()] = p
	}

	tMap := make(map[*wml.CT_Tbl]document.Table)
	for _, tbl := range doc.Tables() {
		tMap[tbl.X()] = tbl
	}

	// ---- Walk body elements in order ----
	body := doc.X().Body
	if body == nil {
		return mdl
	}

	for _, bl := range body.EG_BlockLevelElts {
		for _, c := range bl.EG_ContentBlockContent {
			for _, cp := range c.P {
				if par, ok := pMap[cp]; ok {
					rp := convertParagraph(par)
					mdl.Paragraphs = append(mdl.Paragraphs, rp)
					rpCopy := rp
					mdl.Blocks = append(mdl.Blocks, DocumentBlock{Paragraph: &rpCopy})
				}
			}
			for _, ct := range c.Tbl {
				if tbl, ok := tMap[ct]; ok {
					rt := convertTable(tbl)
					mdl.Tables = append(mdl.Tables, rt)
					rtCopy := rt
					mdl.Blocks = append(mdl.Blocks, DocumentBlock{Table: &rtCopy})
				}
			}
		}
	}

	return mdl
}

// ResolveRunStyle reads the attributes set directly on a run. Attributes
// inherited from paragraph or document styles are left unset.
func ResolveRunStyle(r document.Run) RunStyle {
	return resolveRPr(r.X().RPr)
}

func resolveRPr(x *wml.CT_RPr) RunStyle {
	if x == nil {
		return RunStyle{}
	}
	var s RunStyle
	if x.RFonts != nil && x.RFonts.AsciiAttr != nil {
		s.FontFamily = *x.RFonts.AsciiAttr
	}
	if x.Sz != nil && x.Sz.ValAttr.ST_UnsignedDecimalNumber != nil {
		s.FontSizePt = float64(*x.Sz.ValAttr.ST_UnsignedDecimalNumber) / 2
	}
	if x.Color != nil && x.Color.ValAttr.ST_HexColorRGB != nil {
		s.FontColor = *x.Color.ValAttr.ST_HexColorRGB
	}
	s.Bold = onOff(x.B)
	s.Italic = onOff(x.I)
	s.Strike = onOff(x.Strike)
	if x.U != nil {
		s.Underline = x.U.ValAttr
		if s.Underline == wml.ST_UnderlineUnset {
			// <w:u/> without a value is a single underline
			s.Underline = wml.ST_UnderlineSingle
		}
	}
	if x.VertAlign != nil {
		s.VerticalAlign = x.VertAlign.ValAttr.String()
	}
	return s
}

func onOff(v *wml.CT_OnOff) Flag {
	if v == nil {
		return FlagUnset
	}
	if v.ValAttr == nil {
		return FlagOn
	}
	if v.ValAttr.Bool != nil {
		return FlagOf(*v.ValAttr.Bool)
	}
	if v.ValAttr.ST_OnOff1 == sharedTypes.ST_OnOff1Off {
		return FlagOff
	}
	return FlagOn
}

// convertRun builds a RenderRun from a unioffice Run.
func convertRun(r document.Run) RenderRun {
	return RenderRun{
		Run:   r,
		Text:  r.Text(),
		Style: ResolveRunStyle(r),
	}
}

// convertParagraph converts a unioffice Paragraph into the RenderParagraph IR.
func convertParagraph(p document.Paragraph) RenderParagraph {
	rp := RenderParagraph{Paragraph: p}

	for _, run := range p.Runs() {
		rp.Runs = append(rp.Runs, convertRun(run))
	}

	if ppr := p.X().PPr; ppr != nil {
		if ppr.Jc != nil {
			switch ppr.Jc.ValAttr {
			case wml.ST_JcCenter:
				rp.Style.Alignment = "center"
			case wml.ST_JcRight, wml.ST_JcEnd:
				rp.Style.Alignment = "right"
			case wml.ST_JcBoth:
				rp.Style.Alignment = "justify"
			default:
				rp.Style.Alignment = "left"
			}
		}
		if ppr.PStyle != nil {
			rp.Style.HeadingLevel = headingLevel(ppr.PStyle.ValAttr)
		}
	}

	return rp
}

func headingLevel(style string) int {
	if !strings.HasPrefix(style, "Heading") {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimPrefix(style, "Heading"), "%d", &n); err != nil {
		return 0
	}
	return n
}

// convertTable converts a unioffice Table into the RenderTable IR.
func convertTable(t document.Table) RenderTable {
	rt := RenderTable{}

	for _, row := range t.Rows() {
		rr := RenderTableRow{}

		for _, cell := range row.Cells() {
			rc := RenderTableCell{ColSpan: 1}

			if tcPr := cell.X().TcPr; tcPr != nil {
				if tcPr.GridSpan != nil && tcPr.GridSpan.ValAttr > 1 {
					rc.ColSpan = int(tcPr.GridSpan.ValAttr)
				}
				if tcPr.Shd != nil && tcPr.Shd.FillAttr != nil && tcPr.Shd.FillAttr.ST_HexColorRGB != nil {
					rc.Style.BackgroundColor = *tcPr.Shd.FillAttr.ST_HexColorRGB
				}
				if tcPr.VAlign != nil {
					switch tcPr.VAlign.ValAttr {
					case wml.ST_VerticalJcTop:
						rc.Style.VerticalAlign = "top"
					case wml.ST_VerticalJcCenter:
						rc.Style.VerticalAlign = "middle"
					case wml.ST_VerticalJcBottom:
						rc.Style.VerticalAlign = "bottom"
					}
				}
			}

			for _, p := range cell.Paragraphs() {
				rc.Paragraphs = append(rc.Paragraphs, convertParagraph(p))
			}

			rr.Cells = append(rr.Cells, rc)
		}

		rt.Rows = append(rt.Rows, rr)
	}

	return rt
}
