package docx

import (
	"fmt"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// Intermediate representation (IR) for DOCX documents.
//
// These types capture just the information the generator cares about: the
// text of runs, paragraphs and tables, plus the handful of run attributes
// that must survive a text substitution.
//
// All colours are expressed as 6-character RGB hex strings without the leading
// "#" (e.g. "FF0000" for red).

// -----------------------------------------------------------------------------
// Run-level information
// -----------------------------------------------------------------------------

// Flag is a tri-state run attribute. FlagUnset means the run does not set the
// attribute and inherits it from the paragraph or style defaults.
type Flag uint8

const (
	FlagUnset Flag = iota
	FlagOff
	FlagOn
)

// IsOn reports whether the attribute is explicitly switched on.
func (f Flag) IsOn() bool { return f == FlagOn }

func (f Flag) String() string {
	switch f {
	case FlagOn:
		return "on"
	case FlagOff:
		return "off"
	default:
		return "unset"
	}
}

// FlagOf converts a bool into an explicit flag.
func FlagOf(b bool) Flag {
	if b {
		return FlagOn
	}
	return FlagOff
}

// RunStyle captures the character formatting for a run of text. Zero values
// mean "not set on the run".
type RunStyle struct {
	FontFamily    string  // e.g. "Times New Roman"
	FontSizePt    float64 // size in points
	FontColor     string  // "RRGGBB"
	Bold          Flag
	Italic        Flag
	Underline     wml.ST_Underline // wml.ST_UnderlineUnset inherits
	Strike        Flag
	VerticalAlign string // "superscript" | "subscript" | "baseline"
}

func (s RunStyle) String() string {
	return fmt.Sprintf("FontFamily: %s, FontSizePt: %f, FontColor: %s, Bold: %s, Italic: %s, Underline: %s, Strike: %s, VerticalAlign: %s",
		s.FontFamily, s.FontSizePt, s.FontColor, s.Bold, s.Italic, s.Underline, s.Strike, s.VerticalAlign)
}

// Carry returns the attributes that are copied onto rebuilt runs: bold,
// italic, underline, font family and font size. Unset attributes stay unset.
func (s RunStyle) Carry() RunStyle {
	return RunStyle{
		FontFamily: s.FontFamily,
		FontSizePt: s.FontSizePt,
		Bold:       s.Bold,
		Italic:     s.Italic,
		Underline:  s.Underline,
	}
}

// IsUnderlined reports whether the style draws an underline.
func (s RunStyle) IsUnderlined() bool {
	return s.Underline != wml.ST_UnderlineUnset && s.Underline != wml.ST_UnderlineNone
}

// RenderRun represents a single run (\<w:r>) within a paragraph.
type RenderRun struct {
	Run   document.Run // underlying run
	Text  string       // already expanded/decoded text for the run
	Style RunStyle     // resolved run style
}

func (r RenderRun) String() string {
	return fmt.Sprintf("Text: %q, Style: [%s]", r.Text, r.Style.String())
}

// -----------------------------------------------------------------------------
// Paragraph-level information
// -----------------------------------------------------------------------------

// ParagraphStyle captures paragraph-level formatting.
type ParagraphStyle struct {
	Alignment    string // "left" | "center" | "right" | "justify"
	HeadingLevel int    // 0 means normal paragraph, 1-6 for headings
}

func (s ParagraphStyle) String() string {
	return fmt.Sprintf("Alignment: %s, HeadingLevel: %d", s.Alignment, s.HeadingLevel)
}

// RenderParagraph is the IR for a paragraph.
type RenderParagraph struct {
	Paragraph document.Paragraph
	Runs      []RenderRun
	Style     ParagraphStyle
}

// Text returns the concatenated text of all runs.
func (p RenderParagraph) Text() string {
	var n int
	for _, r := range p.Runs {
		n += len(r.Text)
	}
	b := make([]byte, 0, n)
	for _, r := range p.Runs {
		b = append(b, r.Text...)
	}
	return string(b)
}

func (p RenderParagraph) String() string {
	return fmt.Sprintf("Runs: %d, Style: [%s]", len(p.Runs), p.Style.String())
}

// -----------------------------------------------------------------------------
// Table-level information
// -----------------------------------------------------------------------------

// TableCellStyle represents the limited set of cell properties we render.
type TableCellStyle struct {
	BackgroundColor string // fill colour – "RRGGBB"
	VerticalAlign   string // "top" | "middle" | "bottom"
}

func (s TableCellStyle) String() string {
	return fmt.Sprintf("BackgroundColor: %s, VerticalAlign: %s", s.BackgroundColor, s.VerticalAlign)
}

// RenderTableCell is the IR for a single table cell. It can contain multiple
// paragraphs.
type RenderTableCell struct {
	Paragraphs []RenderParagraph
	ColSpan    int // 1 if not horizontally merged
	Style      TableCellStyle
}

// Text returns the cell text with paragraphs joined by newlines.
func (c RenderTableCell) Text() string {
	var s string
	for i, p := range c.Paragraphs {
		if i > 0 {
			s += "\n"
		}
		s += p.Text()
	}
	return s
}

func (c RenderTableCell) String() string {
	return fmt.Sprintf("Paragraphs: %d, ColSpan: %d, Style: [%s]", len(c.Paragraphs), c.ColSpan, c.Style.String())
}

// RenderTableRow represents a row within a table.
type RenderTableRow struct {
	Cells []RenderTableCell
}

// Texts returns one string per grid column. A cell spanning several grid
// columns is repeated for each of them, so fixed column positions keep their
// meaning in tables with merged cells.
func (r RenderTableRow) Texts() []string {
	var out []string
	for _, c := range r.Cells {
		span := c.ColSpan
		if span < 1 {
			span = 1
		}
		t := c.Text()
		for i := 0; i < span; i++ {
			out = append(out, t)
		}
	}
	return out
}

func (r RenderTableRow) String() string {
	return fmt.Sprintf("Cells: %d", len(r.Cells))
}

// RenderTable is the IR for a table – rows in order.
type RenderTable struct {
	Rows []RenderTableRow
}

func (t RenderTable) String() string {
	return fmt.Sprintf("Rows: %d", len(t.Rows))
}

// -----------------------------------------------------------------------------
// Block ordering
// -----------------------------------------------------------------------------

// DocumentBlock represents a top-level block element in the DOCX body – either
// a paragraph or a table. Exactly one of Paragraph/Table will be non-nil.
type DocumentBlock struct {
	Paragraph *RenderParagraph
	Table     *RenderTable
}

// -----------------------------------------------------------------------------
// Top-level document model
// -----------------------------------------------------------------------------

type DocumentModel struct {
	// The document body as a sequence of paragraphs and tables in the order
	// they appear. Paragraphs and Tables hold the same items by kind.
	Blocks     []DocumentBlock
	Paragraphs []RenderParagraph
	Tables     []RenderTable
}

func (d DocumentModel) String() string {
	return fmt.Sprintf("Blocks: %d, Paragraphs: %d, Tables: %d", len(d.Blocks), len(d.Paragraphs), len(d.Tables))
}
