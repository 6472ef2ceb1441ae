package docx

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// DebugHTML adds data attributes with the resolved styles to the preview.
var DebugHTML bool

// DocxToHTML converts a DOCX reader to an HTML preview using the
// intermediate representation defined in this package.
func DocxToHTML(r io.ReaderAt, size int64) (string, error) {
	ir, err := ParseDocumentModel(r, size)
	if err != nil {
		return "", err
	}
	return RenderDocumentHTML(ir), nil
}

// -----------------------------------------------------------------------------
// Helpers for sanitising CSS values
// -----------------------------------------------------------------------------
var (
	fontFamilySafeRe = regexp.MustCompile(`[^\p{L}\p{N} ,_-]+`)
	hexColorRe       = regexp.MustCompile(`^[0-9a-fA-F]{3}([0-9a-fA-F]{3})?$`)
)

// sanitizeFontFamily strips any characters that are not considered safe for a
// CSS font-family declaration.  This prevents breaking out of the CSS context
// and injecting arbitrary directives.
func sanitizeFontFamily(s string) string {
	return fontFamilySafeRe.ReplaceAllString(s, "")
}

// sanitizeColor ensures the value is a valid 3- or 6-digit hexadecimal string.
// Any invalid input results in an empty string, preventing potential CSS or
// markup injection.
func sanitizeColor(s string) string {
	if hexColorRe.MatchString(s) {
		return s
	}
	return ""
}

// -----------------------------------------------------------------------------
// Style to CSS
// -----------------------------------------------------------------------------

func runStyleToCSS(s RunStyle) string {
	var b strings.Builder
	if s.FontFamily != "" {
		fmt.Fprintf(&b, "font-family:'%s';", sanitizeFontFamily(s.FontFamily))
	}
	if s.FontSizePt > 0 {
		fmt.Fprintf(&b, "font-size:%.1fpt;", s.FontSizePt)
	}
	if safe := sanitizeColor(s.FontColor); safe != "" {
		fmt.Fprintf(&b, "color:#%s;", safe)
	}
	if s.Bold.IsOn() {
		b.WriteString("font-weight:bold;")
	}
	if s.Italic.IsOn() {
		b.WriteString("font-style:italic;")
	}
	var deco []string
	if s.IsUnderlined() {
		deco = append(deco, "underline")
	}
	if s.Strike.IsOn() {
		deco = append(deco, "line-through")
	}
	if len(deco) > 0 {
		fmt.Fprintf(&b, "text-decoration:%s;", strings.Join(deco, " "))
	}
	switch s.VerticalAlign {
	case "superscript":
		b.WriteString("vertical-align:super;")
	case "subscript":
		b.WriteString("vertical-align:sub;")
	}
	return b.String()
}

func paragraphStyleToCSS(s ParagraphStyle) string {
	switch s.Alignment {
	case "center", "right", "justify":
		return "text-align:" + s.Alignment + ";"
	}
	return ""
}

func cellStyleToCSS(s TableCellStyle) string {
	var b strings.Builder
	if safe := sanitizeColor(s.BackgroundColor); safe != "" {
		fmt.Fprintf(&b, "background-color:#%s;", safe)
	}
	switch s.VerticalAlign {
	case "":
	case "top", "middle":
		fmt.Fprintf(&b, "vertical-align:%s;", s.VerticalAlign)
	default:
		b.WriteString("vertical-align:bottom;")
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// Paragraph & Run rendering
// -----------------------------------------------------------------------------

// placeholderRe matches blanks left for hand filling, such as the number in
// "ПРОТОКОЛ №_____". Unfilled ones are marked in the preview.
var placeholderRe = regexp.MustCompile(`_{3,}`)

// Placeholders returns the unfilled blanks of m in document order, table
// cells included.
func Placeholders(m DocumentModel) []string {
	var out []string
	collect := func(p RenderParagraph) {
		out = append(out, placeholderRe.FindAllString(p.Text(), -1)...)
	}
	for _, blk := range m.Blocks {
		switch {
		case blk.Paragraph != nil:
			collect(*blk.Paragraph)
		case blk.Table != nil:
			for _, row := range blk.Table.Rows {
				for _, c := range row.Cells {
					for _, p := range c.Paragraphs {
						collect(p)
					}
				}
			}
		}
	}
	return out
}

func renderRunsHTML(runs []RenderRun) string {
	var b strings.Builder
	for _, run := range runs {
		text := html.EscapeString(run.Text)
		text = strings.ReplaceAll(text, "\n", "<br>")
		text = placeholderRe.ReplaceAllString(text, `<mark class="placeholder">$0</mark>`)
		css := runStyleToCSS(run.Style)
		debugAttr := ""
		if DebugHTML {
			debugAttr = fmt.Sprintf(" data-run-style=\"%s\"", html.EscapeString(run.Style.String()))
		}
		if css != "" {
			fmt.Fprintf(&b, "<span style=\"%s\"%s>%s</span>", css, debugAttr, text)
		} else {
			fmt.Fprintf(&b, "<span%s>%s</span>", debugAttr, text)
		}
	}
	return b.String()
}

func renderParagraphHTML(p RenderParagraph) string {
	tag := "p"
	if p.Style.HeadingLevel > 0 && p.Style.HeadingLevel <= 6 {
		tag = fmt.Sprintf("h%d", p.Style.HeadingLevel)
	}
	attrs := ""
	if css := paragraphStyleToCSS(p.Style); css != "" {
		attrs = fmt.Sprintf(" style=\"%s\"", css)
	}
	if DebugHTML {
		attrs += fmt.Sprintf(" data-para-style=\"%s\"", html.EscapeString(p.Style.String()))
	}
	return fmt.Sprintf("<%s%s>%s</%s>\n", tag, attrs, renderRunsHTML(p.Runs), tag)
}

// -----------------------------------------------------------------------------
// Table rendering
// -----------------------------------------------------------------------------

const cellBorderCSS = "border:1px solid #333; padding:4px;"

func renderTableHTML(t RenderTable) string {
	var b strings.Builder
	b.WriteString("<table style=\"border-collapse:collapse;\">\n")
	for _, row := range t.Rows {
		b.WriteString("  <tr>")
		for _, cell := range row.Cells {
			cellHTML := "&nbsp;"
			if len(cell.Paragraphs) > 0 {
				var paraB strings.Builder
				for _, p := range cell.Paragraphs {
					paraB.WriteString(renderParagraphHTML(p))
				}
				cellHTML = paraB.String()
			}

			attrs := ""
			if cell.ColSpan > 1 {
				attrs = fmt.Sprintf(" colspan=\"%d\"", cell.ColSpan)
			}
			attrs += fmt.Sprintf(" style=\"%s%s\"", cellStyleToCSS(cell.Style), cellBorderCSS)
			if DebugHTML {
				attrs += fmt.Sprintf(" data-cell-style=\"%s\"", html.EscapeString(cell.Style.String()))
			}
			fmt.Fprintf(&b, "    <td%s>%s</td>", attrs, cellHTML)
		}
		b.WriteString("  </tr>\n")
	}
	b.WriteString("</table>\n")
	return b.String()
}

// -----------------------------------------------------------------------------
// Top-level rendering entry point
// -----------------------------------------------------------------------------

const previewHead = `<html><head><meta charset="utf-8">
<style>mark.placeholder { background:#ffe08a; }</style>
</head><body>
`

// RenderDocumentHTML converts the DocumentModel into a standalone UTF-8 HTML
// page. Unfilled placeholders are wrapped in <mark class="placeholder">.
func RenderDocumentHTML(m DocumentModel) string {
	var b strings.Builder
	b.WriteString(previewHead)
	for _, blk := range m.Blocks {
		switch {
		case blk.Paragraph != nil:
			b.WriteString(renderParagraphHTML(*blk.Paragraph))
		case blk.Table != nil:
			b.WriteString(renderTableHTML(*blk.Table))
		}
	}
	b.WriteString("</body></html>\n")
	return b.String()
}
