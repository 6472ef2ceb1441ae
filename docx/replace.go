package docx

import (
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/ofc/sharedTypes"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// Replacement describes a formatting-preserving substitution inside a
// paragraph. Old is matched literally and case-sensitively.
type Replacement struct {
	Old string
	New string
	// Highlight names a part of New that is always rendered bold. It is
	// ignored when New does not contain it.
	Highlight string
}

// Segment is one run of a paragraph as seen by the replacer.
type Segment struct {
	Text  string
	Style RunStyle

	// x is the original run element for segments carried over unchanged.
	x *wml.CT_R
}

// Verbatim reports whether the segment is an original run kept as-is.
func (s Segment) Verbatim() bool { return s.x != nil }

// PlanReplacement computes the runs of a paragraph after replacing the first
// occurrence of rep.Old in the concatenated text of runs.
//
// Runs are treated as half-open intervals over the concatenated text. Runs
// ending at or before the match are kept, runs starting at or after its end
// are kept, and every run overlapping the match is dropped; the first of them
// lends its style to the inserted text. A space adjacent to the match is
// re-emitted as a separate run so spacing held by a dropped run survives.
//
// The second result is false, and runs is returned untouched, when there is
// no match.
func PlanReplacement(runs []Segment, rep Replacement) ([]Segment, bool) {
	if rep.Old == "" {
		return runs, false
	}
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	full := b.String()

	start := strings.Index(full, rep.Old)
	if start < 0 {
		return runs, false
	}
	end := start + len(rep.Old)

	var before, after []Segment
	ref := -1
	pos := 0
	for i, r := range runs {
		n := len(r.Text)
		switch {
		case pos+n <= start:
			before = append(before, r)
		case pos >= end:
			after = append(after, r)
		default:
			if ref < 0 {
				ref = i
			}
		}
		pos += n
	}

	// With no overlapping run the inserted text takes the paragraph defaults.
	var style RunStyle
	if ref >= 0 {
		style = runs[ref].Style.Carry()
	}

	spaceBefore := strings.HasSuffix(full[:start], " ")
	spaceAfter := strings.HasPrefix(full[end:], " ")

	out := make([]Segment, 0, len(before)+len(after)+5)
	out = append(out, before...)
	if spaceBefore {
		out = append(out, Segment{Text: " ", Style: style})
	}
	out = append(out, highlightSegments(rep, style)...)
	if spaceAfter {
		out = append(out, Segment{Text: " ", Style: style})
	}
	out = append(out, after...)
	return out, true
}

func highlightSegments(rep Replacement, style RunStyle) []Segment {
	if rep.Highlight == "" {
		return []Segment{{Text: rep.New, Style: style}}
	}
	pre, hl, post, ok := partition(rep.New, rep.Highlight)
	if !ok {
		return []Segment{{Text: rep.New, Style: style}}
	}
	bold := style
	bold.Bold = FlagOn

	var out []Segment
	if pre != "" {
		out = append(out, Segment{Text: pre, Style: style})
	}
	out = append(out, Segment{Text: hl, Style: bold})
	if post != "" {
		out = append(out, Segment{Text: post, Style: style})
	}
	return out
}

func partition(s, sep string) (before, match, after string, ok bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return s, "", "", false
	}
	return s[:i], sep, s[i+len(sep):], true
}

// runSlot is a run that is a direct child of a paragraph, with the content
// element holding it.
type runSlot struct {
	pc *wml.EG_PContent
	r  *wml.CT_R
}

// directRuns lists the runs placed directly in p. Runs nested in hyperlinks,
// fields or content controls are not part of the paragraph's own text.
func directRuns(p document.Paragraph) []runSlot {
	var out []runSlot
	for _, pc := range p.X().EG_PContent {
		for _, rc := range pc.EG_ContentRunContent {
			if rc.R != nil {
				out = append(out, runSlot{pc: pc, r: rc.R})
			}
		}
	}
	return out
}

// Segments returns the direct runs of p as replacer segments.
func Segments(p document.Paragraph) []Segment {
	return segmentsOf(p, directRuns(p))
}

func segmentsOf(p document.Paragraph, slots []runSlot) []Segment {
	byX := make(map[*wml.CT_R]document.Run)
	for _, r := range p.Runs() {
		byX[r.X()] = r
	}
	segs := make([]Segment, 0, len(slots))
	for _, s := range slots {
		r := byX[s.r]
		segs = append(segs, Segment{Text: r.Text(), Style: ResolveRunStyle(r), x: s.r})
	}
	return segs
}

// ReplaceParagraph applies rep to the direct runs of the paragraph. The runs
// overlapping the match are replaced in place by the new runs, so hyperlinks,
// bookmarks and other non-run content keep their position. It reports whether
// a match was found; without one the paragraph is untouched.
func ReplaceParagraph(p document.Paragraph, rep Replacement) bool {
	slots := directRuns(p)
	plan, ok := PlanReplacement(segmentsOf(p, slots), rep)
	if !ok {
		return false
	}

	kept := make(map[*wml.CT_R]bool, len(plan))
	var fresh []*wml.EG_ContentRunContent
	for _, seg := range plan {
		if seg.x != nil {
			kept[seg.x] = true
			continue
		}
		fresh = append(fresh, &wml.EG_ContentRunContent{R: newRun(p, seg)})
	}

	for _, s := range slots {
		if kept[s.r] {
			continue
		}
		s.pc.EG_ContentRunContent = spliceRun(s.pc.EG_ContentRunContent, s.r, fresh)
		fresh = nil
	}
	return true
}

// newRun builds a detached run holding seg.
func newRun(p document.Paragraph, seg Segment) *wml.CT_R {
	r := p.AddRun()
	r.AddText(seg.Text)
	ApplyRunStyle(r, seg.Style)
	x := p.X()
	x.EG_PContent = x.EG_PContent[:len(x.EG_PContent)-1]
	return r.X()
}

// spliceRun replaces the content element holding r with with.
func spliceRun(rcs []*wml.EG_ContentRunContent, r *wml.CT_R, with []*wml.EG_ContentRunContent) []*wml.EG_ContentRunContent {
	for i, rc := range rcs {
		if rc.R != r {
			continue
		}
		out := make([]*wml.EG_ContentRunContent, 0, len(rcs)-1+len(with))
		out = append(out, rcs[:i]...)
		out = append(out, with...)
		return append(out, rcs[i+1:]...)
	}
	return rcs
}

// ReplaceText applies rep to every body paragraph of doc, once per paragraph,
// and returns the number of paragraphs changed.
func ReplaceText(doc *document.Document, rep Replacement) int {
	n := 0
	for _, p := range doc.Paragraphs() {
		if ReplaceParagraph(p, rep) {
			n++
		}
	}
	return n
}

// ApplyRunStyle writes the carried attributes of s onto r. Unset attributes
// are not written so the run keeps inheriting them.
func ApplyRunStyle(r document.Run, s RunStyle) {
	rp := r.Properties()
	x := rp.X()
	if s.Bold != FlagUnset {
		x.B = onOffElement(s.Bold)
	}
	if s.Italic != FlagUnset {
		x.I = onOffElement(s.Italic)
	}
	if s.Underline != wml.ST_UnderlineUnset {
		x.U = wml.NewCT_Underline()
		x.U.ValAttr = s.Underline
	}
	if s.FontFamily != "" {
		rp.SetFontFamily(s.FontFamily)
	}
	if s.FontSizePt > 0 {
		rp.SetSize(measurement.Distance(s.FontSizePt) * measurement.Point)
	}
}

func onOffElement(f Flag) *wml.CT_OnOff {
	v := wml.NewCT_OnOff()
	if f == FlagOff {
		v.ValAttr = &sharedTypes.ST_OnOff{ST_OnOff1: sharedTypes.ST_OnOff1Off}
	}
	return v
}
