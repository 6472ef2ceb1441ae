package xlsx

import (
	"fmt"
)

// Intermediate representation for XLSX. Only values and merge geometry are
// kept; an application workbook is read as plain tables.

// RenderCell is the IR for a single cell (or merged master).
type RenderCell struct {
	Ref     string // e.g. "A1"
	Value   string // already formatted value
	ColSpan int    // 1 if not merged
	RowSpan int    // 1 if not merged
}

func (c RenderCell) String() string {
	return fmt.Sprintf("Ref: %s, Value: %s, ColSpan: %d, RowSpan: %d", c.Ref, c.Value, c.ColSpan, c.RowSpan)
}

// RenderRow represents one logical row in a sheet.
type RenderRow struct {
	Hidden bool
	Cells  []*RenderCell // length == column count of the sheet; nil for blank or covered cells
}

func (r RenderRow) String() string {
	return fmt.Sprintf("Hidden: %t, Cells: %d", r.Hidden, len(r.Cells))
}

// Texts returns one value per column. A merged master's value is repeated
// across every column it spans, so fixed column positions stay meaningful.
func (r RenderRow) Texts() []string {
	out := make([]string, len(r.Cells))
	for i := 0; i < len(r.Cells); i++ {
		c := r.Cells[i]
		if c == nil {
			continue
		}
		for j := 0; j < c.ColSpan && i+j < len(out); j++ {
			out[i+j] = c.Value
		}
		i += c.ColSpan - 1
	}
	return out
}

// RenderSheet is the intermediate representation of a worksheet.
type RenderSheet struct {
	Name string
	Rows []RenderRow // in order; sparse rows are present with no cells
}

func (s RenderSheet) String() string {
	return fmt.Sprintf("Name: %s, Rows: %d", s.Name, len(s.Rows))
}

// Table flattens the sheet into rows of cell texts.
func (s RenderSheet) Table() [][]string {
	out := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		out = append(out, r.Texts())
	}
	return out
}

// WorkbookModel is the top-level IR containing all sheets.
type WorkbookModel struct {
	Sheets []RenderSheet
}

func (m WorkbookModel) String() string {
	return fmt.Sprintf("Sheets: %d", len(m.Sheets))
}
