package xlsx

import (
	"fmt"
	"io"
	"os"

	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"
)

// OpenWorkbookModel reads the XLSX file at path.
func OpenWorkbookModel(path string) (WorkbookModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return WorkbookModel{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return WorkbookModel{}, err
	}
	return ParseWorkbookModel(f, info.Size())
}

// ParseWorkbookModel reads an XLSX from r/size and returns the intermediate representation.
func ParseWorkbookModel(r io.ReaderAt, size int64) (WorkbookModel, error) {
	wb, err := spreadsheet.Read(r, size)
	if err != nil {
		return WorkbookModel{}, err
	}

	var model WorkbookModel
	for _, sheet := range wb.Sheets() {
		model.Sheets = append(model.Sheets, buildSheet(sheet))
	}
	return model, nil
}

type span struct{ rows, cols int }

func buildSheet(sheet spreadsheet.Sheet) RenderSheet {
	rs := RenderSheet{Name: sheet.Name()}

	// --- process merges ---
	masters := make(map[[2]int]span)
	covered := make(map[[2]int]bool)
	maxCols := 0
	if sheet.X().MergeCells != nil {
		for _, mc := range sheet.X().MergeCells.MergeCell {
			from, to, err := reference.ParseRangeReference(mc.RefAttr)
			if err != nil {
				continue
			}
			fromRow, fromCol := int(from.RowIdx-1), int(from.ColumnIdx)
			toRow, toCol := int(to.RowIdx-1), int(to.ColumnIdx)
			masters[[2]int{fromRow, fromCol}] = span{toRow - fromRow + 1, toCol - fromCol + 1}
			for r := fromRow; r <= toRow; r++ {
				for c := fromCol; c <= toCol; c++ {
					if r != fromRow || c != fromCol {
						covered[[2]int{r, c}] = true
					}
				}
			}
			maxCols = max(maxCols, toCol+1)
		}
	}

	// ---- find max column ----
	for _, row := range sheet.Rows() {
		for _, cell := range row.Cells() {
			if col, err := cell.Column(); err == nil {
				maxCols = max(maxCols, int(reference.ColumnToIndex(col))+1)
			}
		}
	}

	// --- build rows ---
	for _, row := range sheet.Rows() {
		rowIdx := int(row.RowNumber()) - 1
		if rowIdx < 0 {
			continue
		}
		if rowIdx >= len(rs.Rows) {
			// grow slice to accommodate sparse rows
			rs.Rows = append(rs.Rows, make([]RenderRow, rowIdx-len(rs.Rows)+1)...)
		}
		rr := &rs.Rows[rowIdx]
		rr.Cells = make([]*RenderCell, maxCols)
		rr.Hidden = row.IsHidden()

		for _, cell := range row.Cells() {
			colName, err := cell.Column()
			if err != nil {
				continue
			}
			colIdx := int(reference.ColumnToIndex(colName))
			if covered[[2]int{rowIdx, colIdx}] {
				continue
			}
			rc := &RenderCell{
				Ref:     fmt.Sprintf("%s%d", colName, rowIdx+1),
				Value:   cell.GetFormattedValue(),
				ColSpan: 1,
				RowSpan: 1,
			}
			if sp, ok := masters[[2]int{rowIdx, colIdx}]; ok {
				rc.RowSpan, rc.ColSpan = sp.rows, sp.cols
			}
			rr.Cells[colIdx] = rc
		}
	}
	for i := range rs.Rows {
		if rs.Rows[i].Cells == nil {
			rs.Rows[i].Cells = make([]*RenderCell, maxCols)
		}
	}
	return rs
}
