package roster

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aerissecure/protocols/docx"
	"github.com/aerissecure/protocols/xlsx"
)

// ErrUnsupportedSource is returned for application files that are neither
// .docx nor .xlsx.
var ErrUnsupportedSource = errors.New("unsupported source format")

// Table is a source table flattened to cell texts, row by row.
type Table [][]string

// ReadSource loads every table of the application at path. Word documents
// contribute their body tables in order; each spreadsheet sheet is one table.
func ReadSource(path string) ([]Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx":
		m, err := docx.OpenDocumentModel(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		tables := make([]Table, 0, len(m.Tables))
		for _, t := range m.Tables {
			var tbl Table
			for _, r := range t.Rows {
				tbl = append(tbl, r.Texts())
			}
			tables = append(tables, tbl)
		}
		return tables, nil
	case ".xlsx":
		m, err := xlsx.OpenWorkbookModel(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		tables := make([]Table, 0, len(m.Sheets))
		for _, s := range m.Sheets {
			tables = append(tables, s.Table())
		}
		return tables, nil
	default:
		return nil, fmt.Errorf("read %s: %w %q", path, ErrUnsupportedSource, ext)
	}
}
