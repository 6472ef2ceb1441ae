package roster

import (
	"errors"
	"strings"
	"unicode"
)

// Layout gives the zero-based column of each field in a source table and the
// number of header rows skipped at the top of every table.
type Layout struct {
	Name       int `yaml:"name"`
	NationalID int `yaml:"national_id"`
	Role       int `yaml:"role"`
	Programs   int `yaml:"programs"`
	HeaderRows int `yaml:"header_rows"`
}

// DefaultLayout reads name, id, role and programs from columns 1 to 4 below a
// single header row. Column 0 holds the applicant's sequence number.
func DefaultLayout() Layout {
	return Layout{Name: 1, NationalID: 2, Role: 3, Programs: 4, HeaderRows: 1}
}

func (l Layout) width() int {
	return max(l.Name, l.NationalID, l.Role, l.Programs) + 1
}

// Validate reports negative or repeated column positions.
func (l Layout) Validate() error {
	if l.HeaderRows < 0 {
		return errors.New("header_rows must not be negative")
	}
	seen := make(map[int]bool, 4)
	for _, c := range []int{l.Name, l.NationalID, l.Role, l.Programs} {
		if c < 0 {
			return errors.New("column positions must not be negative")
		}
		if seen[c] {
			return errors.New("column positions must be distinct")
		}
		seen[c] = true
	}
	return nil
}

func isTokenSep(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// Tokenize splits free program-code text on runs of commas and Unicode
// whitespace (no-break and em spaces included).
func Tokenize(text string) []string {
	toks := strings.FieldsFunc(text, isTokenSep)
	if len(toks) == 0 {
		return nil
	}
	return toks
}

// Extract reads person records from tables in table then row order. Header
// rows, rows too short for the layout and rows with a blank name are skipped.
func Extract(tables []Table, l Layout) []PersonRecord {
	var out []PersonRecord
	width := l.width()
	for _, t := range tables {
		for i, row := range t {
			if i < l.HeaderRows || len(row) < width {
				continue
			}
			name := strings.TrimSpace(row[l.Name])
			if name == "" {
				continue
			}
			out = append(out, PersonRecord{
				FullName:   name,
				NationalID: strings.TrimSpace(row[l.NationalID]),
				Role:       strings.TrimSpace(row[l.Role]),
				Programs:   Tokenize(row[l.Programs]),
			})
		}
	}
	return out
}
