package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// ErrRowIndex is returned when a template row index is outside the table.
var ErrRowIndex = errors.New("docx: template row index out of range")

// RowCloner produces copies of a template row. The first copy replaces the
// template row, so after n calls to Next the table holds exactly n rows
// derived from it; further copies are appended at the end of the table.
type RowCloner struct {
	tbl      document.Table
	template *wml.CT_Row
	seed     []byte
	consumed bool
}

// NewRowCloner prepares table for cloning the row at index templateRow.
func NewRowCloner(table document.Table, templateRow int) (*RowCloner, error) {
	rows := table.Rows()
	if templateRow < 0 || templateRow >= len(rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrRowIndex, templateRow, len(rows))
	}
	tr := rows[templateRow].X()
	seed, err := encodeRow(tr)
	if err != nil {
		return nil, fmt.Errorf("encode template row: %w", err)
	}
	return &RowCloner{tbl: table, template: tr, seed: seed}, nil
}

// Next appends a fresh copy of the template row and returns it.
func (c *RowCloner) Next() (document.Row, error) {
	tr, err := decodeRow(c.seed)
	if err != nil {
		return document.Row{}, fmt.Errorf("copy template row: %w", err)
	}
	if !c.consumed {
		removeRow(c.tbl.X(), c.template)
		c.consumed = true
	}
	c.tbl.X().EG_ContentRowContent = append(c.tbl.X().EG_ContentRowContent, &wml.EG_ContentRowContent{
		Tr: []*wml.CT_Row{tr},
	})
	rows := c.tbl.Rows()
	return rows[len(rows)-1], nil
}

// Close removes the template row when no copy was ever made, so an empty
// roster leaves no exemplar row behind.
func (c *RowCloner) Close() {
	if !c.consumed {
		removeRow(c.tbl.X(), c.template)
		c.consumed = true
	}
}

func removeRow(tbl *wml.CT_Tbl, tr *wml.CT_Row) {
	for i, rc := range tbl.EG_ContentRowContent {
		for j, r := range rc.Tr {
			if r != tr {
				continue
			}
			rc.Tr = append(rc.Tr[:j], rc.Tr[j+1:]...)
			if len(rc.Tr) == 0 && rc.Sdt == nil {
				tbl.EG_ContentRowContent = append(tbl.EG_ContentRowContent[:i], tbl.EG_ContentRowContent[i+1:]...)
			}
			return
		}
	}
}

// Namespaces that may appear inside a table row. Declaring them on the
// wrapper element lets the decoder resolve the prefixed names the wml
// marshallers emit.
var rowNamespaces = []xml.Attr{
	{Name: xml.Name{Local: "xmlns:w"}, Value: "http://schemas.openxmlformats.org/wordprocessingml/2006/main"},
	{Name: xml.Name{Local: "xmlns:r"}, Value: "http://schemas.openxmlformats.org/officeDocument/2006/relationships"},
	{Name: xml.Name{Local: "xmlns:m"}, Value: "http://schemas.openxmlformats.org/officeDocument/2006/math"},
	{Name: xml.Name{Local: "xmlns:wp"}, Value: "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"},
	{Name: xml.Name{Local: "xmlns:a"}, Value: "http://schemas.openxmlformats.org/drawingml/2006/main"},
	{Name: xml.Name{Local: "xmlns:pic"}, Value: "http://schemas.openxmlformats.org/drawingml/2006/picture"},
	{Name: xml.Name{Local: "xmlns:mc"}, Value: "http://schemas.openxmlformats.org/markup-compatibility/2006"},
	{Name: xml.Name{Local: "xmlns:w14"}, Value: "http://schemas.microsoft.com/office/word/2010/wordml"},
	{Name: xml.Name{Local: "xmlns:v"}, Value: "urn:schemas-microsoft-com:vml"},
	{Name: xml.Name{Local: "xmlns:o"}, Value: "urn:schemas-microsoft-com:office:office"},
}

// encodeRow serialises a row so it can be decoded into independent copies.
func encodeRow(tr *wml.CT_Row) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	start := xml.StartElement{Name: xml.Name{Local: "w:tr"}, Attr: rowNamespaces}
	if err := enc.EncodeElement(tr, start); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRow(b []byte) (*wml.CT_Row, error) {
	tr := wml.NewCT_Row()
	if err := xml.Unmarshal(b, tr); err != nil {
		return nil, err
	}
	return tr, nil
}
