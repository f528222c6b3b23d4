package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/notesite/internal/doctree"
)

// CSVParser handles CSV notes. The file becomes one section titled by the
// document: a paragraph naming the columns, then one list item per data row
// with "header: value" pairs.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, source string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &doctree.Document{
		Source: source,
		Title:  titleFromSource(source),
	}

	if len(records) == 0 {
		return doc, nil
	}

	// First row is headers.
	headers := records[0]
	doc.Blocks = append(doc.Blocks, doctree.Block{
		Kind:  doctree.KindHeading,
		Level: 1,
		Text:  doc.Title,
	})
	doc.Blocks = append(doc.Blocks, doctree.Block{
		Kind: doctree.KindParagraph,
		Text: "Columns: " + strings.Join(headers, ", "),
	})

	for _, row := range records[1:] {
		var cells []string
		for j, cell := range row {
			if j < len(headers) {
				cells = append(cells, headers[j]+": "+cell)
			} else {
				cells = append(cells, cell)
			}
		}
		doc.Blocks = append(doc.Blocks, doctree.Block{
			Kind: doctree.KindListItem,
			Text: strings.Join(cells, ", "),
		})
	}

	return doc, nil
}
