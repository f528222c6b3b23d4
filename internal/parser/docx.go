package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/notesite/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx notes. Heading styles map to Heading blocks,
// list-styled paragraphs to ListItems, everything else to paragraphs.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, source string) (*doctree.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "notesite-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	parsed, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := &doctree.Document{
		Source: source,
		Title:  titleFromSource(source),
	}

	for _, item := range parsed.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}

		if level := docxHeadingLevel(para); level > 0 {
			doc.Blocks = append(doc.Blocks, doctree.Block{
				Kind:  doctree.KindHeading,
				Level: level,
				Text:  text,
				Links: doctree.ExtractLinks(text),
			})
			continue
		}
		if docxIsListParagraph(para) {
			doc.Blocks = append(doc.Blocks, doctree.Block{
				Kind:  doctree.KindListItem,
				Text:  text,
				Links: doctree.ExtractLinks(text),
			})
			continue
		}
		doc.Blocks = append(doc.Blocks, doctree.Block{
			Kind:  doctree.KindParagraph,
			Text:  text,
			Links: doctree.ExtractLinks(text),
		})
	}

	return doc, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level := 1; level <= 6; level++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", level)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", level)) {
			return level
		}
	}
	return 0
}

func docxIsListParagraph(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	style := para.Properties.Style.Val
	return strings.EqualFold(style, "ListParagraph")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
