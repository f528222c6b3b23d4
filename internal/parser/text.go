package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/notesite/internal/doctree"
)

// TextParser handles plain-text notes with a best-effort scan of the same
// line conventions as markdown: ATX headings, triple-backtick fences, and
// list markers. Anything else accumulates into paragraphs, so parsing never
// fails on irregular hand-written notes, regardless of line length.
type TextParser struct{}

var (
	headingRE  = regexp.MustCompile(`^(#+)\s+(.+?)\s*#*\s*$`)
	fenceRE    = regexp.MustCompile("^```\\s*(\\S*)\\s*$")
	listItemRE = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+(.+)$`)
)

func (p *TextParser) Parse(r io.Reader, source string) (*doctree.Document, error) {
	doc := &doctree.Document{
		Source: source,
		Title:  titleFromSource(source),
	}

	var para strings.Builder
	flushPara := func() {
		t := strings.TrimSpace(para.String())
		para.Reset()
		if t == "" {
			return
		}
		doc.Blocks = append(doc.Blocks, doctree.Block{
			Kind:  doctree.KindParagraph,
			Text:  t,
			Links: doctree.ExtractLinks(t),
		})
	}

	inFence := false
	fenceLang := ""
	var fenceBody strings.Builder

	closeFence := func() {
		doc.Blocks = append(doc.Blocks, doctree.Block{
			Kind: doctree.KindCodeBlock,
			Lang: fenceLang,
			Text: fenceBody.String(),
		})
		fenceBody.Reset()
		fenceLang = ""
		inFence = false
	}

	handleLine := func(line string) {
		if inFence {
			if strings.TrimSpace(line) == "```" {
				closeFence()
			} else {
				fenceBody.WriteString(line)
				fenceBody.WriteByte('\n')
			}
			return
		}

		if m := fenceRE.FindStringSubmatch(line); m != nil {
			flushPara()
			inFence = true
			fenceLang = m[1]
			return
		}

		if m := headingRE.FindStringSubmatch(line); m != nil {
			flushPara()
			level := len(m[1])
			if level > 6 {
				level = 6
			}
			doc.Blocks = append(doc.Blocks, doctree.Block{
				Kind:  doctree.KindHeading,
				Level: level,
				Text:  m[2],
				Links: doctree.ExtractLinks(m[2]),
			})
			return
		}

		if m := listItemRE.FindStringSubmatch(line); m != nil {
			flushPara()
			text := m[3]
			marker := m[2]
			doc.Blocks = append(doc.Blocks, doctree.Block{
				Kind:    doctree.KindListItem,
				Level:   len(m[1]) / 2,
				Text:    text,
				Ordered: marker[0] >= '0' && marker[0] <= '9',
				Links:   doctree.ExtractLinks(text),
			})
			return
		}

		if strings.TrimSpace(line) == "" {
			flushPara()
			return
		}

		if para.Len() > 0 {
			para.WriteByte('\n')
		}
		para.WriteString(line)
	}

	// bufio.Reader instead of a Scanner: a Scanner caps the line length and
	// errors past it, but arbitrarily long lines are still valid note text.
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			handleLine(line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	// An unterminated fence closes implicitly at end-of-input.
	if inFence {
		closeFence()
	}
	flushPara()

	return doc, nil
}
