package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/dgallion1/notesite/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown notes using goldmark. It never fails on
// malformed input: anything goldmark does not recognize as structure ends up
// as paragraph text, and an unterminated fence runs to end-of-input.
type MarkdownParser struct{}

// noteMeta holds the optional YAML frontmatter fields of a note.
type noteMeta struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

func (p *MarkdownParser) Parse(r io.Reader, source string) (*doctree.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &doctree.Document{
		Source: source,
		Title:  titleFromSource(source),
	}

	// Frontmatter is optional; if it fails to parse, the whole input is body.
	var meta noteMeta
	src, fmErr := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if fmErr != nil {
		src = raw
	} else {
		if meta.Title != "" {
			doc.Title = meta.Title
		}
		doc.Tags = meta.Tags
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			level := node.Level
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
			// Raw source text keeps inline [text](target) syntax, so links
			// inside headings get extracted and validated like any other.
			text := rawText(node, src)
			if text == "" {
				text = strings.TrimSpace(string(node.Text(src)))
			}
			doc.Blocks = append(doc.Blocks, doctree.Block{
				Kind:  doctree.KindHeading,
				Level: level,
				Text:  text,
				Links: doctree.ExtractLinks(text),
			})

		case *ast.FencedCodeBlock:
			doc.Blocks = append(doc.Blocks, doctree.Block{
				Kind: doctree.KindCodeBlock,
				Lang: string(node.Language(src)),
				Text: blockLines(node, src),
			})

		case *ast.CodeBlock:
			// Indented code block, no language tag.
			doc.Blocks = append(doc.Blocks, doctree.Block{
				Kind: doctree.KindCodeBlock,
				Text: blockLines(node, src),
			})

		case *ast.List:
			walkList(node, src, 0, doc)

		default:
			t := rawText(n, src)
			if t != "" {
				doc.Blocks = append(doc.Blocks, doctree.Block{
					Kind:  doctree.KindParagraph,
					Text:  t,
					Links: doctree.ExtractLinks(t),
				})
			}
		}
	}

	return doc, nil
}

// walkList emits a ListItem block per item, recursing into nested lists.
func walkList(list *ast.List, src []byte, depth int, doc *doctree.Document) {
	ordered := list.IsOrdered()
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				walkList(nested, src, depth+1, doc)
				continue
			}
			t := rawText(c, src)
			if t == "" {
				continue
			}
			doc.Blocks = append(doc.Blocks, doctree.Block{
				Kind:    doctree.KindListItem,
				Level:   depth,
				Text:    t,
				Ordered: ordered,
				Links:   doctree.ExtractLinks(t),
			})
		}
	}
}

// blockLines returns the literal source lines of a block node, which for
// code blocks is the verbatim code content.
func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

// rawText returns the raw source text of a block, preserving inline syntax
// such as [text](target) so link extraction and rendering agree.
func rawText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	// Container blocks (blockquotes etc.) carry their text on children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t := rawText(c, src)
		if t == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(t)
	}
	return strings.TrimSpace(buf.String())
}
