package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/notesite/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML notes. Heading tags become Heading blocks,
// <pre><code class="language-x"> becomes a CodeBlock, <li> becomes a
// ListItem, and remaining text accumulates into paragraphs.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, source string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &doctree.Document{
		Source: source,
		Title:  titleFromSource(source),
	}
	if title := findTitle(root); title != "" {
		doc.Title = title
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

	var walk func(n *html.Node, listDepth int, ordered bool)
	walk = func(n *html.Node, listDepth int, ordered bool) {
		if n.Type == html.ElementNode {
			switch {
			case headingLevel(n.Data) > 0:
				flushPara()
				text := strings.TrimSpace(inlineText(n))
				doc.Blocks = append(doc.Blocks, doctree.Block{
					Kind:  doctree.KindHeading,
					Level: headingLevel(n.Data),
					Text:  text,
					Links: doctree.ExtractLinks(text),
				})
				return

			case n.Data == "pre":
				flushPara()
				lang, code := preContent(n)
				doc.Blocks = append(doc.Blocks, doctree.Block{
					Kind: doctree.KindCodeBlock,
					Lang: lang,
					Text: code,
				})
				return

			case n.Data == "li":
				flushPara()
				text := strings.TrimSpace(ownText(n))
				if text != "" {
					doc.Blocks = append(doc.Blocks, doctree.Block{
						Kind:    doctree.KindListItem,
						Level:   listDepth,
						Text:    text,
						Ordered: ordered,
						Links:   doctree.ExtractLinks(text),
					})
				}
				// Nested lists inside this item.
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
						walk(c, listDepth+1, c.Data == "ol")
					}
				}
				return

			case n.Data == "ul" || n.Data == "ol":
				flushPara()
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c, listDepth, n.Data == "ol")
				}
				return

			case n.Data == "p" || n.Data == "div" || n.Data == "blockquote":
				flushPara()
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c, listDepth, ordered)
				}
				flushPara()
				return

			case n.Data == "a":
				// Preserve anchors in inline-link syntax so resolution works.
				href := attr(n, "href")
				text := strings.TrimSpace(textContent(n))
				if href != "" && text != "" {
					para.WriteString(fmt.Sprintf("[%s](%s)", text, href))
					return
				}

			case n.Data == "script" || n.Data == "style" || n.Data == "head":
				return
			}
		}

		if n.Type == html.TextNode {
			para.WriteString(n.Data)
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, listDepth, ordered)
		}
	}

	walk(root, 0, false)
	flushPara()

	return doc, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(textContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// textContent returns all text under a node.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// inlineText returns all text under a node, with anchors kept in inline
// [text](href) syntax so downstream link handling sees them.
func inlineText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			text := strings.TrimSpace(textContent(n))
			if href != "" && text != "" {
				fmt.Fprintf(&buf, "[%s](%s)", text, href)
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return buf.String()
}

// ownText returns text under a node excluding nested lists.
func ownText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return buf.String()
}

// preContent extracts the code text and language tag of a <pre> block.
// The tag comes from a class="language-x" on the inner <code>, if present.
func preContent(n *html.Node) (lang, code string) {
	inner := n
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			inner = c
			break
		}
	}
	if inner != n {
		for _, cls := range strings.Fields(attr(inner, "class")) {
			if strings.HasPrefix(cls, "language-") {
				lang = strings.TrimPrefix(cls, "language-")
				break
			}
		}
	}
	return lang, textContent(inner)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
