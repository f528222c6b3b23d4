// Package render walks the canonical document and emits the site's pages:
// one page per top-level section, subsections inline with anchor targets,
// a sidebar built from the TOC, and highlighted code blocks.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgallion1/notesite/internal/doctree"
	"github.com/dgallion1/notesite/internal/nav"
)

// Page is one rendered output artifact: bytes plus a relative path.
type Page struct {
	Path    string
	Title   string
	Sources []string
	Body    []byte
}

// Renderer assembles pages from a canonical document, TOC and link table.
type Renderer struct {
	siteTitle string
	pageLevel int // TOC depth at or above which a section starts its own page
	hl        Highlighter
	log       *slog.Logger
}

func New(siteTitle string, pageLevel int, hl Highlighter, log *slog.Logger) *Renderer {
	if pageLevel < 1 {
		pageLevel = 1
	}
	return &Renderer{siteTitle: siteTitle, pageLevel: pageLevel, hl: hl, log: log}
}

// Render produces the index page followed by one page per page-root TOC
// entry, in first-seen order. Sections below the page cutoff render inline
// on their nearest page-root ancestor's page. Render performs no I/O;
// pages go wherever the caller's Sink puts them.
func (r *Renderer) Render(canonical *doctree.CanonicalDocument, toc *nav.TocNode, links *nav.LinkTable) ([]Page, error) {
	var roots []*nav.TocNode
	pageOf := make(map[*doctree.CanonicalSection]string)

	var assign func(n *nav.TocNode, depth int, owner string)
	assign = func(n *nav.TocNode, depth int, owner string) {
		if depth <= r.pageLevel {
			owner = n.Slug + ".html"
			roots = append(roots, n)
		}
		pageOf[n.Section] = owner
		for _, c := range n.Children {
			assign(c, depth+1, owner)
		}
	}
	for _, top := range toc.Children {
		assign(top, 1, "")
	}

	pages := make([]Page, 0, len(roots)+1)

	for _, root := range roots {
		page, err := r.renderPage(root, toc, links, pageOf)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	index, err := r.renderIndex(pages, toc, pageOf)
	if err != nil {
		return nil, err
	}
	pages = append([]Page{index}, pages...)

	return pages, nil
}

// WriteAll renders and hands every page to the sink.
func (r *Renderer) WriteAll(canonical *doctree.CanonicalDocument, toc *nav.TocNode, links *nav.LinkTable, sink Sink) error {
	pages, err := r.Render(canonical, toc, links)
	if err != nil {
		return err
	}
	for _, p := range pages {
		if err := sink.WritePage(p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderPage(top *nav.TocNode, toc *nav.TocNode, links *nav.LinkTable, pageOf map[*doctree.CanonicalSection]string) (Page, error) {
	pagePath := top.Slug + ".html"

	var content bytes.Buffer
	sources := make(map[string]bool)

	renderSection := func(n *nav.TocNode) error {
		sec := n.Section
		for _, s := range sec.Sources {
			sources[s] = true
		}
		level := sec.Heading.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		fmt.Fprintf(&content, "<h%d id=%q>%s</h%d>\n", level, n.Slug, r.renderInline(sec.Heading.Text, pagePath, links, pageOf), level)
		body, err := r.renderBlocks(sec.Body, pagePath, links, pageOf)
		if err != nil {
			return fmt.Errorf("render section %q: %w", strings.Join(sec.Path, " > "), err)
		}
		content.WriteString(string(body))
		return nil
	}

	// Render this page root and its subtree, skipping subtrees that start
	// pages of their own.
	var renderTree func(n *nav.TocNode) error
	renderTree = func(n *nav.TocNode) error {
		if err := renderSection(n); err != nil {
			return err
		}
		for _, c := range n.Children {
			if pageOf[c.Section] != pagePath {
				continue
			}
			if err := renderTree(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := renderTree(top); err != nil {
		return Page{}, err
	}

	srcs := sortedKeys(sources)

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		SiteTitle: r.siteTitle,
		Title:     top.Title,
		Sidebar:   r.renderSidebar(toc, pagePath, pageOf),
		Content:   template.HTML(content.String()),
		Sources:   srcs,
	})
	if err != nil {
		return Page{}, fmt.Errorf("execute page template: %w", err)
	}

	return Page{Path: pagePath, Title: top.Title, Sources: srcs, Body: buf.Bytes()}, nil
}

func (r *Renderer) renderIndex(pages []Page, toc *nav.TocNode, pageOf map[*doctree.CanonicalSection]string) (Page, error) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, indexData{
		SiteTitle: r.siteTitle,
		Pages:     pages,
		Sidebar:   r.renderSidebar(toc, "index.html", pageOf),
	})
	if err != nil {
		return Page{}, fmt.Errorf("execute index template: %w", err)
	}
	return Page{Path: "index.html", Title: r.siteTitle, Body: buf.Bytes()}, nil
}

// renderBlocks renders a section body. Consecutive list items become one
// list, nested by depth; numbered items open <ol>, bulleted ones <ul>.
func (r *Renderer) renderBlocks(body []doctree.Block, pagePath string, links *nav.LinkTable, pageOf map[*doctree.CanonicalSection]string) (template.HTML, error) {
	var buf bytes.Buffer
	var lists []string // open list tags, innermost last

	closeListsTo := func(depth int) {
		for len(lists)-1 > depth {
			buf.WriteString("</" + lists[len(lists)-1] + ">\n")
			lists = lists[:len(lists)-1]
		}
	}

	for _, b := range body {
		if b.Kind != doctree.KindListItem {
			closeListsTo(-1)
		}

		switch b.Kind {
		case doctree.KindParagraph:
			buf.WriteString("<p>")
			buf.WriteString(string(r.renderInline(b.Text, pagePath, links, pageOf)))
			buf.WriteString("</p>\n")

		case doctree.KindListItem:
			tag := "ul"
			if b.Ordered {
				tag = "ol"
			}
			for len(lists)-1 < b.Level {
				buf.WriteString("<" + tag + ">\n")
				lists = append(lists, tag)
			}
			closeListsTo(b.Level)
			// A kind switch at the same depth closes the open list.
			if lists[len(lists)-1] != tag {
				buf.WriteString("</" + lists[len(lists)-1] + ">\n")
				lists = lists[:len(lists)-1]
				buf.WriteString("<" + tag + ">\n")
				lists = append(lists, tag)
			}
			buf.WriteString("<li>")
			buf.WriteString(string(r.renderInline(b.Text, pagePath, links, pageOf)))
			buf.WriteString("</li>\n")

		case doctree.KindCodeBlock:
			var hl bytes.Buffer
			if err := r.hl.Highlight(&hl, b.Lang, b.Text); err != nil {
				// Unknown language tags are non-fatal: plain preformatted text.
				r.log.Debug("highlight fallback", "lang", b.Lang, "error", err)
				fmt.Fprintf(&buf, "<pre><code class=%q>%s</code></pre>\n",
					"language-"+b.Lang, template.HTMLEscapeString(b.Text))
			} else {
				buf.Write(hl.Bytes())
				buf.WriteByte('\n')
			}

		case doctree.KindHeading:
			// Headings are owned by sections; a stray one renders as text.
			buf.WriteString("<p>")
			buf.WriteString(string(r.renderInline(b.Text, pagePath, links, pageOf)))
			buf.WriteString("</p>\n")
		}
	}
	closeListsTo(-1)

	return template.HTML(buf.String()), nil
}

// renderInline escapes a text span and turns [text](target) occurrences
// into anchors. Internal anchors point at the owning page of the target
// section; same-page anchors stay bare fragments.
func (r *Renderer) renderInline(text, pagePath string, links *nav.LinkTable, pageOf map[*doctree.CanonicalSection]string) template.HTML {
	var buf strings.Builder
	last := 0
	for _, m := range doctree.InlineLinkRE.FindAllStringSubmatchIndex(text, -1) {
		buf.WriteString(template.HTMLEscapeString(text[last:m[0]]))
		linkText := text[m[2]:m[3]]
		target := text[m[4]:m[5]]

		href := target
		if strings.HasPrefix(target, "#") {
			slug := strings.TrimPrefix(target, "#")
			if sec, ok := links.Resolve(slug); ok {
				if p := pageOf[sec]; p != "" && p != pagePath {
					href = p + "#" + slug
				} else {
					href = "#" + slug
				}
			}
		}
		fmt.Fprintf(&buf, "<a href=%q>%s</a>", href, template.HTMLEscapeString(linkText))
		last = m[1]
	}
	buf.WriteString(template.HTMLEscapeString(text[last:]))
	return template.HTML(buf.String())
}

// renderSidebar renders the TOC tree as nested lists of links.
func (r *Renderer) renderSidebar(toc *nav.TocNode, pagePath string, pageOf map[*doctree.CanonicalSection]string) template.HTML {
	var buf strings.Builder
	var walk func(nodes []*nav.TocNode)
	walk = func(nodes []*nav.TocNode) {
		if len(nodes) == 0 {
			return
		}
		buf.WriteString("<ul>\n")
		for _, n := range nodes {
			href := "#" + n.Slug
			if p := pageOf[n.Section]; p != "" && p != pagePath {
				href = p + "#" + n.Slug
			}
			fmt.Fprintf(&buf, "<li><a href=%q>%s</a>", href, template.HTMLEscapeString(n.Title))
			walk(n.Children)
			buf.WriteString("</li>\n")
		}
		buf.WriteString("</ul>\n")
	}
	walk(toc.Children)
	return template.HTML(buf.String())
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type pageData struct {
	SiteTitle string
	Title     string
	Sidebar   template.HTML
	Content   template.HTML
	Sources   []string
}

type indexData struct {
	SiteTitle string
	Sidebar   template.HTML
	Pages     []Page
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} — {{.SiteTitle}}</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
nav { width: 16em; padding: 1em; border-right: 1px solid #ddd; }
main { padding: 1em 2em; max-width: 50em; }
pre { background: #f6f8fa; padding: 0.75em; overflow-x: auto; }
.sources { color: #666; font-size: 0.85em; }
</style>
</head>
<body>
<nav><a href="index.html">{{.SiteTitle}}</a>{{.Sidebar}}</nav>
<main>
{{if .Sources}}<p class="sources">Sources: {{range $i, $s := .Sources}}{{if $i}}, {{end}}{{$s}}{{end}}</p>{{end}}
{{.Content}}
</main>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.SiteTitle}}</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
nav { width: 16em; padding: 1em; border-right: 1px solid #ddd; }
main { padding: 1em 2em; max-width: 50em; }
.sources { color: #666; font-size: 0.85em; }
</style>
</head>
<body>
<nav><a href="index.html">{{.SiteTitle}}</a>{{.Sidebar}}</nav>
<main>
<h1>{{.SiteTitle}}</h1>
<ul>
{{range .Pages}}<li><a href="{{.Path}}">{{.Title}}</a>{{if .Sources}} <span class="sources">({{range $i, $s := .Sources}}{{if $i}}, {{end}}{{$s}}{{end}})</span>{{end}}</li>
{{end}}</ul>
</main>
</body>
</html>
`))
