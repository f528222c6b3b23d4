package doctree

import (
	"regexp"
	"strings"
)

// BlockKind discriminates the closed set of block variants.
type BlockKind int

const (
	KindHeading BlockKind = iota
	KindParagraph
	KindListItem
	KindCodeBlock
)

func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindListItem:
		return "list_item"
	case KindCodeBlock:
		return "code_block"
	default:
		return "unknown"
	}
}

// Block is one tagged element of a parsed document.
type Block struct {
	Kind    BlockKind
	Level   int    // Heading level 1..6, or list nesting depth (0-based)
	Text    string // Heading text, paragraph/list text, or code literal
	Lang    string // Code block language tag (empty if absent)
	Ordered bool   // List item from a numbered list
	Links   []Link // Inline links found in Text
}

// Link is an inline [text](target) reference. Targets starting with "#"
// are internal anchors; everything else is treated as external.
type Link struct {
	Text   string
	Target string
}

// Internal reports whether the link points at an in-site anchor.
func (l Link) Internal() bool {
	return len(l.Target) > 0 && l.Target[0] == '#'
}

// InlineLinkRE matches [text](target). Parsers use it to extract Links;
// the renderer uses it to turn the same spans into anchors.
var InlineLinkRE = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)

// FlattenLinks replaces inline [text](target) spans with their visible
// text, for contexts that need the plain words (TOC titles, slugs).
func FlattenLinks(text string) string {
	return InlineLinkRE.ReplaceAllString(text, "$1")
}

// ExtractLinks pulls all inline links out of a text span.
func ExtractLinks(text string) []Link {
	matches := InlineLinkRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, Link{Text: m[1], Target: m[2]})
	}
	return links
}

// PathKey normalizes a heading path to its identity for grouping and
// lookup: case-insensitive, whitespace-collapsed, elements joined by a
// separator that cannot occur in heading text.
func PathKey(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(parts, "\x1f")
}

// Document is one parsed note: a source identifier and its ordered blocks.
type Document struct {
	Source string   // Relative path of the note file
	Title  string   // From frontmatter or filename
	Tags   []string // From frontmatter, if any
	Blocks []Block
}

// Section is a Heading plus the blocks until the next heading of
// equal-or-shallower level, keyed by its full heading path.
type Section struct {
	Path    []string // Ancestor heading texts, ending with this section's own
	Heading Block
	Body    []Block
	Source  string
}

// SourceScore records how similar one contributing source's variant was
// to the chosen section body.
type SourceScore struct {
	Source string
	Score  float64
}

// CanonicalSection is the merged form of all sections sharing a heading
// path: the chosen content plus provenance.
type CanonicalSection struct {
	Path    []string
	Heading Block
	Body    []Block
	Sources []string      // All sources that contained an equivalent section
	Scores  []SourceScore // Similarity of each alternate against the kept body
}

// CanonicalDocument holds one CanonicalSection per unique heading path,
// in first-seen order across the input documents. It is immutable once
// the merger returns it.
type CanonicalDocument struct {
	Sections []*CanonicalSection
}
