package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/notesite/internal/doctree"
)

func TestMarkdownParser_BlockKinds(t *testing.T) {
	input := `# Encapsulation

Hiding internal state behind methods.

## Example

` + "```go\nfunc (a *Account) Deposit(n int) { a.balance += n }\n```" + `

- keeps invariants local
- callers cannot corrupt state

See [the intro](#encapsulation) and [Go docs](https://go.dev).
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes/oop.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Source != "notes/oop.md" {
		t.Errorf("expected source %q, got %q", "notes/oop.md", doc.Source)
	}
	if doc.Title != "oop" {
		t.Errorf("expected title %q, got %q", "oop", doc.Title)
	}

	var kinds []doctree.BlockKind
	for _, b := range doc.Blocks {
		kinds = append(kinds, b.Kind)
	}
	want := []doctree.BlockKind{
		doctree.KindHeading,
		doctree.KindParagraph,
		doctree.KindHeading,
		doctree.KindCodeBlock,
		doctree.KindListItem,
		doctree.KindListItem,
		doctree.KindParagraph,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("block %d: expected %v, got %v", i, want[i], kinds[i])
		}
	}

	h1 := doc.Blocks[0]
	if h1.Level != 1 || h1.Text != "Encapsulation" {
		t.Errorf("unexpected h1: %+v", h1)
	}
	h2 := doc.Blocks[2]
	if h2.Level != 2 || h2.Text != "Example" {
		t.Errorf("unexpected h2: %+v", h2)
	}

	code := doc.Blocks[3]
	if code.Lang != "go" {
		t.Errorf("expected lang %q, got %q", "go", code.Lang)
	}
	if !strings.Contains(code.Text, "Deposit") {
		t.Errorf("expected code body to contain Deposit, got %q", code.Text)
	}

	para := doc.Blocks[6]
	if len(para.Links) != 2 {
		t.Fatalf("expected 2 links, got %d: %+v", len(para.Links), para.Links)
	}
	if para.Links[0].Target != "#encapsulation" || !para.Links[0].Internal() {
		t.Errorf("unexpected first link: %+v", para.Links[0])
	}
	if para.Links[1].Target != "https://go.dev" || para.Links[1].Internal() {
		t.Errorf("unexpected second link: %+v", para.Links[1])
	}
}

func TestMarkdownParser_UnterminatedFence(t *testing.T) {
	input := "# Notes\n\n```python\ndef f():\n    return 1\n\nmore code, never closed\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "open.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var code *doctree.Block
	for i := range doc.Blocks {
		if doc.Blocks[i].Kind == doctree.KindCodeBlock {
			code = &doc.Blocks[i]
			break
		}
	}
	if code == nil {
		t.Fatalf("expected a code block, got %+v", doc.Blocks)
	}
	if code.Lang != "python" {
		t.Errorf("expected lang %q, got %q", "python", code.Lang)
	}
	// The fence is closed implicitly at end-of-input: the block holds the
	// rest of the file.
	if !strings.Contains(code.Text, "never closed") {
		t.Errorf("expected code to run to end of input, got %q", code.Text)
	}
}

func TestMarkdownParser_Frontmatter(t *testing.T) {
	input := `---
title: OOP Pillars
tags: [oop, reference]
---

# Inheritance

Subtyping by extension.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "pillars.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "OOP Pillars" {
		t.Errorf("expected frontmatter title, got %q", doc.Title)
	}
	if len(doc.Tags) != 2 || doc.Tags[0] != "oop" {
		t.Errorf("unexpected tags: %v", doc.Tags)
	}
	if len(doc.Blocks) == 0 || doc.Blocks[0].Text != "Inheritance" {
		t.Errorf("frontmatter should not leak into blocks: %+v", doc.Blocks)
	}
}

func TestMarkdownParser_MalformedInputDegrades(t *testing.T) {
	input := "]] not markdown ((\n\n####### too deep\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "weird.md")
	if err != nil {
		t.Fatalf("parse must not fail on malformed input: %v", err)
	}
	if len(doc.Blocks) == 0 {
		t.Fatal("expected degraded paragraph blocks, got none")
	}
	for _, b := range doc.Blocks {
		if b.Kind == doctree.KindHeading && b.Level > 6 {
			t.Errorf("heading level must be clamped to 6, got %d", b.Level)
		}
	}
}

func TestMarkdownParser_HeadingLinks(t *testing.T) {
	input := "# See [intro](#intro)\n\nBody.\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "h.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := doc.Blocks[0]
	if h.Kind != doctree.KindHeading {
		t.Fatalf("expected heading, got %+v", h)
	}
	if !strings.Contains(h.Text, "[intro](#intro)") {
		t.Errorf("heading text must keep inline link syntax, got %q", h.Text)
	}
	if len(h.Links) != 1 || h.Links[0].Target != "#intro" {
		t.Errorf("heading links must be extracted, got %+v", h.Links)
	}
}

func TestMarkdownParser_OrderedList(t *testing.T) {
	input := "# L\n\n1. first\n2. second\n\n- bullet\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "l.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var items []doctree.Block
	for _, b := range doc.Blocks {
		if b.Kind == doctree.KindListItem {
			items = append(items, b)
		}
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 list items, got %d", len(items))
	}
	if !items[0].Ordered || !items[1].Ordered {
		t.Errorf("numbered items must be ordered: %+v %+v", items[0], items[1])
	}
	if items[2].Ordered {
		t.Errorf("bulleted item must not be ordered: %+v", items[2])
	}
}

func TestMarkdownParser_NestedLists(t *testing.T) {
	input := "# L\n\n- outer\n  - inner\n- outer two\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "l.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var items []doctree.Block
	for _, b := range doc.Blocks {
		if b.Kind == doctree.KindListItem {
			items = append(items, b)
		}
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 list items, got %d", len(items))
	}
	if items[0].Level != 0 || items[1].Level != 1 || items[2].Level != 0 {
		t.Errorf("unexpected nesting: %d %d %d", items[0].Level, items[1].Level, items[2].Level)
	}
}
