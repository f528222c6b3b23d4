package merge

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/notesite/internal/doctree"
)

func heading(level int, text string) doctree.Block {
	return doctree.Block{Kind: doctree.KindHeading, Level: level, Text: text}
}

func doc(source string, blocks ...doctree.Block) *doctree.Document {
	return &doctree.Document{
		Source: source,
		Title:  strings.TrimSuffix(source, ".md"),
		Blocks: blocks,
	}
}

func TestSplitSections_HeadingPathStack(t *testing.T) {
	d := doc("oop.md",
		heading(1, "Pillars"),
		para("Four pillars."),
		heading(2, "Encapsulation"),
		para("Hide state."),
		heading(2, "Inheritance"),
		para("Extend types."),
		heading(1, "Patterns"),
		para("A couple."),
	)

	sections := SplitSections(d)
	var paths [][]string
	for _, s := range sections {
		paths = append(paths, s.Path)
	}
	want := [][]string{
		{"Pillars"},
		{"Pillars", "Encapsulation"},
		{"Pillars", "Inheritance"},
		{"Patterns"},
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths mismatch:\n got %v\nwant %v", paths, want)
	}
}

func TestSplitSections_PreambleKept(t *testing.T) {
	d := doc("intro.md",
		para("Text before any heading."),
		heading(1, "First"),
		para("Body."),
	)
	sections := SplitSections(d)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Path[0] != "intro" {
		t.Errorf("preamble section should be titled by the document, got %v", sections[0].Path)
	}
	if len(sections[0].Body) != 1 {
		t.Errorf("preamble text lost: %+v", sections[0].Body)
	}
}

func TestMerge_DuplicatesCollapse(t *testing.T) {
	body := para("Encapsulation hides internal state behind methods.")
	a := doc("a.md", heading(1, "Encapsulation"), body)
	b := doc("b.md", heading(1, "Encapsulation"), body)

	canonical, warnings := Merge([]*doctree.Document{a, b}, Options{})
	if len(warnings) != 0 {
		t.Fatalf("identical sections must not warn: %v", warnings)
	}
	if len(canonical.Sections) != 1 {
		t.Fatalf("expected exactly one merged section, got %d", len(canonical.Sections))
	}

	sec := canonical.Sections[0]
	if !reflect.DeepEqual(sec.Sources, []string{"a.md", "b.md"}) {
		t.Errorf("both sources must be recorded, got %v", sec.Sources)
	}
	for _, s := range sec.Scores {
		if s.Score != 1.0 {
			t.Errorf("identical variant must score 1.0, got %+v", s)
		}
	}
}

func TestMerge_KeepsLexicographicallyFirstSource(t *testing.T) {
	// Same heading path, near-identical bodies; z.md comes first in the
	// input sequence but b.md must win the tie.
	z := doc("z.md", heading(1, "Polymorphism"),
		para("One interface, many implementations across the codebase."))
	b := doc("b.md", heading(1, "Polymorphism"),
		para("One interface, many implementations across the codebase!"))

	canonical, _ := Merge([]*doctree.Document{z, b}, Options{})
	if len(canonical.Sections) != 1 {
		t.Fatalf("expected one section, got %d", len(canonical.Sections))
	}
	sec := canonical.Sections[0]
	if sec.Body[0].Text != "One interface, many implementations across the codebase!" {
		t.Errorf("expected b.md's variant to be kept, got %q", sec.Body[0].Text)
	}
}

func TestMerge_ConflictKeepsAllVariants(t *testing.T) {
	a := doc("a.md", heading(1, "Observer"),
		para("Subjects notify registered observers on state change."))
	b := doc("b.md", heading(1, "Observer"),
		para("Terraform detects drift by refreshing provider state nightly."))

	canonical, warnings := Merge([]*doctree.Document{a, b}, Options{})

	if len(warnings) != 1 {
		t.Fatalf("expected one conflict warning, got %d", len(warnings))
	}
	w := warnings[0]
	if !reflect.DeepEqual(w.Sources, []string{"a.md", "b.md"}) {
		t.Errorf("warning must list contributing sources, got %v", w.Sources)
	}
	if w.Path[0] != "Observer" {
		t.Errorf("warning must name the heading path, got %v", w.Path)
	}

	// Parent plus one variant subsection per source.
	if len(canonical.Sections) != 3 {
		t.Fatalf("expected parent + 2 variants, got %d sections", len(canonical.Sections))
	}
	parent := canonical.Sections[0]
	if len(parent.Body) != 0 {
		t.Errorf("conflict parent holds no body of its own: %+v", parent.Body)
	}
	v1, v2 := canonical.Sections[1], canonical.Sections[2]
	if v1.Path[1] != "From a.md" || v2.Path[1] != "From b.md" {
		t.Errorf("variants must be tagged by source: %v / %v", v1.Path, v2.Path)
	}
	if !strings.Contains(v2.Body[0].Text, "Terraform") {
		t.Errorf("divergent content silently dropped: %+v", v2.Body)
	}
}

func TestMerge_Deterministic(t *testing.T) {
	docs := func() []*doctree.Document {
		return []*doctree.Document{
			doc("a.md", heading(1, "Encapsulation"), para("Hide state."), heading(1, "SOLID"), para("Five principles.")),
			doc("b.md", heading(1, "Encapsulation"), para("Hide state.")),
			doc("c.md", heading(1, "Leadership"), para("Give context, not orders.")),
		}
	}

	first, _ := Merge(docs(), Options{})
	second, _ := Merge(docs(), Options{})
	if !reflect.DeepEqual(first, second) {
		t.Error("merging the same documents twice must yield identical output")
	}
}

func TestMerge_FirstSeenOrder(t *testing.T) {
	a := doc("a.md", heading(1, "Alpha"), para("one"))
	b := doc("b.md", heading(1, "Beta"), para("two"), heading(1, "Alpha"), para("one"))

	canonical, _ := Merge([]*doctree.Document{a, b}, Options{})
	if canonical.Sections[0].Path[0] != "Alpha" || canonical.Sections[1].Path[0] != "Beta" {
		t.Errorf("sections must keep first-seen order, got %v then %v",
			canonical.Sections[0].Path, canonical.Sections[1].Path)
	}
}

func TestMerge_CaseInsensitivePathGrouping(t *testing.T) {
	a := doc("a.md", heading(1, "Resource  Drift"), para("State diverges over time."))
	b := doc("b.md", heading(1, "resource drift"), para("State diverges over time."))

	canonical, _ := Merge([]*doctree.Document{a, b}, Options{})
	if len(canonical.Sections) != 1 {
		t.Fatalf("heading paths differing only in case/whitespace must group, got %d sections", len(canonical.Sections))
	}
}
