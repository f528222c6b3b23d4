// Package merge collapses sections that repeat across note files into one
// canonical document, keeping provenance and never silently dropping
// divergent content.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/notesite/internal/doctree"
)

// DefaultThreshold is the similarity above which sections sharing a heading
// path are treated as true duplicates rather than a content conflict.
const DefaultThreshold = 0.85

// Options controls merge behavior.
type Options struct {
	Threshold float64
}

// ContentConflictWarning reports sections sharing a heading path whose
// bodies were not similar enough to collapse. The variants are retained as
// sibling subsections; the warning is informational, not fatal.
type ContentConflictWarning struct {
	Path     []string
	Sources  []string
	MinScore float64
}

func (w ContentConflictWarning) String() string {
	return fmt.Sprintf("content conflict at %q: sources %s diverge (min similarity %.2f); variants kept as subsections",
		strings.Join(w.Path, " > "), strings.Join(w.Sources, ", "), w.MinScore)
}

// Merge groups sections across all documents by normalized heading path and
// collapses each group into one canonical section. Groups whose bodies all
// score at or above the threshold keep the lexicographically-first source's
// variant (longest body on a tie) with every contributor recorded; groups
// with any pair below the threshold keep all variants as sibling
// subsections tagged by source.
//
// The result is deterministic: merging the same documents twice yields an
// identical canonical document.
func Merge(docs []*doctree.Document, opts Options) (*doctree.CanonicalDocument, []ContentConflictWarning) {
	threshold := opts.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}

	var order []string
	groups := make(map[string][]*doctree.Section)
	for _, doc := range docs {
		for _, sec := range SplitSections(doc) {
			key := doctree.PathKey(sec.Path)
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], sec)
		}
	}

	canonical := &doctree.CanonicalDocument{}
	var warnings []ContentConflictWarning

	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			sec := group[0]
			canonical.Sections = append(canonical.Sections, &doctree.CanonicalSection{
				Path:    sec.Path,
				Heading: normalizeHeading(sec),
				Body:    sec.Body,
				Sources: []string{sec.Source},
				Scores:  []doctree.SourceScore{{Source: sec.Source, Score: 1.0}},
			})
			continue
		}

		minScore := 1.0
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if s := Similarity(group[i].Body, group[j].Body); s < minScore {
					minScore = s
				}
			}
		}

		if minScore >= threshold {
			canonical.Sections = append(canonical.Sections, collapseDuplicates(group))
			continue
		}

		parent, variants := splitConflict(group)
		canonical.Sections = append(canonical.Sections, parent)
		canonical.Sections = append(canonical.Sections, variants...)
		warnings = append(warnings, ContentConflictWarning{
			Path:     parent.Path,
			Sources:  sourcesOf(group),
			MinScore: minScore,
		})
	}

	return canonical, warnings
}

// collapseDuplicates picks the canonical variant of a true-duplicate group:
// lexicographically-first source, longest body as tie-break.
func collapseDuplicates(group []*doctree.Section) *doctree.CanonicalSection {
	ordered := make([]*doctree.Section, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Source != ordered[j].Source {
			return ordered[i].Source < ordered[j].Source
		}
		return bodyLen(ordered[i]) > bodyLen(ordered[j])
	})
	chosen := ordered[0]

	scores := make([]doctree.SourceScore, 0, len(ordered))
	for _, sec := range ordered {
		score := 1.0
		if sec != chosen {
			score = Similarity(chosen.Body, sec.Body)
		}
		scores = append(scores, doctree.SourceScore{Source: sec.Source, Score: score})
	}

	return &doctree.CanonicalSection{
		Path:    chosen.Path,
		Heading: normalizeHeading(chosen),
		Body:    chosen.Body,
		Sources: sourcesOf(group),
		Scores:  scores,
	}
}

// splitConflict keeps every divergent variant as a subsection of the shared
// heading, titled by its source, in lexicographic source order.
func splitConflict(group []*doctree.Section) (*doctree.CanonicalSection, []*doctree.CanonicalSection) {
	ordered := make([]*doctree.Section, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Source != ordered[j].Source {
			return ordered[i].Source < ordered[j].Source
		}
		return bodyLen(ordered[i]) > bodyLen(ordered[j])
	})

	first := ordered[0]
	parent := &doctree.CanonicalSection{
		Path:    first.Path,
		Heading: normalizeHeading(first),
		Sources: sourcesOf(group),
	}

	childLevel := len(first.Path) + 1
	if childLevel > 6 {
		childLevel = 6
	}

	variants := make([]*doctree.CanonicalSection, 0, len(ordered))
	seen := make(map[string]int)
	for _, sec := range ordered {
		label := "From " + sec.Source
		seen[label]++
		if n := seen[label]; n > 1 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		path := make([]string, 0, len(first.Path)+1)
		path = append(path, first.Path...)
		path = append(path, label)
		variants = append(variants, &doctree.CanonicalSection{
			Path:    path,
			Heading: doctree.Block{Kind: doctree.KindHeading, Level: childLevel, Text: label},
			Body:    sec.Body,
			Sources: []string{sec.Source},
			Scores:  []doctree.SourceScore{{Source: sec.Source, Score: 1.0}},
		})
	}

	return parent, variants
}

// normalizeHeading keeps the chosen heading text but pins its level to the
// path depth, so a note that skips heading levels still produces a
// consistent hierarchy.
func normalizeHeading(sec *doctree.Section) doctree.Block {
	level := len(sec.Path)
	if level > 6 {
		level = 6
	}
	h := sec.Heading
	h.Level = level
	return h
}

func sourcesOf(group []*doctree.Section) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, sec := range group {
		if !seen[sec.Source] {
			seen[sec.Source] = true
			sources = append(sources, sec.Source)
		}
	}
	sort.Strings(sources)
	return sources
}

func bodyLen(sec *doctree.Section) int {
	n := 0
	for _, b := range sec.Body {
		n += len(b.Text)
	}
	return n
}
