package merge

import (
	"github.com/dgallion1/notesite/internal/doctree"
)

// SplitSections walks a document's blocks top-down, tracking a heading-path
// stack (push on deeper heading, pop on equal-or-shallower), and returns the
// maximal runs between headings as Sections keyed by full heading path.
//
// Blocks before the first heading become a section titled by the document
// title, so preamble text is never dropped.
func SplitSections(doc *doctree.Document) []*doctree.Section {
	type frame struct {
		text  string
		level int
	}

	var sections []*doctree.Section
	var stack []frame
	var current *doctree.Section

	pathOf := func() []string {
		path := make([]string, len(stack))
		for i, f := range stack {
			path[i] = f.text
		}
		return path
	}

	for _, b := range doc.Blocks {
		if b.Kind != doctree.KindHeading {
			if current == nil {
				// Preamble before the first heading.
				current = &doctree.Section{
					Path:    []string{doc.Title},
					Heading: doctree.Block{Kind: doctree.KindHeading, Level: 1, Text: doc.Title},
					Source:  doc.Source,
				}
				sections = append(sections, current)
				stack = []frame{{text: doc.Title, level: 1}}
			}
			current.Body = append(current.Body, b)
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= b.Level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, frame{text: b.Text, level: b.Level})

		current = &doctree.Section{
			Path:    pathOf(),
			Heading: b,
			Source:  doc.Source,
		}
		sections = append(sections, current)
	}

	return sections
}
