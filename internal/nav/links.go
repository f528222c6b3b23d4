package nav

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/notesite/internal/doctree"
)

// DanglingLinkError reports an internal link whose target slug does not
// exist anywhere in the site. It is fatal: a shipped site with broken
// navigation is worse than a failed build.
type DanglingLinkError struct {
	SectionPath []string
	LinkText    string
	Target      string
}

func (e *DanglingLinkError) Error() string {
	return fmt.Sprintf("dangling link [%s](%s) in section %q: no section has slug %q",
		e.LinkText, e.Target, strings.Join(e.SectionPath, " > "), strings.TrimPrefix(e.Target, "#"))
}

// AmbiguousLinkError reports a slug assigned to more than one section.
// Slug assignment suffixes collisions, so this is a defensive check; it
// should not occur.
type AmbiguousLinkError struct {
	Slug     string
	Sections []string
}

func (e *AmbiguousLinkError) Error() string {
	return fmt.Sprintf("ambiguous slug %q: claimed by sections %s", e.Slug, strings.Join(e.Sections, ", "))
}

// LinkTable maps anchor slugs to their sections, and back. It is built
// once per render pass from the TOC tree.
type LinkTable struct {
	bySlug map[string]*doctree.CanonicalSection
	slugOf map[*doctree.CanonicalSection]string
}

// Resolve returns the section owning a slug.
func (t *LinkTable) Resolve(slug string) (*doctree.CanonicalSection, bool) {
	sec, ok := t.bySlug[slug]
	return sec, ok
}

// SlugFor returns the anchor slug assigned to a section.
func (t *LinkTable) SlugFor(sec *doctree.CanonicalSection) (string, bool) {
	slug, ok := t.slugOf[sec]
	return slug, ok
}

// ResolveLinks builds the slug table from the TOC and validates every
// internal link in the canonical document against it. All dangling and
// ambiguous links are reported together; any error must fail the build
// before rendering.
func ResolveLinks(canonical *doctree.CanonicalDocument, toc *TocNode) (*LinkTable, error) {
	table := &LinkTable{
		bySlug: make(map[string]*doctree.CanonicalSection),
		slugOf: make(map[*doctree.CanonicalSection]string),
	}

	var errs []error
	toc.Walk(func(n *TocNode) {
		if prev, taken := table.bySlug[n.Slug]; taken {
			errs = append(errs, &AmbiguousLinkError{
				Slug: n.Slug,
				Sections: []string{
					strings.Join(prev.Path, " > "),
					strings.Join(n.Section.Path, " > "),
				},
			})
			return
		}
		table.bySlug[n.Slug] = n.Section
		table.slugOf[n.Section] = n.Slug
	})

	check := func(sec *doctree.CanonicalSection, links []doctree.Link) {
		for _, l := range links {
			if !l.Internal() {
				continue
			}
			slug := strings.TrimPrefix(l.Target, "#")
			if _, ok := table.bySlug[slug]; !ok {
				errs = append(errs, &DanglingLinkError{
					SectionPath: sec.Path,
					LinkText:    l.Text,
					Target:      l.Target,
				})
			}
		}
	}
	for _, sec := range canonical.Sections {
		check(sec, sec.Heading.Links)
		for _, b := range sec.Body {
			check(sec, b.Links)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return table, nil
}
