package nav

import "github.com/dgallion1/notesite/internal/doctree"

// TocNode mirrors the canonical heading hierarchy. The root node has a nil
// Section; children are ordered by first-seen order in the canonical
// document.
type TocNode struct {
	Title    string
	Slug     string
	Section  *doctree.CanonicalSection // nil on the root
	Children []*TocNode
}

// BuildToc builds the navigation tree from the canonical document and
// assigns every section its unique anchor slug in first-seen order.
//
// Sections attach to the node owning their parent heading path; if no
// ancestor exists (a note that jumps straight to a deep heading), the
// section attaches to the nearest ancestor present, or the root.
func BuildToc(canonical *doctree.CanonicalDocument) *TocNode {
	root := &TocNode{}
	slugs := newSlugger()
	byPath := map[string]*TocNode{"": root}

	for _, sec := range canonical.Sections {
		// Headings may carry inline links; titles and slugs use the
		// visible text only.
		title := doctree.FlattenLinks(sec.Heading.Text)
		node := &TocNode{
			Title:   title,
			Slug:    slugs.assign(title),
			Section: sec,
		}

		parent := root
		for i := len(sec.Path) - 1; i > 0; i-- {
			if p, ok := byPath[doctree.PathKey(sec.Path[:i])]; ok {
				parent = p
				break
			}
		}
		parent.Children = append(parent.Children, node)
		byPath[doctree.PathKey(sec.Path)] = node
	}

	return root
}

// Walk visits every node except the root in depth-first order.
func (n *TocNode) Walk(fn func(*TocNode)) {
	for _, c := range n.Children {
		fn(c)
		c.Walk(fn)
	}
}
