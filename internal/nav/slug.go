// Package nav builds the navigation tree and anchor table for a canonical
// document and validates every internal link against it.
package nav

import (
	"strconv"
	"strings"
)

// Slug derives a URL-safe anchor from heading text: lowercase,
// non-alphanumeric runs become a single hyphen, leading and trailing
// hyphens are trimmed. The transform is deterministic and idempotent:
// Slug(Slug(x)) == Slug(x).
func Slug(text string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "section"
	}
	return s
}

// slugger hands out unique slugs in first-seen order, resolving collisions
// by appending a numeric suffix.
type slugger struct {
	used map[string]bool
}

func newSlugger() *slugger {
	return &slugger{used: make(map[string]bool)}
}

func (s *slugger) assign(text string) string {
	base := Slug(text)
	slug := base
	for n := 2; s.used[slug]; n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	s.used[slug] = true
	return slug
}
