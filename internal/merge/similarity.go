package merge

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/notesite/internal/doctree"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Similarity scores two section bodies in [0,1]: identical content scores
// 1.0, disjoint content scores near 0. The score is the mean of a token
// Dice coefficient and a Levenshtein ratio over the normalized bodies, so
// bodies with the same tokens in a different order do not score a false 1.0.
func Similarity(a, b []doctree.Block) float64 {
	ta := normalizeTokens(a)
	tb := normalizeTokens(b)

	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	dice := diceCoefficient(ta, tb)

	sa := strings.Join(ta, " ")
	sb := strings.Join(tb, " ")
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(sa, sb, false)
	dist := dmp.DiffLevenshtein(diffs)
	maxLen := utf8.RuneCountInString(sa)
	if n := utf8.RuneCountInString(sb); n > maxLen {
		maxLen = n
	}
	lev := 1.0 - float64(dist)/float64(maxLen)
	if lev < 0 {
		lev = 0
	}

	return (dice + lev) / 2
}

// normalizeTokens lowercases and tokenizes a section body. Code blocks are
// compared on their code alone: comment lines are stripped so variants that
// differ only in comment wording still count as duplicates.
func normalizeTokens(body []doctree.Block) []string {
	var tokens []string
	for _, b := range body {
		text := b.Text
		if b.Kind == doctree.KindCodeBlock {
			text = stripCommentLines(text)
		}
		tokens = append(tokens, tokenize(text)...)
	}
	return tokens
}

var commentPrefixes = []string{"//", "#", "--", ";", "/*", "*", "*/"}

func stripCommentLines(code string) string {
	var kept []string
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		comment := false
		for _, p := range commentPrefixes {
			if strings.HasPrefix(trimmed, p) {
				comment = true
				break
			}
		}
		if !comment {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// diceCoefficient computes 2|A∩B| / (|A|+|B|) over token multisets.
func diceCoefficient(a, b []string) float64 {
	counts := make(map[string]int, len(a))
	for _, t := range a {
		counts[t]++
	}
	overlap := 0
	for _, t := range b {
		if counts[t] > 0 {
			counts[t]--
			overlap++
		}
	}
	return 2 * float64(overlap) / float64(len(a)+len(b))
}
