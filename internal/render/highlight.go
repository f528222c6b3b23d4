package render

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	htmlfmt "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter turns a code block into highlighted markup. An error means
// the language is unknown; the renderer falls back to plain preformatted
// text rather than failing the build.
type Highlighter interface {
	Highlight(w io.Writer, lang, source string) error
}

// ChromaHighlighter highlights code with chroma.
type ChromaHighlighter struct {
	style *chroma.Style
}

// NewChromaHighlighter returns a highlighter using the named chroma style
// (falling back to chroma's default style if the name is unknown).
func NewChromaHighlighter(styleName string) *ChromaHighlighter {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &ChromaHighlighter{style: style}
}

func (h *ChromaHighlighter) Highlight(w io.Writer, lang, source string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return fmt.Errorf("no lexer for language %q", lang)
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("tokenise %q: %w", lang, err)
	}

	formatter := htmlfmt.New(htmlfmt.Standalone(false), htmlfmt.WithClasses(false))
	return formatter.Format(w, h.style, it)
}
