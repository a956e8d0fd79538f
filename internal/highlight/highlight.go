// Package highlight renders fenced code to HTML with chroma.
//
// A Highlighter is built once by the build orchestrator and shared read-only
// by every render of that build.
package highlight

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when no style is configured or the name is unknown.
const DefaultStyle = "github"

// Highlighter turns source code into an HTML fragment.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter

	mu     sync.Mutex
	lexers map[string]chroma.Lexer
}

// New builds a Highlighter for the named chroma style.
func New(styleName string) *Highlighter {
	if styleName == "" {
		styleName = DefaultStyle
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &Highlighter{
		style: style,
		formatter: chromahtml.New(
			chromahtml.WithClasses(false),
			chromahtml.TabWidth(4),
		),
		lexers: map[string]chroma.Lexer{},
	}
}

// StyleName returns the name of the resolved style.
func (h *Highlighter) StyleName() string {
	return h.style.Name
}

// Highlight renders code in lang. It reports false when the language is
// empty or unknown, leaving the caller to emit a plain code block.
func (h *Highlighter) Highlight(code, lang string) (string, bool) {
	lexer := h.lexer(lang)
	if lexer == nil {
		return "", false
	}

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}
	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, it); err != nil {
		return "", false
	}
	return sb.String(), true
}

func (h *Highlighter) lexer(lang string) chroma.Lexer {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.lexers[lang]; ok {
		return l
	}
	l := lexers.Get(lang)
	if l != nil {
		l = chroma.Coalesce(l)
	}
	h.lexers[lang] = l
	return l
}
