// Package markdown converts markdown bodies to HTML with goldmark.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Flavors understood by New.
const (
	FlavorGoldmark   = "goldmark"
	FlavorCommonMark = "commonmark"
)

// Highlighter renders code in a language, reporting false when it cannot.
type Highlighter interface {
	Highlight(code, lang string) (string, bool)
}

// Renderer converts markdown to HTML. It is safe for sequential reuse within
// one build.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a renderer. The commonmark flavor disables the GFM extensions;
// any other value enables them. hl may be nil to leave code blocks plain.
func New(flavor string, hl Highlighter) *Renderer {
	opts := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	}
	if flavor != FlavorCommonMark {
		opts = append(opts, goldmark.WithExtensions(extension.GFM, extension.Footnote))
	}
	if hl != nil {
		opts = append(opts, goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{hl: hl}, 200)),
		))
	}
	return &Renderer{md: goldmark.New(opts...)}
}

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return buf.String(), nil
}
