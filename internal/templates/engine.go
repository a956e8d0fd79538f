// Package templates renders Liquid templates for layouts, includes and content.
package templates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/osteele/liquid"
)

// ErrRender indicates a template failed to parse or render.
var ErrRender = errors.New("template render failed")

// Options configures an Engine.
type Options struct {
	// IncludesDir is the directory `{% include name %}` reads from.
	IncludesDir string
	// URL and BaseURL feed the absolute_url and relative_url filters.
	URL     string
	BaseURL string
}

// Engine renders Liquid source against a variable set.
type Engine struct {
	liquid      *liquid.Engine
	includesDir string
}

// New returns an engine with the include tag and site filters registered.
func New(opts Options) *Engine {
	e := &Engine{liquid: liquid.NewEngine(), includesDir: opts.IncludesDir}
	e.liquid.RegisterTag("include", e.includeTag)
	registerFilters(e.liquid, opts.URL, opts.BaseURL)
	return e
}

// Render renders src. name identifies the template in error messages.
func (e *Engine) Render(name, src string, vars map[string]any) (string, error) {
	out, serr := e.liquid.ParseAndRenderString(src, vars)
	if serr != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRender, name, serr)
	}
	return out, nil
}

// HasMarkup reports whether s contains Liquid output or tag delimiters.
func HasMarkup(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}
