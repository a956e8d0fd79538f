// Package layout wraps rendered content in nested `_layouts/` templates.
package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pressbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// DefaultName is used when a content item names no layout.
const DefaultName = "default"

// None disables layout wrapping when given as a layout name.
const None = "none"

// ErrLayoutCycle indicates layouts name each other as parents.
var ErrLayoutCycle = errors.New("layout cycle")

// Renderer renders a named template source against variables.
type Renderer interface {
	Render(name, src string, vars map[string]any) (string, error)
}

// Layout is one parsed layout file.
type Layout struct {
	Name   string
	Parent string
	Vars   map[string]any
	Body   string
}

// Resolver loads layouts from one directory and applies layout chains. It
// caches parsed layouts and lives for a single build.
type Resolver struct {
	dir      string
	renderer Renderer
	cache    map[string]*Layout
}

// NewResolver returns a resolver reading `<dir>/<name>.html`.
func NewResolver(dir string, renderer Renderer) *Resolver {
	return &Resolver{dir: dir, renderer: renderer, cache: map[string]*Layout{}}
}

// NameFor returns the layout a content item asks for: its front matter
// layout, "" when wrapping is disabled, or fallback when none is named.
func NameFor(fm frontmatter.FrontMatter, fallback string) string {
	switch {
	case fm.Layout == None:
		return ""
	case fm.Layout != "":
		return fm.Layout
	case fm.LayoutSet:
		return ""
	default:
		return fallback
	}
}

// Load returns the named layout. ok is false when the file does not exist.
func (r *Resolver) Load(name string) (l *Layout, ok bool, err error) {
	if l, ok := r.cache[name]; ok {
		return l, l != nil, nil
	}

	path := filepath.Join(r.dir, name+".html")
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.cache[name] = nil
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read layout %s: %w", name, err)
	}

	fm, body, _, err := frontmatter.Extract(raw)
	if err != nil {
		return nil, false, fmt.Errorf("layout %s: %w", name, err)
	}
	l = &Layout{
		Name:   name,
		Parent: NameFor(fm, ""),
		Vars:   fm.Vars(),
		Body:   string(body),
	}
	r.cache[name] = l
	return l, true, nil
}

// Chain lists the layouts applied for name, innermost first, stopping at
// the first layout without a parent or at a missing one. A repeated name
// fails with ErrLayoutCycle.
func (r *Resolver) Chain(name string) ([]*Layout, error) {
	var chain []*Layout
	seen := map[string]struct{}{}
	names := []string{}

	for name != "" {
		names = append(names, name)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrLayoutCycle, strings.Join(names, " -> "))
		}
		seen[name] = struct{}{}

		l, ok, err := r.Load(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			slog.Warn("Layout not found, leaving content unwrapped", logfields.Layout(name))
			break
		}
		chain = append(chain, l)
		name = l.Parent
	}
	return chain, nil
}

// Apply wraps content in the layout chain starting at name. vars is the
// variable set of the content item; each layout sees it with `content` set
// to the output so far and `layout` set to its own front matter.
func (r *Resolver) Apply(name, content string, vars map[string]any) (string, error) {
	chain, err := r.Chain(name)
	if err != nil {
		return "", err
	}

	for _, l := range chain {
		lv := maps.Clone(vars)
		if lv == nil {
			lv = map[string]any{}
		}
		lv["content"] = content
		lv["layout"] = l.Vars

		out, err := r.renderer.Render("_layouts/"+l.Name+".html", l.Body, lv)
		if err != nil {
			return "", err
		}
		content = out
	}
	return content, nil
}
