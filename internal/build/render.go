package build

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pressbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/layout"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
	"git.home.luguber.info/inful/pressbuilder/internal/markdown"
	"git.home.luguber.info/inful/pressbuilder/internal/observability"
	"git.home.luguber.info/inful/pressbuilder/internal/permalink"
	"git.home.luguber.info/inful/pressbuilder/internal/scan"
	"git.home.luguber.info/inful/pressbuilder/internal/templates"
)

// claimRoutes maps every output file to the item producing it and fails on
// the first file claimed twice.
func (r *run) claimRoutes(static []scan.Entry) error {
	claim := func(url, src string) error {
		if url == "" {
			return ferrors.WrapError(content.ErrEmptyURL, ferrors.CategoryBuild, "content item has no url").
				WithPath(src).Fatal().Build()
		}
		target := permalink.OutputPath(r.dest, url)
		if prev, dup := r.outputs[target]; dup {
			return ferrors.WrapError(
				fmt.Errorf("%w: %s and %s both write %s", ErrURLCollision, prev, src, url),
				ferrors.CategoryBuild, "url collision").
				WithContext("url", url).Fatal().Build()
		}
		r.outputs[target] = src
		return nil
	}

	for _, p := range r.site.Posts {
		if err := claim(p.URL, p.RelPath); err != nil {
			return err
		}
	}
	for _, p := range r.site.Pages {
		if err := claim(p.URL, p.RelPath); err != nil {
			return err
		}
		if !r.paginates(p) {
			continue
		}
		for _, pg := range r.pagers(p)[1:] {
			if err := claim(pg.Path, fmt.Sprintf("%s (page %d)", p.RelPath, pg.Page)); err != nil {
				return err
			}
		}
	}
	for _, e := range static {
		target := filepath.Join(r.dest, filepath.FromSlash(e.RelPath))
		if prev, dup := r.outputs[target]; dup {
			return ferrors.WrapError(
				fmt.Errorf("%w: %s and %s both write /%s", ErrURLCollision, prev, e.RelPath, e.RelPath),
				ferrors.CategoryBuild, "url collision").
				WithContext("url", "/"+e.RelPath).Fatal().Build()
		}
		r.outputs[target] = e.RelPath
	}
	return nil
}

// renderAll renders every post and page through its layouts and writes the
// result.
func (r *run) renderAll() error {
	if err := r.renderPostBodies(); err != nil {
		return err
	}
	site := r.site.Vars()

	for _, p := range r.site.Posts {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		out, err := r.render(&p.Page, site, p.Vars(), nil)
		if err != nil {
			return err
		}
		p.Rendered = out
		if err := r.write(p.URL, out); err != nil {
			return err
		}
	}

	for _, p := range r.site.Pages {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		if r.paginates(p) {
			if err := r.renderPaginated(p, site); err != nil {
				return err
			}
			continue
		}
		out, err := r.render(p, site, p.Vars(), nil)
		if err != nil {
			return err
		}
		p.Rendered = out
		if err := r.write(p.URL, out); err != nil {
			return err
		}
	}
	return nil
}

// renderPostBodies renders the Liquid markup of post bodies ahead of the
// layouts, so excerpts and site.posts carry the rendered text.
func (r *run) renderPostBodies() error {
	site := r.site.Vars()
	for _, p := range r.site.Posts {
		vars := map[string]any{"site": site, "page": p.Vars()}
		html, ok, err := r.renderBody(&p.Page, vars)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		p.HTML = html
		if p.FrontMatter.Excerpt == "" {
			p.Excerpt = markdown.Excerpt(html)
		}
		r.bodies[&p.Page] = true
	}
	return nil
}

func (r *run) renderPaginated(p *content.Page, site map[string]any) error {
	for i, pg := range r.pagers(p) {
		vars := p.Vars()
		url := p.URL
		if i > 0 {
			url = pg.Path
			vars["url"] = pg.Path
		}
		out, err := r.render(p, site, vars, pg.Vars())
		if err != nil {
			return err
		}
		if i == 0 {
			p.Rendered = out
		}
		if err := r.write(url, out); err != nil {
			return err
		}
	}
	return nil
}

// render produces the final output of one item. Content with front matter
// and Liquid markup is rendered as a template before conversion. Every item
// goes through its layout chain unless it opts out with `layout: none`.
func (r *run) render(p *content.Page, site, page, paginator map[string]any) (string, error) {
	vars := map[string]any{
		"site":      site,
		"page":      page,
		"paginator": paginator,
	}

	html := p.HTML
	if !r.bodies[p] {
		body, ok, err := r.renderBody(p, vars)
		if err != nil {
			return "", err
		}
		if ok {
			html = body
			page["content"] = html
		}
	}

	name := layout.NameFor(p.FrontMatter, layout.DefaultName)
	if name == "" {
		return html, nil
	}
	out, err := r.layouts.Apply(name, html, vars)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRender, "failed to apply layout").
			WithPath(p.RelPath).
			WithContext("layout", name).Fatal().Build()
	}
	observability.DebugContext(r.ctx, "Rendered", logfields.Path(p.RelPath), logfields.Layout(name))
	return out, nil
}

// renderBody renders a body holding Liquid markup as a template and converts
// the result. ok is false when the body is not a template.
func (r *run) renderBody(p *content.Page, vars map[string]any) (string, bool, error) {
	if !p.HadFrontMatter || !templates.HasMarkup(p.Content) {
		return "", false, nil
	}
	body, err := r.engine.Render(p.RelPath, p.Content, vars)
	if err != nil {
		return "", false, ferrors.WrapError(err, ferrors.CategoryRender, "failed to render content").
			WithPath(p.RelPath).Fatal().Build()
	}
	html, err := r.convert(p, body)
	if err != nil {
		return "", false, err
	}
	return html, true, nil
}

func (r *run) write(url, out string) error {
	target := permalink.OutputPath(r.dest, url)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithPath(target).Build()
	}
	if err := os.WriteFile(target, []byte(out), 0o644); err != nil { //nolint:gosec // site output is world readable
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write output").
			WithPath(target).Build()
	}
	r.written++
	observability.DebugContext(r.ctx, "Wrote output", logfields.URL(content.SiteURL(url)), logfields.Destination(target))
	return nil
}
