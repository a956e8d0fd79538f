package build

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pressbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
	"git.home.luguber.info/inful/pressbuilder/internal/markdown"
	"git.home.luguber.info/inful/pressbuilder/internal/observability"
	"git.home.luguber.info/inful/pressbuilder/internal/permalink"
	"git.home.luguber.info/inful/pressbuilder/internal/scan"
)

// readPage reads a source file and splits off its front matter.
func (r *run) readPage(e scan.Entry) (*content.Page, error) {
	raw, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read source file").
			WithPath(e.RelPath).Build()
	}
	fm, body, had, err := frontmatter.Extract(raw)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryParse, "invalid front matter").
			WithPath(e.RelPath).Fatal().Build()
	}
	return &content.Page{
		Path:           e.Path,
		RelPath:        e.RelPath,
		FrontMatter:    fm,
		HadFrontMatter: had,
		Content:        string(body),
	}, nil
}

// convert returns the HTML form of a body: markdown is converted, anything
// else is passed through.
func (r *run) convert(p *content.Page, body string) (string, error) {
	if !p.IsMarkdown() {
		return body, nil
	}
	html, err := r.md.Render([]byte(body))
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRender, "markdown conversion failed").
			WithPath(p.RelPath).Fatal().Build()
	}
	return html, nil
}

// loadPosts parses post or draft entries into the site. Unpublished posts
// are dropped here so they never reach the model.
func (r *run) loadPosts(entries []scan.Entry, drafts bool) error {
	for _, e := range entries {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		page, err := r.readPage(e)
		if err != nil {
			return err
		}
		if !page.FrontMatter.Published {
			observability.DebugContext(r.ctx, "Skipping unpublished post", logfields.Path(e.RelPath))
			continue
		}

		name := filepath.Base(e.Path)
		date, ok, err := content.ResolveDate(page.FrontMatter.Date, name)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryParse, "invalid post date").
				WithPath(e.RelPath).Fatal().Build()
		}
		if !ok {
			if !drafts {
				return ferrors.WrapError(content.ErrUndatedPost, ferrors.CategoryBuild, "post has no date").
					WithPath(e.RelPath).Fatal().Build()
			}
			info, err := os.Stat(e.Path)
			if err != nil {
				return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to stat draft").
					WithPath(e.RelPath).Build()
			}
			date = info.ModTime()
		}

		post := &content.Post{
			Page:  *page,
			Date:  date,
			Slug:  content.SlugFromFilename(name),
			Draft: drafts,
		}
		post.URL = permalink.Post(r.cfg.Permalink, post.FrontMatter, post.Date, post.Slug)
		if post.HTML, err = r.convert(&post.Page, post.Content); err != nil {
			return err
		}
		post.Excerpt = post.FrontMatter.Excerpt
		if post.Excerpt == "" {
			post.Excerpt = markdown.Excerpt(post.HTML)
		}

		r.site.Posts = append(r.site.Posts, post)
		observability.DebugContext(r.ctx, "Parsed post", logfields.Path(e.RelPath), logfields.URL(post.URL))
	}
	return nil
}

// loadPages parses page entries into the site.
func (r *run) loadPages(entries []scan.Entry) error {
	for _, e := range entries {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		page, err := r.readPage(e)
		if err != nil {
			return err
		}
		page.URL = permalink.Page(e.RelPath, page.FrontMatter)
		if page.HTML, err = r.convert(page, page.Content); err != nil {
			return err
		}
		r.site.Pages = append(r.site.Pages, page)
		observability.DebugContext(r.ctx, "Parsed page", logfields.Path(e.RelPath), logfields.URL(page.URL))
	}
	return nil
}
