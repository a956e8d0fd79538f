// Package content defines the per-build site model: pages, posts and the Site
// aggregate handed to the render stage.
package content

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/pressbuilder/internal/config"
	"git.home.luguber.info/inful/pressbuilder/internal/frontmatter"
)

// Page is a non-post content file. It is created once per build and not
// modified after rendering.
type Page struct {
	Path           string // absolute source path
	RelPath        string // slash separated path relative to the source root
	URL            string // resolved site-relative URL
	FrontMatter    frontmatter.FrontMatter
	HadFrontMatter bool
	Content        string // raw body after front matter extraction
	HTML           string // body converted to HTML, before layouts
	Rendered       string // final output after the layout chain
}

// IsMarkdown reports whether the page body is converted from markdown.
func (p *Page) IsMarkdown() bool {
	return IsMarkdownExt(filepath.Ext(p.Path))
}

// Title returns the front matter title or one derived from the filename.
func (p *Page) Title() string {
	if p.FrontMatter.Title != "" {
		return p.FrontMatter.Title
	}
	return TitleFromSlug(pageStem(p.Path))
}

// Vars returns the `page` template variable.
func (p *Page) Vars() map[string]any {
	vars := p.FrontMatter.Vars()
	vars["title"] = p.Title()
	vars["url"] = SiteURL(p.URL)
	vars["path"] = p.RelPath
	vars["name"] = path.Base(p.RelPath)
	vars["content"] = p.HTML
	return vars
}

// Post is a dated content file from _posts/ or _drafts/.
type Post struct {
	Page
	Date    time.Time
	Slug    string
	Excerpt string
	Draft   bool
}

// Vars returns the `page` template variable for a post.
func (p *Post) Vars() map[string]any {
	vars := p.Page.Vars()
	if p.FrontMatter.Title == "" {
		vars["title"] = TitleFromSlug(p.Slug)
	}
	vars["date"] = p.Date
	vars["slug"] = p.Slug
	vars["excerpt"] = p.Excerpt
	vars["draft"] = p.Draft
	vars["id"] = strings.TrimSuffix(SiteURL(p.URL), "/")
	return vars
}

// Site aggregates everything produced by one build. It is constructed fresh
// per build and discarded afterwards.
type Site struct {
	Config      *config.Config
	Posts       []*Post
	Pages       []*Page
	StaticFiles []string
	Data        map[string]any
	Time        time.Time
}

// SortPosts orders posts newest first. Equal dates keep their scan order.
func (s *Site) SortPosts() {
	sort.SliceStable(s.Posts, func(i, j int) bool {
		return s.Posts[i].Date.After(s.Posts[j].Date)
	})
}

// Vars returns the `site` template variable.
func (s *Site) Vars() map[string]any {
	var vars map[string]any
	if s.Config != nil {
		vars = s.Config.Vars()
	} else {
		vars = map[string]any{}
	}

	posts := make([]map[string]any, 0, len(s.Posts))
	categories := map[string][]map[string]any{}
	tags := map[string][]map[string]any{}
	for _, p := range s.Posts {
		pv := p.Vars()
		posts = append(posts, pv)
		for _, c := range p.FrontMatter.Categories {
			categories[c] = append(categories[c], pv)
		}
		for _, t := range p.FrontMatter.Tags {
			tags[t] = append(tags[t], pv)
		}
	}

	pages := make([]map[string]any, 0, len(s.Pages))
	for _, p := range s.Pages {
		pages = append(pages, p.Vars())
	}

	data := s.Data
	if data == nil {
		data = map[string]any{}
	}

	vars["posts"] = posts
	vars["pages"] = pages
	vars["categories"] = categories
	vars["tags"] = tags
	vars["static_files"] = s.StaticFiles
	vars["data"] = data
	vars["time"] = s.Time
	return vars
}

// IsMarkdownExt reports whether ext (with dot) denotes a markdown file.
func IsMarkdownExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// IsHTMLExt reports whether ext (with dot) denotes an HTML file.
func IsHTMLExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return true
	}
	return false
}

// SiteURL returns u as an absolute site path with a leading slash.
func SiteURL(u string) string {
	return "/" + strings.TrimLeft(u, "/")
}
