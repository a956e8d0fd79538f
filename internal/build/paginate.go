package build

import (
	"strings"

	"git.home.luguber.info/inful/pressbuilder/internal/content"
	"git.home.luguber.info/inful/pressbuilder/internal/permalink"
)

// pager describes one page of a paginated index.
type pager struct {
	Page       int
	PerPage    int
	TotalPosts int
	TotalPages int
	Posts      []*content.Post
	Path       string // site URL of this page
	Prev, Next string // site URLs, empty at the ends
}

// Vars returns the `paginator` template variable.
func (p pager) Vars() map[string]any {
	posts := make([]map[string]any, 0, len(p.Posts))
	for _, post := range p.Posts {
		posts = append(posts, post.Vars())
	}
	vars := map[string]any{
		"page":               p.Page,
		"per_page":           p.PerPage,
		"posts":              posts,
		"total_posts":        p.TotalPosts,
		"total_pages":        p.TotalPages,
		"previous_page":      nil,
		"previous_page_path": nil,
		"next_page":          nil,
		"next_page_path":     nil,
	}
	if p.Prev != "" {
		vars["previous_page"] = p.Page - 1
		vars["previous_page_path"] = p.Prev
	}
	if p.Next != "" {
		vars["next_page"] = p.Page + 1
		vars["next_page_path"] = p.Next
	}
	return vars
}

// paginates reports whether page is the root index and pagination is on.
func (r *run) paginates(page *content.Page) bool {
	if r.cfg.Paginate <= 0 || !r.cfg.HasPlugin("paginate") {
		return false
	}
	switch page.RelPath {
	case "index.html", "index.htm", "index.md", "index.markdown":
		return true
	}
	return false
}

// pagers splits the site posts into pages. The first page keeps the index
// URL; page n > 1 lives at paginate_path. There is always at least one page.
func (r *run) pagers(index *content.Page) []pager {
	per := r.cfg.Paginate
	total := len(r.site.Posts)
	pages := (total + per - 1) / per
	if pages == 0 {
		pages = 1
	}

	first := strings.TrimSuffix(content.SiteURL(index.URL), "index.html")
	pathOf := func(n int) string {
		if n == 1 {
			return first
		}
		return content.SiteURL(permalink.Pager(r.cfg.PaginatePath, n))
	}

	out := make([]pager, 0, pages)
	for n := 1; n <= pages; n++ {
		lo := min((n-1)*per, total)
		hi := min(n*per, total)
		p := pager{
			Page:       n,
			PerPage:    per,
			TotalPosts: total,
			TotalPages: pages,
			Posts:      r.site.Posts[lo:hi],
			Path:       pathOf(n),
		}
		if n > 1 {
			p.Prev = pathOf(n - 1)
		}
		if n < pages {
			p.Next = pathOf(n + 1)
		}
		out = append(out, p)
	}
	return out
}
