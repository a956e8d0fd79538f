// Package permalink resolves the site-relative URL of posts and pages and maps
// URLs to files under the destination directory.
package permalink

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/pressbuilder/internal/frontmatter"
)

// Post resolves the URL of a post. An explicit front matter permalink is used
// verbatim; otherwise pattern tokens are substituted in a single pass, so a
// value containing a token (a title of ":year") is never expanded again.
func Post(pattern string, fm frontmatter.FrontMatter, date time.Time, slug string) string {
	if fm.Permalink != "" {
		return fm.Permalink
	}

	year := fmt.Sprintf("%04d", date.Year())
	month := fmt.Sprintf("%02d", int(date.Month()))
	day := fmt.Sprintf("%02d", date.Day())

	// Longer tokens first so :i_month never loses to :month at the same offset.
	r := strings.NewReplacer(
		":categories", strings.Join(fm.Categories, "/"),
		":i_month", strconv.Itoa(int(date.Month())),
		":i_day", strconv.Itoa(date.Day()),
		":year", year,
		":month", month,
		":day", day,
		":title", slug,
		":slug", slug,
	)
	return collapseSlashes(r.Replace(pattern))
}

// Page resolves the URL of a page from its source-relative path: the
// extension becomes .html, separators become forward slashes and a leading
// slash is stripped.
func Page(rel string, fm frontmatter.FrontMatter) string {
	if fm.Permalink != "" {
		return fm.Permalink
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, path.Ext(rel)) + ".html"
	return strings.TrimLeft(rel, "/")
}

// Pager returns the URL of pagination page n using the paginate_path pattern.
func Pager(pattern string, n int) string {
	return collapseSlashes(strings.ReplaceAll(pattern, ":num", strconv.Itoa(n)))
}

// OutputPath maps a URL to the file written under dest. URLs ending in a
// slash, or without an extension, are written as index.html inside that
// directory. The URL is cleaned so it cannot escape dest.
func OutputPath(dest, url string) string {
	clean := path.Clean("/" + url)
	if strings.HasSuffix(url, "/") || path.Ext(clean) == "" {
		clean = path.Join(clean, "index.html")
	}
	return filepath.Join(dest, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
}

func collapseSlashes(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return s
}
