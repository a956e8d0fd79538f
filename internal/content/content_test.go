package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pressbuilder/internal/config"
	"git.home.luguber.info/inful/pressbuilder/internal/frontmatter"
)

func TestDateFromFilename(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want time.Time
	}{
		{"2024-01-15-hello-world.md", true, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"1999-12-31-x.markdown", true, time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"_posts/2024-03-01-a.md", true, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15.md", false, time.Time{}},
		{"hello-world.md", false, time.Time{}},
		{"2024-xx-15-title.md", false, time.Time{}},
		{"2024-02-30-not-a-day.md", false, time.Time{}},
		{"2024-13-01-bad-month.md", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DateFromFilename(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestDateFromFilename_RecoversAnyValidDate(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Year() < 2021; d = d.AddDate(0, 0, 1) {
		got, ok := DateFromFilename(d.Format("2006-01-02") + "-post.md")
		require.True(t, ok)
		require.Equal(t, d, got)
	}
}

func TestSlugFromFilename(t *testing.T) {
	assert.Equal(t, "hello-world", SlugFromFilename("2024-01-15-hello-world.md"))
	assert.Equal(t, "draft-idea", SlugFromFilename("draft-idea.md"))
	assert.Equal(t, "x", SlugFromFilename("2024-02-30-x.md"))
	assert.Equal(t, "qux", SlugFromFilename("foo-bar-baz-qux.md"))
	assert.Equal(t, "qux-quux", SlugFromFilename("foo-bar-baz-qux-quux.md"))
	assert.Equal(t, "a-b-c", SlugFromFilename("a-b-c.md"))
}

func TestPage_TitleKeepsUndatedStem(t *testing.T) {
	p := &Page{Path: "about-the-long-road.md"}
	assert.Equal(t, "About The Long Road", p.Title())

	p = &Page{Path: "2024-01-15-launch-notes.md"}
	assert.Equal(t, "Launch Notes", p.Title())
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{
		"2024-05-06",
		"2024-05-06 10:11:12",
		"2024-05-06 10:11:12 +0200",
		"2024-05-06T10:11:12Z",
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, time.May, got.Month())
		assert.Equal(t, 6, got.Day())
	}

	_, err := ParseDate("last tuesday")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestResolveDate_FrontMatterOverridesFilename(t *testing.T) {
	got, ok, err := ResolveDate("2023-07-04", "2024-01-01-post.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2023, got.Year())

	got, ok, err = ResolveDate("", "2024-01-01-post.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	_, ok, err = ResolveDate("", "post.md")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTitleFromSlug(t *testing.T) {
	assert.Equal(t, "Hello World", TitleFromSlug("hello-world"))
	assert.Equal(t, "Getting Started Guide", TitleFromSlug("getting_started-guide"))
}

func newPost(date string, title string) *Post {
	d, _ := ParseDate(date)
	fm := frontmatter.Default()
	fm.Title = title
	return &Post{Page: Page{URL: "/" + title + "/", FrontMatter: fm}, Date: d}
}

func TestSite_SortPostsNewestFirst(t *testing.T) {
	site := &Site{Posts: []*Post{
		newPost("2024-01-01", "jan"),
		newPost("2024-03-01", "mar"),
		newPost("2024-02-01", "feb"),
	}}
	site.SortPosts()

	var got []string
	for _, p := range site.Posts {
		got = append(got, p.FrontMatter.Title)
	}
	assert.Equal(t, []string{"mar", "feb", "jan"}, got)
}

func TestSite_SortPostsIsStableForTies(t *testing.T) {
	site := &Site{Posts: []*Post{
		newPost("2024-01-01", "first"),
		newPost("2024-01-01", "second"),
	}}
	site.SortPosts()
	assert.Equal(t, "first", site.Posts[0].FrontMatter.Title)
}

func TestSite_Vars(t *testing.T) {
	cfg := config.Default()
	post := newPost("2024-01-01", "hello")
	post.FrontMatter.Categories = frontmatter.StringList{"go"}
	post.Excerpt = "Hi"
	page := &Page{RelPath: "about.md", URL: "about.html", FrontMatter: frontmatter.Default(), Path: "/src/about.md"}

	site := &Site{Config: &cfg, Posts: []*Post{post}, Pages: []*Page{page}, Data: map[string]any{"nav": []any{"a"}}}
	vars := site.Vars()

	assert.Equal(t, "My Site", vars["title"])
	posts := vars["posts"].([]map[string]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hi", posts[0]["excerpt"])
	assert.Len(t, vars["categories"].(map[string][]map[string]any)["go"], 1)

	pages := vars["pages"].([]map[string]any)
	require.Len(t, pages, 1)
	assert.Equal(t, "/about.html", pages[0]["url"])
	assert.Equal(t, "About", pages[0]["title"])
	assert.Equal(t, []any{"a"}, vars["data"].(map[string]any)["nav"])
}

func TestExtensions(t *testing.T) {
	assert.True(t, IsMarkdownExt(".MD"))
	assert.True(t, IsMarkdownExt(".markdown"))
	assert.False(t, IsMarkdownExt(".html"))
	assert.True(t, IsHTMLExt(".htm"))
	assert.Equal(t, "/a/b.html", SiteURL("a/b.html"))
	assert.Equal(t, "/a/", SiteURL("/a/"))
}
