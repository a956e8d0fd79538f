package build

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pressbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pressbuilder/internal/layout"
	"git.home.luguber.info/inful/pressbuilder/internal/metrics"
)

// writeSite creates files (slash separated path -> body) under a new temp dir.
func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return root
}

func readOutput(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, "_site", filepath.FromSlash(rel)))
	require.NoError(t, err, rel)
	return string(b)
}

func runBuild(t *testing.T, root string, drafts bool) (*Result, error) {
	t.Helper()
	return New().Run(context.Background(), Request{Source: root, IncludeDrafts: drafts})
}

const defaultLayout = "<html><title>{{ site.title }}</title><body>{{ content }}</body></html>"

func TestRun_BuildsBlog(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_config.yml":                      "title: Test Site\npermalink: /:year/:month/:day/:title.html\n",
		"_layouts/default.html":            defaultLayout,
		"_layouts/post.html":               "---\nlayout: default\n---\n<article>{{ page.title }}|{{ content }}</article>",
		"_posts/2024-01-15-hello-world.md": "---\nlayout: post\n---\nHello",
		"_posts/2024-03-01-newer.md":       "---\nlayout: post\ntitle: Newer\n---\nNewer body",
		"_posts/2024-02-01-hidden.md":      "---\npublished: false\n---\nsecret",
		"about.md":                         "---\ntitle: About\n---\nAbout me",
		"index.html":                       "---\n---\n{% for post in site.posts %}{{ post.title }};{% endfor %}",
		"assets/css/main.css":              "body{}",
	})

	res, err := runBuild(t, root, false)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.NotEmpty(t, res.BuildID)
	assert.Equal(t, 2, res.Posts)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 1, res.StaticFiles)
	assert.Equal(t, 5, res.Written)

	hello := readOutput(t, root, "2024/01/15/hello-world.html")
	assert.Contains(t, hello, "<title>Test Site</title>")
	assert.Contains(t, hello, "<article>Hello World|<p>Hello</p>")

	assert.Contains(t, readOutput(t, root, "about.html"), "<p>About me</p>")
	assert.Contains(t, readOutput(t, root, "index.html"), "<body>Newer;Hello World;</body>")
	assert.Equal(t, "body{}", readOutput(t, root, "assets/css/main.css"))

	assert.NoFileExists(t, filepath.Join(root, "_site", "2024", "02", "01", "hidden.html"))
	assert.NoFileExists(t, filepath.Join(root, "_site", "_config.yml"))
}

func TestRun_UndatedPostFails(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_posts/untitled.md": "no date here",
	})

	res, err := runBuild(t, root, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, content.ErrUndatedPost)
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))
}

func TestRun_FrontMatterDateOverridesFilename(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_posts/2024-01-01-moved.md": "---\ndate: 2023-06-07\nlayout: none\n---\nbody",
	})

	_, err := runBuild(t, root, false)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "_site", "2023", "06", "07", "moved", "index.html"))
}

func TestRun_DraftsUseModTime(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_drafts/idea.md": "---\nlayout: none\n---\nThinking",
	})
	mtime := time.Date(2023, 5, 4, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(filepath.Join(root, "_drafts", "idea.md"), mtime, mtime))

	res, err := runBuild(t, root, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Posts, "drafts are off by default")

	res, err = runBuild(t, root, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Posts)
	assert.Equal(t, "<p>Thinking</p>\n", readOutput(t, root, "2023/05/04/idea/index.html"))
}

func TestRun_URLCollision(t *testing.T) {
	root := writeSite(t, map[string]string{
		"a.md":      "---\npermalink: /same.html\n---\nA",
		"same.html": "---\n---\nB",
	})

	res, err := runBuild(t, root, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrURLCollision)
	assert.Equal(t, StatusFailed, res.Status)
	assert.NoFileExists(t, filepath.Join(root, "_site", "same.html"))
}

func TestRun_LayoutCycle(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_layouts/a.html": "---\nlayout: b\n---\n{{ content }}",
		"_layouts/b.html": "---\nlayout: a\n---\n{{ content }}",
		"page.md":         "---\nlayout: a\n---\nx",
	})

	_, err := runBuild(t, root, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, layout.ErrLayoutCycle)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))
}

func TestRun_MalformedFrontMatter(t *testing.T) {
	root := writeSite(t, map[string]string{
		"page.md": "---\ntitle: [oops\n---\nx",
	})

	_, err := runBuild(t, root, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, frontmatter.ErrMalformed)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryParse))
}

func TestRun_HTMLWithoutFrontMatterUsesDefaultLayout(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_layouts/default.html": "<html><body>WRAP{{ content }}</body></html>",
		"plain.html":            "<p>plain</p>",
		"raw.html":              "<p>{{ not liquid }}</p>",
		"bare.html":             "---\nlayout: none\n---\n<p>bare</p>",
	})

	_, err := runBuild(t, root, false)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>WRAP<p>plain</p></body></html>", readOutput(t, root, "plain.html"))
	// Content without front matter is never treated as a template.
	assert.Equal(t, "<html><body>WRAP<p>{{ not liquid }}</p></body></html>", readOutput(t, root, "raw.html"))
	assert.Equal(t, "<p>bare</p>", readOutput(t, root, "bare.html"))
}

func TestRun_LiquidInContentRendersBeforeMarkdown(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_config.yml": "title: Test Site\n",
		"page.md":     "---\nlayout: none\n---\n**{{ site.title }}** rocks",
	})

	_, err := runBuild(t, root, false)
	require.NoError(t, err)
	assert.Equal(t, "<p><strong>Test Site</strong> rocks</p>\n", readOutput(t, root, "page.html"))
}

func TestRun_Pagination(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_config.yml":            "paginate: 2\nplugins: [jekyll-paginate]\n",
		"_posts/2024-01-01-a.md": "---\nlayout: none\n---\na",
		"_posts/2024-01-02-b.md": "---\nlayout: none\n---\nb",
		"_posts/2024-01-03-c.md": "---\nlayout: none\n---\nc",
		"index.html": "---\nlayout: none\n---\n" +
			"{% for p in paginator.posts %}{{ p.title }},{% endfor %}" +
			"|{{ paginator.page }}/{{ paginator.total_pages }}|{{ paginator.next_page_path }}|{{ paginator.previous_page_path }}",
	})

	res, err := runBuild(t, root, false)
	require.NoError(t, err)
	assert.Equal(t, "C,B,|1/2|/page2/|", readOutput(t, root, "index.html"))
	assert.Equal(t, "A,|2/2||/", readOutput(t, root, "page2/index.html"))
	assert.Equal(t, 3+2, res.Written)
}

func TestRun_PaginationNeedsPlugin(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_config.yml":            "paginate: 1\n",
		"_posts/2024-01-01-a.md": "---\nlayout: none\n---\na",
		"_posts/2024-01-02-b.md": "---\nlayout: none\n---\nb",
		"index.html":             "---\nlayout: none\n---\nhome",
	})

	_, err := runBuild(t, root, false)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(root, "_site", "page2", "index.html"))
}

func TestRun_DataFiles(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_data/nav.yml":          "- home\n- about\n",
		"_data/authors/ada.json": `{"name": "Ada"}`,
		"index.html":             "---\nlayout: none\n---\n{{ site.data.nav | join: ',' }} {{ site.data.authors.ada.name }}",
	})

	_, err := runBuild(t, root, false)
	require.NoError(t, err)
	assert.Equal(t, "home,about Ada", readOutput(t, root, "index.html"))
}

func TestRun_ExcerptFromFirstParagraph(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_posts/2024-01-01-long.md": "---\nlayout: none\n---\nFirst para.\n\nSecond para.",
		"index.html":                "---\nlayout: none\n---\n{% for p in site.posts %}{{ p.excerpt }}{% endfor %}",
	})

	_, err := runBuild(t, root, false)
	require.NoError(t, err)
	assert.Equal(t, "First para.", readOutput(t, root, "index.html"))
}

func TestRun_ExcerptSeesRenderedLiquid(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_config.yml":                 "title: Test Site\n",
		"_layouts/post.html":          "{{ page.excerpt }}|{{ content }}",
		"_posts/2024-01-01-liquid.md": "---\nlayout: post\n---\nWritten for {{ site.title }}.\n\nMore.",
		"index.html":                  "---\nlayout: none\n---\n{% for p in site.posts %}{{ p.excerpt }}{% endfor %}",
	})

	_, err := runBuild(t, root, false)
	require.NoError(t, err)
	assert.Equal(t, "Written for Test Site.", readOutput(t, root, "index.html"))
	assert.Equal(t,
		"Written for Test Site.|<p>Written for Test Site.</p>\n<p>More.</p>\n",
		readOutput(t, root, "2024/01/01/liquid/index.html"))
}

func TestRun_CustomDestination(t *testing.T) {
	root := writeSite(t, map[string]string{"page.md": "---\nlayout: none\n---\nx"})
	dest := filepath.Join(t.TempDir(), "out")

	res, err := New().Run(context.Background(), Request{Source: root, Destination: dest})
	require.NoError(t, err)
	assert.Equal(t, dest, res.Destination)
	assert.FileExists(t, filepath.Join(dest, "page.html"))
}

func TestRun_MissingSource(t *testing.T) {
	_, err := runBuild(t, filepath.Join(t.TempDir(), "nope"), false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestRun_CanceledContext(t *testing.T) {
	root := writeSite(t, map[string]string{"page.md": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New().Run(ctx, Request{Source: root})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCanceled, res.Status)
}

type recordingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes []metrics.BuildOutcome
	stages   []string
	items    map[string]int
}

func (r *recordingRecorder) IncBuildOutcome(o metrics.BuildOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recordingRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *recordingRecorder) SetSiteItems(kind string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items == nil {
		r.items = map[string]int{}
	}
	r.items[kind] = n
}

func TestRun_RecordsMetrics(t *testing.T) {
	root := writeSite(t, map[string]string{
		"_posts/2024-01-01-a.md": "---\nlayout: none\n---\na",
		"page.md":                "---\nlayout: none\n---\nx",
	})
	rec := &recordingRecorder{}

	_, err := New().WithRecorder(rec).Run(context.Background(), Request{Source: root})
	require.NoError(t, err)

	assert.Equal(t, []metrics.BuildOutcome{metrics.OutcomeSuccess}, rec.outcomes)
	assert.Equal(t, []string{"scan", "posts", "pages", "routes", "static", "data", "render"}, rec.stages)
	assert.Equal(t, map[string]int{"posts": 1, "pages": 1, "static": 0}, rec.items)

	_, err = New().WithRecorder(rec).Run(context.Background(), Request{Source: filepath.Join(root, "missing")})
	require.Error(t, err)
	assert.Equal(t, metrics.OutcomeFailed, rec.outcomes[len(rec.outcomes)-1])
}
