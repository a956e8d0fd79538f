package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, includes map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for name, body := range includes {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return New(Options{IncludesDir: dir, URL: "https://example.org", BaseURL: "/blog"})
}

func TestRender_Variables(t *testing.T) {
	e := newEngine(t, nil)
	out, err := e.Render("t", "{{ site.title }} - {{ page.title | upcase }}", map[string]any{
		"site": map[string]any{"title": "Site"},
		"page": map[string]any{"title": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Site - HELLO", out)
}

func TestRender_Loops(t *testing.T) {
	e := newEngine(t, nil)
	out, err := e.Render("t", "{% for p in posts %}[{{ p.title }}]{% endfor %}", map[string]any{
		"posts": []map[string]any{{"title": "a"}, {"title": "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "[a][b]", out)
}

func TestRender_SyntaxErrorIsErrRender(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.Render("broken.html", "{% if true %}never closed", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRender)
	assert.Contains(t, err.Error(), "broken.html")
}

func TestInclude_BareNameAndParams(t *testing.T) {
	e := newEngine(t, map[string]string{
		"head.html":          "<title>{{ page.title }}</title>",
		"partials/note.html": "<aside class=\"{{ include.kind }}\">{{ include.text }}</aside>",
	})
	vars := map[string]any{"page": map[string]any{"title": "Home", "kind": "tip"}}

	out, err := e.Render("t", "{% include head.html %}", vars)
	require.NoError(t, err)
	assert.Equal(t, "<title>Home</title>", out)

	out, err = e.Render("t", `{% include partials/note.html text="Hello there" kind=page.kind %}`, vars)
	require.NoError(t, err)
	assert.Equal(t, `<aside class="tip">Hello there</aside>`, out)
}

func TestInclude_QuotedName(t *testing.T) {
	e := newEngine(t, map[string]string{"footer.html": "foot"})

	out, err := e.Render("t", `{% include "footer.html" %}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "foot", out)
}

func TestInclude_MissingFileFails(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.Render("t", "{% include nope.html %}", nil)
	assert.ErrorIs(t, err, ErrRender)
}

func TestInclude_RejectsEscape(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.Render("t", "{% include ../secret.txt %}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the includes directory")
}

func TestFilters(t *testing.T) {
	e := newEngine(t, nil)
	tests := []struct {
		src  string
		want string
	}{
		{`{{ "/css/main.css" | relative_url }}`, "/blog/css/main.css"},
		{`{{ "about.html" | absolute_url }}`, "https://example.org/blog/about.html"},
		{`{{ "https://x.test/a" | relative_url }}`, "https://x.test/a"},
		{`{{ "Hello, World!" | slugify }}`, "hello-world"},
		{`{{ "a < b" | xml_escape }}`, "a &lt; b"},
		{`{{ "one two three" | number_of_words }}`, "3"},
		{`{{ tags | jsonify }}`, `["go","web"]`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out, err := e.Render("t", tt.src, map[string]any{"tags": []string{"go", "web"}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSplitArgs(t *testing.T) {
	assert.Equal(t, []string{"a.html", `x="one two"`, "y=page.z"}, splitArgs(` a.html  x="one two" y=page.z `))
	assert.Equal(t, []string{"{{ name }}", "k=v"}, splitArgs("{{ name }} k=v"))
	assert.Empty(t, splitArgs("   "))
}

func TestHasMarkup(t *testing.T) {
	assert.True(t, HasMarkup("Hi {{ page.title }}"))
	assert.True(t, HasMarkup("{% raw %}"))
	assert.False(t, HasMarkup("plain { text }"))
}
