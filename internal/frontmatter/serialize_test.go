package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{}, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "", string(out))
}

func TestSerializeYAML_KnownKeysFirstThenSorted(t *testing.T) {
	fields := map[string]any{
		"zeta":   "z",
		"alpha":  "a",
		"layout": "post",
		"title":  "Hello",
	}

	out, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "title: Hello\nlayout: post\nalpha: a\nzeta: z\n", string(out))
}

func TestSerializeYAML_NewlineStyle_CRLF(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"a": "one"}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "a: one\r\n", string(out))
}

func TestCompose_RoundTripsThroughExtract(t *testing.T) {
	doc, err := Compose(map[string]any{
		"title":      "Welcome",
		"layout":     "post",
		"categories": []string{"news"},
	}, "Hello **world**\n")
	require.NoError(t, err)

	fm, body, had, err := Extract(doc)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "Welcome", fm.Title)
	require.Equal(t, "post", fm.Layout)
	require.Equal(t, StringList{"news"}, fm.Categories)
	require.Equal(t, "Hello **world**\n", string(body))
}
