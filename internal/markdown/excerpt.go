package markdown

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// ExcerptLimit is the number of characters kept when no paragraph exists.
const ExcerptLimit = 200

// Excerpt derives a short preview from rendered HTML: the inner HTML of the
// first <p> element, or the first ExcerptLimit characters of text followed by
// "..." when there is no paragraph.
func Excerpt(rendered string) string {
	if p, ok := firstParagraph(rendered); ok {
		return p
	}

	text := strings.TrimSpace(plainText(rendered))
	if utf8.RuneCountInString(text) <= ExcerptLimit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:ExcerptLimit])) + "..."
}

func firstParagraph(rendered string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(rendered))
	var inner bytes.Buffer
	depth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if depth > 0 {
				return inner.String(), true
			}
			return "", false
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "p" {
				if depth > 0 {
					// A nested <p> closes the open paragraph.
					return inner.String(), true
				}
				depth = 1
				continue
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "p" && depth > 0 {
				return inner.String(), true
			}
		}
		if depth > 0 {
			inner.Write(z.Raw())
		}
	}
}

func plainText(rendered string) string {
	z := html.NewTokenizer(strings.NewReader(rendered))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}
