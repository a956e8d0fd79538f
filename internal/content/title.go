package content

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleFromSlug derives a display title from a filename slug:
// "hello-world_again" becomes "Hello World Again".
func TitleFromSlug(slug string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return cases.Title(language.English).String(strings.Join(strings.Fields(words), " "))
}
