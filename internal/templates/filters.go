package templates

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/osteele/liquid"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

func registerFilters(eng *liquid.Engine, siteURL, baseURL string) {
	baseURL = "/" + strings.Trim(baseURL, "/")
	siteURL = strings.TrimRight(siteURL, "/")

	relative := func(s string) string {
		if strings.Contains(s, "://") {
			return s
		}
		joined := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(s, "/")
		return joined
	}

	eng.RegisterFilter("relative_url", relative)
	eng.RegisterFilter("absolute_url", func(s string) string {
		if strings.Contains(s, "://") {
			return s
		}
		return siteURL + relative(s)
	})
	eng.RegisterFilter("slugify", func(s string) string {
		return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
	})
	eng.RegisterFilter("xml_escape", func(s string) string {
		return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;").Replace(s)
	})
	eng.RegisterFilter("date_to_xmlschema", func(t time.Time) string {
		return t.Format(time.RFC3339)
	})
	eng.RegisterFilter("date_to_string", func(t time.Time) string {
		return t.Format("02 Jan 2006")
	})
	eng.RegisterFilter("jsonify", func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	})
	eng.RegisterFilter("number_of_words", func(s string) int {
		return len(strings.Fields(s))
	})
}
