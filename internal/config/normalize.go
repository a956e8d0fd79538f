package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments made while normalizing.
type NormalizationResult struct{ Warnings []string }

// Named permalink styles accepted in place of a pattern.
var permalinkStyles = map[string]string{
	"date":   "/:categories/:year/:month/:day/:title.html",
	"pretty": "/:categories/:year/:month/:day/:title/",
	"none":   "/:categories/:title.html",
}

// Normalize canonicalizes enumerated and bounded fields in place.
func Normalize(c *Config) *NormalizationResult {
	res := &NormalizationResult{}

	switch md := strings.ToLower(strings.TrimSpace(c.Markdown)); md {
	case "":
		c.Markdown = DefaultMarkdown
	case MarkdownGoldmark, MarkdownCommonMark:
		c.Markdown = md
	default:
		res.Warnings = append(res.Warnings, warnUnknown("markdown", c.Markdown, DefaultMarkdown))
		c.Markdown = DefaultMarkdown
	}

	c.Permalink = strings.TrimSpace(c.Permalink)
	if style, ok := permalinkStyles[c.Permalink]; ok {
		c.Permalink = style
	}
	if c.Permalink == "" {
		c.Permalink = DefaultPermalink
	}

	if c.Paginate < 0 {
		res.Warnings = append(res.Warnings, warnChanged("paginate", c.Paginate, 0))
		c.Paginate = 0
	}
	if c.PaginatePath == "" {
		c.PaginatePath = DefaultPaginatePath
	} else if !strings.Contains(c.PaginatePath, ":num") {
		res.Warnings = append(res.Warnings, warnUnknown("paginate_path", c.PaginatePath, DefaultPaginatePath))
		c.PaginatePath = DefaultPaginatePath
	}

	if c.Exclude == nil {
		c.Exclude = []string{}
	}
	if c.Include == nil {
		c.Include = []string{}
	}
	if c.Plugins == nil {
		c.Plugins = []string{}
	}
	return res
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("%s changed from %v to %v", field, from, to)
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("%s has unsupported value %q, using %q", field, value, fallback)
}
