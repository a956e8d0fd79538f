package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// knownKeys lists the keys decoded into typed FrontMatter fields; everything
// else lands in Custom.
var knownKeys = []string{
	"title", "layout", "date", "author", "categories", "category",
	"tags", "permalink", "excerpt", "published",
}

// FrontMatter is the per-file metadata block.
type FrontMatter struct {
	Title      string
	Layout     string
	LayoutSet  bool // true when the block names a layout, including an explicit null
	Date       string
	Author     string
	Categories StringList
	Tags       StringList
	Permalink  string
	Excerpt    string
	Published  bool
	Custom     map[string]any
}

// Default returns metadata used for files without a front matter block.
func Default() FrontMatter {
	return FrontMatter{Published: true, Custom: map[string]any{}}
}

// Vars flattens the metadata into template variables. Custom keys never
// override typed ones.
func (fm FrontMatter) Vars() map[string]any {
	vars := make(map[string]any, len(fm.Custom)+8)
	for k, v := range fm.Custom {
		vars[k] = v
	}
	if fm.Title != "" {
		vars["title"] = fm.Title
	}
	if fm.Layout != "" {
		vars["layout"] = fm.Layout
	}
	if fm.Author != "" {
		vars["author"] = fm.Author
	}
	if fm.Permalink != "" {
		vars["permalink"] = fm.Permalink
	}
	vars["categories"] = []string(fm.Categories.orEmpty())
	vars["tags"] = []string(fm.Tags.orEmpty())
	vars["published"] = fm.Published
	return vars
}

// StringList accepts either a YAML sequence or a whitespace separated scalar,
// matching how categories and tags are commonly written.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = strings.Fields(node.Value)
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: list item must be a scalar", item.Line)
			}
			if v := strings.TrimSpace(item.Value); v != "" {
				out = append(out, v)
			}
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

func (l StringList) orEmpty() StringList {
	if l == nil {
		return StringList{}
	}
	return l
}
