// Package frontmatter splits `---` delimited YAML metadata blocks from content
// files and decodes them into FrontMatter values.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Style captures formatting details needed for stable rewriting.
//
// It intentionally focuses on newline shape and does not attempt to preserve
// original YAML formatting.
type Style struct {
	Newline string
}

// ErrMissingClosingDelimiter indicates the document started with a front matter
// delimiter but did not contain a closing delimiter line.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// ErrMalformed indicates the front matter block exists but is not valid YAML.
var ErrMalformed = errors.New("malformed front matter")

// Split separates the raw front matter block from the body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input. The closing delimiter must sit on its own line, may carry
// trailing spaces or tabs, and may be the last line of the document.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	open := []byte(delimiter + style.Newline)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	start := len(open)
	rest := content[start:]
	for off := 0; ; {
		end := bytes.IndexByte(rest[off:], '\n')
		if end < 0 {
			if isDelimiterLine(rest[off:]) {
				return content[start : start+off], []byte{}, true, style, nil
			}
			break
		}
		if isDelimiterLine(rest[off : off+end]) {
			return content[start : start+off], rest[off+end+1:], true, style, nil
		}
		off += end + 1
	}

	return nil, nil, false, style, ErrMissingClosingDelimiter
}

func isDelimiterLine(line []byte) bool {
	return bytes.Equal(bytes.TrimRight(line, " \t\r"), []byte(delimiter))
}

// Join reassembles a document from raw front matter and body.
//
// If had is false, Join returns body as-is.
func Join(frontmatter []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	line := []byte(delimiter + nl)
	out := make([]byte, 0, 2*len(line)+len(frontmatter)+len(body))
	out = append(out, line...)
	out = append(out, frontmatter...)
	out = append(out, line...)
	out = append(out, body...)
	return out
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Extract is the entry point used by the build: it splits raw file text into
// decoded metadata and body.
//
// A document without an opening delimiter, or with an opening delimiter and no
// closing one, yields default metadata and the untouched input as body. Leading
// blank lines of the body are trimmed. Invalid YAML inside a well-formed block
// is returned as ErrMalformed.
func Extract(raw []byte) (FrontMatter, []byte, bool, error) {
	block, body, had, _, err := Split(raw)
	if errors.Is(err, ErrMissingClosingDelimiter) {
		return Default(), raw, false, nil
	}
	if err != nil {
		return Default(), nil, false, err
	}
	if !had {
		return Default(), raw, false, nil
	}

	fm, err := Decode(block)
	if err != nil {
		return Default(), nil, true, err
	}
	return fm, trimLeadingBlankLines(body), true, nil
}

// Decode converts a raw YAML block into FrontMatter. Unknown keys are kept in
// Custom.
func Decode(block []byte) (FrontMatter, error) {
	fm := Default()
	if len(bytes.TrimSpace(block)) == 0 {
		return fm, nil
	}

	var known struct {
		Title      string     `yaml:"title"`
		Layout     *string    `yaml:"layout"`
		Date       string     `yaml:"date"`
		Author     string     `yaml:"author"`
		Categories StringList `yaml:"categories"`
		Category   StringList `yaml:"category"`
		Tags       StringList `yaml:"tags"`
		Permalink  string     `yaml:"permalink"`
		Excerpt    string     `yaml:"excerpt"`
		Published  *bool      `yaml:"published"`
	}
	if err := yaml.Unmarshal(block, &known); err != nil {
		return fm, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	fields, err := ParseYAML(block)
	if err != nil {
		return fm, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	fm.Title = known.Title
	if known.Layout != nil {
		fm.Layout = *known.Layout
		fm.LayoutSet = true
	} else if v, ok := fields["layout"]; ok && v == nil {
		// `layout: null` explicitly disables wrapping.
		fm.LayoutSet = true
	}
	fm.Date = known.Date
	fm.Author = known.Author
	fm.Categories = append(known.Categories, known.Category...)
	fm.Tags = known.Tags
	fm.Permalink = known.Permalink
	fm.Excerpt = known.Excerpt
	if known.Published != nil {
		fm.Published = *known.Published
	}

	for _, k := range knownKeys {
		delete(fields, k)
	}
	fm.Custom = fields
	return fm, nil
}

func trimLeadingBlankLines(body []byte) []byte {
	for len(body) > 0 {
		i := bytes.IndexByte(body, '\n')
		if i < 0 {
			if len(bytes.TrimSpace(body)) == 0 {
				return []byte{}
			}
			return body
		}
		if len(bytes.TrimSpace(body[:i])) != 0 {
			return body
		}
		body = body[i+1:]
	}
	return body
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			break
		}
	}
	return Style{Newline: newline}
}
