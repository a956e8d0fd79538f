package templates

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/osteele/liquid/render"
)

// includeTag implements `{% include file.html key=value key2="literal" %}`.
// The file is resolved under the includes directory and rendered with the
// current bindings plus an `include` map holding the parameters.
func (e *Engine) includeTag(ctx render.Context) (string, error) {
	args := splitArgs(ctx.TagArgs())
	if len(args) == 0 {
		return "", fmt.Errorf("include: missing file name")
	}

	name, err := evalArg(ctx, args[0], true)
	if err != nil {
		return "", fmt.Errorf("include: %w", err)
	}
	file, ok := name.(string)
	if !ok || file == "" {
		return "", fmt.Errorf("include: file name must be a string, got %v", name)
	}

	full := filepath.Join(e.includesDir, filepath.FromSlash(file))
	if rel, err := filepath.Rel(e.includesDir, full); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("include: %q is outside the includes directory", file)
	}

	params := map[string]any{}
	for _, arg := range args[1:] {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return "", fmt.Errorf("include %s: parameter %q is not key=value", file, arg)
		}
		v, err := evalArg(ctx, value, false)
		if err != nil {
			return "", fmt.Errorf("include %s: %s: %w", file, key, err)
		}
		params[key] = v
	}

	return ctx.RenderFile(full, map[string]any{"include": params})
}

// evalArg returns quoted values literally and evaluates everything else as a
// Liquid expression. A bare file name (head.html) is taken literally.
func evalArg(ctx render.Context, arg string, bareIsLiteral bool) (any, error) {
	if len(arg) >= 2 && (arg[0] == '"' || arg[0] == '\'') && arg[len(arg)-1] == arg[0] {
		return arg[1 : len(arg)-1], nil
	}
	if strings.HasPrefix(arg, "{{") && strings.HasSuffix(arg, "}}") {
		return ctx.EvaluateString(strings.TrimSpace(arg[2 : len(arg)-2]))
	}
	if bareIsLiteral {
		return arg, nil
	}
	return ctx.EvaluateString(arg)
}

// splitArgs splits tag arguments on whitespace, keeping quoted strings and
// {{ }} expressions together.
func splitArgs(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote byte
		depth int
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			cur.WriteByte(c)
		case strings.HasPrefix(s[i:], "{{"):
			depth++
			cur.WriteString("{{")
			i++
		case strings.HasPrefix(s[i:], "}}") && depth > 0:
			depth--
			cur.WriteString("}}")
			i++
		case (c == ' ' || c == '\t' || c == '\n') && depth == 0:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}
