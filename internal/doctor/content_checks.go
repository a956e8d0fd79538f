package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pressbuilder/internal/content"
	"git.home.luguber.info/inful/pressbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pressbuilder/internal/layout"
	"git.home.luguber.info/inful/pressbuilder/internal/scan"
)

// PostDatesRule requires every post to carry a date in its filename or front
// matter, and every front matter date to parse.
type PostDatesRule struct{}

func (r PostDatesRule) Name() string { return "post_dates" }

func (r PostDatesRule) Run(ctx context.Context, dctx Context) []Finding {
	s, err := scan.New(scan.Options{Source: dctx.Source, Config: dctx.Config})
	if err != nil {
		return []Finding{Critical(err.Error())}
	}
	inv, err := s.Scan(ctx)
	if err != nil {
		return []Finding{Critical("cannot scan source: " + err.Error())}
	}

	var out []Finding
	for _, e := range inv.Posts {
		raw, err := os.ReadFile(e.Path)
		if err != nil {
			out = append(out, Critical(fmt.Sprintf("%s: unreadable: %v", e.RelPath, err)))
			continue
		}
		fm, _, _, err := frontmatter.Extract(raw)
		if err != nil {
			out = append(out, Critical(fmt.Sprintf("%s: malformed front matter: %v", e.RelPath, err)))
			continue
		}
		_, ok, err := content.ResolveDate(fm.Date, filepath.Base(e.Path))
		switch {
		case err != nil:
			out = append(out, Critical(fmt.Sprintf("%s: %v", e.RelPath, err)))
		case !ok:
			out = append(out, Critical(e.RelPath+": no date in filename or front matter"))
		}
	}
	if len(out) == 0 {
		out = append(out, OK(fmt.Sprintf("%d post(s) dated", len(inv.Posts))))
	}
	return out
}

// LayoutCycleRule resolves the chain of every layout and reports cycles.
type LayoutCycleRule struct{}

func (r LayoutCycleRule) Name() string { return "layout_cycles" }

func (r LayoutCycleRule) Run(_ context.Context, dctx Context) []Finding {
	dir := filepath.Join(dctx.Source, scan.LayoutsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		// A missing directory is reported by LayoutsDirRule.
		return nil
	}

	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".html"); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	// Chain only parses front matter, so no template renderer is needed.
	resolver := layout.NewResolver(dir, nil)
	var out []Finding
	for _, name := range names {
		if _, err := resolver.Chain(name); err != nil {
			out = append(out, Critical(fmt.Sprintf("layout %s: %v", name, err)))
		}
	}
	if len(out) == 0 {
		out = append(out, OK(fmt.Sprintf("%d layout(s) resolve", len(names))))
	}
	return out
}
