// Package scan walks a site source tree and classifies files into posts,
// drafts, pages and static files.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pressbuilder/internal/config"
	"git.home.luguber.info/inful/pressbuilder/internal/content"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// Directory conventions.
const (
	PostsDir    = "_posts"
	DraftsDir   = "_drafts"
	LayoutsDir  = "_layouts"
	IncludesDir = "_includes"
	DataDir     = "_data"
	AssetsDir   = "assets"
)

// prunedDirs are never descended into by the main walk.
var prunedDirs = map[string]struct{}{
	"_site":        {},
	LayoutsDir:     {},
	IncludesDir:    {},
	DataDir:        {},
	PostsDir:       {},
	DraftsDir:      {},
	"node_modules": {},
	".git":         {},
	".svn":         {},
	".hg":          {},
	".idea":        {},
	".vscode":      {},
}

// ErrWalkFailed indicates the source tree could not be traversed.
var ErrWalkFailed = errors.New("source walk failed")

// Kind classifies a source file.
type Kind int

const (
	KindPost Kind = iota
	KindDraft
	KindPage
	KindStatic
)

func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindDraft:
		return "draft"
	case KindPage:
		return "page"
	case KindStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Entry is one classified file.
type Entry struct {
	Path    string // absolute path
	RelPath string // slash separated, relative to the source root
	Kind    Kind
}

// Inventory lists the classified files of one scan, each slice in walk order.
type Inventory struct {
	Posts  []Entry
	Drafts []Entry
	Pages  []Entry
	Static []Entry
}

// Options configures a Scanner.
type Options struct {
	Source        string
	Destination   string
	IncludeDrafts bool
	Config        *config.Config
}

// Scanner enumerates site sources.
type Scanner struct {
	source  string
	dest    string
	drafts  bool
	cfg     *config.Config
	visited map[string]struct{}
}

// New returns a Scanner for opts. Relative paths are resolved against the
// working directory.
func New(opts Options) (*Scanner, error) {
	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWalkFailed, err)
	}
	dest := opts.Destination
	if dest == "" {
		dest = filepath.Join(source, "_site")
	}
	dest, err = filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWalkFailed, err)
	}
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return &Scanner{source: source, dest: dest, drafts: opts.IncludeDrafts, cfg: cfg}, nil
}

// Scan walks the source tree once and returns the classified inventory.
func (s *Scanner) Scan(ctx context.Context) (*Inventory, error) {
	inv := &Inventory{}

	posts, err := s.scanDated(ctx, PostsDir, KindPost)
	if err != nil {
		return nil, err
	}
	inv.Posts = posts

	if s.drafts {
		drafts, err := s.scanDated(ctx, DraftsDir, KindDraft)
		if err != nil {
			return nil, err
		}
		inv.Drafts = drafts
	}

	s.visited = map[string]struct{}{}
	err = s.walk(ctx, s.source, "", func(abs, rel string) {
		kind, ok := s.classify(rel)
		if !ok {
			return
		}
		e := Entry{Path: abs, RelPath: rel, Kind: kind}
		if kind == KindPage {
			inv.Pages = append(inv.Pages, e)
		} else {
			inv.Static = append(inv.Static, e)
		}
	}, true)
	if err != nil {
		return nil, err
	}

	slog.Debug("Source scanned",
		logfields.Source(s.source),
		slog.Int("posts", len(inv.Posts)),
		slog.Int("drafts", len(inv.Drafts)),
		slog.Int("pages", len(inv.Pages)),
		slog.Int("static", len(inv.Static)))
	return inv, nil
}

// scanDated collects markdown files under one of the post directories. The
// directory is authoritative, so exclude patterns do not apply.
func (s *Scanner) scanDated(ctx context.Context, dir string, kind Kind) ([]Entry, error) {
	root := filepath.Join(s.source, dir)
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, dir, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	var out []Entry
	s.visited = map[string]struct{}{}
	err = s.walk(ctx, root, dir, func(abs, rel string) {
		if content.IsMarkdownExt(path.Ext(rel)) {
			out = append(out, Entry{Path: abs, RelPath: rel, Kind: kind})
		}
	}, false)
	return out, err
}

// classify decides the kind of a file found by the main walk. ok is false
// for files that are not part of the site.
func (s *Scanner) classify(rel string) (Kind, bool) {
	if s.cfg.IsExcluded(rel) {
		return 0, false
	}
	if strings.HasPrefix(rel, AssetsDir+"/") {
		return KindStatic, true
	}
	if hasHiddenSegment(rel) && !s.cfg.IsIncluded(rel) {
		return 0, false
	}
	ext := path.Ext(rel)
	if content.IsMarkdownExt(ext) || content.IsHTMLExt(ext) {
		return KindPage, true
	}
	return KindStatic, true
}

// walk visits every regular file below dir, following symbolic links. Each
// resolved directory is entered at most once, which also breaks link loops.
func (s *Scanner) walk(ctx context.Context, dir, rel string, visit func(abs, rel string), prune bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWalkFailed, dir, err)
	}
	if _, seen := s.visited[resolved]; seen {
		return nil
	}
	s.visited[resolved] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWalkFailed, dir, err)
	}

	for _, de := range entries {
		abs := filepath.Join(dir, de.Name())
		childRel := path.Join(rel, de.Name())

		isDir := de.IsDir()
		if de.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(abs)
			if err != nil {
				slog.Warn("Skipping broken symlink", logfields.Path(childRel), logfields.Error(err))
				continue
			}
			isDir = info.IsDir()
		} else if !isDir && !de.Type().IsRegular() {
			continue
		}

		if isDir {
			if prune && s.pruned(abs, de.Name()) {
				continue
			}
			if err := s.walk(ctx, abs, childRel, visit, prune); err != nil {
				return err
			}
			continue
		}
		visit(abs, childRel)
	}
	return nil
}

func (s *Scanner) pruned(abs, name string) bool {
	if _, ok := prunedDirs[name]; ok {
		return true
	}
	return abs == s.dest
}

func hasHiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, "_") || strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
