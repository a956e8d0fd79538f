package devserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// Op is the kind of a qualifying file system change.
type Op int

const (
	OpCreate Op = iota + 1
	OpModify
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is a change below the watched root.
type Event struct {
	Path string
	Op   Op
}

// DefaultEventBuffer is the capacity of the watcher's event channel.
const DefaultEventBuffer = 256

// skipDirs are never watched.
var skipDirs = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	"node_modules": {},
	".idea":        {},
	".vscode":      {},
}

// Watcher translates fsnotify events below a root into Events. Paths under
// the destination directory are dropped, so the server's own writes never
// trigger a rebuild.
type Watcher struct {
	fs     *fsnotify.Watcher
	root   string
	dests  []string
	events chan Event
}

// NewWatcher watches root recursively. dest may be empty.
func NewWatcher(root, dest string) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}

	w := &Watcher{fs: fw, root: absRoot, events: make(chan Event, DefaultEventBuffer)}
	if dest != "" {
		w.dests = canonicalForms(dest)
	}
	if err := w.addDirsRecursive(absRoot); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Events returns the channel consumed by the rebuild loop. It is closed
// when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run forwards events until ctx is done or the underlying watcher closes.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer func() { _ = w.fs.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	op, ok := translate(ev.Op)
	if !ok || w.ignored(ev.Name) {
		return
	}
	if op == OpCreate {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
		}
	}

	slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(op.String()))
	// A full buffer already holds an event that will cause a rebuild, so
	// dropping this one loses nothing.
	select {
	case w.events <- Event{Path: ev.Name, Op: op}:
	default:
	}
}

// translate maps fsnotify ops to Ops. Renames count as removal of the old
// name; the new name arrives as a separate create. Chmod is discarded.
func translate(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpModify, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return OpRemove, true
	default:
		return 0, false
	}
}

// ignored reports whether path is under the destination or is an editor
// artifact.
func (w *Watcher) ignored(path string) bool {
	for _, form := range canonicalForms(path) {
		for _, d := range w.dests {
			if within(form, d) {
				return true
			}
		}
	}
	return isTempFile(filepath.Base(path))
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// canonicalForms returns the absolute path and, when it exists, its
// symlink-resolved form.
func canonicalForms(path string) []string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return []string{filepath.Clean(path)}
	}
	forms := []string{abs}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil && resolved != abs {
		forms = append(forms, resolved)
	} else if errors.Is(err, fs.ErrNotExist) {
		// Removed files cannot be resolved; resolve the parent instead.
		if dir, derr := filepath.EvalSymlinks(filepath.Dir(abs)); derr == nil {
			forms = append(forms, filepath.Join(dir, filepath.Base(abs)))
		}
	}
	return forms
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// isTempFile matches editor swap and backup files.
func isTempFile(base string) bool {
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, ".#"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		base == ".DS_Store",
		base == "Thumbs.db":
		return true
	}
	return false
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
