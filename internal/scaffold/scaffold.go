// Package scaffold writes the skeleton of a new site.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pressbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
	"git.home.luguber.info/inful/pressbuilder/internal/scan"
)

//go:embed all:skeleton
var skeleton embed.FS

const skeletonRoot = "skeleton"

// ErrTargetNotEmpty indicates the target directory already has content.
var ErrTargetNotEmpty = errors.New("target directory is not empty")

// emptyDirs are created even though the skeleton has no files in them.
var emptyDirs = []string{
	scan.PostsDir,
	scan.DraftsDir,
	"assets/js",
	"assets/images",
}

// Options configures Create.
type Options struct {
	// Name is the site title and, when Path is empty, the directory name.
	Name string
	Path string
	// Git initializes a repository and stages the skeleton.
	Git bool
	// Force writes into a non-empty directory, overwriting skeleton files.
	Force bool
	// Now dates the sample post. Defaults to time.Now.
	Now func() time.Time
}

// Result describes a created site.
type Result struct {
	Root  string
	Files []string // slash separated, relative to Root
	Git   bool
}

// Create writes a new site.
func Create(opts Options) (*Result, error) {
	if opts.Name == "" {
		return nil, ferrors.ValidationError("site name is required").Build()
	}
	target := opts.Path
	if target == "" {
		target = opts.Name
	}
	root, err := filepath.Abs(target)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid site path").Build()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := checkTarget(root, opts.Force); err != nil {
		return nil, err
	}

	res := &Result{Root: root}
	write := func(rel string, data []byte) error {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0o644); err != nil { //nolint:gosec // site sources are not secret
			return err
		}
		res.Files = append(res.Files, rel)
		slog.Debug("Wrote skeleton file", logfields.Path(rel))
		return nil
	}

	err = fs.WalkDir(skeleton, skeletonRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := skeleton.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(skeletonRoot, filepath.FromSlash(p))
		return write(filepath.ToSlash(rel), data)
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write skeleton").
			WithPath(root).Build()
	}

	cfg, err := configFile(opts.Name)
	if err == nil {
		err = write(config.FileName, cfg)
	}
	if err == nil {
		now := opts.Now()
		var post []byte
		if post, err = samplePost(now); err == nil {
			err = write(path.Join(scan.PostsDir, now.Format("2006-01-02")+"-welcome.md"), post)
		}
	}
	for _, dir := range emptyDirs {
		if err != nil {
			break
		}
		err = os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o750)
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write skeleton").
			WithPath(root).Build()
	}

	if opts.Git {
		if err := initRepository(root); err != nil {
			return nil, err
		}
		res.Git = true
	}

	slog.Info("Created new site", logfields.Path(root), logfields.Count(len(res.Files)))
	return res, nil
}

func checkTarget(root string, force bool) error {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot read target directory").
			WithPath(root).Build()
	}
	if len(entries) > 0 && !force {
		return ferrors.WrapError(ErrTargetNotEmpty, ferrors.CategoryValidation, "refusing to overwrite existing directory").
			WithPath(root).Fatal().Build()
	}
	return nil
}

// configFile renders _config.yml from the defaults with pagination enabled.
func configFile(name string) ([]byte, error) {
	cfg := config.Default()
	cfg.Title = name
	cfg.Description = "A new site"
	cfg.Plugins = []string{"jekyll-paginate"}

	body, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	header := "# Site settings. Values may reference environment variables, e.g. url: ${SITE_URL}\n"
	return append([]byte(header), body...), nil
}

func samplePost(now time.Time) ([]byte, error) {
	fields := map[string]any{
		"layout":     "post",
		"title":      "Welcome",
		"date":       now.Format("2006-01-02 15:04:05 -0700"),
		"categories": []string{"general"},
		"tags":       []string{"welcome"},
	}
	body := "This is your first post. Posts live in `_posts/` and are named `YYYY-MM-DD-title.md`.\n\n" +
		"```go\nfunc main() {\n\tfmt.Println(\"hello\")\n}\n```\n"
	return frontmatter.Compose(fields, body)
}

func initRepository(root string) error {
	repo, err := git.PlainInit(root, false)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "git init failed").
			WithPath(root).Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "git worktree unavailable").Build()
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "git add failed").Build()
	}
	slog.Info("Initialized git repository", logfields.Path(root))
	return nil
}
