package build

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pressbuilder/internal/config"
	"git.home.luguber.info/inful/pressbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/highlight"
	"git.home.luguber.info/inful/pressbuilder/internal/layout"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
	"git.home.luguber.info/inful/pressbuilder/internal/markdown"
	"git.home.luguber.info/inful/pressbuilder/internal/metrics"
	"git.home.luguber.info/inful/pressbuilder/internal/observability"
	"git.home.luguber.info/inful/pressbuilder/internal/scan"
	"git.home.luguber.info/inful/pressbuilder/internal/templates"
)

// Builder is the standard Service implementation.
type Builder struct {
	recorder metrics.Recorder
	now      func() time.Time
}

// New returns a Builder with metrics disabled.
func New() *Builder {
	return &Builder{recorder: metrics.NoopRecorder{}, now: time.Now}
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	b.recorder = r
	return b
}

// WithClock overrides the build time source.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// run holds the resources of a single build. The highlighter and the other
// renderers are created once in setup and shared by every item.
type run struct {
	ctx     context.Context
	cfg     *config.Config
	source  string
	dest    string
	drafts  bool
	md      *markdown.Renderer
	engine  *templates.Engine
	layouts *layout.Resolver
	site    *content.Site
	outputs map[string]string      // output file -> source it came from
	bodies  map[*content.Page]bool // bodies already rendered as templates
	written int
}

// Run executes one full build.
func (b *Builder) Run(ctx context.Context, req Request) (*Result, error) {
	start := b.now()
	result := &Result{BuildID: uuid.NewString(), StartTime: start}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	err := b.run(ctx, req, result)
	result.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(result.Duration)

	switch {
	case err == nil:
		result.Status = StatusSuccess
		b.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
		observability.InfoContext(ctx, "Build complete",
			logfields.Destination(result.Destination),
			slog.Int("posts", result.Posts),
			slog.Int("pages", result.Pages),
			slog.Int("static", result.StaticFiles),
			slog.Int("written", result.Written),
			logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
		return result, nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		result.Status = StatusCanceled
		b.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
	default:
		result.Status = StatusFailed
		b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	}
	return result, err
}

func (b *Builder) run(ctx context.Context, req Request, result *Result) error {
	r, err := b.setup(ctx, req)
	if err != nil {
		return err
	}
	result.Destination = r.dest

	// (1) destination
	if err := os.MkdirAll(r.dest, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create destination").
			WithPath(r.dest).Build()
	}

	var inv *scan.Inventory
	if err := b.stage(r, "scan", func() error {
		scanner, err := scan.New(scan.Options{
			Source:        r.source,
			Destination:   r.dest,
			IncludeDrafts: r.drafts,
			Config:        r.cfg,
		})
		if err != nil {
			return err
		}
		inv, err = scanner.Scan(r.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to scan source").Build()
		}
		return err
	}); err != nil {
		return err
	}

	// (2) and (3): posts, then drafts; unpublished dropped, sorted newest first
	if err := b.stage(r, "posts", func() error {
		if err := r.loadPosts(inv.Posts, false); err != nil {
			return err
		}
		if err := r.loadPosts(inv.Drafts, true); err != nil {
			return err
		}
		r.site.SortPosts()
		return nil
	}); err != nil {
		return err
	}

	// (4) pages
	if err := b.stage(r, "pages", func() error { return r.loadPages(inv.Pages) }); err != nil {
		return err
	}

	if err := b.stage(r, "routes", func() error { return r.claimRoutes(inv.Static) }); err != nil {
		return err
	}

	// (5) static files
	if err := b.stage(r, "static", func() error { return r.copyStatic(inv.Static) }); err != nil {
		return err
	}

	if err := b.stage(r, "data", r.loadData); err != nil {
		return err
	}

	// (6) render through layouts and write
	if err := b.stage(r, "render", r.renderAll); err != nil {
		return err
	}

	result.Posts = len(r.site.Posts)
	result.Pages = len(r.site.Pages)
	result.StaticFiles = len(r.site.StaticFiles)
	result.Written = r.written
	b.recorder.SetSiteItems("posts", result.Posts)
	b.recorder.SetSiteItems("pages", result.Pages)
	b.recorder.SetSiteItems("static", result.StaticFiles)
	return nil
}

func (b *Builder) setup(ctx context.Context, req Request) (*run, error) {
	source, err := filepath.Abs(req.Source)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid source path").Build()
	}
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return nil, ferrors.ValidationError("source is not a directory").
			WithCause(err).
			WithPath(source).Build()
	}

	dest := req.Destination
	if dest == "" {
		dest = filepath.Join(source, "_site")
	}
	if dest, err = filepath.Abs(dest); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid destination path").Build()
	}

	cfg := req.Config
	if cfg == nil {
		if cfg, err = config.Load(source); err != nil {
			return nil, err
		}
	}

	observability.InfoContext(ctx, "Building site", logfields.Source(source), logfields.Destination(dest))

	hl := highlight.New(highlightStyle(cfg))
	engine := templates.New(templates.Options{
		IncludesDir: filepath.Join(source, scan.IncludesDir),
		URL:         cfg.URL,
		BaseURL:     cfg.BaseURL,
	})
	return &run{
		ctx:     ctx,
		cfg:     cfg,
		source:  source,
		dest:    dest,
		drafts:  req.IncludeDrafts,
		md:      markdown.New(cfg.Markdown, hl),
		engine:  engine,
		layouts: layout.NewResolver(filepath.Join(source, scan.LayoutsDir), engine),
		bodies:  map[*content.Page]bool{},
		site: &content.Site{
			Config: cfg,
			Data:   map[string]any{},
			Time:   b.now(),
		},
		outputs: map[string]string{},
	}, nil
}

// stage runs fn with the stage recorded in the log context and metrics.
func (b *Builder) stage(r *run, name string, fn func() error) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	parent := r.ctx
	r.ctx = observability.WithStage(parent, name)
	defer func() { r.ctx = parent }()

	start := time.Now()
	err := fn()
	b.recorder.ObserveStageDuration(name, time.Since(start))
	if err != nil {
		observability.ErrorContext(r.ctx, "Build stage failed", logfields.Error(err))
		return err
	}
	observability.DebugContext(r.ctx, "Build stage complete", logfields.Since(start))
	return nil
}

// highlightStyle reads the optional `highlight_style` config key.
func highlightStyle(cfg *config.Config) string {
	if s, ok := cfg.Custom["highlight_style"].(string); ok {
		return s
	}
	return highlight.DefaultStyle
}
