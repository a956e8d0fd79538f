package devserver

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/pressbuilder/internal/build"
	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Source        string
	Destination   string
	IncludeDrafts bool
	QuietWindow   time.Duration
	Builder       build.Service
}

// Watch rebuilds the site whenever the source changes, without serving it.
// It returns when ctx is canceled. The caller runs the initial build.
func Watch(ctx context.Context, opts WatchOptions) error {
	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid source path").Build()
	}
	dest := opts.Destination
	if dest == "" {
		dest = filepath.Join(source, "_site")
	}
	builder := opts.Builder
	if builder == nil {
		builder = build.New()
	}

	watcher, err := NewWatcher(source, dest)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to start file watcher").Build()
	}
	loop := NewLoop(watcher.Events(), LoopOptions{
		QuietWindow: opts.QuietWindow,
		Rebuild: func(ctx context.Context) (*build.Result, error) {
			return builder.Run(ctx, build.Request{
				Source:        source,
				Destination:   dest,
				IncludeDrafts: opts.IncludeDrafts,
			})
		},
	})

	go func() { _ = watcher.Run(ctx) }()
	slog.Info("Watching for changes", logfields.Source(source))
	// The loop exits on ctx cancellation or when the watcher closes its channel.
	return loop.Run(ctx)
}
