package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/pressbuilder/internal/build"
	"git.home.luguber.info/inful/pressbuilder/internal/devserver"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source      string `short:"s" default:"." help:"Site source directory."`
	Destination string `short:"d" help:"Output directory. Defaults to <source>/_site."`
	Drafts      bool   `help:"Include posts from _drafts."`
	Watch       bool   `short:"w" help:"Keep running and rebuild when sources change."`
}

func (b *BuildCmd) Run(g *Global, _ *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return b.run(ctx, g, build.New())
}

func (b *BuildCmd) run(ctx context.Context, g *Global, builder build.Service) error {
	res, err := builder.Run(ctx, build.Request{
		Source:        b.Source,
		Destination:   b.Destination,
		IncludeDrafts: b.Drafts,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Built %d posts, %d pages and %d static files into %s in %s\n",
		res.Posts, res.Pages, res.StaticFiles, res.Destination, res.Duration.Round(time.Millisecond))

	if !b.Watch {
		return nil
	}
	_, _ = fmt.Fprintln(g.Out, "Watching for changes. Press Ctrl+C to stop.")
	return devserver.Watch(ctx, devserver.WatchOptions{
		Source:        b.Source,
		Destination:   b.Destination,
		IncludeDrafts: b.Drafts,
		Builder:       builder,
	})
}

