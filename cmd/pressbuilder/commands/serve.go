package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"

	"git.home.luguber.info/inful/pressbuilder/internal/devserver"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Source      string `short:"s" default:"." help:"Site source directory."`
	Destination string `short:"d" help:"Output directory. Defaults to <source>/_site."`
	Port        int    `short:"P" default:"4000" help:"Port to listen on."`
	Host        string `default:"127.0.0.1" help:"Interface to bind."`
	Open        bool   `short:"o" help:"Open the site in the default browser once serving."`
	Drafts      bool   `help:"Include posts from _drafts."`
	Metrics     bool   `help:"Expose Prometheus metrics at /__metrics__."`
}

func (s *ServeCmd) Run(g *Global, _ *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := devserver.New(s.options(g))
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func (s *ServeCmd) options(g *Global) devserver.Options {
	return devserver.Options{
		Source:        s.Source,
		Destination:   s.Destination,
		Host:          s.Host,
		Port:          s.Port,
		IncludeDrafts: s.Drafts,
		Metrics:       s.Metrics,
		OnReady: func(url string) {
			_, _ = fmt.Fprintf(g.Out, "Serving at %s\nPress Ctrl+C to stop.\n", url)
			if !s.Open {
				return
			}
			if err := browser.OpenURL(url); err != nil {
				g.Logger.Warn("Could not open browser", logfields.URL(url), logfields.Error(err))
			}
		},
	}
}
