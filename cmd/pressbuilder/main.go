package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pressbuilder/cmd/pressbuilder/commands"
	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("pressbuilder"),
		kong.Description("A static blog generator with a live-reload preview server."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	err := parser.Run(global, cli)
	os.Exit(ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Report(err))
}
