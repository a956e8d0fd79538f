package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
)

// LogLevelEnv overrides the log level when --verbose is not given.
const LogLevelEnv = "PRESSBUILDER_LOG_LEVEL"

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing output. Logs go to stderr.
	Out io.Writer
}

// CLI is the root command line definition.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	New    NewCmd    `cmd:"" help:"Create a new site"`
	Build  BuildCmd  `cmd:"" help:"Build the site into the destination directory"`
	Serve  ServeCmd  `cmd:"" help:"Build, serve and rebuild the site on change with live reload"`
	Clean  CleanCmd  `cmd:"" help:"Remove the generated site"`
	Doctor DoctorCmd `cmd:"" help:"Check the site for common problems"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel returns Debug for --verbose, else the level named by
// PRESSBUILDER_LOG_LEVEL, else Info.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
