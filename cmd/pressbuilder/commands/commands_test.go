package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pressbuilder/internal/build"
	"git.home.luguber.info/inful/pressbuilder/internal/doctor"
)

func newGlobal() (*Global, *bytes.Buffer) {
	var out bytes.Buffer
	return &Global{Logger: slog.Default(), Out: &out}, &out
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("pressbuilder"), kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func TestParse_Defaults(t *testing.T) {
	cli, kctx := parse(t, "serve")
	assert.Equal(t, "serve", kctx.Command())
	assert.Equal(t, 4000, cli.Serve.Port)
	assert.Equal(t, "127.0.0.1", cli.Serve.Host)
	assert.Equal(t, ".", cli.Serve.Source)
	assert.False(t, cli.Serve.Metrics)

	cli, kctx = parse(t, "-v", "build", "--source", "site", "--drafts", "-w")
	assert.Equal(t, "build", kctx.Command())
	assert.True(t, cli.Verbose)
	assert.Equal(t, "site", cli.Build.Source)
	assert.True(t, cli.Build.Drafts)
	assert.True(t, cli.Build.Watch)

	cli, kctx = parse(t, "new", "My Blog", "--git")
	assert.Equal(t, "new <name>", kctx.Command())
	assert.Equal(t, "My Blog", cli.New.Name)
	assert.True(t, cli.New.Git)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		env     string
		verbose bool
		want    slog.Level
	}{
		{env: "", want: slog.LevelInfo},
		{env: "debug", want: slog.LevelDebug},
		{env: "WARN", want: slog.LevelWarn},
		{env: "error", want: slog.LevelError},
		{env: "bogus", want: slog.LevelInfo},
		{env: "error", verbose: true, want: slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(LogLevelEnv, tt.env)
			assert.Equal(t, tt.want, parseLogLevel(tt.verbose))
		})
	}
}

func TestNewThenBuild(t *testing.T) {
	g, out := newGlobal()
	target := filepath.Join(t.TempDir(), "blog")

	require.NoError(t, (&NewCmd{Name: "Blog", Path: target}).Run(g, nil))
	assert.Contains(t, out.String(), "Created new site at "+target)
	assert.FileExists(t, filepath.Join(target, "_config.yml"))

	out.Reset()
	cmd := &BuildCmd{Source: target}
	require.NoError(t, cmd.run(context.Background(), g, build.New()))
	assert.Contains(t, out.String(), "Built 1 posts, 2 pages")
	assert.FileExists(t, filepath.Join(target, "_site", "index.html"))

	out.Reset()
	require.NoError(t, (&CleanCmd{Source: target}).Run(g, nil))
	assert.Contains(t, out.String(), "Removed")
	assert.NoDirExists(t, filepath.Join(target, "_site"))

	out.Reset()
	require.NoError(t, (&CleanCmd{Source: target}).Run(g, nil))
	assert.Equal(t, "Nothing to clean\n", out.String())
}

func TestNew_RefusesNonEmpty(t *testing.T) {
	g, _ := newGlobal()
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "x"), nil, 0o600))

	err := (&NewCmd{Name: "x", Path: target}).Run(g, nil)
	require.Error(t, err)
}

func TestBuild_ReportsFailure(t *testing.T) {
	g, out := newGlobal()
	cmd := &BuildCmd{Source: filepath.Join(t.TempDir(), "missing")}
	require.Error(t, cmd.run(context.Background(), g, build.New()))
	assert.Empty(t, out.String())
}

func TestDoctor(t *testing.T) {
	g, out := newGlobal()

	err := (&DoctorCmd{Source: t.TempDir()}).Run(g, nil)
	require.ErrorIs(t, err, doctor.ErrCriticalIssues)
	assert.Contains(t, out.String(), "critical issue(s)")

	target := filepath.Join(t.TempDir(), "ok")
	require.NoError(t, (&NewCmd{Name: "ok", Path: target}).Run(g, nil))
	out.Reset()
	require.NoError(t, (&DoctorCmd{Source: target}).Run(g, nil))
	assert.Contains(t, out.String(), "Your site looks good!")
}

func TestServe_OnReadyPrintsURL(t *testing.T) {
	g, out := newGlobal()
	opts := (&ServeCmd{Source: ".", Port: 4000, Host: "127.0.0.1"}).options(g)
	assert.Equal(t, 4000, opts.Port)

	opts.OnReady("http://127.0.0.1:4000/")
	assert.Contains(t, out.String(), "Serving at http://127.0.0.1:4000/")
}
