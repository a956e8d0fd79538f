package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Source string `short:"s" default:"." help:"Site source directory."`
}

func (c *CleanCmd) Run(g *Global, _ *CLI) error {
	site := filepath.Join(c.Source, "_site")
	if _, err := os.Stat(site); errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(g.Out, "Nothing to clean")
		return nil
	}
	if err := os.RemoveAll(site); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to remove generated site").
			WithPath(site).Build()
	}
	_, _ = fmt.Fprintf(g.Out, "Removed %s\n", site)
	return nil
}
