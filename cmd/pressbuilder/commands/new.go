package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pressbuilder/internal/scaffold"
)

// NewCmd implements the 'new' command.
type NewCmd struct {
	Name  string `arg:"" help:"Site title, also the directory name unless --path is given."`
	Path  string `short:"p" help:"Directory to create the site in."`
	Git   bool   `help:"Initialize a git repository and stage the new files."`
	Force bool   `short:"f" help:"Write into a non-empty directory."`
}

func (n *NewCmd) Run(g *Global, _ *CLI) error {
	res, err := scaffold.Create(scaffold.Options{
		Name:  n.Name,
		Path:  n.Path,
		Git:   n.Git,
		Force: n.Force,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(g.Out, "Created new site at %s (%d files)\n", res.Root, len(res.Files))
	if res.Git {
		_, _ = fmt.Fprintln(g.Out, "Initialized git repository")
	}
	_, _ = fmt.Fprintf(g.Out, "\nNext steps:\n  cd %s\n  pressbuilder serve\n", res.Root)
	return nil
}
