package commands

import (
	"context"

	"git.home.luguber.info/inful/pressbuilder/internal/doctor"
)

// DoctorCmd implements the 'doctor' command.
type DoctorCmd struct {
	Source string `short:"s" default:"." help:"Site source directory."`
}

// Run prints the report and fails when any check is critical.
func (d *DoctorCmd) Run(g *Global, _ *CLI) error {
	report, err := doctor.Run(context.Background(), d.Source)
	if err != nil {
		return err
	}
	if err := report.Write(g.Out); err != nil {
		return err
	}
	return report.Err()
}
