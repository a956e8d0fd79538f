package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/pressbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// ErrCriticalIssues is returned by Report.Err when the site cannot build.
var ErrCriticalIssues = errors.New("site has critical issues")

// DefaultChecks returns the standard checks in report order.
func DefaultChecks() []Check {
	return []Check{
		ConfigFileRule{},
		LayoutsDirRule{},
		PostsDirRule{},
		IndexFileRule{},
		AssetsDirRule{},
		PostDatesRule{},
		LayoutCycleRule{},
	}
}

// Report is the result of one doctor run.
type Report struct {
	Source   string
	Findings []Finding
}

// Issues counts critical findings.
func (r *Report) Issues() int { return r.count(SeverityCritical) }

// Warnings counts warning findings.
func (r *Report) Warnings() int { return r.count(SeverityWarning) }

func (r *Report) count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Err returns a validation error wrapping ErrCriticalIssues when any finding
// is critical.
func (r *Report) Err() error {
	if n := r.Issues(); n > 0 {
		return ferrors.WrapError(ErrCriticalIssues, ferrors.CategoryValidation, "doctor found critical issues").
			WithContext("source", r.Source).
			WithContext("issues", n).
			Build()
	}
	return nil
}

// Write prints the report for a terminal.
func (r *Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Checking site at %s\n\n", r.Source); err != nil {
		return err
	}
	for _, f := range r.Findings {
		if _, err := fmt.Fprintf(w, "%s %s\n", marker(f.Severity), f.Message); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "\n─────────────────────────"); err != nil {
		return err
	}

	issues, warnings := r.Issues(), r.Warnings()
	var err error
	switch {
	case issues == 0 && warnings == 0:
		_, err = fmt.Fprintln(w, "✅ Your site looks good!")
	default:
		if issues > 0 {
			_, err = fmt.Fprintf(w, "❌ Found %d critical issue(s)\n", issues)
		}
		if err == nil && warnings > 0 {
			_, err = fmt.Fprintf(w, "⚠️  Found %d warning(s)\n", warnings)
		}
	}
	return err
}

func marker(s Severity) string {
	switch s {
	case SeverityCritical:
		return "❌"
	case SeverityWarning:
		return "⚠️ "
	default:
		return "✅"
	}
}

// Run checks the site at source with the given checks, or DefaultChecks when
// none are given.
func Run(ctx context.Context, source string, checks ...Check) (*Report, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid source path").Build()
	}
	if !isDir(abs) {
		return nil, ferrors.ValidationError("source is not a directory").WithPath(abs).Build()
	}
	if len(checks) == 0 {
		checks = DefaultChecks()
	}

	dctx := Context{Source: abs, Logger: slog.Default()}
	// Later checks scan with the site's own exclude rules when they parse.
	if isFile(filepath.Join(abs, config.FileName)) {
		if cfg, err := config.Load(abs); err == nil {
			dctx.Config = cfg
		}
	}

	report := &Report{Source: abs, Findings: NewCheckChain(checks...).Run(ctx, dctx)}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	slog.Debug("Doctor finished",
		logfields.Source(abs),
		slog.Int("issues", report.Issues()),
		slog.Int("warnings", report.Warnings()))
	return report, nil
}
