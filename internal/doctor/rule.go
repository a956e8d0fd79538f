// Package doctor inspects a site source tree for problems that would break or
// degrade a build.
package doctor

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pressbuilder/internal/config"
)

// Severity ranks a finding.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Finding is the outcome of one check against one subject.
type Finding struct {
	Check    string
	Severity Severity
	Message  string
}

// Context is the data every check sees.
type Context struct {
	Source string
	// Config is nil when _config.yml is missing or unparsable.
	Config *config.Config
	Logger *slog.Logger
}

// OK returns a passing finding.
func OK(message string) Finding {
	return Finding{Severity: SeverityOK, Message: message}
}

// Warning returns a non-fatal finding.
func Warning(message string) Finding {
	return Finding{Severity: SeverityWarning, Message: message}
}

// Critical returns a finding that makes the site unbuildable.
func Critical(message string) Finding {
	return Finding{Severity: SeverityCritical, Message: message}
}

// Check inspects one aspect of a site.
type Check interface {
	// Name returns a short identifier for logging and reports.
	Name() string

	// Run returns one or more findings. An empty result counts as passing.
	Run(ctx context.Context, dctx Context) []Finding
}

// CheckChain runs checks in order. Unlike a validation chain it never stops
// early: every check contributes to the report.
type CheckChain struct {
	checks []Check
}

// NewCheckChain creates a chain of the given checks.
func NewCheckChain(checks ...Check) *CheckChain {
	return &CheckChain{checks: checks}
}

// Run executes every check and collects the findings in order.
func (c *CheckChain) Run(ctx context.Context, dctx Context) []Finding {
	var out []Finding
	for _, check := range c.checks {
		if ctx.Err() != nil {
			break
		}
		for _, f := range check.Run(ctx, dctx) {
			f.Check = check.Name()
			if f.Severity != SeverityOK && dctx.Logger != nil {
				dctx.Logger.Debug("Doctor check reported a problem",
					"check", f.Check,
					"severity", f.Severity.String(),
					"reason", f.Message)
			}
			out = append(out, f)
		}
	}
	return out
}
