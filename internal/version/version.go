// Package version reports the pressbuilder release.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at link time:
// go build -ldflags "-X git.home.luguber.info/inful/pressbuilder/internal/version.Version=v0.3.0".
var Version = "dev"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version line printed by --version. A dev build installed
// with go install falls back to the module version recorded in the binary.
func String() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if GitCommit == "unknown" {
		return "pressbuilder " + v
	}
	return fmt.Sprintf("pressbuilder %s (%s, built %s)", v, GitCommit, BuildTime)
}
