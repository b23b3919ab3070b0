// Package version holds build metadata for the fragy binary.
package version

import "fmt"

// Version is set via ldflags in release builds:
// go build -ldflags "-X git.home.luguber.info/inful/fragy/internal/version.Version=v0.3.0".
var Version = "dev"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("fragy %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
