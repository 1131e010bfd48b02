package version

import "fmt"

// set via -ldflags "-X github.com/mpapenbr/racedb/version.Version=..."
var (
	Version     = "dev"
	GitCommit   = "none"
	BuildDate   = "unknown"
	FullVersion = fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
)
