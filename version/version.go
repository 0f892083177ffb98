// Package version holds build metadata injected at link time.
package version

// Populated via -ldflags at build time.
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
	GoInfo        = "unknown"
)
