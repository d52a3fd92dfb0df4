package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the pipeline.
	Version = "0.3.0"

	// DataFormatVersion is the version of the output table format.
	DataFormatVersion = "v1"
)

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// VersionString returns the full version line printed by the CLI.
func VersionString() string {
	return fmt.Sprintf("salespipeline %s (commit %s, built %s, %s)",
		Version, GitCommit, BuildTime, runtime.Version())
}
