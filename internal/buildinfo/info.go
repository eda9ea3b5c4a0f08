// Package buildinfo carries version details stamped into the bukutani
// binary with -ldflags "-X github.com/bukutani/bukutani/internal/buildinfo.Version=...".
package buildinfo

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = "none"
	// Date will be set via ldflags during build.
	Date = "unknown"
)
