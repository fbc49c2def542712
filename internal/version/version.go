// Package version exposes build metadata for the eventwatch binary.
//
// Version and Commit are stamped at build time:
//
//	go build -ldflags "-X github.com/makrx/realtime/internal/version.Version=1.0.0 \
//	                   -X github.com/makrx/realtime/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version, "dev" for unstamped builds.
	Version = "dev"

	// Commit is the short git commit hash.
	Commit = "unknown"
)

// String returns the version, commit, and toolchain in one line,
// suitable for the startup log.
func String() string {
	return fmt.Sprintf("%s (%s) %s", Version, Commit, runtime.Version())
}
