// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/ulikoehler/slinktree/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/ulikoehler/slinktree/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/ulikoehler/slinktree/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"

	"github.com/ulikoehler/slinktree/pkg/model"
)

var (
	// Version is the semantic version (e.g., "v0.3.0").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the formatted build information, including the newest
// binary container version this build reads and writes.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ncontainer format: v%d",
		Version, Commit, Date, model.CurrentFormatVersion)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\ncontainer format: v%d\n",
		Version, Commit, Date, model.CurrentFormatVersion)
}
