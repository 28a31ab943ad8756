// Package version carries build information stamped via -ldflags.
package version

import "fmt"

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
)

// Full formats the build information for an application binary.
func Full(app string) string {
	return fmt.Sprintf("%s %s (%s)", app, Version, Commit)
}
