// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/banshee-data/convviz/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns a single-line summary for -version output and catalog rows.
func String() string {
	return fmt.Sprintf("convviz %s (%s, built %s)", Version, GitSHA, BuildTime)
}
