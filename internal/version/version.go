// Package version holds build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/sydlexius/songmatch/internal/version.Version=v1.2.0"
package version

import "fmt"

// Set at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns a one-line summary for the version command.
func String() string {
	return fmt.Sprintf("songmatch %s (commit %s, built %s)", Version, Commit, Date)
}

// UserAgent identifies songmatch to catalog services.
func UserAgent() string {
	return fmt.Sprintf("songmatch/%s (https://github.com/sydlexius/songmatch)", Version)
}
