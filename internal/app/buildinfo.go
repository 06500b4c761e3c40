package app

import "fmt"

// Set through -ldflags "-X github.com/hyperifyio/fieldtext/internal/app.Version=..."
var (
	Version = "0.0.0-dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// VersionString renders the build information on one line.
func VersionString() string {
	return fmt.Sprintf("fieldtext %s (commit %s, built %s)", Version, Commit, Date)
}
