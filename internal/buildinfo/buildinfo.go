package buildinfo

import "fmt"

// Populated at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("resume-analyzer %s (commit=%s, date=%s)", Version, Commit, Date)
}
