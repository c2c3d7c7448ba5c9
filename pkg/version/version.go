// Package version holds build metadata injected at link time.
package version

// Version is the semantic version of the build. Overridden via
// -ldflags "-X github.com/eruditedesk/ticketsearch/pkg/version.Version=...".
var Version = "0.3.0"

// Commit is the git commit hash of the build.
var Commit = "unknown"

// BuildDate is the UTC build timestamp.
var BuildDate = "unknown"
