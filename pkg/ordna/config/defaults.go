// Package config provides configuration management for the ordna file organizer.
package config

// Default configuration values for ordna.
const (
	// DefaultTarget is the directory organized when none is specified.
	DefaultTarget = "~/Downloads"

	// DefaultGranularity is the external classification granularity.
	DefaultGranularity = "normal"

	// DefaultWatchInterval is the watch mode polling interval in seconds,
	// used when filesystem notifications are unavailable.
	DefaultWatchInterval = 5

	// DefaultWatchSettle is how long watch mode lets a new item sit,
	// in seconds, before organizing it. Browsers write downloads in
	// place, so acting immediately would move half-written files.
	DefaultWatchSettle = 3
)

// DefaultExclusions contains glob patterns for entries that should
// never be organized. These cover in-progress browser downloads.
var DefaultExclusions = []string{
	"*.part",
	"*.crdownload",
	"*.download",
	"*.tmp",
}
