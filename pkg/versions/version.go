// Package versions provides build version information.
package versions

import (
	"fmt"
	"runtime"
	"time"
)

const unknownStr = "unknown"

// These variables are set at build time via ldflags.
var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git commit hash of the build.
	Commit = unknownStr

	// BuildDate is the RFC 3339 timestamp of the build.
	BuildDate = unknownStr
)

// VersionInfo is the resolved build metadata reported by the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns the build metadata. Development builds report a
// synthetic "build-<commit>" version so log lines can still be correlated.
func GetVersionInfo() VersionInfo {
	version := Version
	if version == "dev" {
		version = devVersion()
	}

	return VersionInfo{
		Version:   version,
		Commit:    Commit,
		BuildDate: formatBuildDate(BuildDate),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func devVersion() string {
	if Commit == unknownStr {
		return "build-unknown"
	}
	short := Commit
	if len(short) > 8 {
		short = short[:8]
	}
	return "build-" + short
}

// formatBuildDate renders an RFC 3339 build date in a human-friendly form.
// Unparseable values pass through unchanged.
func formatBuildDate(date string) string {
	parsed, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return date
	}
	return parsed.UTC().Format("2006-01-02 15:04:05 UTC")
}
