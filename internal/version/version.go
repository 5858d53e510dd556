// Package version holds the sebot build version.
package version

import "runtime/debug"

// Set at build time:
//
//	go build -ldflags "-X sebot/internal/version.Version=0.3.0 -X sebot/internal/version.Commit=$(git rev-parse HEAD)"
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is swapped out in tests.
var readBuildInfo = debug.ReadBuildInfo

// revision returns Commit, falling back to the VCS revision the toolchain
// embedded when no ldflags were given.
func revision() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}

// Info returns the version with a short commit suffix when one is known.
func Info() string {
	if c := revision(); c != "unknown" && len(c) > 7 {
		return Version + " (" + c[:7] + ")"
	}
	return Version
}

// Full returns the multi-line form printed by `sebot version`.
func Full() string {
	return "sebot " + Version + "\n" +
		"commit: " + revision() + "\n" +
		"built:  " + BuildDate
}
