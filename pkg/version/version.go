// Package version holds build metadata stamped in with -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build metadata. Release builds set these with
// -ldflags "-X github.com/Sumatoshi-tech/gitstats/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const vcsHashLen = 12

// InitBinaryVersion fills Version and Commit from the embedded module build
// info when they were not stamped at link time.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "none" && setting.Value != "" {
				Commit = setting.Value
				if len(Commit) > vcsHashLen {
					Commit = Commit[:vcsHashLen]
				}
			}
		case "vcs.time":
			if Date == "unknown" && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

// String renders the metadata the way the version command prints it.
func String(name string) string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", name, Version, Commit, Date)
}
