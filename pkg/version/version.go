// Package version reports the build identity of the kwaysort binary.
package version

import (
	"runtime/debug"
)

const unknown = "<unknown>"

// Build identity, overridden with -ldflags "-X" at release time.
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills whatever -ldflags left unset from the build info
// the Go toolchain embeds in module-aware builds.
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
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

// String returns the one-line version banner.
func String() string {
	return "kwaysort " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
