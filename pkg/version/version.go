// Package version reports the build identity of the artifactminer binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X .../pkg/version.Version=..." at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InitBinaryVersion fills unset fields from the module build info.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("artifactminer %s (commit: %s, built: %s)", Version, Commit, Date)
}
