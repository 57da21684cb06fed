// Package version reports the build the binaries were produced from.
package version

import (
	"runtime/debug"
	"sync"
)

// Version is set at link time with -ldflags "-X merge2048/internal/version.Version=v1.2.3"
var Version = ""

var (
	once     sync.Once
	resolved string
)

// String returns the link-time version, the module version recorded by the
// Go toolchain, or a VCS revision when neither is known
func String() string {
	once.Do(func() {
		resolved = resolve(Version, debug.ReadBuildInfo)
	})
	return resolved
}

func resolve(linked string, read func() (*debug.BuildInfo, bool)) string {
	if linked != "" {
		return linked
	}

	info, ok := read()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		revision += "-dirty"
	}
	return "dev-" + revision
}
