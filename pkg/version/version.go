// Package version derives the build identity reported in logs and /health.
package version

import "runtime/debug"

const appName = "stumpcast"

// Full returns "stumpcast/<revision>", where revision is the short VCS
// commit recorded in build metadata, or "dev" for untracked builds and
// test binaries.
func Full() string {
	return appName + "/" + revision()
}

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 8 {
			return s.Value[:8]
		}
	}
	return "dev"
}
