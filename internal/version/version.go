// Package version reports the build version of the service.
package version

import "runtime/debug"

// Version can be overridden at build time with -ldflags "-X ordercleanup/backend/internal/version.Version=1.2.0".
var Version = "1.0.0"

// Get returns Version, suffixed with the short VCS revision when the binary carries one.
func Get() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return Version + "+" + setting.Value[:7]
		}
	}
	return Version
}
