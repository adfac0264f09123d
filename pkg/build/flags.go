// SPDX-License-Identifier: MIT
//
// Package build carries metadata stamped into the binary at link time:
// binary name, build timestamp, Git commit, and semantic version. The
// values surface in the CLI version output and startup logging.
package build

import (
	"fmt"
	"strings"
)

// Info is the validated build metadata.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Populated via -ldflags="-X groove/pkg/build.buildName=... " and friends.
// A binary built without them reports "dev" everywhere.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string

	buildInfo = &Info{
		Name:    "dev",
		Time:    "dev",
		Commit:  "dev",
		Version: "dev",
	}
)

// Initialize validates the linker-supplied values and makes them available
// through GetBuildFlags. Call once at startup; an error names every flag
// that was not stamped.
func Initialize() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"buildName", buildName},
		{"buildTime", buildTime},
		{"buildCommit", buildCommit},
		{"buildVersion", buildVersion},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("build flags not stamped: %s", strings.Join(missing, ", "))
	}

	buildInfo.Name = buildName
	buildInfo.Time = buildTime
	buildInfo.Commit = buildCommit
	buildInfo.Version = buildVersion
	return nil
}

// GetBuildFlags returns the current build metadata. Valid after a
// successful Initialize; before that it holds the "dev" placeholders.
func GetBuildFlags() *Info {
	return buildInfo
}
