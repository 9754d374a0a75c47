// SPDX-License-Identifier: MIT
//
// Package build holds the version information embedded into the gtuner
// binary at link time:
//
//	go build -ldflags "-X gtuner/pkg/build.buildName=gtuner \
//	  -X gtuner/pkg/build.buildVersion=0.3.0 ..."
//
// Development builds (plain `go run .`) carry no ldflags and fall back to
// the defaults below.
package build

import "fmt"

const description = "Real-time six-string guitar tuner"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Package-level variables for build information. These are populated by
// -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = defaultFlags()
)

func defaultFlags() *ldFlags {
	return &ldFlags{
		Name:        "gtuner",
		Description: description,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// Initialize copies the ldflags variables into the build information. A
// binary built without any flags keeps the development defaults. Once
// buildName is set every other flag becomes required, so a release build
// with a half-filled ldflags line fails at startup.
func Initialize() error {
	if buildName == "" {
		return nil
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String formats the build information for --version output.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
