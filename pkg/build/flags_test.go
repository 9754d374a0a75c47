// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origFlags   ldFlags
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	if buildFlags != nil {
		origFlags = *buildFlags
	}

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	if buildFlags != nil {
		*buildFlags = origFlags
	}

	os.Exit(exitCode)
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		buildName   string
		buildTime   string
		buildCommit string
		buildVer    string
		wantErrMsg  string
		wantName    string
		wantVersion string
	}{
		{"Development build", "", "", "", "", "", "gtuner", "dev"},
		{"Missing BuildTime", "gtuner", "", "abcdef123", "v1.0.0", "BuildTime is required", "", ""},
		{"Missing BuildCommit", "gtuner", "2025-04-13", "", "v1.0.0", "BuildCommit is required", "", ""},
		{"Missing BuildVersion", "gtuner", "2025-04-13", "abcdef123", "", "BuildVersion is required", "", ""},
		{"Release build", "gtuner-pro", "2025-04-13", "abcdef123", "v1.0.0", "", "gtuner-pro", "v1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildFlags = defaultFlags()

			buildName = tt.buildName
			buildTime = tt.buildTime
			buildCommit = tt.buildCommit
			buildVersion = tt.buildVer

			err := Initialize()

			if tt.wantErrMsg != "" {
				if err == nil {
					t.Fatalf("Initialize() expected error, got nil")
				}
				if err.Error() != tt.wantErrMsg {
					t.Errorf("Initialize() error = %v, want %v", err, tt.wantErrMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("Initialize() unexpected error: %v", err)
			}
			if buildFlags.Name != tt.wantName {
				t.Errorf("buildFlags.Name = %v, want %v", buildFlags.Name, tt.wantName)
			}
			if buildFlags.Version != tt.wantVersion {
				t.Errorf("buildFlags.Version = %v, want %v", buildFlags.Version, tt.wantVersion)
			}
			if buildFlags.Description == "" {
				t.Error("buildFlags.Description should never be empty")
			}
		})
	}
}

func TestGetBuildFlagsString(t *testing.T) {
	buildFlags = &ldFlags{
		Name:    "gtuner",
		Time:    "2025-04-13",
		Commit:  "abcdef123",
		Version: "v1.0.0",
	}

	want := "gtuner v1.0.0 (commit abcdef123, built 2025-04-13)"
	if got := GetBuildFlags().String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
