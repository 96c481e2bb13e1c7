// Package version provides build and version information for navindex.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/Aman-CERP/navindex/pkg/navigator"
)

// Version is the current version of navindex, set via ldflags:
// -X github.com/Aman-CERP/navindex/pkg/version.Version=$(VERSION)
var Version = "dev"

// Build information set via ldflags at build time.
var (
	// Commit is the git commit hash. When ldflags leave it unset the VCS
	// stamp recorded by the Go toolchain is used instead.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"

	// GoVersion is the Go version used to build the binary.
	GoVersion = runtime.Version()
)

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	Date           string `json:"date"`
	GoVersion      string `json:"go_version"`
	OS             string `json:"os"`
	Arch           string `json:"arch"`
	FormatVersion  uint16 `json:"format_version"`
	FormatsReadMin uint16 `json:"formats_read_min"`
	FormatsReadMax uint16 `json:"formats_read_max"`
}

// String returns a one-line version string with all build info.
func String() string {
	info := GetInfo()
	return fmt.Sprintf("navindex %s (commit: %s, built: %s, go: %s, format: v%d)",
		info.Version, info.Commit, info.Date, info.GoVersion, info.FormatVersion)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// GetInfo returns structured version information, including the artifact
// format version this binary writes and the range it reads.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:        Version,
		Commit:         commit(),
		Date:           Date,
		GoVersion:      GoVersion,
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		FormatVersion:  navigator.FormatVersion,
		FormatsReadMin: navigator.MinSupportedVersion,
		FormatsReadMax: navigator.MaxSupportedVersion,
	}
}

func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return Commit
}
