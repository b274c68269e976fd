// Package versions describes the console build and orders database engine versions.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// APIVersion is the version of the REST API served under /v1.
const APIVersion = "v1"

const unknown = "unknown"

// Build metadata, set with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = unknown
	BuildDate = unknown
)

// VersionInfo is what /version and `dbcluster-console version` report.
type VersionInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"build_date"`
	APIVersion string `json:"api_version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// GetVersionInfo returns the build metadata. Development builds fill missing commit and
// date from the VCS stamp the Go toolchain embeds.
func GetVersionInfo() VersionInfo {
	commit, date := Commit, BuildDate
	if strings.HasPrefix(Version, "dev") {
		commit, date = fromBuildInfo(commit, date)
	}
	return newVersionInfo(Version, commit, date)
}

func fromBuildInfo(commit, date string) (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, date
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && commit == unknown {
			commit = s.Value
		}
		if s.Key == "vcs.time" && date == unknown {
			date = s.Value
		}
	}
	return commit, date
}

func newVersionInfo(version, commit, date string) VersionInfo {
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		date = t.UTC().Format("2006-01-02 15:04:05 MST")
	}
	if version == "dev" {
		version = fmt.Sprintf("build-%.*s", 8, commit)
	}

	return VersionInfo{
		Version:    version,
		Commit:     commit,
		BuildDate:  date,
		APIVersion: APIVersion,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}
