package version

import (
	"fmt"
	"runtime"
)

// Version information
const (
	Version       = "0.1.0"
	SchemaVersion = "1"
	MinGoVersion  = "1.24"
)

// BuildInfo contains build information
var BuildInfo = struct {
	Version       string
	SchemaVersion string
	GitCommit     string
	BuildDate     string
	GoVersion     string
}{
	Version:       Version,
	SchemaVersion: SchemaVersion,
	GoVersion:     runtime.Version(),
}

// SetBuildInfo is called from main with values injected through -ldflags
func SetBuildInfo(commit, date, goVersion string) {
	BuildInfo.GitCommit = commit
	BuildInfo.BuildDate = date
	if goVersion != "" {
		BuildInfo.GoVersion = goVersion
	}
}

// VersionInfo returns formatted version information
func VersionInfo() string {
	return fmt.Sprintf("tasklist %s (schema %s)", BuildInfo.Version, BuildInfo.SchemaVersion)
}

// FullVersionInfo returns detailed version information
func FullVersionInfo() string {
	info := fmt.Sprintf("tasklist %s\n", BuildInfo.Version)
	info += fmt.Sprintf("Schema Version: %s\n", BuildInfo.SchemaVersion)
	info += fmt.Sprintf("Go Version: %s\n", BuildInfo.GoVersion)

	if BuildInfo.GitCommit != "" {
		info += fmt.Sprintf("Git Commit: %s\n", BuildInfo.GitCommit)
	}

	if BuildInfo.BuildDate != "" {
		info += fmt.Sprintf("Build Date: %s\n", BuildInfo.BuildDate)
	}

	return info
}
