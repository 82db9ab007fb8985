package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/favsoft/epdsetup/internal/version.Version=v0.3.0 \
//	                   -X github.com/favsoft/epdsetup/internal/version.Commit=abc123"
//
// Unset values are filled from VCS build info, then from "dev-<timestamp>".
var (
	// Version is the semantic version of the tools
	Version = ""
	// Commit is the git commit hash
	Commit = ""
	// RecordFormat is the configuration record layout revision the tools read and write
	RecordFormat = 1
)

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo(debug.ReadBuildInfo())
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

func fromBuildInfo(info *debug.BuildInfo, ok bool) {
	if !ok || info == nil {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; Commit == "" && rev != "" {
		Commit = shortRevision(rev)
		if settings["vcs.modified"] == "true" {
			Commit += "-dirty"
		}
	}

	if Version == "" {
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Full returns the version string including commit and record format
func Full() string {
	return fmt.Sprintf("%s (commit: %s, record format: %d)", Version, Commit, RecordFormat)
}
