package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestShortRevision(t *testing.T) {
	tests := []struct {
		name string
		rev  string
		want string
	}{
		{"full hash", "0123456789abcdef", "0123456"},
		{"exactly seven", "abcdef0", "abcdef0"},
		{"short", "abc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortRevision(tt.rev); got != tt.want {
				t.Errorf("shortRevision(%q) = %q, want %q", tt.rev, got, tt.want)
			}
		})
	}
}

func TestFromBuildInfo(t *testing.T) {
	savedVersion, savedCommit := Version, Commit
	defer func() { Version, Commit = savedVersion, savedCommit }()

	Version, Commit = "", ""
	fromBuildInfo(&debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "feedfacecafebeef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
	}}, true)

	if Commit != "feedfac-dirty" {
		t.Errorf("Commit = %q, want %q", Commit, "feedfac-dirty")
	}
	if Version != "dev-20260301" {
		t.Errorf("Version = %q, want %q", Version, "dev-20260301")
	}
}

func TestFromBuildInfoMissing(t *testing.T) {
	savedVersion, savedCommit := Version, Commit
	defer func() { Version, Commit = savedVersion, savedCommit }()

	Version, Commit = "v1.0.0", "abc1234"
	fromBuildInfo(nil, false)

	if Version != "v1.0.0" || Commit != "abc1234" {
		t.Errorf("fromBuildInfo(nil) changed values: %q %q", Version, Commit)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.Contains(full, Version) || !strings.Contains(full, "commit: "+Commit) {
		t.Errorf("Full() = %q, missing version or commit", full)
	}
}
