package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func withBuild(t *testing.T, version, commit, built string, bi *debug.BuildInfo) {
	t.Helper()
	v, c, b, r := Version, GitCommit, BuildTime, readBuildInfo
	t.Cleanup(func() { Version, GitCommit, BuildTime, readBuildInfo = v, c, b, r })

	Version, GitCommit, BuildTime = version, commit, built
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func stamped(version string, settings ...string) *debug.BuildInfo {
	bi := &debug.BuildInfo{Main: debug.Module{Path: "github.com/kbukum/rex", Version: version}}
	for i := 0; i+1 < len(settings); i += 2 {
		bi.Settings = append(bi.Settings, debug.BuildSetting{Key: settings[i], Value: settings[i+1]})
	}
	return bi
}

func TestCollect_Ldflags(t *testing.T) {
	withBuild(t, "v1.4.0", "0123456789abcdef", "2026-03-01T10:00:00Z",
		stamped("(devel)", "vcs.revision", "ffffffffffff", "vcs.time", "2020-01-01T00:00:00Z"))

	info := collect()
	if info.Version != "v1.4.0" || info.Commit != "0123456" {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Built.Year() != 2026 {
		t.Errorf("build time = %v", info.Built)
	}
	if !info.IsRelease() {
		t.Error("expected a release")
	}
	if got := short(info); got != "v1.4.0" {
		t.Errorf("short = %q", got)
	}
}

func TestCollect_BuildInfo(t *testing.T) {
	withBuild(t, "", "", "",
		stamped("v1.2.0", "vcs.revision", "abcdef0123", "vcs.modified", "true", "vcs.time", "2025-11-02T08:00:00Z"))

	info := collect()
	if info.Version != "v1.2.0" || info.Commit != "abcdef0" || !info.Dirty {
		t.Fatalf("unexpected info %+v", info)
	}
	if !info.Built.Equal(time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("build time = %v", info.Built)
	}
	if info.IsRelease() {
		t.Error("a dirty tree is not a release")
	}
	if got := short(info); got != "v1.2.0-abcdef0-dirty" {
		t.Errorf("short = %q", got)
	}
}

func TestCollect_Devel(t *testing.T) {
	withBuild(t, "", "", "", stamped("(devel)"))

	info := collect()
	if info.Version != devel || info.Commit != "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.IsRelease() {
		t.Error("dev is not a release")
	}
	if got := short(info); got != "dev" {
		t.Errorf("short = %q", got)
	}
}

func TestCollect_NoBuildInfo(t *testing.T) {
	withBuild(t, "", "", "not-a-time", nil)

	info := collect()
	if info.Version != devel || !info.Built.IsZero() {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Platform == "" || !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("runtime fields missing: %+v", info)
	}
}

func TestIsRelease_Pseudo(t *testing.T) {
	info := &Info{Version: "v0.0.0-20260101000000-abcdef012345"}
	if info.IsRelease() {
		t.Error("pseudo-versions are not releases")
	}
}

func TestFull(t *testing.T) {
	info := &Info{
		Version:   "v1.0.0",
		Commit:    "abc1234",
		Built:     time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		GoVersion: "go1.26.0",
		Platform:  "linux/amd64",
	}
	want := "v1.0.0 (commit abc1234, built 2026-02-03) go1.26.0 linux/amd64"
	if got := full(info); got != want {
		t.Errorf("full = %q, want %q", got, want)
	}

	info.Commit = ""
	if got := full(info); got != "v1.0.0 go1.26.0 linux/amd64" {
		t.Errorf("full without commit = %q", got)
	}
}

func TestGet_Cached(t *testing.T) {
	if Get() != Get() {
		t.Error("Get should return the same info")
	}
	if GetShortVersion() == "" || !strings.Contains(GetFullVersion(), GetShortVersion()) {
		t.Errorf("short %q not in full %q", GetShortVersion(), GetFullVersion())
	}
}

func TestIsPseudo(t *testing.T) {
	tests := map[string]bool{
		"v1.2.0":                               false,
		"v1.2.0-rc.1":                          false,
		"v0.0.0-20260101000000-abcdef012345":   true,
		"v1.2.1-0.20260101000000-abcdef012345": true,
	}
	for v, want := range tests {
		if got := isPseudo(v); got != want {
			t.Errorf("isPseudo(%q) = %v, want %v", v, got, want)
		}
	}
}
