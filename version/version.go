package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

var (
	Version   = ""
	GitCommit = ""
	BuildTime = ""
)

const devel = "dev"

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit,omitempty"`
	Dirty     bool      `json:"dirty,omitempty"`
	Built     time.Time `json:"built,omitzero"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
}

// IsRelease reports whether the binary was built from a tagged, clean tree.
func (i *Info) IsRelease() bool {
	return i.Version != devel && !i.Dirty && !isPseudo(i.Version)
}

// isPseudo reports whether v is a Go pseudo-version such as
// v0.0.0-20260101000000-abcdef012345.
func isPseudo(v string) bool {
	parts := strings.Split(v, "-")
	if len(parts) < 3 || len(parts[len(parts)-1]) != 12 {
		return false
	}
	stamp := parts[len(parts)-2]
	stamp = stamp[strings.LastIndexByte(stamp, '.')+1:]
	_, err := time.Parse("20060102150405", stamp)
	return err == nil
}

var readBuildInfo = debug.ReadBuildInfo

var (
	once   sync.Once
	cached *Info
)

// Get returns the build info, computed once per process.
func Get() *Info {
	once.Do(func() { cached = collect() })
	return cached
}

func collect() *Info {
	info := &Info{
		Version:   Version,
		Commit:    GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		info.Built = t
	}

	if bi, ok := readBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			case "vcs.time":
				if info.Built.IsZero() {
					info.Built, _ = time.Parse(time.RFC3339, s.Value)
				}
			}
		}
	}

	if info.Version == "" {
		info.Version = devel
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// GetShortVersion returns the version with the commit when it is known, for
// example "v1.2.0" or "dev-1a2b3c4-dirty".
func GetShortVersion() string {
	return short(Get())
}

func short(info *Info) string {
	v := info.Version
	if info.Commit != "" && !strings.Contains(v, info.Commit) && !info.IsRelease() {
		v += "-" + info.Commit
	}
	if info.Dirty {
		v += "-dirty"
	}
	return v
}

// GetFullVersion returns the short version followed by the commit, build
// date and platform.
func GetFullVersion() string {
	return full(Get())
}

func full(info *Info) string {
	var b strings.Builder
	b.WriteString(short(info))
	if info.Commit != "" {
		fmt.Fprintf(&b, " (commit %s", info.Commit)
		if !info.Built.IsZero() {
			fmt.Fprintf(&b, ", built %s", info.Built.UTC().Format(time.DateOnly))
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " %s %s", info.GoVersion, info.Platform)
	return b.String()
}
