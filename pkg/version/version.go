package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build variables set via ldflags:
// -X 'github.com/compozy/normorder/pkg/version.Version=v0.1.0'
// -X 'github.com/compozy/normorder/pkg/version.CommitHash=abc123'
// -X 'github.com/compozy/normorder/pkg/version.BuildDate=2026-01-01T00:00:00Z'
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version    string `json:"version"     yaml:"version"`
	CommitHash string `json:"commit_hash" yaml:"commit_hash"`
	BuildDate  string `json:"build_date"  yaml:"build_date"`
	GoVersion  string `json:"go_version"  yaml:"go_version"`
	Platform   string `json:"platform"    yaml:"platform"`
}

// Get returns the current build information. When no commit was injected it
// falls back to the VCS revision recorded by the Go toolchain.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.CommitHash != "unknown" {
		return info
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				info.CommitHash = s.Value
			}
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("normorder %s (commit %s, built %s, %s %s)",
		i.Version, i.CommitHash, i.BuildDate, i.GoVersion, i.Platform)
}
