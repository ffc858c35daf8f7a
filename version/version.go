// Package version reports the tokengas release and the VCS state it was built from.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/Masterminds/semver"
)

// Build metadata. Version may be overridden via -ldflags; the VCS fields are read from the embedded build info when
// they are not.
var (
	Version       = "0.1.0"
	GitCommit     = ""
	GitCommitTime = ""
	GitTreeDirty  = ""
)

// Info describes a tokengas build.
type Info struct {
	// Version is the release, normalized to semantic versioning when it parses as such.
	Version string

	// GitCommit is the full commit hash, or empty when unknown.
	GitCommit string

	// GitCommitTime is the RFC3339 commit time, or empty when unknown.
	GitCommitTime string

	// GitTreeDirty indicates uncommitted changes were present at build time.
	GitTreeDirty bool

	// GoVersion is the toolchain the binary was built with.
	GoVersion string
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	settings := map[string]*string{
		"vcs.revision": &GitCommit,
		"vcs.time":     &GitCommitTime,
		"vcs.modified": &GitTreeDirty,
	}
	for _, kv := range info.Settings {
		if target, ok := settings[kv.Key]; ok && *target == "" {
			*target = kv.Value
		}
	}
}

// GetInfo returns the build information of the running binary.
func GetInfo() Info {
	return newInfo(Version, GitCommit, GitCommitTime, GitTreeDirty == "true")
}

func newInfo(release string, commit string, commitTime string, dirty bool) Info {
	if v, err := semver.NewVersion(release); err == nil {
		release = v.String()
	}
	return Info{
		Version:       release,
		GitCommit:     commit,
		GitCommitTime: commitTime,
		GitTreeDirty:  dirty,
		GoVersion:     runtime.Version(),
	}
}

// commit returns the abbreviated commit hash, suffixed when the tree was dirty.
func (i Info) commit() string {
	c := i.GitCommit
	if len(c) > 7 {
		c = c[:7]
	}
	if c != "" && i.GitTreeDirty {
		c += "-dirty"
	}
	return c
}

// Short returns the single line form used by --version.
func (i Info) Short() string {
	if c := i.commit(); c != "" {
		return i.Version + "+" + c
	}
	return i.Version
}

// String returns the multi-line form printed by the version command.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tokengas version %s\n", i.Version)
	if c := i.commit(); c != "" {
		fmt.Fprintf(&sb, "  Commit:     %s\n", c)
	}
	if i.GitCommitTime != "" {
		fmt.Fprintf(&sb, "  Built:      %s\n", i.GitCommitTime)
	}
	fmt.Fprintf(&sb, "  Go version: %s\n", i.GoVersion)
	return sb.String()
}
