// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// These variables are set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/accessdesk/accessdesk/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Details is the version reported by "accessdesk version --json" and
// the server's /api/version endpoint.
type Details struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

var vcsOnce = sync.OnceValues(readVCS)

// readVCS returns the commit and dirty flag stamped by the toolchain.
func readVCS() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	return revision, modified
}

// Current returns the build's version details.
func Current() Details {
	commit, dirty := GitCommit, GitDirty == "true"
	if commit == "unknown" {
		if revision, modified := vcsOnce(); revision != "" {
			commit, dirty = revision, modified
		}
	}
	return Details{
		Version:   Version,
		Commit:    commit,
		Dirty:     dirty,
		BuildTime: BuildTime,
		Go:        runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	details := Current()
	dirty := ""
	if details.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", details.Version, details.Commit, dirty, details.BuildTime)
}

// Full returns detailed version information including Go version.
func Full() string {
	details := Current()
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", Info(), details.Go, details.Platform)
}

// Short returns just the version number.
func Short() string {
	return Version
}
