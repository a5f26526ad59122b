// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"strings"
	"testing"
)

func setBuild(t *testing.T, commit, dirty, buildTime string) {
	t.Helper()
	previousCommit, previousDirty, previousTime := GitCommit, GitDirty, BuildTime
	GitCommit, GitDirty, BuildTime = commit, dirty, buildTime
	t.Cleanup(func() {
		GitCommit, GitDirty, BuildTime = previousCommit, previousDirty, previousTime
	})
}

func TestInfoUsesInjectedValues(t *testing.T) {
	setBuild(t, "abc1234", "true", "2026-03-01T00:00:00Z")

	want := Version + " (abc1234-dirty, 2026-03-01T00:00:00Z)"
	if got := Info(); got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
	details := Current()
	if details.Commit != "abc1234" || !details.Dirty {
		t.Errorf("Current() = %+v", details)
	}
}

func TestFull(t *testing.T) {
	setBuild(t, "abc1234", "false", "now")
	full := Full()
	if !strings.HasPrefix(full, Info()) {
		t.Errorf("Full() = %q, want it to start with Info()", full)
	}
	if !strings.Contains(full, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("Full() = %q, missing platform", full)
	}
}

func TestCurrentWithoutInjection(t *testing.T) {
	setBuild(t, "unknown", "false", "unknown")
	details := Current()
	// Test binaries carry no VCS stamp, so the commit stays unknown
	// or is a short SHA when one is present.
	if details.Commit != "unknown" && len(details.Commit) > 7 {
		t.Errorf("Commit = %q, want unknown or a short SHA", details.Commit)
	}
	if details.Go != runtime.Version() {
		t.Errorf("Go = %q, want %q", details.Go, runtime.Version())
	}
}
