// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"strings"
	"testing"

	"github.com/accessdesk/accessdesk/lib/version"
)

func TestWriteVersion(t *testing.T) {
	var output bytes.Buffer
	writeVersion(&output, "accessdesk-server")
	want := "accessdesk-server " + version.Info() + "\n"
	if output.String() != want {
		t.Errorf("banner = %q, want %q", output.String(), want)
	}
	if !strings.HasPrefix(output.String(), "accessdesk-server ") {
		t.Error("banner does not start with the binary name")
	}
}
