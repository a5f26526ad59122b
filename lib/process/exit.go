// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"

	"github.com/accessdesk/accessdesk/lib/version"
)

// Fatal writes "error: err" to stderr and exits with code 1. Service
// mains call it for errors returned from run().
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// PrintVersion writes the -version banner for binary to stdout.
func PrintVersion(binary string) {
	writeVersion(os.Stdout, binary)
}

func writeVersion(w io.Writer, binary string) {
	fmt.Fprintf(w, "%s %s\n", binary, version.Info())
}
