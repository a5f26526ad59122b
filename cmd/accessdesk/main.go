// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/accessdesk/accessdesk/cmd/accessdesk/cli"
	"github.com/accessdesk/accessdesk/cmd/accessdesk/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an error carrying
		// the exit code; don't add an "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.ExitCodeFor(err))
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
