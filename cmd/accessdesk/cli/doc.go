// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the accessdesk
// CLI.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. The tree is assembled in cmd/accessdesk/commands and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and help output with examples. Unknown
// subcommands and flags get a Levenshtein suggestion (distance <= 3).
//
// Parameter structs bind their flags through struct tags with
// [FlagsFromParams]. [Connection] carries the global --server and
// --verbose flags for commands that talk to accessdesk-server, and
// [ClassifyError] turns client failures into categorized [ToolError]
// values that main maps to exit codes with [ExitCodeFor].
package cli
