// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package requestui implements the terminal dashboard behind
// "accessdesk watch". It shows every request in a status-tabbed list
// with a detail pane, keeps the list live from the server's event
// stream, and raises toasts for completions, failures, deletions, and
// connection trouble.
//
// Data flows one way. A [StreamSource] runs the client's Watch loop in
// its own goroutine, applies each update to a mutex-guarded
// [requestindex.Index], and notifies the bubbletea loop through a
// channel. The [Model] reads snapshots from the source on every
// notification and never touches the network itself, except for the
// confirmed delete action, which runs as a tea.Cmd.
package requestui
