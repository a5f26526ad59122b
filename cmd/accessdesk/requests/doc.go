// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package requests implements the accessdesk commands that work with
// requests on a running accessdesk-server: list, stats, submit,
// delete, and the watch dashboard.
package requests
