// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the raw stdout and stderr writes that the
// accessdesk service binaries make outside their structured logger:
// the fatal error line printed when startup fails before the logger
// exists, and the -version banner.
package process
