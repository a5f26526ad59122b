// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides shared terminal user interface components for
// accessdesk's interactive dashboard. Built on bubbletea (Elm
// architecture), these components handle the recurring pieces: the
// color theme, confirmation modals spliced over the main view, fuzzy
// filter matching, scrollbars, and change animation.
//
// The request dashboard in lib/requestui owns its data, layout, and
// domain rendering; this package stays free of request semantics
// beyond the status palette.
package tui
