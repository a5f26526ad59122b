// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// Theme defines the color palette and visual properties for the
// terminal dashboard. All colors use lipgloss ANSI 256-color codes for
// broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Request status colors.
	StatusPending        lipgloss.Color
	StatusProcessing     lipgloss.Color
	StatusCompleted      lipgloss.Color
	StatusFailed         lipgloss.Color
	StatusWorkInProgress lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Animation accents: background tint for recently-changed rows.
	// HotAccentPut is used for created/updated records; HotAccentRemove
	// for deleted ones.
	HotAccentPut    lipgloss.Color
	HotAccentRemove lipgloss.Color

	// Filter match highlighting.
	SearchHighlightBackground lipgloss.Color

	// Links in the detail pane (space URLs).
	LinkForeground lipgloss.Color

	// Modal and toast boxes.
	TooltipForeground lipgloss.Color
	TooltipBackground lipgloss.Color
	ErrorForeground   lipgloss.Color
}

// StatusColor returns the color for a request status. Unknown values
// return FaintText.
func (theme Theme) StatusColor(status request.Status) lipgloss.Color {
	switch status {
	case request.StatusPending:
		return theme.StatusPending
	case request.StatusProcessing:
		return theme.StatusProcessing
	case request.StatusCompleted:
		return theme.StatusCompleted
	case request.StatusFailed:
		return theme.StatusFailed
	case request.StatusWorkInProgress:
		return theme.StatusWorkInProgress
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusPending:        lipgloss.Color("75"),  // blue
	StatusProcessing:     lipgloss.Color("220"), // yellow/amber
	StatusCompleted:      lipgloss.Color("114"), // green
	StatusFailed:         lipgloss.Color("196"), // red
	StatusWorkInProgress: lipgloss.Color("208"), // orange

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	HotAccentPut:    lipgloss.Color("58"), // dark amber background tint
	HotAccentRemove: lipgloss.Color("52"), // dark red background tint

	SearchHighlightBackground: lipgloss.Color("58"),

	LinkForeground: lipgloss.Color("75"),

	TooltipForeground: lipgloss.Color("252"),
	TooltipBackground: lipgloss.Color("237"),
	ErrorForeground:   lipgloss.Color("203"),
}
