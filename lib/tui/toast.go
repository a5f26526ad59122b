// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ToastDuration is how long a toast stays on screen.
const ToastDuration = 4 * time.Second

// maxToasts bounds the stack; older toasts are dropped first.
const maxToasts = 4

// Toast is one transient notification.
type Toast struct {
	Text    string
	Error   bool
	Expires time.Time
}

// Toasts is a stack of notifications shown in the top-right corner,
// newest last.
type Toasts struct {
	items []Toast
}

// Push adds a notification that expires [ToastDuration] after now.
func (toasts *Toasts) Push(text string, isError bool, now time.Time) {
	toasts.items = append(toasts.items, Toast{Text: text, Error: isError, Expires: now.Add(ToastDuration)})
	if len(toasts.items) > maxToasts {
		toasts.items = toasts.items[len(toasts.items)-maxToasts:]
	}
}

// Prune drops expired toasts and reports whether any remain.
func (toasts *Toasts) Prune(now time.Time) bool {
	kept := toasts.items[:0]
	for _, toast := range toasts.items {
		if now.Before(toast.Expires) {
			kept = append(kept, toast)
		}
	}
	toasts.items = kept
	return len(kept) > 0
}

// Active returns the toasts currently on screen.
func (toasts *Toasts) Active() []Toast {
	return toasts.items
}

// Render returns one line per toast, right-aligned for a screen of the
// given width, and the x anchor for [SpliceOverlay].
func (toasts *Toasts) Render(theme Theme, screenWidth int) ([]string, int) {
	if len(toasts.items) == 0 {
		return nil, 0
	}
	innerWidth := 0
	for _, toast := range toasts.items {
		innerWidth = max(innerWidth, ansi.StringWidth(toast.Text))
	}
	innerWidth = min(innerWidth, max(screenWidth-4, 1))

	background := lipgloss.NewStyle().Background(theme.TooltipBackground)
	lines := make([]string, 0, len(toasts.items))
	for _, toast := range toasts.items {
		style := lipgloss.NewStyle().Background(theme.TooltipBackground).Foreground(theme.TooltipForeground)
		if toast.Error {
			style = style.Foreground(theme.ErrorForeground)
		}
		text := toast.Text
		if ansi.StringWidth(text) > innerWidth {
			text = ansi.Truncate(text, innerWidth, "…")
		}
		lines = append(lines, PadOverlayLine(style.Render(text), innerWidth, innerWidth+2, background))
	}
	anchorX := max(screenWidth-(innerWidth+2)-1, 0)
	return lines, anchorX
}
