// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	scrollbarThumb = "┃"
	scrollbarTrack = "│"
)

// ScrollbarThumb places the thumb on a track of height rows for a
// view showing visible of total items starting at offset. A view that
// shows everything gets a full-height thumb.
func ScrollbarThumb(height, total, visible, offset int) (start, size int) {
	if height <= 0 {
		return 0, 0
	}
	if total <= 0 || total <= visible {
		return 0, height
	}
	size = max(1, height*visible/total)
	travel := height - size
	hidden := total - visible
	if travel > 0 {
		start = min(max(offset, 0)*travel/hidden, travel)
	}
	return start, size
}

// RenderScrollbar draws a one-column scrollbar. The thumb takes the
// processing accent when focused so the active pane stands out.
func RenderScrollbar(theme Theme, height, total, visible, offset int, focused bool) string {
	if height <= 0 {
		return ""
	}
	track := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumb := track
	if focused {
		thumb = lipgloss.NewStyle().Foreground(theme.StatusProcessing)
	}

	start, size := ScrollbarThumb(height, total, visible, offset)
	var builder strings.Builder
	for row := range height {
		if row > 0 {
			builder.WriteByte('\n')
		}
		if row >= start && row < start+size {
			builder.WriteString(thumb.Render(scrollbarThumb))
		} else {
			builder.WriteString(track.Render(scrollbarTrack))
		}
	}
	return builder.String()
}
