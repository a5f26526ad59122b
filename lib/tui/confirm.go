// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ConfirmAnswer is the outcome of a key press in a [ConfirmModal].
type ConfirmAnswer int

const (
	// ConfirmPending means the key was not an answer.
	ConfirmPending ConfirmAnswer = iota
	ConfirmYes
	ConfirmNo
)

// ConfirmModal is a yes/no question rendered as a centered overlay on
// top of the main view.
type ConfirmModal struct {
	Title   string
	Message string
	theme   Theme
}

// NewConfirmModal creates a modal asking message under title.
func NewConfirmModal(title, message string, theme Theme) ConfirmModal {
	return ConfirmModal{Title: title, Message: message, theme: theme}
}

// Update interprets a key press. y and Enter confirm; n, Esc, and q
// cancel; anything else is ignored.
func (modal ConfirmModal) Update(message tea.KeyMsg) ConfirmAnswer {
	switch message.String() {
	case "y", "Y", "enter":
		return ConfirmYes
	case "n", "N", "esc", "q":
		return ConfirmNo
	}
	return ConfirmPending
}

// Render returns the modal lines and the anchor that centers them on a
// screen of the given size. Splice the result into the main view with
// [SpliceOverlay].
func (modal ConfirmModal) Render(screenWidth, screenHeight int) ([]string, int, int) {
	innerWidth := max(ansi.StringWidth(modal.Title), ansi.StringWidth(modal.Message), 24)
	if innerWidth > screenWidth-4 && screenWidth > 8 {
		innerWidth = screenWidth - 4
	}

	background := lipgloss.NewStyle().Background(modal.theme.TooltipBackground)
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(modal.theme.HeaderForeground).
		Background(modal.theme.TooltipBackground)
	text := lipgloss.NewStyle().
		Foreground(modal.theme.TooltipForeground).
		Background(modal.theme.TooltipBackground)
	footer := lipgloss.NewStyle().
		Foreground(modal.theme.FaintText).
		Background(modal.theme.TooltipBackground)

	pad := func(rendered string) string {
		width := ansi.StringWidth(rendered)
		if width > innerWidth {
			return ansi.Truncate(rendered, innerWidth, "…")
		}
		return rendered + background.Render(strings.Repeat(" ", innerWidth-width))
	}

	inner := strings.Join([]string{
		pad(title.Render(modal.Title)),
		pad(""),
		pad(text.Render(modal.Message)),
		pad(""),
		pad(footer.Render("y confirm  n cancel")),
	}, "\n")

	rendered := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.theme.BorderColor).
		Background(modal.theme.TooltipBackground).
		Render(inner)

	lines := strings.Split(rendered, "\n")
	width := ansi.StringWidth(lines[0])
	anchorX := max((screenWidth-width)/2, 0)
	anchorY := max((screenHeight-len(lines))/2, 0)
	return lines, anchorX, anchorY
}
