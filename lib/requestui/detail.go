// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requestui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/accessdesk/accessdesk/lib/requestview"
	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/tui"
)

// DetailPane shows one record in a scrollable viewport.
type DetailPane struct {
	theme    tui.Theme
	viewport viewport.Model
	width    int
	height   int
	recordID int64
}

// NewDetailPane creates an empty detail pane.
func NewDetailPane(theme tui.Theme) DetailPane {
	return DetailPane{theme: theme}
}

// SetSize resizes the pane and re-wraps its content.
func (pane *DetailPane) SetSize(width, height int) {
	pane.width = max(width, 0)
	pane.height = max(height, 0)
	pane.viewport.Width = max(pane.width-1, 0)
	pane.viewport.Height = pane.height
}

// SetRecord shows record, keeping the scroll offset when the record is
// the one already shown.
func (pane *DetailPane) SetRecord(record request.Request) {
	offset := pane.viewport.YOffset
	pane.viewport.SetContent(renderDetail(pane.theme, record, pane.viewport.Width))
	if record.ID == pane.recordID {
		pane.viewport.SetYOffset(offset)
	} else {
		pane.viewport.GotoTop()
	}
	pane.recordID = record.ID
}

// Clear empties the pane.
func (pane *DetailPane) Clear() {
	pane.recordID = 0
	pane.viewport.SetContent("")
	pane.viewport.GotoTop()
}

// RecordID returns the id shown, or 0 when empty.
func (pane *DetailPane) RecordID() int64 { return pane.recordID }

// ScrollUp and ScrollDown move the viewport by count lines.
func (pane *DetailPane) ScrollUp(count int)   { pane.viewport.LineUp(count) }
func (pane *DetailPane) ScrollDown(count int) { pane.viewport.LineDown(count) }

// View renders the pane with its scrollbar.
func (pane *DetailPane) View(focused bool) string {
	body := lipgloss.NewStyle().
		Width(pane.viewport.Width).
		Height(pane.height).
		Render(pane.viewport.View())
	scrollbar := tui.RenderScrollbar(pane.theme, pane.height,
		pane.viewport.TotalLineCount(), pane.viewport.Height, pane.viewport.YOffset, focused)
	return lipgloss.JoinHorizontal(lipgloss.Top, body, scrollbar)
}

// renderDetail lays a record out as labeled sections.
func renderDetail(theme tui.Theme, record request.Request, width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)
	label := lipgloss.NewStyle().Foreground(theme.FaintText)
	value := lipgloss.NewStyle().Foreground(theme.NormalText)
	section := lipgloss.NewStyle().Bold(true).Foreground(theme.NormalText)
	status := lipgloss.NewStyle().Bold(true).Foreground(theme.StatusColor(record.Status))
	wrap := lipgloss.NewStyle().Width(max(width, 10))

	var lines []string
	field := func(name, text string) {
		if text == "" {
			return
		}
		lines = append(lines, wrap.Render(label.Render(name+": ")+value.Render(text)))
	}

	lines = append(lines,
		title.Render(fmt.Sprintf("%s #%d", requestview.TypeLabel(record.Kind()), record.ID))+"  "+
			status.Render(requestview.StatusLabel(record.Status)),
		"",
	)

	data := record.Data
	if record.Kind() == request.TypeSpaceCreation {
		field("Space Name", data.SpaceName)
		field("Space Key", data.SpaceKey)
		field("Space Admin", data.SpaceAdmin)
		field("Description", data.Description)
	} else {
		field("Full Name", data.FullName)
		field("LAN ID", data.LANID)
		field("Email", data.Email)
		field("Domain", data.Domain)
		field("Manager", data.Manager)
		field("Requester", data.Requester)
		field("Space Key", data.SpaceKey)
		field("Access Level", data.Access)
	}

	result := record.Result
	switch {
	case record.Status == request.StatusCompleted && result != nil:
		lines = append(lines, "")
		if record.Kind() == request.TypeSpaceCreation {
			lines = append(lines, section.Foreground(theme.StatusCompleted).Render("Space Created"))
			if result.SpaceURL != "" {
				lines = append(lines, wrap.Render(lipgloss.NewStyle().Foreground(theme.LinkForeground).Underline(true).Render(result.SpaceURL)))
			}
			field("Space Key", result.SpaceKey)
		} else {
			lines = append(lines, section.Foreground(theme.StatusCompleted).Render("Access Granted"))
			field("Username", result.Username)
			field("Group", result.Group)
			field("Permissions", requestview.Permissions(result))
		}
	case record.Status == request.StatusFailed:
		message := record.Error
		if result != nil && result.Message != "" {
			message = result.Message
		}
		lines = append(lines, "", section.Foreground(theme.StatusFailed).Render("Failed"))
		if message != "" {
			lines = append(lines, wrap.Render(value.Render(message)))
		}
	case record.Status == request.StatusWorkInProgress && result != nil:
		lines = append(lines, "", section.Foreground(theme.StatusWorkInProgress).Render("Action Required"))
		for _, issue := range result.Issues {
			lines = append(lines, wrap.Render(value.Render("• "+issue)))
		}
	case result == nil && record.Error != "":
		lines = append(lines, "", wrap.Render(lipgloss.NewStyle().Foreground(theme.ErrorForeground).Render(record.Error)))
	}

	if len(record.Comments) > 0 {
		lines = append(lines, "", section.Render("Work Notes"))
		for _, comment := range record.Comments {
			lines = append(lines, wrap.Render(value.Render("- "+comment)))
		}
	}

	lines = append(lines, "")
	field("Created", record.CreatedAt.UTC().Format(requestview.TimeLayout))
	if record.UpdatedAt != nil {
		field("Updated", record.UpdatedAt.UTC().Format(requestview.TimeLayout))
	} else {
		field("Updated", "N/A")
	}
	return strings.Join(lines, "\n")
}
