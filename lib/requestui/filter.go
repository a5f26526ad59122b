// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requestui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"

	"github.com/accessdesk/accessdesk/lib/requestview"
	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/tui"
)

// FilterModel narrows the active tab with fzf-style fuzzy matching
// across a record's id, type, status, and payload fields. The tab
// chooses the base set by status; the filter narrows it client-side.
type FilterModel struct {
	// Input is the current query text.
	Input string

	// Active is true while the filter input has keyboard focus.
	Active bool
}

// searchText is the haystack a record is matched against.
func searchText(record request.Request) string {
	fields := []string{
		"#" + strconv.FormatInt(record.ID, 10),
		requestview.TypeLabel(record.Kind()),
		string(record.Status),
	}
	data := record.Data
	for _, value := range []string{
		data.FullName, data.LANID, data.Email, data.Manager, data.Requester,
		data.SpaceKey, data.Access, data.SpaceName, data.SpaceAdmin,
	} {
		if value != "" {
			fields = append(fields, value)
		}
	}
	return strings.Join(fields, " ")
}

// Apply returns the records matching the query, keeping their order.
// An empty query returns records unchanged.
func (filter *FilterModel) Apply(records []request.Request, slab *util.Slab) []request.Request {
	if filter.Input == "" {
		return records
	}
	pattern := []rune(filter.Input)
	var matched []request.Request
	for _, record := range records {
		if tui.FuzzyMatch(searchText(record), pattern, slab).Score > 0 {
			matched = append(matched, record)
		}
	}
	return matched
}

// HandleRune appends a typed character.
func (filter *FilterModel) HandleRune(character rune) {
	filter.Input += string(character)
}

// HandleBackspace removes the last character. Returns false if the
// input was already empty.
func (filter *FilterModel) HandleBackspace() bool {
	if filter.Input == "" {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear resets the input and deactivates the filter.
func (filter *FilterModel) Clear() {
	filter.Input = ""
	filter.Active = false
}

// View renders the filter bar, or "" when there is nothing to show.
func (filter *FilterModel) View(theme tui.Theme, width int) string {
	if !filter.Active && filter.Input == "" {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(theme.NormalText).Width(width)
	if filter.Active {
		cursor := lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Bold(true).
			Render("▎")
		return style.Render(" / " + filter.Input + cursor)
	}
	return style.Render(" / " + filter.Input + lipgloss.NewStyle().Foreground(theme.FaintText).Render("  (esc to clear)"))
}
