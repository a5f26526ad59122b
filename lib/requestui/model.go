// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requestui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"

	"github.com/accessdesk/accessdesk/lib/clock"
	"github.com/accessdesk/accessdesk/lib/requestindex"
	"github.com/accessdesk/accessdesk/lib/requestview"
	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/tui"
)

// FocusRegion identifies which part of the screen takes keys.
type FocusRegion int

const (
	FocusList FocusRegion = iota
	FocusDetail
	FocusFilter
	FocusConfirm
)

// deleteTimeout bounds the delete call started from the confirm modal.
const deleteTimeout = 10 * time.Second

// toastTickInterval is how often expired toasts are swept.
const toastTickInterval = 500 * time.Millisecond

// sourceEventMsg wraps a source Event for the bubbletea loop.
type sourceEventMsg struct {
	event Event
}

type heatTickMsg struct{}

type toastTickMsg struct{}

// deleteResultMsg is sent when a delete call returns. On success the
// event stream delivers the removal.
type deleteResultMsg struct {
	id  int64
	err error
}

// Model is the bubbletea model for the request dashboard.
type Model struct {
	source  Source
	deleter Deleter
	clock   clock.Clock
	theme   tui.Theme
	keys    KeyMap

	activeTab int
	records   []request.Request
	stats     request.Stats
	filter    FilterModel
	slab      *util.Slab

	cursor       int
	scrollOffset int
	selectedID   int64

	focus      FocusRegion
	detailPane DetailPane
	confirm    tui.ConfirmModal
	deleteID   int64

	heatTracker *tui.HeatTracker
	tickRunning bool
	toasts      tui.Toasts
	toastTicker bool

	width  int
	height int

	eventChannel <-chan Event
}

// NewModel creates a dashboard over source. If source also implements
// [Deleter], the delete action is enabled.
func NewModel(source Source, clk clock.Clock) Model {
	model := Model{
		source:       source,
		clock:        clk,
		theme:        tui.DefaultTheme,
		keys:         DefaultKeyMap,
		slab:         tui.NewSlab(),
		detailPane:   NewDetailPane(tui.DefaultTheme),
		heatTracker:  tui.NewHeatTracker(),
		eventChannel: source.Subscribe(),
	}
	if deleter, ok := source.(Deleter); ok {
		model.deleter = deleter
	}
	model.refresh()
	return model
}

// Init starts listening for source events.
func (model Model) Init() tea.Cmd {
	if model.eventChannel == nil {
		return nil
	}
	return listenForSourceEvent(model.eventChannel)
}

func listenForSourceEvent(channel <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return nil
		}
		return sourceEventMsg{event: event}
	}
}

// ActiveFilter returns the status filter of the current tab.
func (model Model) ActiveFilter() requestindex.Filter {
	return requestindex.Filters[model.activeTab]
}

// Records returns the rows currently listed, after the tab and the
// text filter.
func (model Model) Records() []request.Request {
	return model.records
}

// SelectedID returns the id of the highlighted record, or 0.
func (model Model) SelectedID() int64 {
	return model.selectedID
}

// Toasts returns the notifications currently shown.
func (model Model) Toasts() []tui.Toast {
	return model.toasts.Active()
}

// Focus returns the region receiving keys.
func (model Model) Focus() FocusRegion {
	return model.focus
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.updatePaneSizes()
		return model, nil

	case tea.KeyMsg:
		switch model.focus {
		case FocusConfirm:
			return model.handleConfirmKeys(message)
		case FocusFilter:
			return model.handleFilterKeys(message)
		}
		return model.handleKeys(message)

	case tea.MouseMsg:
		switch message.Button {
		case tea.MouseButtonWheelUp:
			model.moveCursor(-3)
		case tea.MouseButtonWheelDown:
			model.moveCursor(3)
		}
		return model, nil

	case sourceEventMsg:
		return model.handleSourceEvent(message.event)

	case deleteResultMsg:
		if message.err == nil {
			return model, nil
		}
		command := model.pushToast(fmt.Sprintf("Delete of request #%d failed: %v", message.id, message.err), true)
		return model, command

	case heatTickMsg:
		if model.heatTracker.HasHot(model.clock.Now()) {
			return model, scheduleHeatTick()
		}
		model.tickRunning = false
		return model, nil

	case toastTickMsg:
		if model.toasts.Prune(model.clock.Now()) {
			return model, scheduleToastTick()
		}
		model.toastTicker = false
		return model, nil
	}
	return model, nil
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.FocusToggle):
		if model.focus == FocusList {
			model.focus = FocusDetail
		} else {
			model.focus = FocusList
		}

	case key.Matches(message, model.keys.FilterActivate):
		model.filter.Active = true
		model.focus = FocusFilter

	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Clear()
			model.refresh()
		}

	case key.Matches(message, model.keys.NextTab):
		model.switchTab((model.activeTab + 1) % len(requestindex.Filters))

	case key.Matches(message, model.keys.PreviousTab):
		model.switchTab((model.activeTab + len(requestindex.Filters) - 1) % len(requestindex.Filters))

	case key.Matches(message, model.keys.TabNumber):
		model.switchTab(int(message.Runes[0] - '1'))

	case key.Matches(message, model.keys.Delete):
		model.openConfirm()

	case key.Matches(message, model.keys.Up):
		if model.focus == FocusDetail {
			model.detailPane.ScrollUp(1)
		} else {
			model.moveCursor(-1)
		}

	case key.Matches(message, model.keys.Down):
		if model.focus == FocusDetail {
			model.detailPane.ScrollDown(1)
		} else {
			model.moveCursor(1)
		}

	case key.Matches(message, model.keys.PageUp):
		if model.focus == FocusDetail {
			model.detailPane.ScrollUp(model.visibleHeight() / 2)
		} else {
			model.moveCursor(-model.visibleHeight() / 2)
		}

	case key.Matches(message, model.keys.PageDown):
		if model.focus == FocusDetail {
			model.detailPane.ScrollDown(model.visibleHeight() / 2)
		} else {
			model.moveCursor(model.visibleHeight() / 2)
		}

	case key.Matches(message, model.keys.Home):
		model.moveCursor(-len(model.records))

	case key.Matches(message, model.keys.End):
		model.moveCursor(len(model.records))
	}
	return model, nil
}

func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.filter.Clear()
		model.focus = FocusList
		model.refresh()
	case tea.KeyEnter:
		model.filter.Active = false
		model.focus = FocusList
	case tea.KeyBackspace:
		if model.filter.HandleBackspace() {
			model.refresh()
		}
	case tea.KeyCtrlC:
		return model, tea.Quit
	case tea.KeyRunes, tea.KeySpace:
		for _, character := range message.Runes {
			model.filter.HandleRune(character)
		}
		if message.Type == tea.KeySpace && len(message.Runes) == 0 {
			model.filter.HandleRune(' ')
		}
		model.refresh()
	}
	return model, nil
}

func (model *Model) openConfirm() {
	if model.deleter == nil || model.selectedID == 0 {
		return
	}
	model.deleteID = model.selectedID
	model.confirm = tui.NewConfirmModal("Delete request",
		fmt.Sprintf("Delete request #%d? This cannot be undone.", model.deleteID), model.theme)
	model.focus = FocusConfirm
}

func (model Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch model.confirm.Update(message) {
	case tui.ConfirmYes:
		model.focus = FocusList
		return model, deleteRecord(model.deleter, model.deleteID)
	case tui.ConfirmNo:
		model.focus = FocusList
		model.deleteID = 0
	}
	return model, nil
}

// deleteRecord calls the server in a tea.Cmd so the loop stays
// responsive. There is no retry.
func deleteRecord(deleter Deleter, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
		defer cancel()
		return deleteResultMsg{id: id, err: deleter.Delete(ctx, id)}
	}
}

func (model Model) handleSourceEvent(event Event) (tea.Model, tea.Cmd) {
	now := model.clock.Now()
	commands := []tea.Cmd{listenForSourceEvent(model.eventChannel)}

	switch event.Kind {
	case EventPut:
		model.heatTracker.Ignite(event.ID, tui.HeatPut, now)
		if !event.Existed || event.Previous != event.Status {
			switch event.Status {
			case request.StatusCompleted:
				commands = append(commands, model.pushToast(fmt.Sprintf("Request #%d completed", event.ID), false))
			case request.StatusFailed:
				commands = append(commands, model.pushToast(fmt.Sprintf("Request #%d failed", event.ID), true))
			}
		}
	case EventRemove:
		model.heatTracker.Ignite(event.ID, tui.HeatRemove, now)
		commands = append(commands, model.pushToast(fmt.Sprintf("Request #%d deleted", event.ID), false))
	case EventDisconnected:
		text := fmt.Sprintf("Connection lost: %v (retrying in %s)", event.Err, event.Retry)
		commands = append(commands, model.pushToast(text, true))
	}

	model.refresh()
	if !model.tickRunning && model.heatTracker.HasHot(now) {
		model.tickRunning = true
		commands = append(commands, scheduleHeatTick())
	}
	return model, tea.Batch(commands...)
}

// pushToast shows a notification and starts the sweep timer if it is
// not already running.
func (model *Model) pushToast(text string, isError bool) tea.Cmd {
	model.toasts.Push(text, isError, model.clock.Now())
	if model.toastTicker {
		return nil
	}
	model.toastTicker = true
	return scheduleToastTick()
}

func scheduleHeatTick() tea.Cmd {
	return tea.Tick(tui.HeatTickInterval, func(time.Time) tea.Msg { return heatTickMsg{} })
}

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(time.Time) tea.Msg { return toastTickMsg{} })
}

func (model *Model) switchTab(tab int) {
	if tab < 0 || tab >= len(requestindex.Filters) || tab == model.activeTab {
		return
	}
	model.activeTab = tab
	model.cursor = 0
	model.scrollOffset = 0
	model.selectedID = 0
	model.refresh()
}

// refresh re-reads the source and keeps the selection on the same
// record when it is still listed.
func (model *Model) refresh() {
	model.stats = model.source.Stats()
	model.records = model.filter.Apply(model.source.List(model.ActiveFilter()), model.slab)

	model.cursor = model.clamp(model.cursor)
	if model.selectedID != 0 {
		for position, record := range model.records {
			if record.ID == model.selectedID {
				model.cursor = position
				break
			}
		}
	}
	if len(model.records) == 0 {
		model.selectedID = 0
		model.detailPane.Clear()
		return
	}
	model.selectedID = model.records[model.cursor].ID
	model.detailPane.SetRecord(model.records[model.cursor])
	model.ensureCursorVisible()
}

func (model *Model) moveCursor(delta int) {
	if len(model.records) == 0 {
		return
	}
	model.cursor = model.clamp(model.cursor + delta)
	model.selectedID = model.records[model.cursor].ID
	model.detailPane.SetRecord(model.records[model.cursor])
	model.ensureCursorVisible()
}

func (model *Model) clamp(position int) int {
	if position >= len(model.records) {
		position = len(model.records) - 1
	}
	return max(position, 0)
}

func (model *Model) ensureCursorVisible() {
	height := model.visibleHeight()
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+height {
		model.scrollOffset = model.cursor - height + 1
	}
	model.scrollOffset = max(model.scrollOffset, 0)
}

// Layout: header, tab bar, optional filter bar, body, help line.
func (model Model) chromeHeight() int {
	height := 3
	if model.filter.Active || model.filter.Input != "" {
		height++
	}
	return height
}

func (model Model) visibleHeight() int {
	return max(model.height-model.chromeHeight(), 1)
}

func (model Model) listWidth() int {
	return max(model.width/2, 20)
}

func (model *Model) updatePaneSizes() {
	model.detailPane.SetSize(max(model.width-model.listWidth()-1, 0), model.visibleHeight())
	if model.selectedID != 0 {
		if record, ok := model.source.Get(model.selectedID); ok {
			model.detailPane.SetRecord(record)
		}
	}
	model.ensureCursorVisible()
}

// View implements tea.Model.
func (model Model) View() string {
	if model.width == 0 {
		return "Loading..."
	}

	sections := []string{model.renderHeader(), model.renderTabs()}
	if bar := model.filter.View(model.theme, model.width); bar != "" {
		sections = append(sections, bar)
	}
	divider := lipgloss.NewStyle().Foreground(model.theme.BorderColor).
		Render(strings.TrimSuffix(strings.Repeat("│\n", model.visibleHeight()), "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		model.renderList(), divider, model.detailPane.View(model.focus == FocusDetail))
	sections = append(sections, body, model.renderHelp())
	view := strings.Join(sections, "\n")

	if lines, anchorX := model.toasts.Render(model.theme, model.width); len(lines) > 0 {
		view = tui.SpliceOverlay(view, lines, anchorX, 1)
	}
	if model.focus == FocusConfirm {
		lines, anchorX, anchorY := model.confirm.Render(model.width, model.height)
		view = tui.SpliceOverlay(view, lines, anchorX, anchorY)
	}
	return view
}

func (model Model) renderHeader() string {
	style := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	return style.Render(" accessdesk") + faint.Render(fmt.Sprintf("  %d requests", model.stats.Total))
}

func (model Model) renderTabs() string {
	var tabs []string
	for index, filter := range requestindex.Filters {
		count := model.stats.Total
		label := "All"
		if filter != requestindex.FilterAll {
			status := request.Status(filter)
			count = model.stats.Count(status)
			label = requestview.StatusLabel(status)
		}
		text := fmt.Sprintf(" %d %s (%d) ", index+1, label, count)
		style := lipgloss.NewStyle().Foreground(model.theme.FaintText)
		if index == model.activeTab {
			style = lipgloss.NewStyle().Bold(true).
				Foreground(model.theme.SelectedForeground).
				Background(model.theme.SelectedBackground)
		}
		tabs = append(tabs, style.Render(text))
	}
	return ansi.Truncate(strings.Join(tabs, ""), model.width, "…")
}

// rowSummary is the one-line description of a record in the list.
func rowSummary(record request.Request) string {
	data := record.Data
	if record.Kind() == request.TypeSpaceCreation {
		return fmt.Sprintf("Space  %s (%s) admin %s", data.SpaceName, data.SpaceKey, data.SpaceAdmin)
	}
	return fmt.Sprintf("Access %s → %s (%s)", data.LANID, data.SpaceKey, data.Access)
}

func (model Model) renderList() string {
	width := model.listWidth() - 1
	height := model.visibleHeight()
	now := model.clock.Now()

	var lines []string
	if len(model.records) == 0 {
		message := requestview.EmptyMessage(model.ActiveFilter())
		if model.filter.Input != "" {
			message = "No requests match the filter."
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(" "+message))
	}

	end := min(model.scrollOffset+height, len(model.records))
	for position := model.scrollOffset; position < end; position++ {
		record := model.records[position]
		statusText := lipgloss.NewStyle().Foreground(model.theme.StatusColor(record.Status)).
			Render(requestview.StatusLabel(record.Status))
		prefix := fmt.Sprintf(" #%-4d ", record.ID)
		summaryWidth := max(width-ansi.StringWidth(prefix)-ansi.StringWidth(statusText)-1, 1)
		summary := ansi.Truncate(rowSummary(record), summaryWidth, "…")
		padding := strings.Repeat(" ", max(summaryWidth-ansi.StringWidth(summary), 0))
		line := prefix + summary + padding + " " + statusText

		style := lipgloss.NewStyle().Width(width)
		if accent, hot := model.heatTracker.Accent(model.theme, record.ID, now); hot {
			style = style.Background(accent)
		}
		if position == model.cursor {
			style = style.Bold(true).
				Foreground(model.theme.SelectedForeground).
				Background(model.theme.SelectedBackground)
		}
		lines = append(lines, style.Render(line))
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	scrollbar := tui.RenderScrollbar(model.theme, height, len(model.records), height, model.scrollOffset, model.focus == FocusList)
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(lines, "\n"), scrollbar)
}

func (model Model) renderHelp() string {
	bindings := []key.Binding{
		model.keys.Up, model.keys.Down, model.keys.NextTab, model.keys.TabNumber,
		model.keys.FilterActivate, model.keys.FocusToggle,
	}
	if model.deleter != nil {
		bindings = append(bindings, model.keys.Delete)
	}
	bindings = append(bindings, model.keys.Quit)

	var parts []string
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return ansi.Truncate(
		lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(" "+strings.Join(parts, "  ")),
		model.width, "…")
}
