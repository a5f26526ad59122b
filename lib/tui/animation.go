// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HeatDecayDuration is how long a row glows after a change event.
// Heat starts at 1.0 and decays linearly to 0.0 over this duration.
const HeatDecayDuration = 5 * time.Second

// HeatTickInterval is the re-render interval while any rows are hot.
const HeatTickInterval = 100 * time.Millisecond

// HeatKind distinguishes different types of changes for color selection.
type HeatKind int

const (
	// HeatPut indicates a record was created or updated (amber glow).
	HeatPut HeatKind = iota
	// HeatRemove indicates a record was deleted (red glow).
	HeatRemove
)

type heatEntry struct {
	ignition time.Time
	kind     HeatKind
}

// HeatTracker maps record ids to ignition timestamps for animated
// change highlighting. Each change "ignites" a record, which then
// decays from full intensity to zero over [HeatDecayDuration].
type HeatTracker struct {
	entries map[int64]heatEntry
}

// NewHeatTracker creates an empty heat tracker.
func NewHeatTracker() *HeatTracker {
	return &HeatTracker{entries: make(map[int64]heatEntry)}
}

// Ignite records a change event. Resets the decay timer if the record
// was already hot.
func (tracker *HeatTracker) Ignite(id int64, kind HeatKind, now time.Time) {
	tracker.entries[id] = heatEntry{ignition: now, kind: kind}
}

// Heat returns the current intensity for a record: 1.0 at ignition,
// linearly decaying to 0.0. Records never ignited return 0.0.
func (tracker *HeatTracker) Heat(id int64, now time.Time) float64 {
	entry, exists := tracker.entries[id]
	if !exists {
		return 0.0
	}
	elapsed := now.Sub(entry.ignition)
	if elapsed >= HeatDecayDuration {
		return 0.0
	}
	return 1.0 - float64(elapsed)/float64(HeatDecayDuration)
}

// Accent returns the background tint for a hot record and whether the
// record is hot at all. The tint holds for the first half of the decay
// and then fades to the theme's faint selection background.
func (tracker *HeatTracker) Accent(theme Theme, id int64, now time.Time) (lipgloss.Color, bool) {
	heat := tracker.Heat(id, now)
	if heat <= 0 {
		return "", false
	}
	if heat < 0.5 {
		return theme.SelectedBackground, true
	}
	if tracker.entries[id].kind == HeatRemove {
		return theme.HotAccentRemove, true
	}
	return theme.HotAccentPut, true
}

// HasHot reports whether any tracked record still has heat, meaning
// the tick timer should keep running. Fully decayed entries are
// dropped.
func (tracker *HeatTracker) HasHot(now time.Time) bool {
	hot := false
	for id, entry := range tracker.entries {
		if now.Sub(entry.ignition) < HeatDecayDuration {
			hot = true
			continue
		}
		delete(tracker.entries, id)
	}
	return hot
}
