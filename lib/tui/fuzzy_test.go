// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "testing"

func TestFuzzyMatch(t *testing.T) {
	slab := NewSlab()
	tests := []struct {
		text    string
		pattern string
		match   bool
	}{
		{"Jane Doe jdoe ENG", "jdoe", true},
		{"Jane Doe jdoe ENG", "JDOE", true},
		{"Jane Doe jdoe ENG", "jng", true},
		{"Engineering DOCS", "xyz", false},
	}
	for _, test := range tests {
		result := FuzzyMatch(test.text, []rune(test.pattern), slab)
		if got := result.Score > 0; got != test.match {
			t.Errorf("FuzzyMatch(%q, %q) score = %d, want match=%v", test.text, test.pattern, result.Score, test.match)
		}
		if test.match && len(result.Positions) != len([]rune(test.pattern)) {
			t.Errorf("FuzzyMatch(%q, %q) positions = %v, want one per pattern rune", test.text, test.pattern, result.Positions)
		}
	}
}

func TestFuzzyMatchEmptyPattern(t *testing.T) {
	if result := FuzzyMatch("anything", nil, NewSlab()); result.Score <= 0 {
		t.Errorf("empty pattern score = %d, want positive", result.Score)
	}
}
