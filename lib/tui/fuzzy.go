// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult holds the outcome of a fuzzy match. Score is zero when
// the pattern does not match. Positions are rune offsets into the
// matched text, in no particular order.
type FuzzyResult struct {
	Score     int
	Positions []int
}

var initAlgorithm sync.Once

// NewSlab allocates scratch space for [FuzzyMatch]. A slab is not safe
// for concurrent use; the bubbletea loop owns one per model.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch scores text against pattern with fzf's V2 algorithm.
// Matching is case-insensitive. An empty pattern matches everything
// with score 1 so callers can treat "no filter" uniformly.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Score: 1}
	}
	initAlgorithm.Do(func() { algo.Init("default") })

	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}
	match := FuzzyResult{Score: result.Score}
	if positions != nil {
		match.Positions = append([]int(nil), (*positions)...)
	}
	return match
}
