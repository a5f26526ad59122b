// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scanner finds credentials pasted into page text and masks
// them in place.
package scanner

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// MaskRune replaces each character of a detected secret.
const MaskRune = '*'

// MaxMaskLength caps the mask so the masked text does not reveal the
// length of long secrets.
const MaxMaskLength = 20

// Pattern is one kind of secret. When the expression has a capture
// group, group 1 is the secret and the rest of the match is context
// (the "password=" prefix, quotes). Otherwise the whole match is the
// secret.
type Pattern struct {
	Kind       string
	Expression *regexp.Regexp
}

// Patterns are matched case-insensitively.
var Patterns = []Pattern{
	{"AWS Key", regexp.MustCompile(`(?i)AKIA[0-9A-Z]{16}`)},
	{"AWS Secret", regexp.MustCompile(`(?i)(?:aws_secret_access_key)\s*[:=]\s*([A-Za-z0-9/+=]{40})`)},
	{"GitHub Token", regexp.MustCompile(`(?i)ghp_[a-zA-Z0-9]{36}`)},
	{"API Key", regexp.MustCompile(`(?i)(?:api[_\s-]?key|apikey)\s*[:=]\s*["']?([a-zA-Z0-9_\-]{8,})["']?`)},
	{"Password", regexp.MustCompile(`(?i)(?:password|passwd|pwd|pass)\s*[:=]\s*["']?([a-zA-Z0-9!@#$%^&*_\-]{3,})["']?`)},
	{"SSH Key", regexp.MustCompile(`(?i)-----BEGIN (?:RSA|OPENSSH|DSA|EC) PRIVATE KEY-----`)},
}

// Finding is one detected secret. Start and End are byte offsets into
// the scanned text.
type Finding struct {
	Kind  string `json:"kind"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Value string `json:"-"`
}

// Scan returns the secrets in text ordered by start offset. Where two
// findings overlap the one starting first wins, and on equal starts
// the longer one. Spans that are already fully masked are skipped so
// that scanning masked text finds nothing.
func Scan(text string) []Finding {
	var findings []Finding
	for _, pattern := range Patterns {
		for _, match := range pattern.Expression.FindAllStringSubmatchIndex(text, -1) {
			start, end := match[0], match[1]
			if len(match) >= 4 && match[2] >= 0 {
				start, end = match[2], match[3]
			}
			value := text[start:end]
			if value == "" || masked(value) {
				continue
			}
			findings = append(findings, Finding{Kind: pattern.Kind, Start: start, End: end, Value: value})
		}
	}

	slices.SortStableFunc(findings, func(a, b Finding) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.End, a.End)
	})
	kept := findings[:0]
	for _, finding := range findings {
		if len(kept) > 0 && finding.Start < kept[len(kept)-1].End {
			continue
		}
		kept = append(kept, finding)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// Mask replaces each finding's span with MaskRune repeated once per
// character, up to MaxMaskLength. Findings must not overlap; Scan's
// output satisfies this.
func Mask(text string, findings []Finding) string {
	ordered := slices.Clone(findings)
	slices.SortFunc(ordered, func(a, b Finding) int { return cmp.Compare(b.Start, a.Start) })
	for _, finding := range ordered {
		if finding.Start < 0 || finding.End > len(text) || finding.Start >= finding.End {
			continue
		}
		text = text[:finding.Start] + maskFor(text[finding.Start:finding.End]) + text[finding.End:]
	}
	return text
}

func maskFor(value string) string {
	return strings.Repeat(string(MaskRune), min(utf8.RuneCountInString(value), MaxMaskLength))
}

func masked(value string) bool {
	return strings.Trim(value, string(MaskRune)) == ""
}
