// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package matcher decides whether a stored profile matches the unknown
// sequences.
//
// All functions are pure and deterministic.
package matcher

import (
	"strings"

	"github.com/AleutianAI/AleutianForensics/services/forensic/profile"
)

// MarkerResult is the outcome for one marker of a profile.
type MarkerResult struct {
	Pattern  string `json:"pattern" yaml:"pattern"`
	Expected int    `json:"expected" yaml:"expected"`
	Observed int    `json:"observed" yaml:"observed"`
	Hit      bool   `json:"hit" yaml:"hit"`
}

// Result is the full evaluation of a profile against a combined sequence.
type Result struct {
	Markers   []MarkerResult `json:"markers" yaml:"markers"`
	Hits      int            `json:"hits" yaml:"hits"`
	Threshold int            `json:"threshold" yaml:"threshold"`
	Matched   bool           `json:"matched" yaml:"matched"`
}

// Combine joins the two unknown sequences with no separator.
func Combine(first, second string) string {
	return first + second
}

// CountOccurrences counts occurrences of marker in haystack.
//
// # Description
//
// Searches forward repeatedly, moving the cursor to just past each hit.
// Occurrences starting inside a previous hit are not counted; one that
// starts right after a hit is.
//
// # Inputs
//
//   - haystack: Sequence to search.
//   - marker: Pattern to count.
//
// # Outputs
//
//   - int: Number of hits. 0 if marker is longer than haystack or empty.
//
// # Example
//
//	CountOccurrences("AGAGAG", "AGAG") // 1
//	CountOccurrences("AGAG", "AG")     // 2
func CountOccurrences(haystack, marker string) int {
	if marker == "" || len(marker) > len(haystack) {
		return 0
	}
	count := 0
	for cursor := 0; ; {
		i := strings.Index(haystack[cursor:], marker)
		if i < 0 {
			return count
		}
		count++
		cursor += i + len(marker)
	}
}

// Threshold returns the number of marker hits needed to match a profile
// with markerCount markers: ceil(markerCount / 2).
func Threshold(markerCount int) int {
	return (markerCount + 1) / 2
}

// Evaluate compares every marker of p against combined.
//
// # Description
//
// A marker hits when its expected count equals the count found in combined.
// The profile matches when hits >= Threshold(MarkerCount). A profile with
// no markers has threshold 0 and therefore always matches.
//
// # Inputs
//
//   - p: Profile to evaluate. Must not be nil.
//   - combined: Concatenation of both unknown sequences (see Combine).
//
// # Outputs
//
//   - Result: Per-marker detail plus the verdict.
func Evaluate(p *profile.Profile, combined string) Result {
	n := p.MarkerCount()
	res := Result{
		Markers:   make([]MarkerResult, 0, n),
		Threshold: Threshold(n),
	}
	for i := 0; i < n; i++ {
		m := p.Marker(i)
		observed := CountOccurrences(combined, m.Pattern)
		hit := observed == m.Occurrences
		if hit {
			res.Hits++
		}
		res.Markers = append(res.Markers, MarkerResult{
			Pattern:  m.Pattern,
			Expected: m.Occurrences,
			Observed: observed,
			Hit:      hit,
		})
	}
	res.Matched = res.Hits >= res.Threshold
	return res
}

// MatchesProfile reports whether p should be flagged for combined. It is
// the verdict of Evaluate.
func MatchesProfile(p *profile.Profile, combined string) bool {
	return Evaluate(p, combined).Matched
}
