// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package profile holds the DNA profile record stored in each tree node.
//
// A Profile is an ordered, fixed-length list of short tandem repeat markers
// together with an "of interest" flag. The flag starts false and can only be
// raised; nothing in this module lowers it again.
//
// # Ownership Model
//
// A Profile is owned by exactly one tree node. Markers are values and are
// copied in and out, so callers cannot mutate a profile's marker list after
// construction.
//
// # Thread Safety
//
// Profile is NOT safe for concurrent use. The tree that owns it is
// single-threaded by contract.
package profile

import "fmt"

// Marker is a short tandem repeat pattern and the number of times it is
// expected to occur in a person's DNA.
type Marker struct {
	// Pattern is the repeated base string, e.g. "AGAT".
	Pattern string

	// Occurrences is the expected occurrence count for this person.
	Occurrences int
}

// String returns "PATTERN:N".
func (m Marker) String() string {
	return fmt.Sprintf("%s:%d", m.Pattern, m.Occurrences)
}

// Profile is a person's marker set plus the interest flag.
type Profile struct {
	markers  []Marker
	interest bool
}

// New creates an unflagged profile from markers.
//
// # Description
//
// The marker slice is copied; insertion order is preserved and the length
// is fixed for the life of the profile.
//
// # Inputs
//
//   - markers: Markers in input order. May be empty.
//
// # Outputs
//
//   - *Profile: A new profile with IsOfInterest() == false.
func New(markers ...Marker) *Profile {
	cp := make([]Marker, len(markers))
	copy(cp, markers)
	return &Profile{markers: cp}
}

// Markers returns a copy of the profile's markers in input order.
func (p *Profile) Markers() []Marker {
	cp := make([]Marker, len(p.markers))
	copy(cp, p.markers)
	return cp
}

// MarkerCount returns the number of markers declared for this profile.
func (p *Profile) MarkerCount() int {
	return len(p.markers)
}

// Marker returns the i-th marker. It panics if i is out of range.
func (p *Profile) Marker(i int) Marker {
	return p.markers[i]
}

// IsOfInterest reports whether the profile has been flagged.
func (p *Profile) IsOfInterest() bool {
	return p.interest
}

// MarkOfInterest flags the profile. Calling it again has no effect.
func (p *Profile) MarkOfInterest() {
	p.interest = true
}
