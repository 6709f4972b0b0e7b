// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianForensics/services/forensic/profile"
)

const sample = `AGATAGATTCTG
TCTGAATG
3
Anna Smith 2 AGAT 2 TCTG 2
Bob Jones 1
  AATG 1
Amy Zeta 0
`

// =============================================================================
// Parse
// =============================================================================

func TestParse_Sample(t *testing.T) {
	ds, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "AGATAGATTCTG", ds.FirstSequence)
	assert.Equal(t, "TCTGAATG", ds.SecondSequence)
	require.Len(t, ds.People, 3)

	assert.Equal(t, Person{
		First: "Anna",
		Last:  "Smith",
		Markers: []MarkerRecord{
			{Pattern: "AGAT", Occurrences: 2},
			{Pattern: "TCTG", Occurrences: 2},
		},
	}, ds.People[0])
	assert.Equal(t, "Jones, Bob", ds.People[1].FullName())
	assert.Equal(t, []MarkerRecord{{Pattern: "AATG", Occurrences: 1}}, ds.People[1].Markers)
	assert.Empty(t, ds.People[2].Markers)
}

func TestParse_TrimsSequenceLines(t *testing.T) {
	ds, err := Parse(strings.NewReader("  AG \r\nTC\t\n 0 \n"))
	require.NoError(t, err)
	assert.Equal(t, "AG", ds.FirstSequence)
	assert.Equal(t, "TC", ds.SecondSequence)
	assert.Empty(t, ds.People)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		token string
	}{
		{"empty", "", 0, ""},
		{"missing second sequence", "AG\n", 0, ""},
		{"missing count", "AG\nTC\n", 0, ""},
		{"count not a number", "AG\nTC\nthree\n", 3, "three"},
		{"negative count", "AG\nTC\n-1\n", 3, "-1"},
		{"missing person", "AG\nTC\n1\n", 0, ""},
		{"missing last name", "AG\nTC\n1\nAnna\n", 0, ""},
		{"bad marker count", "AG\nTC\n1\nAnna Smith x\n", 4, "x"},
		{"missing marker pair", "AG\nTC\n1\nAnna Smith 2 AG 1\n", 0, ""},
		{"bad occurrence", "AG\nTC\n1\nAnna Smith 1\nAG one\n", 5, "one"},
		{"trailing data", "AG\nTC\n1\nAnna Smith 0\nBob\n", 5, "Bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedInput)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.token, perr.Token)
		})
	}
}

// Counts far beyond the data that follows must fail on the missing
// records, not on allocation.
func TestParse_HugeDeclaredCounts(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"people", "AG\nTC\n1125899906842624\n"},
		{"people with one record", "AG\nTC\n500000000\nAnna Smith 0\n"},
		{"markers", "AG\nTC\n1\nAnna Smith 1125899906842624\n"},
		{"markers with one pair", "AG\nTC\n1\nAnna Smith 500000000 AG 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = Parse(strings.NewReader(tt.input))
			})
			assert.ErrorIs(t, err, ErrMalformedInput)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, 0, perr.Line, "fails at end of input")
		})
	}
}

func TestParseLimit(t *testing.T) {
	t.Run("over the limit", func(t *testing.T) {
		_, err := ParseLimit(strings.NewReader("AG\nTC\n1125899906842624\n"), 1000)
		assert.ErrorIs(t, err, ErrTooManyPeople)
		assert.NotErrorIs(t, err, ErrMalformedInput)
	})

	t.Run("at the limit", func(t *testing.T) {
		ds, err := ParseLimit(strings.NewReader(sample), 3)
		require.NoError(t, err)
		assert.Len(t, ds.People, 3)
	})

	t.Run("zero means no limit", func(t *testing.T) {
		_, err := ParseLimit(strings.NewReader(sample), 0)
		assert.NoError(t, err)
	})
}

func TestParseError_Message(t *testing.T) {
	assert.Equal(t, "end of input: expected last name",
		(&ParseError{Msg: "expected last name"}).Error())
	assert.Equal(t, `line 4: expected non-negative marker count (got "x")`,
		(&ParseError{Line: 4, Token: "x", Msg: "expected non-negative marker count"}).Error())
	assert.Equal(t, "line 2: oops", (&ParseError{Line: 2, Msg: "oops"}).Error())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	ds, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, ds.People, 3)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFile_WrapsParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("AG\nTC\nx\n"), 0o644))

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), path)
}

// =============================================================================
// Records
// =============================================================================

func TestRecords(t *testing.T) {
	ds, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	recs := ds.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "Smith, Anna", recs[0].Name)
	assert.Equal(t, []profile.Marker{{Pattern: "AGAT", Occurrences: 2}, {Pattern: "TCTG", Occurrences: 2}}, recs[0].Markers)
	assert.Equal(t, "Zeta, Amy", recs[2].Name)
	assert.Empty(t, recs[2].Markers)
}

// =============================================================================
// Validate
// =============================================================================

func TestValidate_Sample(t *testing.T) {
	ds, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.NoError(t, ds.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	valid := func() *Dataset {
		return &Dataset{
			FirstSequence:  "AGAT",
			SecondSequence: "TCTG",
			People: []Person{
				{First: "Anna", Last: "Smith", Markers: []MarkerRecord{{Pattern: "AG", Occurrences: 1}}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Dataset)
		want   string
	}{
		{"empty first sequence", func(d *Dataset) { d.FirstSequence = "" }, "FirstSequence"},
		{"lower case sequence", func(d *Dataset) { d.SecondSequence = "tctg" }, "SecondSequence"},
		{"digits in sequence", func(d *Dataset) { d.FirstSequence = "AG1T" }, "FirstSequence"},
		{"empty first name", func(d *Dataset) { d.People[0].First = "" }, "First"},
		{"comma in last name", func(d *Dataset) { d.People[0].Last = "Smith, Jr" }, "Last"},
		{"empty pattern", func(d *Dataset) { d.People[0].Markers[0].Pattern = "" }, "Pattern"},
		{"negative count", func(d *Dataset) { d.People[0].Markers[0].Occurrences = -1 }, "Occurrences"},
		{"duplicate name", func(d *Dataset) { d.People = append(d.People, Person{First: "Anna", Last: "Smith"}) }, "Smith, Anna"},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := valid()
			tt.mutate(ds)
			err := ds.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
