// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loader reads forensic datasets from text and validates them.
//
// # File Format
//
//	<first unknown sequence>
//	<second unknown sequence>
//	<number of people>
//	<First> <Last> <marker count> <pattern> <count> <pattern> <count> ...
//	...
//
// The first three lines are read as whole lines. Everything after them is
// whitespace separated, so a person's record may span several lines.
//
// # Validation
//
// Parse only checks the format. Dataset.Validate checks field rules with
// go-playground/validator and rejects repeated names; the tree assumes both
// have passed.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianForensics/services/forensic/database"
	"github.com/AleutianAI/AleutianForensics/services/forensic/profile"
)

// MaxLineBytes bounds a single input line. Sequences live on one line.
const MaxLineBytes = 64 << 20

// maxPrealloc caps capacity hints taken from counts in the input. Larger
// inputs grow by append as records actually arrive.
const maxPrealloc = 1024

// MarkerRecord is one "<pattern> <count>" pair.
type MarkerRecord struct {
	Pattern     string `json:"pattern" yaml:"pattern" validate:"required,alpha,uppercase"`
	Occurrences int    `json:"occurrences" yaml:"occurrences" validate:"gte=0"`
}

// Person is one parsed person record.
type Person struct {
	First   string         `json:"first" yaml:"first" validate:"required,excludesall=0x2C"`
	Last    string         `json:"last" yaml:"last" validate:"required,excludesall=0x2C"`
	Markers []MarkerRecord `json:"markers" yaml:"markers" validate:"dive"`
}

// FullName returns the tree key, "Last, First".
func (p Person) FullName() string {
	return p.Last + ", " + p.First
}

// Dataset is a fully parsed input file.
type Dataset struct {
	FirstSequence  string   `json:"first_sequence" yaml:"first_sequence" validate:"required,alpha,uppercase"`
	SecondSequence string   `json:"second_sequence" yaml:"second_sequence" validate:"required,alpha,uppercase"`
	People         []Person `json:"people" yaml:"people" validate:"dive"`
}

// Records converts the dataset into the database's input shape.
func (d *Dataset) Records() []database.Person {
	out := make([]database.Person, 0, len(d.People))
	for _, p := range d.People {
		markers := make([]profile.Marker, len(p.Markers))
		for i, m := range p.Markers {
			markers[i] = profile.Marker{Pattern: m.Pattern, Occurrences: m.Occurrences}
		}
		out = append(out, database.Person{Name: p.FullName(), Markers: markers})
	}
	return out
}

// ReadFile parses the dataset stored at path.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}

// Parse reads a dataset in the file format from r with no people limit.
func Parse(r io.Reader) (*Dataset, error) {
	return ParseLimit(r, 0)
}

// ParseLimit reads a dataset in the file format from r.
//
// # Description
//
// Reads the two sequence lines and the person count, then exactly that many
// person records. Tokens left over after the last record are an error.
//
// # Inputs
//
//   - r: Source text.
//   - maxPeople: Largest accepted person count; 0 means no limit. Checked
//     against the declared count before any record is read.
//
// # Outputs
//
//   - *Dataset: Parsed, not yet validated.
//   - error: A *ParseError (errors.Is ErrMalformedInput) on format errors,
//     an error wrapping ErrTooManyPeople, or the underlying read error.
func ParseLimit(r io.Reader, maxPeople int) (*Dataset, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	lines, err := readHeader(sc)
	if err != nil {
		return nil, err
	}

	count, err := strconv.Atoi(lines[2])
	if err != nil || count < 0 {
		return nil, &ParseError{Line: 3, Token: lines[2], Msg: "expected number of people"}
	}
	if maxPeople > 0 && count > maxPeople {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPeople, count, maxPeople)
	}

	toks := &tokens{sc: sc, line: 3}
	ds := &Dataset{
		FirstSequence:  lines[0],
		SecondSequence: lines[1],
		People:         make([]Person, 0, min(count, maxPrealloc)),
	}
	for i := 0; i < count; i++ {
		p, err := toks.person()
		if err != nil {
			return nil, err
		}
		ds.People = append(ds.People, p)
	}

	tok, line, ok, err := toks.next()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, &ParseError{Line: line, Token: tok, Msg: fmt.Sprintf("unexpected data after %d people", count)}
	}
	return ds, nil
}

// readHeader returns the first three lines, trimmed.
func readHeader(sc *bufio.Scanner) ([3]string, error) {
	var lines [3]string
	what := [3]string{"first unknown sequence", "second unknown sequence", "number of people"}
	for i := range lines {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return lines, fmt.Errorf("read input: %w", err)
			}
			return lines, &ParseError{Msg: "expected " + what[i]}
		}
		lines[i] = strings.TrimSpace(sc.Text())
	}
	return lines, nil
}

// tokens yields whitespace separated tokens with their line numbers.
type tokens struct {
	sc      *bufio.Scanner
	line    int
	pending []string
}

func (t *tokens) next() (string, int, bool, error) {
	for len(t.pending) == 0 {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return "", 0, false, fmt.Errorf("read input: %w", err)
			}
			return "", 0, false, nil
		}
		t.line++
		t.pending = strings.Fields(t.sc.Text())
	}
	tok := t.pending[0]
	t.pending = t.pending[1:]
	return tok, t.line, true, nil
}

func (t *tokens) word(what string) (string, error) {
	tok, _, ok, err := t.next()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ParseError{Msg: "expected " + what}
	}
	return tok, nil
}

func (t *tokens) count(what string) (int, error) {
	tok, line, ok, err := t.next()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &ParseError{Msg: "expected " + what}
	}
	n, convErr := strconv.Atoi(tok)
	if convErr != nil || n < 0 {
		return 0, &ParseError{Line: line, Token: tok, Msg: "expected non-negative " + what}
	}
	return n, nil
}

func (t *tokens) person() (Person, error) {
	var p Person
	var err error
	if p.First, err = t.word("first name"); err != nil {
		return p, err
	}
	if p.Last, err = t.word("last name"); err != nil {
		return p, err
	}
	n, err := t.count("marker count")
	if err != nil {
		return p, err
	}
	p.Markers = make([]MarkerRecord, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		var m MarkerRecord
		if m.Pattern, err = t.word("marker pattern"); err != nil {
			return p, err
		}
		if m.Occurrences, err = t.count("occurrence count"); err != nil {
			return p, err
		}
		p.Markers = append(p.Markers, m)
	}
	return p, nil
}
