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
	"fmt"
)

// Sentinel errors for input loading.
var (
	// ErrMalformedInput is returned when the text does not follow the file
	// format: missing lines, missing tokens, or counts that are not integers.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidInput is returned when parsed data breaks a field rule or
	// repeats a name.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooManyPeople is returned when the declared person count exceeds
	// the caller's limit.
	ErrTooManyPeople = errors.New("dataset exceeds people limit")
)

// ParseError locates a format error in the input text.
//
// # Example
//
//	var perr *loader.ParseError
//	if errors.As(err, &perr) {
//	    fmt.Println(perr.Line) // 1-based line of the offending token
//	}
type ParseError struct {
	// Line is the 1-based input line, 0 when the input ended early.
	Line int

	// Token is the offending token, "" at end of input.
	Token string

	// Msg says what was expected.
	Msg string
}

// Error returns "line N: msg (got "tok")".
func (e *ParseError) Error() string {
	switch {
	case e.Line == 0:
		return fmt.Sprintf("end of input: %s", e.Msg)
	case e.Token == "":
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	default:
		return fmt.Sprintf("line %d: %s (got %q)", e.Line, e.Msg, e.Token)
	}
}

// Unwrap makes errors.Is(err, ErrMalformedInput) true.
func (e *ParseError) Unwrap() error {
	return ErrMalformedInput
}
