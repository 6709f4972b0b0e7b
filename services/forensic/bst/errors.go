// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bst

import "errors"

// Sentinel errors for tree operations.
var (
	// ErrDuplicateKey is returned by Insert when the name is already in the
	// tree. Keys are unique by contract; this reports the broken
	// precondition instead of silently hiding the second profile.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNilProfile is returned by Insert when the profile is nil.
	ErrNilProfile = errors.New("nil profile")
)
