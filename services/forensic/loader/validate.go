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
	"strings"

	"github.com/go-playground/validator/v10"
)

// datasetValidate is shared; validator.Validate caches struct metadata and
// is safe for concurrent use.
var datasetValidate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field rules and name uniqueness.
//
// # Description
//
// Rules (go-playground/validator tags on the types):
//   - sequences: required, upper-case letters only
//   - first/last name: required, no comma
//   - marker pattern: required, upper-case letters only
//   - occurrence count: >= 0
//
// Then every "Last, First" key must be unique.
//
// # Outputs
//
//   - error: nil, or an error wrapping ErrInvalidInput that lists every
//     failed field.
func (d *Dataset) Validate() error {
	if err := datasetValidate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	seen := make(map[string]int, len(d.People))
	for i, p := range d.People {
		name := p.FullName()
		if j, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q appears as person %d and %d", ErrInvalidInput, name, j+1, i+1)
		}
		seen[name] = i
	}
	return nil
}
