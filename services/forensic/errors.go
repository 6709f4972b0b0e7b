// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package forensic

import (
	"errors"

	"github.com/AleutianAI/AleutianForensics/services/forensic/loader"
)

// Sentinel errors for the forensic service.
var (
	// ErrNilDataset indicates Analyze was called without a dataset.
	ErrNilDataset = errors.New("dataset is nil")

	// ErrEmptyRequest indicates an analyze request had neither raw text nor a dataset.
	ErrEmptyRequest = errors.New("request needs raw or dataset")

	// ErrAmbiguousRequest indicates an analyze request had both raw text and a dataset.
	ErrAmbiguousRequest = errors.New("request must not set both raw and dataset")

	// ErrTooManyPeople indicates the dataset exceeds ServiceConfig.MaxPeople.
	// It is the loader's sentinel so text input rejected while parsing maps
	// the same way.
	ErrTooManyPeople = loader.ErrTooManyPeople
)
