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
	"github.com/AleutianAI/AleutianForensics/services/forensic/loader"
	"github.com/AleutianAI/AleutianForensics/services/forensic/matcher"
)

// =============================================================================
// Request Types
// =============================================================================

// AnalyzeRequest is the request body for POST /v1/forensic/analyze.
//
// Exactly one of Raw or Dataset must be set.
type AnalyzeRequest struct {
	// Raw is the dataset in the text file format.
	Raw string `json:"raw,omitempty"`

	// Dataset is the dataset as structured JSON.
	Dataset *loader.Dataset `json:"dataset,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// Report is the outcome of one analysis run.
type Report struct {
	// RunID identifies this run in logs and traces.
	RunID string `json:"run_id" yaml:"run_id"`

	// Source names the input, e.g. a file path. Empty for HTTP requests.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Total is the number of profiles loaded.
	Total int `json:"total" yaml:"total"`

	// Flagged is the number of profiles of interest.
	Flagged int `json:"flagged" yaml:"flagged"`

	// Unmarked is the number of profiles not of interest.
	Unmarked int `json:"unmarked" yaml:"unmarked"`

	// UnmarkedNames lists the unmarked people in level order. These are
	// the people removed by cleanup.
	UnmarkedNames []string `json:"unmarked_names" yaml:"unmarked_names"`

	// Suspects are the flagged people in name order with match detail.
	Suspects []Suspect `json:"suspects" yaml:"suspects"`

	// Remaining lists the names left in the tree after cleanup, in order.
	Remaining []string `json:"remaining" yaml:"remaining"`

	// TreeHeight is the height of the tree after loading.
	TreeHeight int `json:"tree_height" yaml:"tree_height"`

	// DurationMs is the wall time of the run in milliseconds.
	DurationMs int64 `json:"duration_ms" yaml:"duration_ms"`
}

// Suspect is one profile of interest.
type Suspect struct {
	Name      string                 `json:"name" yaml:"name"`
	Hits      int                    `json:"hits" yaml:"hits"`
	Threshold int                    `json:"threshold" yaml:"threshold"`
	Markers   []matcher.MarkerResult `json:"markers" yaml:"markers"`
}

// HealthResponse is the response for GET /v1/forensic/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Analyses int64  `json:"analyses"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}
