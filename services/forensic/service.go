// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package forensic provides the forensic analysis service and its HTTP API.
//
// One analysis takes a dataset (two unknown DNA sequences and a list of
// people with STR marker profiles), loads it into a fresh profile tree,
// flags every profile that matches the combined sequences and removes the
// rest. The service reports who was flagged, why, and who was removed.
//
// The service exposes endpoints for:
//   - Running an analysis on a posted dataset
//   - Health checks
//   - Prometheus metrics
package forensic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianForensics/services/forensic/bst"
	"github.com/AleutianAI/AleutianForensics/services/forensic/database"
	"github.com/AleutianAI/AleutianForensics/services/forensic/loader"
	"github.com/AleutianAI/AleutianForensics/services/forensic/matcher"
	"github.com/AleutianAI/AleutianForensics/services/forensic/telemetry"
)

// ServiceVersion is the forensic service version.
const ServiceVersion = "0.1.0"

var tracer = otel.Tracer("aleutian.forensic")

// ServiceConfig configures the forensic service.
type ServiceConfig struct {
	// MaxPeople is the largest dataset Analyze accepts. 0 means no limit.
	// Default: 1,000,000
	MaxPeople int
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxPeople: 1_000_000,
	}
}

// Service runs analyses.
//
// Thread Safety:
//
//	Service is safe for concurrent use. Analyses are serialized; each one
//	owns its own Database.
type Service struct {
	config   ServiceConfig
	logger   *slog.Logger
	mu       sync.Mutex
	analyses atomic.Int64
}

// NewService creates a forensic service.
//
// Inputs:
//
//	config - Service configuration
//	logger - Logger for run summaries. nil uses slog.Default().
func NewService(config ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{config: config, logger: logger}
}

// Analyses returns the number of analyses completed since start.
func (s *Service) Analyses() int64 {
	return s.analyses.Load()
}

// AnalyzeText parses r in the text file format and analyzes the result.
// A declared person count above MaxPeople is rejected before any record is
// read.
func (s *Service) AnalyzeText(ctx context.Context, r io.Reader) (*Report, error) {
	ds, err := loader.ParseLimit(r, s.config.MaxPeople)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, ds)
}

// Analyze runs one complete analysis on ds.
//
// # Description
//
// Validates ds, builds a new Database from it, flags matching profiles,
// records match detail for every flagged person, collects the unmarked
// names in level order and then cleans the tree up.
//
// # Inputs
//
//   - ctx: Context for cancellation and tracing.
//   - ds: Parsed dataset. Not modified.
//
// # Outputs
//
//   - *Report: The run summary.
//   - error: ErrNilDataset, ErrTooManyPeople, an error wrapping
//     loader.ErrInvalidInput, or ctx.Err().
//
// # Example
//
//	report, err := svc.Analyze(ctx, ds)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.Flagged, "of", report.Total)
func (s *Service) Analyze(ctx context.Context, ds *loader.Dataset) (*Report, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if s.config.MaxPeople > 0 && len(ds.People) > s.config.MaxPeople {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPeople, len(ds.People), s.config.MaxPeople)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "forensic.Service.Analyze",
		trace.WithAttributes(
			attribute.String("forensic.run_id", runID),
			attribute.Int("forensic.people", len(ds.People)),
		),
	)
	defer span.End()

	logger := telemetry.LoggerWithTrace(ctx, s.logger).With("run_id", runID)

	db := database.New(database.WithLogger(logger))
	if err := db.Load(ctx, ds.Records(), ds.FirstSequence, ds.SecondSequence); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	height := bst.Height(db.Root())

	db.Flag(ctx)
	suspects := collectSuspects(db)

	report := &Report{
		RunID:         runID,
		Total:         db.Len(),
		Flagged:       db.CountMatching(true),
		Unmarked:      db.CountMatching(false),
		UnmarkedNames: db.UnmarkedNames(),
		Suspects:      suspects,
		TreeHeight:    height,
	}

	db.Cleanup(ctx)
	report.Remaining = db.Names()
	report.DurationMs = time.Since(start).Milliseconds()

	s.analyses.Add(1)
	span.SetAttributes(
		attribute.Int("forensic.flagged", report.Flagged),
		attribute.Int("forensic.unmarked", report.Unmarked),
	)
	logger.Info("analysis complete",
		"total", report.Total,
		"flagged", report.Flagged,
		"unmarked", report.Unmarked,
		"duration_ms", report.DurationMs)
	return report, nil
}

// collectSuspects evaluates every flagged profile, in name order.
func collectSuspects(db *database.Database) []Suspect {
	combined := matcher.Combine(db.FirstSequence(), db.SecondSequence())
	suspects := make([]Suspect, 0, db.CountMatching(true))
	bst.Walk(db.Root(), func(n *bst.Node) {
		if !n.Profile.IsOfInterest() {
			return
		}
		res := matcher.Evaluate(n.Profile, combined)
		suspects = append(suspects, Suspect{
			Name:      n.Name,
			Hits:      res.Hits,
			Threshold: res.Threshold,
			Markers:   res.Markers,
		})
	})
	return suspects
}
