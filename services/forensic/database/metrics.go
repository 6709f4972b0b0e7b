// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package database

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("aleutian.forensic.database")

var (
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forensic_database_operation_duration_seconds",
		Help:    "Duration of bulk database operations",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"operation"})

	profilesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forensic_profiles_loaded_total",
		Help: "Profiles inserted into a database",
	})

	profilesFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forensic_profiles_flagged_total",
		Help: "Profiles flagged as of interest",
	})

	profilesRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forensic_profiles_removed_total",
		Help: "Profiles removed from a database",
	}, []string{"reason"})

	loadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forensic_load_errors_total",
		Help: "Load calls that stopped on an error",
	})

	treeHeight = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forensic_tree_height",
		Help:    "Tree height after a load",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 1000},
	})
)

// startSpan opens a span for a bulk operation.
func startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Database."+op, trace.WithAttributes(attrs...))
}
