// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires OpenTelemetry tracing and metrics for the forensic
// service.
//
// OTel APIs are used directly. Backends are chosen by exporter name:
//
//   - Traces: "otlp" (gRPC), "stdout", or "none"
//   - Metrics: "prometheus" (scraped from /metrics), "stdout", or "none"
//
// Every backend sees the same resource: service.namespace
// "aleutian.forensic" plus forensic.component ("server", "watch", ...).
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, telemetry.DefaultConfig())
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
//
// The database package's prometheus collectors are registered with the
// default registry, so MetricsHandler serves them alongside OTel metrics.
//
// # Thread Safety
//
// Init should be called once at startup. Everything else is safe for
// concurrent use.
package telemetry
