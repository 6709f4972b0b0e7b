// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import "time"

type ForensicConfig struct {
	// Logging: level, format and optional log directory
	Logging LoggingConfig `yaml:"logging"`

	// Server: the HTTP API
	Server ServerConfig `yaml:"server"`

	// Telemetry: trace and metric exporters
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch: input file watcher
	Watch WatchConfig `yaml:"watch"`

	// Output: CLI report format
	Output OutputConfig `yaml:"output"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `yaml:"dir,omitempty"` // e.g. ~/.aleutian/logs
	JSON  bool   `yaml:"json"`
}

type ServerConfig struct {
	Host              string  `yaml:"host"`
	Port              int     `yaml:"port" validate:"min=1,max=65535"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"` // 0 disables the limiter
	Burst             int     `yaml:"burst" validate:"gte=0"`
	MaxBodyBytes      int64   `yaml:"max_body_bytes" validate:"gt=0"`
}

type TelemetryConfig struct {
	Environment    string `yaml:"environment"`
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" validate:"gt=0"`
}

type OutputConfig struct {
	// Format is "auto" (text on a terminal, JSON otherwise), "text", "json" or "yaml".
	Format string `yaml:"format" validate:"oneof=auto text json yaml"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() ForensicConfig {
	return ForensicConfig{
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              8087,
			RequestsPerSecond: 20,
			Burst:             40,
			MaxBodyBytes:      32 << 20,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Output: OutputConfig{
			Format: "auto",
		},
	}
}
