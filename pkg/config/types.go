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

import (
	"time"
)

// Config is the perlkit configuration file.
type Config struct {
	// Perldoc configures documentation lookups.
	Perldoc ToolConfig `yaml:"perldoc" toml:"perldoc"`

	// Critic configures linting.
	Critic CriticConfig `yaml:"critic" toml:"critic"`

	// Log configures diagnostics logging.
	Log LogConfig `yaml:"log" toml:"log"`

	// Telemetry configures trace and metric export.
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-" toml:"-"`
}

// ToolConfig configures the perldoc executable.
type ToolConfig struct {
	// Command is the executable name or path.
	Command string `yaml:"command" toml:"command" validate:"required"`

	// Timeout bounds each invocation; a timed-out lookup mode counts as a
	// failed attempt.
	Timeout time.Duration `yaml:"timeout" toml:"timeout" validate:"gt=0"`

	// Env holds KEY=VALUE pairs added to the inherited environment, e.g.
	// PERL5LIB.
	Env []string `yaml:"env,omitempty" toml:"env,omitempty" validate:"dive,contains=="`
}

// CriticConfig configures perlcritic and the lint command.
type CriticConfig struct {
	// Command is the executable name or path.
	Command string `yaml:"command" toml:"command" validate:"required"`

	// Timeout bounds each perlcritic run.
	Timeout time.Duration `yaml:"timeout" toml:"timeout" validate:"gt=0"`

	// Env holds KEY=VALUE pairs added to the inherited environment, e.g.
	// PERLCRITIC=/path/to/perlcriticrc.
	Env []string `yaml:"env,omitempty" toml:"env,omitempty" validate:"dive,contains=="`

	// Severity is the default threshold, 1 (brutal) to 5 (gentle).
	Severity int `yaml:"severity" toml:"severity" validate:"min=1,max=5"`

	// ExtraArgs go between the severity and the file, e.g. --profile.
	ExtraArgs []string `yaml:"extra_args,omitempty" toml:"extra_args,omitempty"`

	// WatchInterval is the minimum spacing between re-lints in watch mode.
	WatchInterval time.Duration `yaml:"watch_interval" toml:"watch_interval" validate:"gt=0"`
}

// LogConfig configures diagnostic logging on stderr and in files.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn warning error"`

	// JSON switches stderr logs to JSON.
	JSON bool `yaml:"json" toml:"json"`

	// Dir also writes JSON logs to perlkit_<date>.log in this directory.
	Dir string `yaml:"dir,omitempty" toml:"dir,omitempty"`
}

// TelemetryConfig selects trace and metric exporters. See
// services/telemetry for the accepted names.
type TelemetryConfig struct {
	TraceExporter   string `yaml:"trace_exporter" toml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricExporter  string `yaml:"metric_exporter" toml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint    string `yaml:"otlp_endpoint,omitempty" toml:"otlp_endpoint,omitempty" validate:"omitempty,hostname_port"`
	OTLPInsecure    bool   `yaml:"otlp_insecure" toml:"otlp_insecure"`
	MetricsTextfile string `yaml:"metrics_textfile,omitempty" toml:"metrics_textfile,omitempty" validate:"required_if=MetricExporter prometheus"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Perldoc: ToolConfig{
			Command: "perldoc",
			Timeout: 5 * time.Second,
		},
		Critic: CriticConfig{
			Command:       "perlcritic",
			Timeout:       5 * time.Second,
			Severity:      5,
			WatchInterval: 250 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
		},
	}
}
