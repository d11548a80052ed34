// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry configures OpenTelemetry export for perlkit.
//
// Service packages call otel.Tracer and otel.Meter directly; this package
// only decides where the data goes. Everything is off by default.
//
// # Exporters
//
//	| Signal  | Name       | Destination                                   |
//	|---------|------------|-----------------------------------------------|
//	| traces  | stdout     | pretty JSON on stderr                         |
//	| traces  | otlp       | OTLP/gRPC collector                           |
//	| metrics | stdout     | pretty JSON on stderr at shutdown             |
//	| metrics | prometheus | textfile written at shutdown                  |
//
// perlkit runs for well under a scrape interval, so prometheus metrics are
// written in the node_exporter textfile collector format instead of being
// served over HTTP.
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
package telemetry
