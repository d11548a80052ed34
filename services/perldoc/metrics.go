// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package perldoc

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("perlkit.perldoc")
	meter  = otel.Meter("perlkit.perldoc")
)

var (
	lookupLatency metric.Float64Histogram
	lookupTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		lookupLatency, err = meter.Float64Histogram(
			"perldoc_lookup_duration_seconds",
			metric.WithDescription("Duration of documentation lookups"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		lookupTotal, err = meter.Int64Counter(
			"perldoc_lookups_total",
			metric.WithDescription("Total number of documentation lookups"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startLookupSpan(ctx context.Context, term string, parallel bool) (context.Context, trace.Span) {
	return tracer.Start(ctx, "perldoc.Lookup",
		trace.WithAttributes(
			attribute.String("perldoc.term", term),
			attribute.Bool("perldoc.parallel", parallel),
		),
	)
}

func startAttemptSpan(ctx context.Context, mode Mode) (context.Context, trace.Span) {
	return tracer.Start(ctx, "perldoc.Attempt",
		trace.WithAttributes(attribute.String("perldoc.mode", mode.String())),
	)
}

func setLookupSpanResult(span trace.Span, result *LookupResult) {
	span.SetAttributes(
		attribute.Bool("perldoc.found", result.Found),
		attribute.String("perldoc.mode", result.Mode.String()),
		attribute.Int("perldoc.attempts", result.Attempts),
	)
}

func recordLookupMetrics(ctx context.Context, mode Mode, duration time.Duration, found bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("mode", mode.String()),
		attribute.Bool("found", found),
	)
	lookupLatency.Record(ctx, duration.Seconds(), attrs)
	lookupTotal.Add(ctx, 1, attrs)
}
