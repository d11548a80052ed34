// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package critic

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
	tracer = otel.Tracer("perlkit.critic")
	meter  = otel.Meter("perlkit.critic")
)

// Outcome label values for critic_runs_total.
const (
	outcomeClean       = "clean"
	outcomeFindings    = "findings"
	outcomeError       = "error"
	outcomeUnavailable = "unavailable"
)

var (
	lintLatency      metric.Float64Histogram
	lintTotal        metric.Int64Counter
	diagnosticsFound metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		lintLatency, err = meter.Float64Histogram(
			"critic_run_duration_seconds",
			metric.WithDescription("Duration of perlcritic runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		lintTotal, err = meter.Int64Counter(
			"critic_runs_total",
			metric.WithDescription("Total number of perlcritic runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsFound, err = meter.Int64Counter(
			"critic_diagnostics_found",
			metric.WithDescription("Total number of diagnostics reported"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startLintSpan(ctx context.Context, req LintRequest) (context.Context, trace.Span) {
	return tracer.Start(ctx, "critic.Lint",
		trace.WithAttributes(
			attribute.String("critic.file", req.FilePath),
			attribute.Int("critic.severity", int(req.Severity)),
		),
	)
}

func setLintSpanResult(span trace.Span, result *LintResult) {
	span.SetAttributes(
		attribute.Int("critic.diagnostics", result.Count()),
		attribute.Int("critic.exit_code", result.ExitCode),
	)
}

func recordLintMetrics(ctx context.Context, outcome string, duration time.Duration, found int) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	lintLatency.Record(ctx, duration.Seconds(), attrs)
	lintTotal.Add(ctx, 1, attrs)
	if found > 0 {
		diagnosticsFound.Add(ctx, int64(found))
	}
}
