// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package toolexec

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("perlkit.toolexec")

func startRunSpan(ctx context.Context, name string, args []string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "toolexec.Run",
		trace.WithAttributes(
			attribute.String("tool.name", name),
			attribute.StringSlice("tool.args", args),
		),
	)
}

func endRunSpan(span trace.Span, exitCode int, err error) {
	span.SetAttributes(attribute.Int("tool.exit_code", exitCode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
