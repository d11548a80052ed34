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
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/perlkit/services/toolexec"
)

// DefaultCommand is the documentation tool looked up in PATH.
const DefaultCommand = "perldoc"

// =============================================================================
// SERVICE
// =============================================================================

// Service looks up Perl documentation through the perldoc tool.
//
// Thread Safety: Safe for concurrent use if the configured Cache is.
type Service struct {
	runner   toolexec.Runner
	command  string
	parallel bool
	cache    Cache
}

// Option configures the Service.
type Option func(*Service)

// WithCommand sets the perldoc binary name or path.
func WithCommand(command string) Option {
	return func(s *Service) {
		if command != "" {
			s.command = command
		}
	}
}

// WithParallel runs all modes concurrently and picks the highest-priority
// success instead of stopping at the first one.
func WithParallel(parallel bool) Option {
	return func(s *Service) {
		s.parallel = parallel
	}
}

// WithCache sets a cache consulted before spawning any process.
func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// NewService creates a lookup service on top of runner.
func NewService(runner toolexec.Runner, opts ...Option) *Service {
	s := &Service{
		runner:  runner,
		command: DefaultCommand,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Command returns the configured perldoc command.
func (s *Service) Command() string {
	return s.command
}

// Lookup finds documentation for a term.
//
// Description:
//
//	Tries function, variable, general and FAQ lookups in that order and
//	returns the output of the first one that exits with status 0. A timed
//	out or failing attempt moves on to the next mode. Blank terms return a
//	not-found result without spawning anything.
//
// Inputs:
//
//	ctx - Context for cancellation
//	req - The term and optional mode restriction
//
// Outputs:
//
//	*LookupResult - Found=false when every mode failed
//	error - Non-nil only for fatal conditions
//
// Errors:
//
//	ErrToolUnavailable - perldoc is not in PATH
//	ErrInvalidInput - nil context
//	ctx.Err() - Lookup cancelled
func (s *Service) Lookup(ctx context.Context, req LookupRequest) (*LookupResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	if req.IsBlank() {
		return &LookupResult{}, nil
	}
	term := strings.TrimSpace(req.Term)
	modes := req.modes()
	if len(modes) == 0 {
		return &LookupResult{Term: term}, nil
	}

	key := cacheKey(term, modes)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			slog.Debug("Lookup served from cache", slog.String("term", term))
			return cached, nil
		}
	}

	ctx, span := startLookupSpan(ctx, term, s.parallel)
	defer span.End()
	start := time.Now()

	if _, err := s.runner.LookPath(s.command); err != nil {
		recordLookupMetrics(ctx, ModeNone, time.Since(start), false)
		return nil, err
	}

	var (
		result *LookupResult
		err    error
	)
	if s.parallel {
		result, err = s.lookupParallel(ctx, term, modes)
	} else {
		result, err = s.lookupSequential(ctx, term, modes)
	}
	if err != nil {
		recordLookupMetrics(ctx, ModeNone, time.Since(start), false)
		return nil, err
	}
	result.Duration = time.Since(start)

	setLookupSpanResult(span, result)
	recordLookupMetrics(ctx, result.Mode, result.Duration, result.Found)

	slog.DebugContext(ctx, "Lookup completed",
		slog.String("term", term),
		slog.Bool("found", result.Found),
		slog.String("mode", result.Mode.String()),
		slog.Int("attempts", result.Attempts),
		slog.Duration("duration", result.Duration),
	)

	if s.cache != nil {
		s.cache.Put(key, result)
	}
	return result, nil
}

// lookupSequential stops at the first successful mode; later modes are
// never started.
func (s *Service) lookupSequential(ctx context.Context, term string, modes []Mode) (*LookupResult, error) {
	result := &LookupResult{Term: term}
	for _, mode := range modes {
		result.Attempts++
		out, ok, err := s.attempt(ctx, mode, term)
		if err != nil {
			return nil, err
		}
		if ok {
			result.Found = true
			result.Mode = mode
			result.Lines = splitLines(out)
			return result, nil
		}
	}
	return result, nil
}

// lookupParallel runs every mode at once and keeps the highest-priority
// success.
func (s *Service) lookupParallel(ctx context.Context, term string, modes []Mode) (*LookupResult, error) {
	outputs := make([][]byte, len(modes))
	succeeded := make([]bool, len(modes))

	g, gctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		i, mode := i, mode
		g.Go(func() error {
			out, ok, err := s.attempt(gctx, mode, term)
			if err != nil {
				return err
			}
			outputs[i], succeeded[i] = out, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &LookupResult{Term: term, Attempts: len(modes)}
	for i, mode := range modes {
		if succeeded[i] {
			result.Found = true
			result.Mode = mode
			result.Lines = splitLines(outputs[i])
			break
		}
	}
	return result, nil
}

// attempt runs one perldoc invocation.
//
// Returns ok=false with a nil error for a failed attempt (non-zero exit,
// timeout). A missing tool or a cancelled context is returned as an error.
func (s *Service) attempt(ctx context.Context, mode Mode, term string) ([]byte, bool, error) {
	attemptCtx, span := startAttemptSpan(ctx, mode)
	defer span.End()

	res, err := s.runner.Run(attemptCtx, s.command, mode.Args(term)...)
	if err == nil {
		return res.Stdout, true, nil
	}

	if errors.Is(err, toolexec.ErrToolUnavailable) {
		return nil, false, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}

	slog.DebugContext(ctx, "Lookup attempt failed",
		slog.String("term", term),
		slog.String("mode", mode.String()),
		slog.Bool("timeout", errors.Is(err, toolexec.ErrTimeout)),
		slog.String("stderr", toolexec.ExtractStderr(err)),
		slog.String("error", err.Error()),
	)
	return nil, false, nil
}
