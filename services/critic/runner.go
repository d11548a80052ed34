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
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/perlkit/services/toolexec"
)

// DefaultCommand is the lint tool looked up in PATH.
const DefaultCommand = "perlcritic"

// DefaultWatchInterval is the minimum spacing between re-lints in Watch.
const DefaultWatchInterval = 250 * time.Millisecond

// =============================================================================
// RUNNER
// =============================================================================

// Runner executes perlcritic and converts its output into diagnostics.
//
// Thread Safety: Safe for concurrent use. Configuration is immutable
// after construction.
type Runner struct {
	exec          toolexec.Runner
	command       string
	extraArgs     []string
	watchInterval time.Duration
}

// RunnerOption configures the Runner.
type RunnerOption func(*Runner)

// WithCommand sets the perlcritic binary name or path.
func WithCommand(command string) RunnerOption {
	return func(r *Runner) {
		if command != "" {
			r.command = command
		}
	}
}

// WithExtraArgs adds arguments placed between the severity and the file,
// e.g. "--profile" "/path/.perlcriticrc".
func WithExtraArgs(args ...string) RunnerOption {
	return func(r *Runner) {
		r.extraArgs = append(r.extraArgs, args...)
	}
}

// WithWatchInterval sets the minimum spacing between re-lints in Watch.
func WithWatchInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.watchInterval = d
		}
	}
}

// NewRunner creates a perlcritic runner on top of exec.
func NewRunner(exec toolexec.Runner, opts ...RunnerOption) *Runner {
	r := &Runner{
		exec:          exec,
		command:       DefaultCommand,
		watchInterval: DefaultWatchInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Command returns the configured perlcritic command.
func (r *Runner) Command() string {
	return r.command
}

// RunLint lints filePath at a raw severity.
//
// Description:
//
//	Convenience wrapper that parses severity with ParseSeverity and calls
//	Lint. Accepts the same forms as ParseSeverity ("3", "3=harsh", 3).
func (r *Runner) RunLint(ctx context.Context, filePath string, severity any) (*LintResult, error) {
	sev, err := ParseSeverity(severity)
	if err != nil {
		return nil, err
	}
	return r.Lint(ctx, LintRequest{FilePath: filePath, Severity: sev})
}

// Lint runs perlcritic on one file.
//
// Description:
//
//	Validates the request, runs "<command> --severity N [extra] <file>" and
//	parses stdout. perlcritic's exit status is informational only: it
//	exits 2 whenever it finds violations, so output presence decides
//	success. Nothing is executed when validation fails.
//
// Inputs:
//
//	ctx - Context for cancellation
//	req - File and severity
//
// Outputs:
//
//	*LintResult - Sorted diagnostics; empty when the file is clean
//	error - Non-nil on validation or execution failure
//
// Errors:
//
//	ErrInvalidSeverity - Severity outside 1-5
//	ErrFileNotAssociated - Empty file path
//	ErrToolUnavailable - perlcritic is not in PATH
//	ErrLinterFailed - Non-zero exit with no output (wrapped in LinterError)
//	toolexec.ErrTimeout - perlcritic exceeded its timeout
func (r *Runner) Lint(ctx context.Context, req LintRequest) (*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if !req.Severity.Valid() {
		return nil, fmt.Errorf("%w: %d is outside 1-5", ErrInvalidSeverity, int(req.Severity))
	}
	if strings.TrimSpace(req.FilePath) == "" {
		return nil, ErrFileNotAssociated
	}

	ctx, span := startLintSpan(ctx, req)
	defer span.End()
	start := time.Now()

	if _, err := r.exec.LookPath(r.command); err != nil {
		recordLintMetrics(ctx, outcomeUnavailable, time.Since(start), 0)
		return nil, err
	}

	res, err := r.exec.Run(ctx, r.command, r.args(req)...)
	duration := time.Since(start)

	if err != nil && !acceptNonZero(err, res) {
		recordLintMetrics(ctx, outcomeError, duration, 0)
		return nil, r.wrapRunError(req.FilePath, err, res)
	}

	result := &LintResult{
		FilePath:    req.FilePath,
		Severity:    req.Severity,
		Diagnostics: ParseOutput(string(res.Stdout)),
		ExitCode:    res.ExitCode,
		Duration:    duration,
	}

	outcome := outcomeClean
	if !result.Clean() {
		outcome = outcomeFindings
	}
	setLintSpanResult(span, result)
	recordLintMetrics(ctx, outcome, duration, result.Count())

	slog.DebugContext(ctx, "Lint completed",
		slog.String("file", req.FilePath),
		slog.String("severity", req.Severity.String()),
		slog.Int("diagnostics", result.Count()),
		slog.Int("exit_code", result.ExitCode),
		slog.Duration("duration", duration),
	)
	return result, nil
}

func (r *Runner) args(req LintRequest) []string {
	args := make([]string, 0, 3+len(r.extraArgs))
	args = append(args, "--severity", strconv.Itoa(int(req.Severity)))
	args = append(args, r.extraArgs...)
	return append(args, req.FilePath)
}

// acceptNonZero reports whether a non-zero exit still carries usable
// diagnostics on stdout.
func acceptNonZero(err error, res *toolexec.Result) bool {
	return errors.Is(err, toolexec.ErrNonZeroExit) &&
		res != nil && res.HasOutput()
}

func (r *Runner) wrapRunError(filePath string, err error, res *toolexec.Result) error {
	switch {
	case errors.Is(err, toolexec.ErrToolUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, toolexec.ErrNonZeroExit):
		lerr := NewLinterError(r.command, filePath, ErrLinterFailed)
		if res != nil {
			return lerr.WithOutput(strings.TrimSpace(string(res.Stderr)))
		}
		return lerr
	default:
		return NewLinterError(r.command, filePath, err)
	}
}

// =============================================================================
// BATCH
// =============================================================================

// LintFiles lints several files concurrently.
//
// Description:
//
//	Runs at most GOMAXPROCS perlcritic processes at once. Results are in
//	the order of paths. The first error cancels the remaining runs and is
//	returned.
func (r *Runner) LintFiles(ctx context.Context, paths []string, severity Severity) ([]*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if !severity.Valid() {
		return nil, fmt.Errorf("%w: %d is outside 1-5", ErrInvalidSeverity, int(severity))
	}
	if len(paths) == 0 {
		return nil, ErrFileNotAssociated
	}

	results := make([]*LintResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := r.Lint(gctx, LintRequest{FilePath: path, Severity: severity})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
