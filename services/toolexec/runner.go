// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package toolexec runs external command-line tools with a bounded timeout.
//
// It is the only place perlkit spawns processes. The perldoc and critic
// services depend on the Runner interface so their control flow can be
// tested without real binaries.
//
// # Exit Status
//
// Run does not decide whether a non-zero exit is a failure for the caller.
// It returns the captured Result together with a *CommandError wrapping
// ErrNonZeroExit, and the caller inspects the Result if the tool is known
// to report non-zero on success.
//
// # Timeouts
//
// Each Run has its own deadline. On expiry the whole process group is
// killed, so helper processes a tool spawns (pagers, formatters) are
// abandoned with it.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 5 * time.Second

// waitDelay bounds how long Wait blocks on pipes held by orphaned children
// after the process itself has exited or been killed.
const waitDelay = time.Second

// Result is the captured outcome of one process.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte

	// Stderr is the captured standard error.
	Stderr []byte

	// ExitCode is the process exit code, -1 if the process did not exit normally.
	ExitCode int

	// Duration is the wall time of the invocation.
	Duration time.Duration
}

// HasOutput reports whether stdout contains anything besides whitespace.
func (r *Result) HasOutput() bool {
	return r != nil && len(bytes.TrimSpace(r.Stdout)) > 0
}

// Runner executes external tools.
type Runner interface {
	// Run executes name with args and captures its output.
	Run(ctx context.Context, name string, args ...string) (*Result, error)

	// LookPath resolves name against PATH. Returns ErrToolUnavailable
	// when it cannot be found.
	LookPath(name string) (string, error)
}

// ExecRunner is the os/exec backed Runner.
//
// Thread Safety: Safe for concurrent use; options are fixed at construction.
type ExecRunner struct {
	timeout time.Duration
	env     []string
}

// Option configures the ExecRunner.
type Option func(*ExecRunner)

// WithTimeout sets the per-invocation timeout. Non-positive values keep
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *ExecRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *ExecRunner) {
		r.env = append(r.env, env...)
	}
}

// NewExecRunner creates a runner with DefaultTimeout unless overridden.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns the configured per-invocation timeout.
func (r *ExecRunner) Timeout() time.Duration {
	return r.timeout
}

// LookPath resolves name against PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty command", ErrToolUnavailable)
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolUnavailable, name)
	}
	return path, nil
}

// Run executes name with args under the configured timeout.
//
// Description:
//
//	Resolves the binary, starts it in its own process group, and waits for
//	it to exit or for the deadline to pass. Stdout and stderr are captured
//	separately.
//
// Inputs:
//
//	ctx - Context for cancellation; the timeout is applied on top of it
//	name - Binary name or path
//	args - Arguments passed verbatim, no shell involved
//
// Outputs:
//
//	*Result - Captured output; non-nil whenever the process was started
//	error - nil on exit code 0
//
// Errors:
//
//	ErrToolUnavailable - Binary not found in PATH
//	ErrTimeout - Deadline exceeded, process group killed (wrapped in *CommandError)
//	ErrNonZeroExit - Process exited non-zero (wrapped in *CommandError)
//	ErrStartFailed - Process could not be started (wrapped in *CommandError)
//	ctx.Err() - The parent context was cancelled
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	ctx, span := startRunSpan(ctx, name, args)
	defer span.End()

	path, err := r.LookPath(name)
	if err != nil {
		endRunSpan(span, -1, err)
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, args...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode(cmd, runErr),
		Duration: time.Since(start),
	}
	commandLine := CommandLine(name, args...)

	slog.DebugContext(ctx, "Tool finished",
		slog.String("command", commandLine),
		slog.Int("exit_code", result.ExitCode),
		slog.Duration("duration", result.Duration),
		slog.Int("stdout_bytes", stdout.Len()),
	)

	if ctx.Err() != nil {
		endRunSpan(span, result.ExitCode, ctx.Err())
		return result, ctx.Err()
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		err := NewCommandError(commandLine, -1, stderr.String(), ErrTimeout)
		endRunSpan(span, -1, err)
		return result, err
	}

	if errors.Is(runErr, exec.ErrWaitDelay) && result.ExitCode == 0 {
		runErr = nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			err := NewCommandError(commandLine, result.ExitCode, stderr.String(), ErrNonZeroExit)
			endRunSpan(span, result.ExitCode, err)
			return result, err
		}
		err := NewCommandError(commandLine, -1, stderr.String(), fmt.Errorf("%w: %v", ErrStartFailed, runErr))
		endRunSpan(span, -1, err)
		return result, err
	}

	endRunSpan(span, result.ExitCode, nil)
	return result, nil
}

// CommandLine renders name and args for logs and error messages.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

func exitCode(cmd *exec.Cmd, runErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if runErr != nil {
		return -1
	}
	return 0
}
