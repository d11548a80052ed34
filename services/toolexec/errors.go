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
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the toolexec package.
var (
	// ErrToolUnavailable indicates the binary was not found in PATH.
	ErrToolUnavailable = errors.New("tool unavailable")

	// ErrTimeout indicates the process exceeded its timeout and was killed.
	ErrTimeout = errors.New("tool timeout")

	// ErrNonZeroExit indicates the process ran but exited with a non-zero status.
	ErrNonZeroExit = errors.New("tool exited with non-zero status")

	// ErrStartFailed indicates the process could not be started.
	ErrStartFailed = errors.New("tool failed to start")

	// ErrInvalidInput indicates invalid input to a toolexec function.
	ErrInvalidInput = errors.New("invalid input")
)

// CommandError carries the context of a failed external command.
//
// # Example
//
//	_, err := runner.Run(ctx, "perldoc", "-f", "nosuch")
//	var cmdErr *CommandError
//	if errors.As(err, &cmdErr) {
//	    fmt.Println(cmdErr.ExitCode, cmdErr.Stderr)
//	}
type CommandError struct {
	// Command is the command line that was executed.
	Command string

	// ExitCode is the process exit code (-1 if unknown).
	ExitCode int

	// Stderr contains the trimmed standard error output.
	Stderr string

	// Wrapped is the underlying error, usually one of the sentinels above.
	Wrapped error
}

// Error returns "<command> (exit N): <stderr or cause>".
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s (exit %d): %v: %s", e.Command, e.ExitCode, e.Wrapped, e.Stderr)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s (exit %d): %v", e.Command, e.ExitCode, e.Wrapped)
	}
	return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Wrapped
}

// HasStderr returns true if stderr output is available.
func (e *CommandError) HasStderr() bool {
	return e.Stderr != ""
}

// NewCommandError creates a CommandError. Stderr is trimmed.
func NewCommandError(cmd string, exitCode int, stderr string, wrapped error) *CommandError {
	return &CommandError{
		Command:  cmd,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Wrapped:  wrapped,
	}
}

// ExtractStderr walks the error chain and returns the first non-empty
// stderr found on a CommandError.
func ExtractStderr(err error) string {
	for err != nil {
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			return ""
		}
		if cmdErr.HasStderr() {
			return cmdErr.Stderr
		}
		err = cmdErr.Unwrap()
	}
	return ""
}
