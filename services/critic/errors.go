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
	"errors"
	"fmt"

	"github.com/AleutianAI/perlkit/services/toolexec"
)

// Sentinel errors for the critic package.
var (
	// ErrToolUnavailable indicates perlcritic was not found in PATH.
	ErrToolUnavailable = toolexec.ErrToolUnavailable

	// ErrInvalidSeverity indicates a severity outside 1-5 or non-numeric.
	ErrInvalidSeverity = errors.New("invalid severity")

	// ErrFileNotAssociated indicates the request carries no file path.
	ErrFileNotAssociated = errors.New("no file associated")

	// ErrLinterFailed indicates perlcritic exited non-zero without printing
	// any diagnostics.
	ErrLinterFailed = errors.New("linter execution failed")

	// ErrInvalidInput indicates invalid input to a lint function.
	ErrInvalidInput = errors.New("invalid input")
)

// LinterError wraps an error from perlcritic with context.
//
// Thread Safety: Immutable after creation.
type LinterError struct {
	// Linter is the command that failed.
	Linter string

	// FilePath is the file being linted.
	FilePath string

	// Err is the underlying error.
	Err error

	// Output contains any stderr output from the linter.
	Output string
}

// Error implements the error interface.
func (e *LinterError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s (%s): %v: %s", e.Linter, e.FilePath, e.Err, e.Output)
	}
	return fmt.Sprintf("%s (%s): %v", e.Linter, e.FilePath, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LinterError) Unwrap() error {
	return e.Err
}

// NewLinterError creates a new LinterError.
func NewLinterError(linter, filePath string, err error) *LinterError {
	return &LinterError{
		Linter:   linter,
		FilePath: filePath,
		Err:      err,
	}
}

// WithOutput returns a copy of the error with the stderr output set.
func (e *LinterError) WithOutput(output string) *LinterError {
	return &LinterError{
		Linter:   e.Linter,
		FilePath: e.FilePath,
		Err:      e.Err,
		Output:   output,
	}
}
