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
	"strconv"
	"time"
)

// =============================================================================
// LINT REQUEST
// =============================================================================

// LintRequest asks for a file to be linted.
type LintRequest struct {
	// FilePath is the file to lint. Required.
	FilePath string

	// Severity is the perlcritic threshold, 1-5.
	Severity Severity
}

// =============================================================================
// DIAGNOSTIC
// =============================================================================

// Diagnostic is a single perlcritic message.
//
// Thread Safety: Immutable after creation.
type Diagnostic struct {
	// Line is the 1-indexed line number. Messages without a position are
	// reported at line 1.
	Line int `json:"line"`

	// Column is the 1-indexed column number. Messages without a position
	// are reported at column 1.
	Column int `json:"column"`

	// Message is the message text with whitespace runs collapsed.
	Message string `json:"message"`
}

// Location formats "file:line:col".
func (d Diagnostic) Location(file string) string {
	return file + ":" + strconv.Itoa(d.Line) + ":" + strconv.Itoa(d.Column)
}

// =============================================================================
// LINT RESULT
// =============================================================================

// LintResult is the outcome of one perlcritic run.
//
// Thread Safety: Immutable after creation by the runner.
type LintResult struct {
	// FilePath is the file that was linted.
	FilePath string `json:"file_path"`

	// Severity is the threshold that was applied.
	Severity Severity `json:"severity"`

	// Diagnostics are sorted by (line, column), stable for equal positions.
	// Empty means the file is clean.
	Diagnostics []Diagnostic `json:"diagnostics"`

	// ExitCode is perlcritic's exit status. Informational only.
	ExitCode int `json:"exit_code"`

	// Duration is how long perlcritic took to run.
	Duration time.Duration `json:"duration"`
}

// Clean reports whether no diagnostics were found.
func (r *LintResult) Clean() bool {
	return len(r.Diagnostics) == 0
}

// Count returns the number of diagnostics.
func (r *LintResult) Count() int {
	return len(r.Diagnostics)
}
