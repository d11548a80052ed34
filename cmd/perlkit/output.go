// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess  = 0 // Operation completed, including "not found" and "clean"
	CLIExitFindings = 1 // lint --fail-on-findings reported diagnostics
	CLIExitError    = 2 // Operation failed
)

// APIVersion versions the JSON envelope.
const APIVersion = "1.0"

// CommandResult wraps command output with metadata.
type CommandResult struct {
	APIVersion string    `json:"api_version"`
	RunID      string    `json:"run_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	Command    string    `json:"command"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Data       any       `json:"data,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// newCommandResult starts an envelope for cmd. RunID matches the run_id
// attribute on this invocation's log records.
func (a *app) newCommandResult(cmd, traceID string, start time.Time) CommandResult {
	return CommandResult{
		APIVersion: APIVersion,
		RunID:      a.runID,
		TraceID:    traceID,
		Command:    cmd,
		Timestamp:  start.UTC(),
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// OutputJSON writes structured data as JSON.
//
// # Inputs
//
//   - w: Destination, normally stdout.
//   - data: The data to encode. Must be JSON-serializable.
//   - compact: If true, output without indentation.
//
// # Outputs
//
//   - error: Non-nil if encoding fails.
func OutputJSON(w io.Writer, data any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// exitError carries a non-default exit code out of a cobra command.
//
// A nil err means the command already reported everything and only the
// exit status differs.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}
