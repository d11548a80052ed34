// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package toolexectest provides fake external tools for tests.
//
// FakeTool writes a real /bin/sh script that records every invocation, for
// end-to-end tests through toolexec.ExecRunner. FakeRunner is an in-memory
// toolexec.Runner for pure control-flow tests.
package toolexectest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/AleutianAI/perlkit/services/toolexec"
)

// FakeTool is an executable shell script standing in for an external tool.
type FakeTool struct {
	// Path is the absolute path of the script.
	Path string

	logPath string
}

// NewFakeTool writes a script named name into a fresh temp dir.
//
// Every invocation appends its arguments, space separated, to a log file
// before running body. body is plain sh and sees the arguments as "$@".
//
// Example:
//
//	tool := toolexectest.NewFakeTool(t, "perldoc", `[ "$1" = "-v" ] && { echo found; exit 0; }; exit 1`)
//	runner := toolexec.NewExecRunner()
//	runner.Run(ctx, tool.Path, "-v", "$_")
func NewFakeTool(t testing.TB, name, body string) *FakeTool {
	t.Helper()

	dir := t.TempDir()
	logPath := filepath.Join(dir, name+".calls")
	script := fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' \"$*\" >> %q\n%s\n", logPath, body)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake tool %s: %v", name, err)
	}
	return &FakeTool{Path: path, logPath: logPath}
}

// Invocations returns the argument lines of every call so far.
func (f *FakeTool) Invocations(t testing.TB) []string {
	t.Helper()

	data, err := os.ReadFile(f.logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading fake tool log: %v", err)
	}
	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return []string{""}
	}
	return strings.Split(trimmed, "\n")
}

// Call is one recorded FakeRunner invocation.
type Call struct {
	Name string
	Args []string
}

// FakeRunner is an in-memory toolexec.Runner.
//
// Thread Safety: Safe for concurrent use.
type FakeRunner struct {
	// Handler produces the outcome of each Run. A nil Handler returns an
	// empty successful Result.
	Handler func(ctx context.Context, args []string) (*toolexec.Result, error)

	// Missing makes LookPath and Run report ErrToolUnavailable.
	Missing bool

	mu    sync.Mutex
	calls []Call
}

// Run records the call and delegates to Handler.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (*toolexec.Result, error) {
	if f.Missing {
		return nil, fmt.Errorf("%w: %s", toolexec.ErrToolUnavailable, name)
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	if f.Handler == nil {
		return &toolexec.Result{}, nil
	}
	return f.Handler(ctx, args)
}

// LookPath succeeds unless Missing is set.
func (f *FakeRunner) LookPath(name string) (string, error) {
	if f.Missing {
		return "", fmt.Errorf("%w: %s", toolexec.ErrToolUnavailable, name)
	}
	return "/usr/bin/" + name, nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// NonZero builds the error ExecRunner returns for a non-zero exit.
func NonZero(code int, stdout, stderr string) (*toolexec.Result, error) {
	res := &toolexec.Result{Stdout: []byte(stdout), Stderr: []byte(stderr), ExitCode: code}
	return res, toolexec.NewCommandError("fake", code, stderr, toolexec.ErrNonZeroExit)
}

// Output builds a successful Result.
func Output(stdout string) (*toolexec.Result, error) {
	return &toolexec.Result{Stdout: []byte(stdout)}, nil
}

var _ toolexec.Runner = (*FakeRunner)(nil)
