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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/perlkit/services/toolexec"
	"github.com/AleutianAI/perlkit/services/toolexec/toolexectest"
)

func TestWatch_RelintsOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "script.pl")
	require.NoError(t, os.WriteFile(file, []byte("print 1;\n"), 0o644))

	// Reports one diagnostic per line of the linted file.
	tool := toolexectest.NewFakeTool(t, "perlcritic", `n=0
while IFS= read -r _; do n=$((n+1)); echo "Line $n at line $n, column 1."; done < "$3"
[ "$n" -eq 0 ] && { echo "$3 source OK"; exit 0; }
exit 2`)
	r := NewRunner(toolexec.NewExecRunner(), WithCommand(tool.Path), WithWatchInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan *LintResult, 16)
	done := make(chan error, 1)
	go func() {
		done <- r.Watch(ctx, []string{file}, SeverityGentle, func(res *LintResult, err error) {
			if err != nil {
				t.Errorf("unexpected lint error: %v", err)
				return
			}
			results <- res
		})
	}()

	first := receive(t, results)
	assert.Equal(t, 1, first.Count())
	assert.Equal(t, file, first.FilePath)

	require.NoError(t, os.WriteFile(file, []byte("print 1;\nprint 2;\nprint 3;\n"), 0o644))

	// Truncate and write arrive as separate events; wait for the final content.
	deadline := time.After(5 * time.Second)
	for last := 0; last != 3; {
		select {
		case res := <-results:
			last = res.Count()
		case <-deadline:
			t.Fatalf("never saw a lint of the rewritten file, last count %d", last)
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatch_IgnoresUntrackedFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tracked.pl")
	require.NoError(t, os.WriteFile(file, []byte("1;\n"), 0o644))

	runner := &toolexectest.FakeRunner{}
	r := NewRunner(runner, WithWatchInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan *LintResult, 16)
	done := make(chan error, 1)
	go func() {
		done <- r.Watch(ctx, []string{file}, SeverityGentle, func(res *LintResult, _ error) {
			results <- res
		})
	}()

	receive(t, results)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.pl"), []byte("2;\n"), 0o644))

	select {
	case res := <-results:
		t.Fatalf("untracked write triggered a lint of %s", res.FilePath)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	assert.NoError(t, <-done)
	assert.Len(t, runner.Calls(), 1)
}

func TestWatch_Validation(t *testing.T) {
	r := NewRunner(&toolexectest.FakeRunner{})
	noop := func(*LintResult, error) {}

	assert.ErrorIs(t, r.Watch(context.Background(), nil, SeverityGentle, noop), ErrFileNotAssociated)
	assert.ErrorIs(t, r.Watch(context.Background(), []string{"a.pl"}, 0, noop), ErrInvalidSeverity)
	assert.ErrorIs(t, r.Watch(context.Background(), []string{"a.pl"}, SeverityGentle, nil), ErrInvalidInput)
}

func receive(t *testing.T, ch <-chan *LintResult) *LintResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a lint result")
		return nil
	}
}
