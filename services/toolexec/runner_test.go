// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package toolexec_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/AleutianAI/perlkit/services/toolexec"
	"github.com/AleutianAI/perlkit/services/toolexec/toolexectest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewExecRunner_Defaults(t *testing.T) {
	runner := toolexec.NewExecRunner()
	assert.Equal(t, toolexec.DefaultTimeout, runner.Timeout())

	runner = toolexec.NewExecRunner(toolexec.WithTimeout(-time.Second))
	assert.Equal(t, toolexec.DefaultTimeout, runner.Timeout(), "non-positive timeout keeps the default")

	runner = toolexec.NewExecRunner(toolexec.WithTimeout(250 * time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, runner.Timeout())
}

func TestExecRunner_LookPath_Missing(t *testing.T) {
	runner := toolexec.NewExecRunner()

	_, err := runner.LookPath("perlkit-no-such-tool-7f3a")
	require.Error(t, err)
	assert.ErrorIs(t, err, toolexec.ErrToolUnavailable)

	_, err = runner.LookPath("  ")
	assert.ErrorIs(t, err, toolexec.ErrToolUnavailable)
}

func TestExecRunner_Run_Missing(t *testing.T) {
	runner := toolexec.NewExecRunner()

	res, err := runner.Run(context.Background(), "perlkit-no-such-tool-7f3a", "-f", "print")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, toolexec.ErrToolUnavailable)
}

func TestExecRunner_Run_NilContext(t *testing.T) {
	runner := toolexec.NewExecRunner()

	_, err := runner.Run(nil, "sh") //nolint:staticcheck
	assert.ErrorIs(t, err, toolexec.ErrInvalidInput)
}

func TestExecRunner_Run_CapturesOutput(t *testing.T) {
	tool := toolexectest.NewFakeTool(t, "perldoc", `echo "out:$2"; echo "diag" >&2; exit 0`)
	runner := toolexec.NewExecRunner()

	res, err := runner.Run(context.Background(), tool.Path, "-f", "print")
	require.NoError(t, err)

	assert.Equal(t, "out:print\n", string(res.Stdout))
	assert.Equal(t, "diag\n", string(res.Stderr))
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.HasOutput())
	assert.Equal(t, []string{"-f print"}, tool.Invocations(t))
}

func TestExecRunner_Run_NonZeroExit(t *testing.T) {
	tool := toolexectest.NewFakeTool(t, "perlcritic", `echo "partial"; echo "bad things" >&2; exit 3`)
	runner := toolexec.NewExecRunner()

	res, err := runner.Run(context.Background(), tool.Path, "--severity", "5", "x.pl")
	require.Error(t, err)
	assert.ErrorIs(t, err, toolexec.ErrNonZeroExit)

	var cmdErr *toolexec.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "bad things", cmdErr.Stderr)
	assert.Equal(t, "bad things", toolexec.ExtractStderr(err))

	require.NotNil(t, res, "result is returned alongside a non-zero exit")
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "partial\n", string(res.Stdout))
}

func TestExecRunner_Run_Timeout(t *testing.T) {
	tool := toolexectest.NewFakeTool(t, "perldoc", `sleep 10; echo late`)
	runner := toolexec.NewExecRunner(toolexec.WithTimeout(200 * time.Millisecond))

	start := time.Now()
	res, err := runner.Run(context.Background(), tool.Path, "-q", "slow")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, toolexec.ErrTimeout)
	assert.Less(t, elapsed, 5*time.Second, "timed-out process group should be killed promptly")
	require.NotNil(t, res)
	assert.Empty(t, res.Stdout)
}

func TestExecRunner_Run_ParentCancelled(t *testing.T) {
	tool := toolexectest.NewFakeTool(t, "perldoc", `sleep 10`)
	runner := toolexec.NewExecRunner(toolexec.WithTimeout(30 * time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := runner.Run(ctx, tool.Path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecRunner_Run_WithEnv(t *testing.T) {
	tool := toolexectest.NewFakeTool(t, "envtool", `echo "$PERLCRITIC|$PERL5LIB"`)
	runner := toolexec.NewExecRunner(
		toolexec.WithEnv("PERLCRITIC=/etc/perlcriticrc"),
		toolexec.WithEnv("PERL5LIB=/opt/lib"),
	)

	res, err := runner.Run(context.Background(), tool.Path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/perlcriticrc|/opt/lib\n", string(res.Stdout))
}

func TestCommandError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *toolexec.CommandError
		want string
	}{
		{
			name: "with stderr",
			err:  toolexec.NewCommandError("perldoc -f x", 1, "  No documentation  \n", toolexec.ErrNonZeroExit),
			want: "perldoc -f x (exit 1): tool exited with non-zero status: No documentation",
		},
		{
			name: "without stderr",
			err:  toolexec.NewCommandError("perldoc -f x", -1, "", toolexec.ErrTimeout),
			want: "perldoc -f x (exit -1): tool timeout",
		},
		{
			name: "bare",
			err:  toolexec.NewCommandError("perldoc", 2, "", nil),
			want: "perldoc (exit 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "perldoc", toolexec.CommandLine("perldoc"))
	assert.Equal(t, "perldoc -f print", toolexec.CommandLine("perldoc", "-f", "print"))
}

func TestExtractStderr_NoCommandError(t *testing.T) {
	assert.Empty(t, toolexec.ExtractStderr(errors.New("plain")))
	assert.Empty(t, toolexec.ExtractStderr(nil))
}
