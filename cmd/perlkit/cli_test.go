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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/perlkit/pkg/config"
	"github.com/AleutianAI/perlkit/pkg/ux"
	"github.com/AleutianAI/perlkit/services/toolexec/toolexectest"
)

const testPerldoc = `
case "$1" in
  -f) [ "$2" = "push" ] && { echo "    push ARRAY,LIST"; echo "            Adds LIST to the end of ARRAY."; echo; exit 0; } ;;
  -v) [ "$2" = '$_' ] && { echo '    $_      The default input space.'; exit 0; } ;;
  -V) echo "perldoc v3.2801, under perl v5.36.0 for linux"; exit 0 ;;
esac
exit 1
`

const testPerlcritic = `
case "$1" in
  --version) echo "1.148"; exit 0 ;;
esac
case "$3" in
  *clean.pl) echo "$3 source OK"; exit 0 ;;
esac
echo "Later at line 7, column 3.  (Severity: 4)"
echo "No package at line 1, column 1.  (Severity: 4)"
echo "Early   spaced  at line 1, column 9."
echo
echo
exit 2
`

type harness struct {
	app      *app
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	perldoc  *toolexectest.FakeTool
	critic   *toolexectest.FakeTool
	prompter *fakePrompter
}

type fakePrompter struct {
	answer string
	err    error
	asked  int
}

func (f *fakePrompter) Ask(string, []string) (string, error) {
	f.asked++
	return f.answer, f.err
}

// newHarness isolates config and points both tools at fake scripts.
func newHarness(t *testing.T) *harness {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	t.Setenv(config.EnvSeverity, "")
	t.Setenv(config.EnvLogLevel, "")

	h := &harness{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		perldoc:  toolexectest.NewFakeTool(t, "perldoc", testPerldoc),
		critic:   toolexectest.NewFakeTool(t, "perlcritic", testPerlcritic),
		prompter: &fakePrompter{},
	}
	t.Setenv(config.EnvPerldoc, h.perldoc.Path)
	t.Setenv(config.EnvPerlcritic, h.critic.Path)

	h.app = newApp(nil, h.stdout, h.stderr)
	h.app.interactive = func() bool { return false }
	h.app.prompter = h.prompter
	return h
}

func (h *harness) run(args ...string) int {
	return run(context.Background(), h.app, args)
}

// =============================================================================
// help
// =============================================================================

func TestHelp_Found(t *testing.T) {
	h := newHarness(t)

	code := h.run("help", "push")
	assert.Equal(t, CLIExitSuccess, code, h.stderr.String())
	assert.Equal(t, "    push ARRAY,LIST\n            Adds LIST to the end of ARRAY.\n", h.stdout.String())
	assert.Equal(t, []string{"-f push"}, h.perldoc.Invocations(t))
}

func TestHelp_VariableAfterFunctionFails(t *testing.T) {
	h := newHarness(t)

	code := h.run("doc", "$_")
	assert.Equal(t, CLIExitSuccess, code)
	assert.Equal(t, "    $_      The default input space.\n", h.stdout.String())
	assert.Equal(t, []string{"-f $_", "-v $_"}, h.perldoc.Invocations(t))
}

func TestHelp_NotFoundIsInformational(t *testing.T) {
	h := newHarness(t)

	code := h.run("help", "nosuchthing")
	assert.Equal(t, CLIExitSuccess, code)
	assert.Equal(t, NoInformationMessage+"\n", h.stdout.String())
	assert.Empty(t, h.stderr.String())
	assert.Len(t, h.perldoc.Invocations(t), 4)
}

func TestHelp_NoTermWithoutTerminal(t *testing.T) {
	h := newHarness(t)

	code := h.run("help")
	assert.Equal(t, CLIExitSuccess, code)
	assert.Equal(t, NoInformationMessage+"\n", h.stdout.String())
	assert.Empty(t, h.perldoc.Invocations(t))
	assert.Zero(t, h.prompter.asked)
}

func TestHelp_PromptsOnTerminal(t *testing.T) {
	h := newHarness(t)
	h.app.interactive = func() bool { return true }
	h.prompter.answer = "push"

	code := h.run("help")
	assert.Equal(t, CLIExitSuccess, code)
	assert.Equal(t, 1, h.prompter.asked)
	assert.Contains(t, h.stdout.String(), "push ARRAY,LIST")
}

func TestHelp_PromptCancelled(t *testing.T) {
	h := newHarness(t)
	h.app.interactive = func() bool { return true }
	h.prompter.err = ux.ErrPromptCancelled

	assert.Equal(t, CLIExitSuccess, h.run("help"))
	assert.Empty(t, h.stdout.String())
}

func TestHelp_ModeRestriction(t *testing.T) {
	h := newHarness(t)

	code := h.run("help", "push", "--mode", "q,general")
	assert.Equal(t, CLIExitSuccess, code)
	assert.Equal(t, NoInformationMessage+"\n", h.stdout.String())
	assert.Equal(t, []string{"push", "-q push"}, h.perldoc.Invocations(t))
}

func TestHelp_UnknownMode(t *testing.T) {
	h := newHarness(t)

	code := h.run("help", "push", "--mode", "x")
	assert.Equal(t, CLIExitError, code)
	assert.Contains(t, h.stderr.String(), "Error: unknown lookup mode")
}

func TestHelp_MultipleTerms(t *testing.T) {
	h := newHarness(t)

	code := h.run("help", "push", "nosuchthing")
	assert.Equal(t, CLIExitSuccess, code)
	out := h.stdout.String()
	assert.Contains(t, out, "== push ==")
	assert.Contains(t, out, "== nosuchthing ==\n"+NoInformationMessage)
}

func TestHelp_JSON(t *testing.T) {
	h := newHarness(t)

	code := h.run("help", "push", "--json")
	require.Equal(t, CLIExitSuccess, code)

	var result struct {
		CommandResult
		Data struct {
			Term  string   `json:"term"`
			Found bool     `json:"found"`
			Mode  string   `json:"mode"`
			Lines []string `json:"lines"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "help", result.Command)
	assert.Equal(t, APIVersion, result.APIVersion)
	_, err := uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.True(t, result.Data.Found)
	assert.Equal(t, "function", result.Data.Mode)
}

func TestRunIDSharedByEnvelopeAndLogs(t *testing.T) {
	h := newHarness(t)

	code := h.run("--log-json", "--log-level", "debug", "help", "push", "--json")
	require.Equal(t, CLIExitSuccess, code, h.stderr.String())

	var result CommandResult
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &result))
	require.NotEmpty(t, result.RunID)

	var records int
	for _, line := range strings.Split(strings.TrimSpace(h.stderr.String()), "\n") {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record), line)
		assert.Equal(t, result.RunID, record["run_id"], line)
		records++
	}
	assert.Positive(t, records)
}

func TestHelp_ToolEnvFromConfig(t *testing.T) {
	h := newHarness(t)
	tool := toolexectest.NewFakeTool(t, "perldoc", `[ "$1" = "-f" ] && { echo "lib=$PERL5LIB"; exit 0; }; exit 1`)
	t.Setenv(config.EnvPerldoc, tool.Path)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("perldoc:\n  env:\n    - PERL5LIB=/opt/perl/lib\n"), 0o644))

	code := h.run("--config", cfgPath, "help", "push")
	require.Equal(t, CLIExitSuccess, code, h.stderr.String())
	assert.Equal(t, "lib=/opt/perl/lib\n", h.stdout.String())
}

func TestHelp_ToolUnavailable(t *testing.T) {
	h := newHarness(t)
	t.Setenv(config.EnvPerldoc, "perlkit-missing-perldoc-7d0a")

	code := h.run("help", "push")
	assert.Equal(t, CLIExitError, code)
	assert.True(t, strings.HasPrefix(h.stderr.String(), "Error: "))
	assert.Contains(t, h.stderr.String(), "tool unavailable")
	assert.Empty(t, h.stdout.String())
}

func TestRootHelpFlagStillWorks(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, CLIExitSuccess, h.run("--help"))
	assert.Contains(t, h.stdout.String(), "perlkit help push")
	assert.Empty(t, h.perldoc.Invocations(t))
}

// =============================================================================
// lint
// =============================================================================

func TestLint_SortedText(t *testing.T) {
	h := newHarness(t)

	code := h.run("lint", "lib/Foo.pm", "--severity", "4")
	require.Equal(t, CLIExitSuccess, code, "perlcritic exit 2 is not a failure: %s", h.stderr.String())

	want := "    1:1    No package. (Severity: 4)\n" +
		"    1:9    Early spaced.\n" +
		"    7:3    Later. (Severity: 4)\n"
	assert.Equal(t, want, h.stdout.String())
	assert.Equal(t, []string{"--severity 4 lib/Foo.pm"}, h.critic.Invocations(t))
}

func TestLint_Clean(t *testing.T) {
	h := newHarness(t)

	code := h.run("lint", "clean.pl")
	assert.Equal(t, CLIExitSuccess, code)
	assert.Equal(t, NoIssuesMessage+"\n", h.stdout.String())
	assert.Equal(t, []string{"--severity 5 clean.pl"}, h.critic.Invocations(t), "severity defaults to 5")
}

func TestLint_SeverityWithName(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, CLIExitSuccess, h.run("lint", "clean.pl", "-s", "3=harsh"))
	assert.Equal(t, []string{"--severity 3 clean.pl"}, h.critic.Invocations(t))
}

func TestLint_InvalidSeverity(t *testing.T) {
	for _, sev := range []string{"0", "6", "x=unknown"} {
		t.Run(sev, func(t *testing.T) {
			h := newHarness(t)

			code := h.run("lint", "lib/Foo.pm", "--severity", sev)
			assert.Equal(t, CLIExitError, code)
			assert.Contains(t, h.stderr.String(), "Error: invalid severity")
			assert.Empty(t, h.critic.Invocations(t), "perlcritic must not run")
		})
	}
}

func TestLint_NoFile(t *testing.T) {
	h := newHarness(t)

	code := h.run("lint")
	assert.Equal(t, CLIExitError, code)
	assert.Contains(t, h.stderr.String(), "Error: no file associated")
}

func TestLint_Quickfix(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, CLIExitSuccess, h.run("lint", "a.pl", "--format", "quickfix"))
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a.pl:1:1: No package. (Severity: 4)", lines[0])
	assert.Equal(t, "a.pl:7:3: Later. (Severity: 4)", lines[2])
}

func TestLint_JSONL(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, CLIExitSuccess, h.run("lint", "a.pl", "--format", "jsonl"))
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 3)

	var first diagnosticLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, diagnosticLine{File: "a.pl", Line: 1, Column: 1, Message: "No package. (Severity: 4)"}, first)
}

func TestLint_JSONEnvelope(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, CLIExitSuccess, h.run("lint", "a.pl", "--format", "json"))

	var result struct {
		CommandResult
		Data struct {
			FilePath    string `json:"file_path"`
			Severity    int    `json:"severity"`
			ExitCode    int    `json:"exit_code"`
			Diagnostics []struct {
				Line int `json:"line"`
			} `json:"diagnostics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 5, result.Data.Severity)
	assert.Equal(t, 2, result.Data.ExitCode)
	assert.Len(t, result.Data.Diagnostics, 3)
}

func TestLint_MultipleFiles(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, CLIExitSuccess, h.run("lint", "a.pl", "clean.pl"))
	out := h.stdout.String()
	assert.Contains(t, out, "== a.pl ==")
	assert.Contains(t, out, "== clean.pl ==\n"+NoIssuesMessage)
	assert.Contains(t, out, "3 finding(s) in 2 file(s)")
}

func TestLint_FailOnFindings(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, CLIExitFindings, h.run("lint", "a.pl", "--fail-on-findings"))
	assert.Empty(t, h.stderr.String())

	h = newHarness(t)
	assert.Equal(t, CLIExitSuccess, h.run("lint", "clean.pl", "--fail-on-findings"))
}

func TestLint_UnknownFormat(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, CLIExitError, h.run("lint", "a.pl", "--format", "xml"))
	assert.Empty(t, h.critic.Invocations(t))
}

func TestLint_ToolUnavailable(t *testing.T) {
	h := newHarness(t)
	t.Setenv(config.EnvPerlcritic, "perlkit-missing-perlcritic-2f11")

	assert.Equal(t, CLIExitError, h.run("lint", "a.pl"))
	assert.Contains(t, h.stderr.String(), "tool unavailable")
}

func TestLint_SeverityFromEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv(config.EnvSeverity, "2")

	assert.Equal(t, CLIExitSuccess, h.run("lint", "clean.pl"))
	assert.Equal(t, []string{"--severity 2 clean.pl"}, h.critic.Invocations(t))
}

// =============================================================================
// doctor, version, misc
// =============================================================================

func TestDoctor_AllPresent(t *testing.T) {
	h := newHarness(t)

	code := h.run("doctor")
	assert.Equal(t, CLIExitSuccess, code, h.stderr.String())
	out := h.stdout.String()
	assert.Contains(t, out, "built-in defaults")
	assert.Contains(t, out, "v3.2801.0")
	assert.Contains(t, out, "v1.148.0")
}

func TestDoctor_MissingTool(t *testing.T) {
	h := newHarness(t)
	t.Setenv(config.EnvPerlcritic, "perlkit-missing-perlcritic-2f11")

	code := h.run("doctor", "--json")
	assert.Equal(t, CLIExitError, code)

	var result struct {
		CommandResult
		Data DoctorReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &result))
	assert.False(t, result.Success)
	require.Len(t, result.Data.Tools, 2)
	assert.True(t, result.Data.Tools[0].Available)
	assert.False(t, result.Data.Tools[1].Available)
}

func TestDoctor_ShowConfig(t *testing.T) {
	h := newHarness(t)

	code := h.run("doctor", "--show-config", "--color", "never")
	assert.Equal(t, CLIExitSuccess, code, h.stderr.String())
	out := h.stdout.String()
	assert.Contains(t, out, "== effective config ==")
	assert.Contains(t, out, "command: "+h.critic.Path)
	assert.Contains(t, out, "severity: 5")
}

func TestExtractVersion(t *testing.T) {
	assert.Equal(t, "v1.148.0", extractVersion("1.148\n"))
	assert.Equal(t, "v3.2801.0", extractVersion("perldoc v3.2801, under perl v5.36.0"))
	assert.Equal(t, "v5.36.1", extractVersion("This is perl 5, version 36 ... v5.36.1"))
	assert.Empty(t, extractVersion("no digits"))
}

func TestVersion(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, CLIExitSuccess, h.run("version"))
	assert.Equal(t, "perlkit dev (none)\n", h.stdout.String())
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, CLIExitError, h.run("frobnicate"))
	assert.Contains(t, h.stderr.String(), "Error: unknown command")
}

func TestBadConfigIsFatal(t *testing.T) {
	h := newHarness(t)

	code := h.run("--config", filepath.Join(t.TempDir(), "missing.yaml"), "help", "push")
	assert.Equal(t, CLIExitError, code)
	assert.Empty(t, h.perldoc.Invocations(t))
}
