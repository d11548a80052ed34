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
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/perlkit/services/critic"
	"github.com/AleutianAI/perlkit/services/telemetry"
)

// NoIssuesMessage is printed for a clean file.
const NoIssuesMessage = "No issues found"

// Output formats for lint.
const (
	formatText     = "text"
	formatJSON     = "json"
	formatJSONL    = "jsonl"
	formatQuickfix = "quickfix"
)

type lintOptions struct {
	severity       string
	format         string
	watch          bool
	failOnFindings bool
}

// diagnosticLine is one record of the jsonl format.
type diagnosticLine struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

func newLintCmd(a *app) *cobra.Command {
	var opts lintOptions

	cmd := &cobra.Command{
		Use:   "lint <path>...",
		Short: "Run perlcritic and print its diagnostics sorted by position",
		Long: `Runs "perlcritic --severity N <path>" and prints one diagnostic per
line, sorted by line then column. Messages without a position are listed
at 1:1. perlcritic's exit status is ignored; a file with no diagnostics
prints "No issues found".

Severity is 1 (brutal) to 5 (gentle). "3" and "3=harsh" are both accepted.`,
		Example: `  perlkit lint lib/Foo.pm --severity 3
  perlkit lint bin/*.pl --format quickfix
  perlkit lint script.pl --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLint(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.severity, "severity", "s", "", "severity 1-5 (default from config, 5)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, json, jsonl, quickfix")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-lint when the files change")
	cmd.Flags().BoolVar(&opts.failOnFindings, "fail-on-findings", false, "exit 1 when diagnostics are reported")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{formatText, formatJSON, formatJSONL, formatQuickfix}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("severity", cobra.FixedCompletions(
		[]string{"1\tbrutal", "2\tcruel", "3\tharsh", "4\tstern", "5\tgentle"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func (a *app) runLint(cmd *cobra.Command, paths []string, opts lintOptions) error {
	start := time.Now()

	switch opts.format {
	case formatText, formatJSON, formatJSONL, formatQuickfix:
	default:
		return fmt.Errorf("unknown format %q (want text, json, jsonl or quickfix)", opts.format)
	}

	var raw any = a.cfg.Critic.Severity
	if opts.severity != "" {
		raw = opts.severity
	}
	severity, err := critic.ParseSeverity(raw)
	if err != nil {
		return a.lintFailure(cmd, opts, start, err)
	}

	runner := critic.NewRunner(
		a.newRunner(a.cfg.Critic.Timeout, a.cfg.Critic.Env),
		critic.WithCommand(a.cfg.Critic.Command),
		critic.WithExtraArgs(a.cfg.Critic.ExtraArgs...),
		critic.WithWatchInterval(a.cfg.Critic.WatchInterval),
	)

	if opts.watch {
		return a.watchLint(cmd, runner, paths, severity, opts)
	}

	var results []*critic.LintResult
	if len(paths) == 1 {
		res, lerr := runner.Lint(cmd.Context(), critic.LintRequest{FilePath: paths[0], Severity: severity})
		if lerr != nil {
			return a.lintFailure(cmd, opts, start, lerr)
		}
		results = []*critic.LintResult{res}
	} else {
		results, err = runner.LintFiles(cmd.Context(), paths, severity)
		if err != nil {
			return a.lintFailure(cmd, opts, start, err)
		}
	}

	if err := a.writeLintResults(cmd, results, opts, start); err != nil {
		return err
	}

	if opts.failOnFindings {
		for _, res := range results {
			if !res.Clean() {
				return &exitError{code: CLIExitFindings}
			}
		}
	}
	return nil
}

func (a *app) lintFailure(cmd *cobra.Command, opts lintOptions, start time.Time, err error) error {
	if opts.format == formatJSON {
		a.writeFailure(cmd, start, err)
	}
	return err
}

// watchLint prints every re-lint until the command context is cancelled.
func (a *app) watchLint(cmd *cobra.Command, runner *critic.Runner, paths []string, severity critic.Severity, opts lintOptions) error {
	if opts.format == formatText {
		a.printer.Notice(fmt.Sprintf("Watching %d file(s) at severity %d (%s). Press Ctrl+C to stop.",
			len(paths), int(severity), severity))
	}
	return runner.Watch(cmd.Context(), paths, severity, func(res *critic.LintResult, err error) {
		if err != nil {
			slog.WarnContext(cmd.Context(), "Lint failed", slog.String("error", err.Error()))
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return
		}
		if werr := a.writeLintResults(cmd, []*critic.LintResult{res}, opts, time.Now()); werr != nil {
			slog.WarnContext(cmd.Context(), "Writing lint output failed", slog.String("error", werr.Error()))
		}
	})
}

func (a *app) writeLintResults(cmd *cobra.Command, results []*critic.LintResult, opts lintOptions, start time.Time) error {
	switch opts.format {
	case formatJSON:
		result := a.newCommandResult("lint", telemetry.TraceID(cmd.Context()), start)
		result.Success = true
		if len(results) == 1 {
			result.Data = results[0]
		} else {
			result.Data = results
		}
		return OutputJSON(a.stdout, result, false)

	case formatJSONL:
		for _, res := range results {
			for _, d := range res.Diagnostics {
				line := diagnosticLine{File: res.FilePath, Line: d.Line, Column: d.Column, Message: d.Message}
				if err := OutputJSON(a.stdout, line, true); err != nil {
					return err
				}
			}
		}
		return nil

	case formatQuickfix:
		for _, res := range results {
			for _, d := range res.Diagnostics {
				fmt.Fprintf(a.stdout, "%s: %s\n", d.Location(res.FilePath), d.Message)
			}
		}
		return nil

	default:
		a.writeLintText(results)
		return nil
	}
}

func (a *app) writeLintText(results []*critic.LintResult) {
	multi := len(results) > 1
	total := 0
	for i, res := range results {
		if multi {
			if i > 0 {
				a.printer.Line("")
			}
			a.printer.Title(res.FilePath)
		}
		if res.Clean() {
			a.printer.Success(NoIssuesMessage)
			continue
		}
		for _, d := range res.Diagnostics {
			a.printer.Finding(d.Line, d.Column, d.Message)
		}
		total += res.Count()
	}
	if multi && total > 0 {
		a.printer.Summary(len(results), total)
	}
}

// severityLabel formats a severity for doctor output.
func severityLabel(s critic.Severity) string {
	return strconv.Itoa(int(s)) + " (" + s.String() + ")"
}
