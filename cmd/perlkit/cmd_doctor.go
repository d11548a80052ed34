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
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/AleutianAI/perlkit/services/critic"
	"github.com/AleutianAI/perlkit/services/telemetry"
	"github.com/AleutianAI/perlkit/services/toolexec"
)

// MinPerlcriticVersion is the oldest perlcritic known to print
// "at line N, column M" for every policy.
const MinPerlcriticVersion = "v1.126"

// versionPattern finds the first dotted version in tool output, e.g.
// "1.148" or "perldoc v3.2801, under perl v5.36.0".
var versionPattern = regexp.MustCompile(`v?(\d+)\.(\d+)(?:\.(\d+))?`)

// ToolCheck is the doctor report for one external tool.
type ToolCheck struct {
	Name       string `json:"name"`
	Command    string `json:"command"`
	Path       string `json:"path,omitempty"`
	Version    string `json:"version,omitempty"`
	Available  bool   `json:"available"`
	Supported  bool   `json:"supported"`
	MinVersion string `json:"min_version,omitempty"`
	Error      string `json:"error,omitempty"`
}

// DoctorReport is the output of "perlkit doctor".
type DoctorReport struct {
	ConfigSource string      `json:"config_source,omitempty"`
	Severity     string      `json:"default_severity"`
	Tools        []ToolCheck `json:"tools"`
}

func newDoctorCmd(a *app) *cobra.Command {
	var asJSON, showConfig bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that perldoc and perlcritic are installed and usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd, asJSON, showConfig)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&showConfig, "show-config", false, "print the effective configuration as YAML")
	return cmd
}

func (a *app) runDoctor(cmd *cobra.Command, asJSON, showConfig bool) error {
	start := time.Now()

	sev, err := critic.ParseSeverity(a.cfg.Critic.Severity)
	if err != nil {
		return err
	}
	report := DoctorReport{
		ConfigSource: a.cfg.Source,
		Severity:     severityLabel(sev),
		Tools: []ToolCheck{
			checkTool(cmd.Context(), a.newRunner(a.cfg.Perldoc.Timeout, a.cfg.Perldoc.Env), "perldoc", a.cfg.Perldoc.Command, "", "-V"),
			checkTool(cmd.Context(), a.newRunner(a.cfg.Critic.Timeout, a.cfg.Critic.Env), "perlcritic", a.cfg.Critic.Command, MinPerlcriticVersion, "--version"),
		},
	}

	missing := 0
	for _, t := range report.Tools {
		if !t.Available || !t.Supported {
			missing++
			a.logger.Warn("Tool check failed",
				slog.String("tool", t.Name),
				slog.String("command", t.Command),
				slog.String("error", t.Error),
			)
		}
	}

	if asJSON {
		result := a.newCommandResult("doctor", telemetry.TraceID(cmd.Context()), start)
		result.Success = missing == 0
		result.Data = report
		if err := OutputJSON(a.stdout, result, false); err != nil {
			return err
		}
	} else {
		source := report.ConfigSource
		if source == "" {
			source = "built-in defaults"
		}
		a.printer.Title("perlkit " + version)
		a.printer.Notice("config: " + source)
		a.printer.Notice("default severity: " + report.Severity)
		for _, t := range report.Tools {
			a.printer.Status(t.Available && t.Supported, t.Name, describeCheck(t))
		}
		if showConfig {
			data, err := a.cfg.Marshal()
			if err != nil {
				return err
			}
			a.printer.Box("effective config", strings.TrimRight(string(data), "\n"))
		}
	}

	if missing > 0 {
		return &exitError{code: CLIExitError, err: fmt.Errorf("%d tool(s) unavailable or unsupported", missing)}
	}
	return nil
}

// checkTool resolves a tool and reads its version.
func checkTool(ctx context.Context, runner toolexec.Runner, name, command, minVersion string, versionArgs ...string) ToolCheck {
	check := ToolCheck{Name: name, Command: command, MinVersion: minVersion}

	path, err := runner.LookPath(command)
	if err != nil {
		check.Error = err.Error()
		return check
	}
	check.Path = path
	check.Available = true
	check.Supported = true

	res, err := runner.Run(ctx, command, versionArgs...)
	if res == nil {
		if err != nil {
			check.Error = err.Error()
		}
		return check
	}
	check.Version = extractVersion(string(res.Stdout) + string(res.Stderr))

	if minVersion != "" && check.Version != "" && semver.Compare(check.Version, minVersion) < 0 {
		check.Supported = false
		check.Error = fmt.Sprintf("version %s is older than %s", check.Version, minVersion)
	}
	return check
}

// extractVersion returns the first version in out in semver form, or "".
func extractVersion(out string) string {
	m := versionPattern.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	v := "v" + m[1] + "." + m[2]
	if m[3] != "" {
		v += "." + m[3]
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

func describeCheck(t ToolCheck) string {
	switch {
	case !t.Available:
		return t.Error
	case t.Error != "":
		return t.Path + "  " + t.Error
	case t.Version != "":
		return t.Path + "  " + t.Version
	default:
		return t.Path
	}
}
