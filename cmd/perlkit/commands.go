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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/perlkit/pkg/config"
	"github.com/AleutianAI/perlkit/pkg/logging"
	"github.com/AleutianAI/perlkit/pkg/ux"
	"github.com/AleutianAI/perlkit/services/telemetry"
	"github.com/AleutianAI/perlkit/services/toolexec"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

// skipSetup marks commands that run without loading config.
const skipSetup = "perlkit/skip-setup"

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	configPath      string
	logLevel        string
	logJSON         bool
	logDir          string
	traceExporter   string
	metricExporter  string
	metricsTextfile string
	color           string
}

// app holds the per-invocation state shared by all commands.
type app struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer

	// interactive reports whether the user can be prompted.
	interactive func() bool
	prompter    ux.Prompter

	// newRunner builds the process runner for a tool timeout and
	// extra environment.
	newRunner func(timeout time.Duration, env []string) toolexec.Runner

	// runID identifies this invocation in logs and JSON output.
	runID string

	flags globalFlags
	cfg   config.Config

	// logRoot owns the log file; logger is its run-scoped child.
	logRoot *logging.Logger
	logger  *logging.Logger

	printer   *ux.Printer
	shutdowns []func(context.Context) error
}

func newApp(stdin *os.File, stdout, stderr io.Writer) *app {
	return &app{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		interactive: func() bool { return ux.IsInteractive(stdin) },
		prompter:    ux.HuhPrompter{},
		newRunner: func(timeout time.Duration, env []string) toolexec.Runner {
			return toolexec.NewExecRunner(toolexec.WithTimeout(timeout), toolexec.WithEnv(env...))
		},
		runID: uuid.NewString(),
		cfg:   config.Default(),
	}
}

// run executes one command line and returns the process exit code.
//
// Fatal errors are printed as "Error: ..." on stderr and exit with
// CLIExitError. Informational outcomes exit with CLIExitSuccess.
func run(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	start := time.Now()
	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		a.logger.Info("Command finished",
			slog.Bool("ok", err == nil),
			slog.Duration("duration", time.Since(start)),
		)
	}
	a.close()

	if err == nil {
		return CLIExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return CLIExitError
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "perlkit",
		Short: "Perl documentation lookup and perlcritic diagnostics",
		Long: `perlkit wraps perldoc and perlcritic for scripts and terminals.

  perlkit help push          documentation for a function, variable, page or FAQ
  perlkit lint lib/Foo.pm    perlcritic diagnostics sorted by line and column`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/perlkit/config.yaml)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolVar(&a.flags.logJSON, "log-json", false, "log as JSON on stderr")
	f.StringVar(&a.flags.logDir, "log-dir", "", "also write JSON logs to this directory")
	f.StringVar(&a.flags.traceExporter, "trace-exporter", "", "trace exporter: none, stdout, otlp")
	f.StringVar(&a.flags.metricExporter, "metric-exporter", "", "metric exporter: none, stdout, prometheus")
	f.StringVar(&a.flags.metricsTextfile, "metrics-textfile", "", "prometheus textfile written on exit")
	f.StringVar(&a.flags.color, "color", "auto", "styled output: auto, always, never")

	helpCmd := newHelpCmd(a)
	root.SetHelpCommand(helpCmd)
	root.AddCommand(
		newLintCmd(a),
		newDoctorCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads config and installs logging and telemetry.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = a.flags.logJSON
	}
	if flags.Changed("log-dir") {
		cfg.Log.Dir = a.flags.logDir
	}
	if flags.Changed("trace-exporter") {
		cfg.Telemetry.TraceExporter = a.flags.traceExporter
	}
	if flags.Changed("metric-exporter") {
		cfg.Telemetry.MetricExporter = a.flags.metricExporter
	}
	if flags.Changed("metrics-textfile") {
		cfg.Telemetry.MetricsTextfile = a.flags.metricsTextfile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logRoot = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Log.Dir,
		Service: "perlkit",
		JSON:    cfg.Log.JSON,
		Output:  a.stderr,
	})
	a.logger = a.logRoot.With(slog.String("run_id", a.runID))
	slog.SetDefault(a.logger.Slog())

	shutdown, err := telemetry.Init(cmd.Context(), telemetry.Config{
		ServiceName:     "perlkit",
		ServiceVersion:  version,
		TraceExporter:   cfg.Telemetry.TraceExporter,
		MetricExporter:  cfg.Telemetry.MetricExporter,
		OTLPEndpoint:    cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:    cfg.Telemetry.OTLPInsecure,
		MetricsTextfile: cfg.Telemetry.MetricsTextfile,
		Output:          a.stderr,
	})
	if err != nil {
		return err
	}
	a.shutdowns = append(a.shutdowns, shutdown)

	a.cfg = cfg
	a.printer = ux.NewPrinter(a.stdout, a.personality())

	a.logger.Debug("Configuration loaded",
		slog.String("command", cmd.CommandPath()),
		slog.String("source", cfg.Source),
		slog.String("perldoc", cfg.Perldoc.Command),
		slog.String("perlcritic", cfg.Critic.Command),
	)
	return nil
}

// personality decides styling from --color and stdout.
func (a *app) personality() ux.PersonalityLevel {
	out, _ := a.stdout.(*os.File)
	return ux.ParsePersonalityLevel(a.flags.color, out)
}

// close flushes telemetry and closes the log file.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, fn := range a.shutdowns {
		if err := fn(ctx); err != nil {
			if a.logger != nil {
				a.logger.Error("Telemetry shutdown failed", slog.String("error", err.Error()))
			} else {
				fmt.Fprintf(a.stderr, "Warning: telemetry shutdown: %v\n", err)
			}
		}
	}
	a.shutdowns = nil

	if a.logRoot != nil {
		_ = a.logRoot.Close()
	}
}
