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
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/perlkit/pkg/ux"
	"github.com/AleutianAI/perlkit/services/perldoc"
	"github.com/AleutianAI/perlkit/services/telemetry"
)

// NoInformationMessage is printed when every lookup mode failed.
const NoInformationMessage = "No information available"

type helpOptions struct {
	modes    []string
	parallel bool
	json     bool
}

func newHelpCmd(a *app) *cobra.Command {
	var opts helpOptions

	cmd := &cobra.Command{
		Use:     "help [term...]",
		Aliases: []string{"doc"},
		Short:   "Show Perl documentation for a function, variable, module or FAQ topic",
		Long: `Looks the term up with perldoc, trying in order:

  perldoc -f TERM    built-in function
  perldoc -v TERM    predefined variable
  perldoc TERM       module or documentation page
  perldoc -q TERM    FAQ keyword search

The first lookup that succeeds is printed. Use "perlkit --help" for usage.`,
		Example: `  perlkit help push
  perlkit help '$_' --mode v
  perlkit doc List::Util --json`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return perldoc.Topics(toComplete), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHelp(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.modes, "mode", nil, "restrict lookups: f, v, general, q (repeatable)")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "run all lookups at once")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")
	return cmd
}

func (a *app) runHelp(cmd *cobra.Command, args []string, opts helpOptions) error {
	start := time.Now()

	modes := make([]perldoc.Mode, 0, len(opts.modes))
	for _, raw := range opts.modes {
		m, err := perldoc.ParseMode(raw)
		if err != nil {
			return err
		}
		modes = append(modes, m)
	}

	terms := args
	if len(terms) == 0 && !opts.json && a.interactive() {
		term, err := a.prompter.Ask("Perl documentation for", perldoc.Topics(""))
		if errors.Is(err, ux.ErrPromptCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		terms = []string{term}
	}
	if len(terms) == 0 {
		terms = []string{""}
	}

	svc := perldoc.NewService(
		a.newRunner(a.cfg.Perldoc.Timeout, a.cfg.Perldoc.Env),
		perldoc.WithCommand(a.cfg.Perldoc.Command),
		perldoc.WithParallel(opts.parallel),
		perldoc.WithCache(perldoc.NewMemoryCache()),
	)

	results := make([]*perldoc.LookupResult, 0, len(terms))
	for _, term := range terms {
		res, err := svc.Lookup(cmd.Context(), perldoc.LookupRequest{Term: term, Modes: modes})
		if err != nil {
			if opts.json {
				a.writeFailure(cmd, start, err)
			}
			return err
		}
		results = append(results, res)
	}

	if opts.json {
		result := a.newCommandResult("help", telemetry.TraceID(cmd.Context()), start)
		result.Success = true
		if len(results) == 1 {
			result.Data = results[0]
		} else {
			result.Data = results
		}
		return OutputJSON(a.stdout, result, false)
	}

	for i, res := range results {
		if len(results) > 1 {
			if i > 0 {
				a.printer.Line("")
			}
			a.printer.Title(res.Term)
		}
		if !res.Found {
			a.printer.Notice(NoInformationMessage)
			continue
		}
		a.printer.Line(res.Text())
	}
	return nil
}

// writeFailure emits a JSON envelope for a fatal error; the error itself
// still goes to stderr.
func (a *app) writeFailure(cmd *cobra.Command, start time.Time, err error) {
	result := a.newCommandResult(cmd.Name(), telemetry.TraceID(cmd.Context()), start)
	result.Error = err.Error()
	_ = OutputJSON(a.stdout, result, false)
}
