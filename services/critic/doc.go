// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package critic runs perlcritic and turns its output into diagnostics.
//
// perlcritic prints one violation per line. Most lines carry a position:
//
//	Code before strictures are enabled at line 3, column 1.  See page 429 of PBP.  (Severity: 5)
//
// which becomes
//
//	Diagnostic{Line: 3, Column: 1, Message: "Code before strictures are enabled. See page 429 of PBP. (Severity: 5)"}
//
// Lines without a position (tool warnings, syntax errors) are kept whole at
// line 1, column 1. Diagnostics are stably sorted by (line, column).
//
// # Exit Status
//
// perlcritic exits 2 whenever it reports violations, so the exit status is
// not treated as failure. A non-zero exit with diagnostics on stdout is a
// normal result; a non-zero exit with nothing on stdout is ErrLinterFailed.
//
// # Severity
//
//	| Level | Name   | Reports                 |
//	|-------|--------|-------------------------|
//	| 1     | brutal | every policy            |
//	| 2     | cruel  | severity 2 and above    |
//	| 3     | harsh  | severity 3 and above    |
//	| 4     | stern  | severity 4 and above    |
//	| 5     | gentle | most serious only       |
//
// # Usage
//
//	runner := critic.NewRunner(toolexec.NewExecRunner())
//
//	result, err := runner.RunLint(ctx, "lib/Foo.pm", "3=harsh")
//	if err != nil {
//	    // ErrInvalidSeverity, ErrFileNotAssociated, ErrToolUnavailable
//	}
//	for _, d := range result.Diagnostics {
//	    fmt.Println(d.Location(result.FilePath), d.Message)
//	}
//
// # Thread Safety
//
// Runner is safe for concurrent use.
package critic
