// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package perldoc looks up Perl documentation with the perldoc tool.
//
// A lookup tries four perldoc modes in a fixed priority order and keeps
// the first one that exits successfully:
//
//	| Priority | Mode     | Invocation          |
//	|----------|----------|---------------------|
//	| 1        | function | perldoc -f <term>   |
//	| 2        | variable | perldoc -v <term>   |
//	| 3        | general  | perldoc <term>      |
//	| 4        | faq      | perldoc -q <term>   |
//
// Blank terms are a no-op. A missing perldoc binary is the only fatal
// condition; timeouts and non-zero exits just move on to the next mode.
//
// # Usage
//
//	svc := perldoc.NewService(toolexec.NewExecRunner())
//	result, err := svc.Lookup(ctx, perldoc.LookupRequest{Term: "push"})
//	if err != nil {
//	    // perldoc not installed
//	}
//	if result.Found {
//	    fmt.Println(result.Mode, result.Text())
//	}
package perldoc
