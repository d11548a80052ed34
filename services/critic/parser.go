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
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// positionPattern matches "<prefix> at line <N>, column <M><suffix>".
// "at line" must start the line or follow whitespace.
var positionPattern = regexp.MustCompile(`^(?:(.*?)\s+)?at line (\d+),\s*column (\d+)(.*)$`)

// sourceOKSuffix ends perlcritic's line for a file with no violations.
const sourceOKSuffix = " source OK"

// ParseOutput converts perlcritic output into sorted diagnostics.
//
// Description:
//
//	Each non-blank line becomes one Diagnostic. Lines carrying an
//	"at line N, column M" segment are positioned there and their message
//	is the text around the segment with whitespace collapsed. Other lines,
//	and lines whose position does not fit an int, are kept whole at line 1,
//	column 1. An unpositioned "<file> source OK" line means a clean run and
//	is dropped. The result is stably sorted by (line, column) so equal
//	positions keep output order.
//
// Inputs:
//
//	output - Raw perlcritic stdout
//
// Outputs:
//
//	[]Diagnostic - Sorted diagnostics, empty for clean output
func ParseOutput(output string) []Diagnostic {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	diags := make([]Diagnostic, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		d, positioned := parseLine(line)
		if !positioned && isSourceOK(line) {
			continue
		}
		diags = append(diags, d)
	}

	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.Column, b.Column)
	})
	return diags
}

// parseLine reports whether the line carried a usable position.
func parseLine(line string) (Diagnostic, bool) {
	fallback := Diagnostic{Line: 1, Column: 1, Message: line}

	m := positionPattern.FindStringSubmatch(line)
	if m == nil {
		return fallback, false
	}
	lineNo, err := strconv.Atoi(m[2])
	if err != nil {
		return fallback, false
	}
	col, err := strconv.Atoi(m[3])
	if err != nil {
		return fallback, false
	}

	return Diagnostic{
		Line:    max(lineNo, 1),
		Column:  max(col, 1),
		Message: strings.Join(strings.Fields(m[1]+m[4]), " "),
	}, true
}

func isSourceOK(line string) bool {
	return strings.HasSuffix(strings.TrimRight(line, " \t"), sourceOKSuffix)
}
