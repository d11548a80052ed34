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
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the perlcritic severity threshold. 1 reports the most
// policies, 5 the fewest.
type Severity int

const (
	// SeverityBrutal reports every policy.
	SeverityBrutal Severity = 1

	// SeverityCruel reports severity 2 and above.
	SeverityCruel Severity = 2

	// SeverityHarsh reports severity 3 and above.
	SeverityHarsh Severity = 3

	// SeverityStern reports severity 4 and above.
	SeverityStern Severity = 4

	// SeverityGentle reports only the most serious policies.
	SeverityGentle Severity = 5
)

// DefaultSeverity matches perlcritic's own default.
const DefaultSeverity = SeverityGentle

// Valid reports whether s is in [1,5].
func (s Severity) Valid() bool {
	return s >= SeverityBrutal && s <= SeverityGentle
}

// String returns the perlcritic name of the level.
func (s Severity) String() string {
	switch s {
	case SeverityBrutal:
		return "brutal"
	case SeverityCruel:
		return "cruel"
	case SeverityHarsh:
		return "harsh"
	case SeverityStern:
		return "stern"
	case SeverityGentle:
		return "gentle"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a raw severity into a Severity.
//
// Description:
//
//	Accepts an integer type in [1,5], or a string. A string that is a
//	whole integer is parsed as one ("4", "10"); any other string is judged
//	by its leading character, which must be a digit 1-5 ("3=harsh",
//	"2 cruel"). Everything else is rejected.
//
// Inputs:
//
//	v - int, int64, Severity, or string
//
// Outputs:
//
//	Severity - The parsed level
//	error - ErrInvalidSeverity when out of range or non-numeric
func ParseSeverity(v any) (Severity, error) {
	switch x := v.(type) {
	case Severity:
		return checkSeverity(int64(x), v)
	case int:
		return checkSeverity(int64(x), v)
	case int64:
		return checkSeverity(x, v)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, fmt.Errorf("%w: empty", ErrInvalidSeverity)
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return checkSeverity(n, v)
		}
		if c := s[0]; c >= '1' && c <= '5' {
			return Severity(c - '0'), nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeverity, x)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidSeverity, v)
	}
}

func checkSeverity(n int64, raw any) (Severity, error) {
	if n < int64(SeverityBrutal) || n > int64(SeverityGentle) {
		return 0, fmt.Errorf("%w: %v is outside 1-5", ErrInvalidSeverity, raw)
	}
	return Severity(n), nil
}
