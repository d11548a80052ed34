// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package perldoc

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// MODE
// =============================================================================

// Mode is a perldoc lookup mode. The zero value means "no mode" and is
// only seen on results that were not found.
type Mode int

const (
	// ModeNone is set on results that were not found.
	ModeNone Mode = iota

	// ModeFunction looks up a built-in function (perldoc -f).
	ModeFunction

	// ModeVariable looks up a special variable (perldoc -v).
	ModeVariable

	// ModeGeneral looks up a module or documentation page (perldoc <term>).
	ModeGeneral

	// ModeFaq searches the FAQ questions (perldoc -q).
	ModeFaq
)

// DefaultModes is the fixed priority order of a lookup.
var DefaultModes = []Mode{ModeFunction, ModeVariable, ModeGeneral, ModeFaq}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeFunction:
		return "function"
	case ModeVariable:
		return "variable"
	case ModeGeneral:
		return "general"
	case ModeFaq:
		return "faq"
	default:
		return "none"
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Args returns the perldoc arguments for term in this mode.
func (m Mode) Args(term string) []string {
	switch m {
	case ModeFunction:
		return []string{"-f", term}
	case ModeVariable:
		return []string{"-v", term}
	case ModeFaq:
		return []string{"-q", term}
	default:
		return []string{term}
	}
}

// ParseMode accepts a mode name, its first letter, or the perldoc flag.
//
//	"function", "f", "-f"  -> ModeFunction
//	"variable", "v", "-v"  -> ModeVariable
//	"general", "g", "module" -> ModeGeneral
//	"faq", "q", "-q"       -> ModeFaq
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "function", "func", "f", "-f":
		return ModeFunction, nil
	case "variable", "var", "v", "-v":
		return ModeVariable, nil
	case "general", "g", "module", "page":
		return ModeGeneral, nil
	case "faq", "q", "-q":
		return ModeFaq, nil
	default:
		return ModeNone, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// =============================================================================
// REQUEST / RESULT
// =============================================================================

// LookupRequest asks for documentation on a term.
type LookupRequest struct {
	// Term is the search term. Blank terms make the lookup a no-op.
	Term string

	// Modes restricts the modes tried. Empty means DefaultModes. Modes are
	// always tried in priority order regardless of the order given here.
	Modes []Mode
}

// IsBlank reports whether the term is empty or whitespace only.
func (r LookupRequest) IsBlank() bool {
	return strings.TrimSpace(r.Term) == ""
}

// modes returns the requested modes deduplicated and in priority order.
func (r LookupRequest) modes() []Mode {
	if len(r.Modes) == 0 {
		return DefaultModes
	}
	wanted := make(map[Mode]bool, len(r.Modes))
	for _, m := range r.Modes {
		wanted[m] = true
	}
	out := make([]Mode, 0, len(wanted))
	for _, m := range DefaultModes {
		if wanted[m] {
			out = append(out, m)
		}
	}
	return out
}

// LookupResult is the outcome of a lookup.
type LookupResult struct {
	// Term is the trimmed search term.
	Term string `json:"term"`

	// Found is true when one of the modes succeeded.
	Found bool `json:"found"`

	// Mode is the mode that succeeded; ModeNone when not found.
	Mode Mode `json:"mode,omitempty"`

	// Lines is the documentation text split into lines.
	Lines []string `json:"lines,omitempty"`

	// Attempts is the number of perldoc processes spawned.
	Attempts int `json:"attempts"`

	// Duration is the total lookup time.
	Duration time.Duration `json:"duration"`
}

// Text joins Lines with newlines.
func (r *LookupResult) Text() string {
	return strings.Join(r.Lines, "\n")
}

// splitLines converts tool output into lines, dropping the final newline
// and trailing blank lines.
func splitLines(out []byte) []string {
	text := strings.ReplaceAll(string(out), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
