// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// PersonalityLevel defines how richly terminal output is rendered.
type PersonalityLevel string

const (
	// PersonalityRich enables colors and icons.
	PersonalityRich PersonalityLevel = "rich"

	// PersonalityMachine outputs plain text suitable for scripting and parsing.
	PersonalityMachine PersonalityLevel = "machine"
)

// ParsePersonalityLevel converts a --color value to a PersonalityLevel.
//
// "always" and "rich" force colors, "never" and "machine" disable them,
// anything else ("auto", "") detects from out.
func ParsePersonalityLevel(s string, out *os.File) PersonalityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always", "rich", "color":
		return PersonalityRich
	case "never", "machine", "plain", "none":
		return PersonalityMachine
	default:
		return DetectPersonality(out)
	}
}

// DetectPersonality picks rich output for terminals unless NO_COLOR is set
// or TERM is "dumb".
func DetectPersonality(out *os.File) PersonalityLevel {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return PersonalityMachine
	}
	if out == nil || !isTerminal(out) {
		return PersonalityMachine
	}
	return PersonalityRich
}

// IsInteractive returns true if f is a terminal a user can type into.
func IsInteractive(f *os.File) bool {
	return f != nil && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
