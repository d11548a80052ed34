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
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrPromptCancelled is returned when the user aborts a prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

// Prompter asks the user for a single line of input.
type Prompter interface {
	Ask(title string, suggestions []string) (string, error)
}

// HuhPrompter prompts on the terminal with huh.
type HuhPrompter struct{}

// Ask shows an input field with tab-completion over suggestions.
func (HuhPrompter) Ask(title string, suggestions []string) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Suggestions(suggestions).
		Value(&value)

	if err := input.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrPromptCancelled
		}
		return "", err
	}
	return strings.TrimSpace(value), nil
}
