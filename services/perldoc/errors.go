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
	"errors"

	"github.com/AleutianAI/perlkit/services/toolexec"
)

// Sentinel errors for the perldoc package.
var (
	// ErrToolUnavailable indicates perldoc was not found in PATH.
	ErrToolUnavailable = toolexec.ErrToolUnavailable

	// ErrUnknownMode indicates an unrecognised lookup mode name.
	ErrUnknownMode = errors.New("unknown lookup mode")

	// ErrInvalidInput indicates invalid input to a lookup function.
	ErrInvalidInput = errors.New("invalid input")
)
