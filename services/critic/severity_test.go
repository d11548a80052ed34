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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity_Valid(t *testing.T) {
	tests := []struct {
		in   any
		want Severity
	}{
		{1, SeverityBrutal},
		{5, SeverityGentle},
		{int64(4), SeverityStern},
		{SeverityCruel, SeverityCruel},
		{"3", SeverityHarsh},
		{" 2 ", SeverityCruel},
		{"3=harsh", SeverityHarsh},
		{"5 gentle", SeverityGentle},
		{"1brutal", SeverityBrutal},
	}

	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		require.NoError(t, err, "ParseSeverity(%#v)", tt.in)
		assert.Equal(t, tt.want, got, "ParseSeverity(%#v)", tt.in)
	}
}

func TestParseSeverity_Invalid(t *testing.T) {
	for _, in := range []any{0, 6, -1, "0", "6", "10", "x=unknown", "", "  ", "=3", 3.0, nil} {
		_, err := ParseSeverity(in)
		assert.ErrorIs(t, err, ErrInvalidSeverity, "ParseSeverity(%#v)", in)
	}
}

func TestSeverity_String(t *testing.T) {
	names := map[Severity]string{
		SeverityBrutal: "brutal",
		SeverityCruel:  "cruel",
		SeverityHarsh:  "harsh",
		SeverityStern:  "stern",
		SeverityGentle: "gentle",
		0:              "unknown",
		9:              "unknown",
	}
	for sev, want := range names {
		assert.Equal(t, want, sev.String())
	}
}

func TestSeverity_Valid(t *testing.T) {
	assert.False(t, Severity(0).Valid())
	assert.True(t, DefaultSeverity.Valid())
	assert.False(t, Severity(6).Valid())
}
