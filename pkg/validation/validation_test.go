// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHex32(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"lower", strings.Repeat("ab", 32), false},
		{"upper", strings.Repeat("AB", 32), false},
		{"empty", "", true},
		{"short", strings.Repeat("a", 63), true},
		{"long", strings.Repeat("a", 65), true},
		{"prefixed", "0x" + strings.Repeat("a", 62), true},
		{"non hex", strings.Repeat("g", 64), true},
		{"trailing newline", strings.Repeat("a", 63) + "\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHex32("value", tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeHex32(t *testing.T) {
	out, err := DecodeHex32("seed", "01"+strings.Repeat("00", 30)+"ff")
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), out[0])
	assert.Equal(t, byte(0xff), out[31])

	_, err = DecodeHex32("seed", "zz")
	assert.ErrorContains(t, err, "seed")
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, ValidateText("name", "memek", 1, 32))
	assert.ErrorContains(t, ValidateText("name", "", 1, 32), "cannot be empty")
	assert.Error(t, ValidateText("name", strings.Repeat("x", 33), 1, 32))
	assert.Error(t, ValidateText("name", "ab", 3, 32))
	// Multi-byte runes count as bytes.
	assert.Error(t, ValidateText("name", strings.Repeat("é", 17), 1, 32))
}

type sample struct {
	Text string `validate:"required,maxbytes=4"`
	Key  string `validate:"hex32"`
}

func TestStruct(t *testing.T) {
	key := strings.Repeat("0", 64)

	assert.NoError(t, Struct(&sample{Text: "abcd", Key: key}))
	assert.Error(t, Struct(&sample{Text: "ééé", Key: key}), "six bytes exceed maxbytes=4")
	assert.Error(t, Struct(&sample{Text: "", Key: key}))
	assert.Error(t, Struct(&sample{Text: "a", Key: "nothex"}))
}
