// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation for values that cross the
// API and CLI boundary before they reach the ledger.
//
// Struct validation uses go-playground/validator with two extra tags:
//
//	maxbytes=N  string length in bytes (the stock max tag counts runes)
//	hex32       exactly 64 hex characters, i.e. one 32 byte value
package validation

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Hex32Len is the textual length of a 32 byte value.
const Hex32Len = 64

var hex32Pattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// validate is shared by every caller. Initialized in init() with the custom
// tags.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("maxbytes", validateMaxBytes)
	_ = validate.RegisterValidation("hex32", validateHex32)
}

func validateMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func validateHex32(fl validator.FieldLevel) bool {
	return hex32Pattern.MatchString(fl.Field().String())
}

// Struct validates v against its `validate` tags.
//
// Example:
//
//	if err := validation.Struct(&req); err != nil {
//	    return fmt.Errorf("invalid request: %w", err)
//	}
func Struct(v any) error {
	return validate.Struct(v)
}

// ValidateHex32 checks that s is 64 hex characters.
func ValidateHex32(field, s string) error {
	if s == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if !hex32Pattern.MatchString(s) {
		return fmt.Errorf("invalid %s: want %d hex characters, got %q", field, Hex32Len, s)
	}
	return nil
}

// DecodeHex32 validates and decodes a 32 byte hex value.
func DecodeHex32(field, s string) ([32]byte, error) {
	var out [32]byte
	if err := ValidateHex32(field, s); err != nil {
		return out, err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid %s: %w", field, err)
	}
	copy(out[:], raw)
	return out, nil
}

// ValidateText checks that s is between minBytes and maxBytes long.
func ValidateText(field, s string, minBytes, maxBytes int) error {
	if len(s) < minBytes {
		if minBytes == 1 {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return fmt.Errorf("%s must be at least %d bytes, got %d", field, minBytes, len(s))
	}
	if len(s) > maxBytes {
		return fmt.Errorf("%s must be at most %d bytes, got %d", field, maxBytes, len(s))
	}
	return nil
}
