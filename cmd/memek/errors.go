// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/memek/services/kernel"
	"github.com/AleutianAI/memek/services/kernel/issuance"
	"github.com/AleutianAI/memek/services/kernel/metadata"
	"github.com/AleutianAI/memek/services/kernel/records"
)

// errUsage marks bad command-line input.
var errUsage = errors.New("invalid argument")

// exitMessage turns program errors into something a person can act on.
func exitMessage(err error) string {
	switch {
	case errors.Is(err, issuance.ErrIssuance):
		return fmt.Sprintf("reward issuance failed, nothing was recorded: %v", err)
	case errors.Is(err, kernel.ErrCompletionLacksResonance):
		return "completion lacks resonance: its digest matched no pattern (try `memek mine`)"
	case errors.Is(err, kernel.ErrDuplicateRecord):
		return fmt.Sprintf("already exists: %v", err)
	case errors.Is(err, kernel.ErrRecordNotFound):
		return fmt.Sprintf("not found: %v (initialize the kernel or mint first)", err)
	case errors.Is(err, kernel.ErrArithmeticOverflow):
		return fmt.Sprintf("counter overflow: %v", err)
	default:
		return err.Error()
	}
}

// exitCode is 2 for bad input and 1 for everything else.
func exitCode(err error) int {
	if isUsageError(err) {
		return 2
	}
	return 1
}

func isUsageError(err error) bool {
	return errors.Is(err, errUsage) ||
		errors.Is(err, kernel.ErrInvalidInput) ||
		errors.Is(err, metadata.ErrInvalidMetadata) ||
		errors.Is(err, records.ErrInvalidAddress)
}
