// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package kernel

import (
	"errors"

	"github.com/AleutianAI/memek/services/kernel/issuance"
	"github.com/AleutianAI/memek/services/kernel/ledger"
	"github.com/AleutianAI/memek/services/kernel/records"
	"github.com/AleutianAI/memek/services/kernel/verifier"
)

// Sentinel errors for the program. Each aliases the sentinel of the package
// that produces it, so errors.Is works at either level.
var (
	// ErrCompletionLacksResonance indicates the digest matched no tier.
	ErrCompletionLacksResonance = verifier.ErrCompletionLacksResonance

	// ErrDuplicateRecord indicates a create targeted an occupied slot.
	ErrDuplicateRecord = ledger.ErrDuplicate

	// ErrRecordNotFound indicates a required record does not exist.
	ErrRecordNotFound = ledger.ErrNotFound

	// ErrArithmeticOverflow indicates a counter would wrap.
	ErrArithmeticOverflow = records.ErrArithmeticOverflow

	// ErrIssuance indicates the reward issuer failed.
	ErrIssuance = issuance.ErrIssuance

	// ErrInvalidInput indicates a caller-supplied value is out of bounds.
	ErrInvalidInput = errors.New("invalid input")
)
