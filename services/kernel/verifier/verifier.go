// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package verifier classifies completions into reward tiers.
//
// A completion is judged by the lowercase hex Keccak-256 digest of
// fragment || completion. Classification is pure: it reads no stored state
// and ignores the puzzle's difficulty marker.
//
// # Tiers
//
//	digest contains "73697866697665"  -> Super,  65000 base units
//	digest contains "65"              -> Normal, 650 base units
//	otherwise                         -> Rejected
//
// The Super pattern also contains "65", so it is tested first.
package verifier

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// SuperPattern is "sixfive" spelled in hex.
	SuperPattern = "73697866697665"

	// NormalPattern is the fallback hit.
	NormalPattern = "65"

	// SuperReward is the Super tier reward in base units.
	SuperReward uint64 = 65000

	// NormalReward is the Normal tier reward in base units.
	NormalReward uint64 = 650
)

// ErrCompletionLacksResonance indicates the digest matched neither pattern.
var ErrCompletionLacksResonance = errors.New("completion lacks resonance")

// Tier is a reward bucket.
type Tier int

const (
	TierRejected Tier = iota
	TierNormal
	TierSuper
)

func (t Tier) String() string {
	switch t {
	case TierSuper:
		return "super"
	case TierNormal:
		return "normal"
	default:
		return "rejected"
	}
}

// Reward returns the base-unit reward of the tier, zero when rejected.
func (t Tier) Reward() uint64 {
	switch t {
	case TierSuper:
		return SuperReward
	case TierNormal:
		return NormalReward
	default:
		return 0
	}
}

// Result is the outcome of classifying one completion.
type Result struct {
	Tier   Tier
	Reward uint64
	// Hash is the 64 character lowercase hex digest.
	Hash string
}

// Accepted reports whether the completion earned a reward.
func (r Result) Accepted() bool { return r.Tier != TierRejected }

// Keccak256 hashes the concatenation of parts with legacy Keccak-256.
func Keccak256(parts ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Digest returns the hex digest of fragment || completion, byte-exact.
func Digest(fragment, completion string) string {
	sum := Keccak256([]byte(fragment), []byte(completion))
	return hex.EncodeToString(sum[:])
}

// TierOf classifies an already computed hex digest.
func TierOf(digest string) Tier {
	switch {
	case strings.Contains(digest, SuperPattern):
		return TierSuper
	case strings.Contains(digest, NormalPattern):
		return TierNormal
	default:
		return TierRejected
	}
}

// Classify judges a completion against a fragment.
//
// Outputs:
//
//	Result - Always populated with the digest, even on rejection.
//	error - ErrCompletionLacksResonance when rejected.
func Classify(fragment, completion string) (Result, error) {
	digest := Digest(fragment, completion)
	tier := TierOf(digest)
	res := Result{Tier: tier, Reward: tier.Reward(), Hash: digest}
	if tier == TierRejected {
		return res, ErrCompletionLacksResonance
	}
	return res, nil
}
