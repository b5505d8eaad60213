// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package verifier

import (
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeccak256_KnownVector(t *testing.T) {
	sum := Keccak256()
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(sum[:]))
}

func TestDigest_Concatenates(t *testing.T) {
	assert.Equal(t, Digest("XEN", "42"), Digest("XEN4", "2"))
	assert.Equal(t, Digest("", "XEN42"), Digest("XEN42", ""))
	assert.NotEqual(t, Digest("XEN", "42"), Digest("xen", "42"))
	assert.Len(t, Digest("XEN", "42"), 64)
}

func TestTierOf(t *testing.T) {
	pad := func(s string) string { return s + strings.Repeat("0", 64-len(s)) }

	tests := []struct {
		name   string
		digest string
		want   Tier
	}{
		{"super wins over normal", pad("65" + SuperPattern), TierSuper},
		{"super anywhere", strings.Repeat("0", 50) + SuperPattern, TierSuper},
		{"normal", pad("abc65"), TierNormal},
		{"split across nibbles still counts", pad("0650"), TierNormal},
		{"rejected", strings.Repeat("0", 64), TierRejected},
		{"56 is not 65", pad("56"), TierRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierOf(tt.digest))
		})
	}
}

func TestClassify_XEN42(t *testing.T) {
	res, err := Classify("XEN", "42")
	digest := Digest("XEN", "42")
	assert.Equal(t, digest, res.Hash)

	switch {
	case strings.Contains(digest, SuperPattern):
		require.NoError(t, err)
		assert.Equal(t, SuperReward, res.Reward)
	case strings.Contains(digest, NormalPattern):
		require.NoError(t, err)
		assert.Equal(t, TierNormal, res.Tier)
		assert.Equal(t, NormalReward, res.Reward)
	default:
		assert.ErrorIs(t, err, ErrCompletionLacksResonance)
		assert.False(t, res.Accepted())
	}
}

// TestClassify_Properties walks a range of completions and checks each
// against the tier rules directly.
func TestClassify_Properties(t *testing.T) {
	var rejected, normal int
	for i := 0; i < 2000; i++ {
		completion := "c" + strconv.Itoa(i)
		res, err := Classify("fragment", completion)
		digest := Digest("fragment", completion)

		switch {
		case strings.Contains(digest, SuperPattern):
			require.NoError(t, err)
			assert.Equal(t, TierSuper, res.Tier)
			assert.Equal(t, SuperReward, res.Reward)
		case strings.Contains(digest, NormalPattern):
			normal++
			require.NoError(t, err)
			assert.Equal(t, TierNormal, res.Tier)
			assert.Equal(t, NormalReward, res.Reward)
		default:
			rejected++
			assert.ErrorIs(t, err, ErrCompletionLacksResonance)
			assert.Equal(t, TierRejected, res.Tier)
			assert.Zero(t, res.Reward)
		}
	}
	// A 64 char digest misses "65" roughly 78% of the time; both branches
	// must be exercised by 2000 samples.
	assert.Positive(t, rejected)
	assert.Positive(t, normal)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "super", TierSuper.String())
	assert.Equal(t, "normal", TierNormal.String())
	assert.Equal(t, "rejected", TierRejected.String())
}
