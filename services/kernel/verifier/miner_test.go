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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidate(t *testing.T) {
	n := uint64(len(Suffixes))
	assert.Equal(t, "gm", Candidate("gm", 0))
	assert.Equal(t, "gm!", Candidate("gm", 1))
	assert.Equal(t, "gm :)", Candidate("gm", n-1))
	assert.Equal(t, "gm1", Candidate("gm", n))
	assert.Equal(t, "gm yo2", Candidate("gm", 2*n+4))
}

func TestMiner_Solve(t *testing.T) {
	var m Miner
	sol, ok := m.Solve("XEN", "gm", DefaultLimit)
	require.True(t, ok)

	assert.Equal(t, Candidate("gm", sol.Index), sol.Completion)
	assert.True(t, sol.Result.Accepted())
	for n := uint64(0); n < sol.Index; n++ {
		_, err := Classify("XEN", Candidate("gm", n))
		assert.ErrorIs(t, err, ErrCompletionLacksResonance, "index %d", n)
	}
}

func TestMiner_Solve_Limit(t *testing.T) {
	var m Miner
	_, ok := m.Solve("XEN", "gm", 0)
	assert.False(t, ok)
}

func TestMiner_SolveParallel_MatchesSequential(t *testing.T) {
	for _, want := range []bool{false, true} {
		m := Miner{WantSuper: want, Workers: 4}
		// Super hits are rare; cap the search so the test stays fast.
		limit := uint64(20000)
		seq, seqOK := m.Solve("XEN", "gm", limit)
		par, parOK, err := m.SolveParallel(context.Background(), "XEN", "gm", limit)
		require.NoError(t, err)
		assert.Equal(t, seqOK, parOK)
		assert.Equal(t, seq, par)
		if want && parOK {
			assert.Equal(t, TierSuper, par.Result.Tier)
		}
	}
}

func TestMiner_SolveParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := Miner{WantSuper: true, Workers: 2}
	_, ok, err := m.SolveParallel(ctx, "XEN", "gm", 1_000_000)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}
