// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package oracle

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/memek/services/kernel/ledger"
	"github.com/AleutianAI/memek/services/kernel/records"
	store "github.com/AleutianAI/memek/services/kernel/storage/badger"
)

func newTestLedger(t *testing.T) *ledger.Store {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return ledger.New(db, nil)
}

func vote(s *ledger.Store, resonant bool, weight uint64, now int64) error {
	return s.Update(context.Background(), func(txn ledger.Txn) error {
		_, err := Vote(txn, resonant, weight, now)
		return err
	})
}

func TestVote_RequiresInitialize(t *testing.T) {
	s := newTestLedger(t)
	assert.ErrorIs(t, vote(s, true, 1, 0), ledger.ErrNotFound)
}

func TestOracle_Lifecycle(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	initialize := func(txn ledger.Txn) error {
		_, err := Initialize(txn)
		return err
	}

	require.NoError(t, s.Update(ctx, initialize))
	assert.ErrorIs(t, s.Update(ctx, initialize), ledger.ErrDuplicate)

	require.NoError(t, vote(s, true, 30, 100))
	require.NoError(t, vote(s, false, 10, 200))
	require.NoError(t, vote(s, true, 0, 300))

	var state records.OracleState
	require.NoError(t, s.Load(ctx, records.OracleAddress(), &state))
	assert.Equal(t, uint64(30), state.ResonantWeight)
	assert.Equal(t, uint64(10), state.DissonantWeight)
	assert.Equal(t, uint64(3), state.TotalVotes)
	assert.Equal(t, int64(300), state.LastUpdate)
	assert.Equal(t, uint64(7500), Resonance(&state))
}

func TestVote_Overflow(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(txn ledger.Txn) error {
		return txn.Put(records.OracleAddress(), &records.OracleState{ResonantWeight: math.MaxUint64, TotalVotes: 4})
	}))

	assert.ErrorIs(t, vote(s, true, 1, 10), records.ErrArithmeticOverflow)

	var state records.OracleState
	require.NoError(t, s.Load(ctx, records.OracleAddress(), &state))
	assert.Equal(t, uint64(4), state.TotalVotes)
}

func TestResonance(t *testing.T) {
	assert.Zero(t, Resonance(&records.OracleState{}))
	assert.Equal(t, uint64(BasisPointsScale), Resonance(&records.OracleState{ResonantWeight: 5}))
	assert.Equal(t, uint64(5000), Resonance(&records.OracleState{
		ResonantWeight:  math.MaxUint64,
		DissonantWeight: math.MaxUint64,
	}))
}
