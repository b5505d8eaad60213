// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/memek/services/kernel/records"
	store "github.com/AleutianAI/memek/services/kernel/storage/badger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := store.InMemoryConfig()
	cfg.ConflictRetries = 1000
	db, err := store.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, nil)
}

func TestStore_CreateGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	addr := records.KernelAddress(1)

	err := s.Update(ctx, func(txn Txn) error {
		return txn.Create(addr, records.NewKernelSeed(1, 0, "XEN"))
	})
	require.NoError(t, err)

	var got records.KernelSeed
	require.NoError(t, s.Load(ctx, addr, &got))
	assert.Equal(t, "XEN", got.Fragment())
	assert.True(t, got.IsActive)

	err = s.Update(ctx, func(txn Txn) error {
		return txn.Create(addr, records.NewKernelSeed(1, 1, "other"))
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, s.Load(ctx, addr, &got))
	assert.Equal(t, "XEN", got.Fragment())
}

func TestStore_NotFound(t *testing.T) {
	s := newTestStore(t)
	var got records.OracleState
	err := s.Load(context.Background(), records.OracleAddress(), &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ViewIsReadOnly(t *testing.T) {
	s := newTestStore(t)
	err := s.View(context.Background(), func(txn Txn) error {
		return txn.Put(records.OracleAddress(), &records.OracleState{})
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestStore_RollbackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(txn Txn) error {
		if err := txn.Put(records.OracleAddress(), &records.OracleState{TotalVotes: 1}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	err = s.View(ctx, func(txn Txn) error {
		ok, err := txn.Exists(records.OracleAddress())
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_WrongKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	addr := records.OracleAddress()

	require.NoError(t, s.Update(ctx, func(txn Txn) error {
		return txn.Put(addr, &records.OracleState{})
	}))

	var wrong records.Mint
	err := s.Load(ctx, addr, &wrong)
	assert.ErrorIs(t, err, records.ErrCorruptRecord)
}

// TestStore_ConcurrentUpsert hammers a create-or-update slot from many
// goroutines. Every increment must land exactly once.
func TestStore_ConcurrentUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	addr := records.ScoreAddress(records.Derive([]byte("p")))

	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				errs <- s.Update(ctx, func(txn Txn) error {
					var score records.MemeticResonanceScore
					err := txn.Get(addr, &score)
					switch {
					case err == nil:
					case errors.Is(err, ErrNotFound):
						score = *records.NewMemeticResonanceScore(records.Derive([]byte("p")))
					default:
						return err
					}
					if err := score.Credit(1, 0); err != nil {
						return err
					}
					return txn.Put(addr, &score)
				})
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var final records.MemeticResonanceScore
	require.NoError(t, s.Load(ctx, addr, &final))
	assert.Equal(t, uint64(workers*perWorker), final.ResonanceScore)
}
