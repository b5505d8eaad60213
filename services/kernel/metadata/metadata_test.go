// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package metadata

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/memek/services/kernel/issuance"
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

var memek = Params{Name: "MEMEk", Symbol: "MEK", URI: "https://example.invalid/memek.json"}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"valid", memek, false},
		{"max lengths", Params{strings.Repeat("n", 32), strings.Repeat("s", 10), strings.Repeat("u", 200)}, false},
		{"long name", Params{strings.Repeat("n", 33), "MEK", "u"}, true},
		{"long symbol", Params{"n", strings.Repeat("s", 11), "u"}, true},
		{"long uri", Params{"n", "s", strings.Repeat("u", 201)}, true},
		{"empty symbol", Params{"n", "", "u"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMetadata)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	std := issuance.StandardToken

	t.Run("requires mint", func(t *testing.T) {
		err := s.Update(ctx, func(txn ledger.Txn) error {
			_, err := Create(txn, std, memek)
			return err
		})
		assert.ErrorIs(t, err, issuance.ErrMintNotInitialized)
	})

	require.NoError(t, s.Update(ctx, func(txn ledger.Txn) error {
		_, err := issuance.InitializeMint(txn, std, issuance.DefaultDecimals)
		return err
	}))

	t.Run("stores record", func(t *testing.T) {
		require.NoError(t, s.Update(ctx, func(txn ledger.Txn) error {
			_, err := Create(txn, std, memek)
			return err
		}))
		require.NoError(t, s.View(ctx, func(txn ledger.Txn) error {
			md, err := Load(txn, std)
			require.NoError(t, err)
			assert.Equal(t, "MEMEk", md.Name)
			assert.Equal(t, "MEK", md.Symbol)
			assert.Equal(t, std.MintAddress(), md.Mint)
			assert.Equal(t, records.MintAuthorityAddress(), md.UpdateAuthority)
			assert.Zero(t, md.SellerFeeBasisPoints)
			assert.True(t, md.IsMutable)
			return nil
		}))
	})

	t.Run("duplicate", func(t *testing.T) {
		err := s.Update(ctx, func(txn ledger.Txn) error {
			_, err := Create(txn, std, memek)
			return err
		})
		assert.ErrorIs(t, err, ledger.ErrDuplicate)
	})
}
