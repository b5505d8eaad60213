// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package records

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestEvolve(t *testing.T) {
	t.Run("advances every counter", func(t *testing.T) {
		seed := NewKernelSeed(1, 0, "XEN")
		state := NewEvolutionState()

		require.NoError(t, Evolve(seed, state))

		assert.Equal(t, uint64(1), state.CurrentEpoch)
		assert.Equal(t, uint64(InitialMutationRate+1), state.ConstraintMutationRate)
		assert.Equal(t, uint8(1), seed.Difficulty)
		assert.Equal(t, "XEN...", seed.Fragment())
		assert.Equal(t, GenesisStyle, state.DominantStyle)
	})

	t.Run("N advances", func(t *testing.T) {
		for _, initial := range []uint8{0, 1, 2, 255} {
			seed := NewKernelSeed(7, initial, "abc")
			state := NewEvolutionState()
			const n = 9
			for i := 0; i < n; i++ {
				require.NoError(t, Evolve(seed, state))
			}
			assert.Equal(t, uint64(n), state.CurrentEpoch)
			assert.Equal(t, uint64(InitialMutationRate+n), state.ConstraintMutationRate)
			assert.Equal(t, len("abc")+3*n, len(seed.Fragment()))
			assert.True(t, strings.HasPrefix(seed.Fragment(), "abc"))
			assert.Less(t, seed.Difficulty, uint8(2))
		}
	})

	t.Run("difficulty toggles from binary start", func(t *testing.T) {
		for _, initial := range []uint8{0, 1} {
			seed := NewKernelSeed(1, initial, "f")
			state := NewEvolutionState()
			for n := 1; n <= 6; n++ {
				require.NoError(t, Evolve(seed, state))
				assert.Equal(t, initial^uint8(n%2), seed.Difficulty, "after %d advances", n)
			}
		}
	})

	t.Run("overflow leaves records unchanged", func(t *testing.T) {
		seed := NewKernelSeed(1, 0, "f")
		state := NewEvolutionState()
		state.CurrentEpoch = math.MaxUint64

		err := Evolve(seed, state)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
		assert.Equal(t, uint64(math.MaxUint64), state.CurrentEpoch)
		assert.Equal(t, uint64(InitialMutationRate), state.ConstraintMutationRate)
		assert.Equal(t, "f", seed.Fragment())
		assert.Equal(t, uint8(0), seed.Difficulty)
	})
}

func TestResonanceMetadata_RecordBridgingEvent(t *testing.T) {
	mint := Derive([]byte("test-mint"))

	t.Run("counts and decays", func(t *testing.T) {
		r := NewResonanceMetadata(mint)
		r.KernelStrain = 2

		for i := 0; i < 4; i++ {
			require.NoError(t, r.RecordBridgingEvent(0, NoveltyIncrement))
		}

		assert.Equal(t, mint, r.Mint)
		assert.Equal(t, uint64(4), r.TotalGapsBridged)
		assert.Equal(t, uint64(40), r.SemanticDiversity)
		assert.Equal(t, uint64(0), r.KernelStrain)
		assert.Equal(t, CanonicalBump, r.Bump)
	})

	t.Run("overflow is reported", func(t *testing.T) {
		r := NewResonanceMetadata(mint)
		r.TotalGapsBridged = math.MaxUint64
		r.KernelStrain = 5

		err := r.RecordBridgingEvent(0, NoveltyIncrement)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
		assert.Equal(t, uint64(5), r.KernelStrain)
		assert.Equal(t, uint64(0), r.SemanticDiversity)
	})
}

func TestMemeticResonanceScore_Credit(t *testing.T) {
	user := Derive([]byte("user"))
	s := NewMemeticResonanceScore(user)

	require.NoError(t, s.Credit(650, 100))
	require.NoError(t, s.Credit(65000, 200))
	assert.Equal(t, uint64(65650), s.ResonanceScore)
	assert.Equal(t, int64(200), s.LastActive)
	assert.Equal(t, user, s.User)

	s.ResonanceScore = math.MaxUint64 - 10
	err := s.Credit(650, 300)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, uint64(math.MaxUint64-10), s.ResonanceScore)
	assert.Equal(t, int64(200), s.LastActive)
}

func TestSaturatingSub(t *testing.T) {
	assert.Equal(t, uint64(0), SaturatingSub(0, 1))
	assert.Equal(t, uint64(0), SaturatingSub(3, 7))
	assert.Equal(t, uint64(4), SaturatingSub(5, 1))
}

func TestCheckedMul(t *testing.T) {
	v, err := CheckedMul(65000, 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(65_000_000_000_000), v)

	_, err = CheckedMul(math.MaxUint64, 2)
	assert.True(t, errors.Is(err, ErrArithmeticOverflow))
}

func TestXenianAnchor(t *testing.T) {
	viber := Derive([]byte("viber"))
	var chaos [ChaosSeedLen]byte
	for i := range chaos {
		chaos[i] = byte(i)
	}
	at := time.Unix(1_700_000_000, 0)

	a := NewXenianAnchor(viber, 200, 42, chaos, at)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{200})
	h.Write([]byte{42, 0, 0, 0, 0, 0, 0, 0})
	h.Write(chaos[:])
	h.Write(U64Seed(1_700_000_000))
	var want [32]byte
	h.Sum(want[:0])

	assert.Equal(t, want, a.VibeHash())
	assert.Equal(t, viber, a.Viber())
	assert.Equal(t, uint8(200), a.PurpleDepth())
	assert.Equal(t, uint64(42), a.ClaudeTau())
	assert.Equal(t, chaos, a.ChaosSeed())
	assert.Equal(t, int64(1_700_000_000), a.InscriptionTime())
	assert.True(t, a.IsVibing())

	t.Run("round trip", func(t *testing.T) {
		var got XenianAnchor
		require.NoError(t, Unmarshal(Marshal(a), &got))
		assert.Equal(t, *a, got)
		assert.True(t, got.IsVibing())
	})

	t.Run("cleared flag does not decode", func(t *testing.T) {
		data := Marshal(a)
		data[len(data)-1] = 0
		var got XenianAnchor
		err := Unmarshal(data, &got)
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})
}
