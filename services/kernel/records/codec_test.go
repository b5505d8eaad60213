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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscriminator(t *testing.T) {
	kinds := []string{
		(&KernelSeed{}).Kind(),
		(&EvolutionState{}).Kind(),
		(&ResonanceMetadata{}).Kind(),
		(&MemeticResonanceScore{}).Kind(),
		(&XenianAnchor{}).Kind(),
		(&Mint{}).Kind(),
		(&TokenAccount{}).Kind(),
		(&TokenMetadata{}).Kind(),
		(&OracleState{}).Kind(),
	}
	seen := make(map[[DiscriminatorLen]byte]string)
	for _, k := range kinds {
		d := Discriminator(k)
		prev, dup := seen[d]
		assert.False(t, dup, "%s collides with %s", k, prev)
		seen[d] = k
	}
}

func TestMarshal_KernelSeed(t *testing.T) {
	seed := NewKernelSeed(99, 1, "fragment text")
	seed.ConstraintHash[0] = 0xAB

	data := Marshal(seed)
	disc := Discriminator("KernelSeed")
	assert.Equal(t, disc[:], data[:DiscriminatorLen])
	// 8 id + 4 len + 13 text + 32 hash + 1 difficulty + 1 active
	assert.Len(t, data, DiscriminatorLen+8+4+13+32+1+1)

	var got KernelSeed
	require.NoError(t, Unmarshal(data, &got))
	assert.Equal(t, *seed, got)
	assert.Equal(t, "fragment text", got.Fragment())
}

func TestMarshal_TokenMetadata(t *testing.T) {
	m := &TokenMetadata{
		Mint:            Derive([]byte("m")),
		UpdateAuthority: MintAuthorityAddress(),
		Name:            "MEMEk",
		Symbol:          "MEK",
		URI:             "https://example.invalid/memek.json",
		IsMutable:       true,
	}
	var got TokenMetadata
	require.NoError(t, Unmarshal(Marshal(m), &got))
	assert.Equal(t, *m, got)
}

func TestUnmarshal_Rejects(t *testing.T) {
	state := NewEvolutionState()
	data := Marshal(state)

	t.Run("short", func(t *testing.T) {
		var got EvolutionState
		assert.ErrorIs(t, Unmarshal(data[:4], &got), ErrCorruptRecord)
	})

	t.Run("truncated body", func(t *testing.T) {
		var got EvolutionState
		assert.ErrorIs(t, Unmarshal(data[:len(data)-1], &got), ErrCorruptRecord)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		var got EvolutionState
		padded := append(append([]byte{}, data...), 0)
		assert.ErrorIs(t, Unmarshal(padded, &got), ErrCorruptRecord)
	})

	t.Run("wrong kind", func(t *testing.T) {
		var got MemeticResonanceScore
		assert.ErrorIs(t, Unmarshal(data, &got), ErrCorruptRecord)
	})

	t.Run("invalid bool", func(t *testing.T) {
		mint := Marshal(&Mint{IsInitialized: true})
		mint[len(mint)-1] = 2
		var got Mint
		assert.ErrorIs(t, Unmarshal(mint, &got), ErrCorruptRecord)
	})
}
