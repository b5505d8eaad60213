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
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// AddressLen is the byte length of every ledger address.
const AddressLen = 32

// derivationDomain prefixes every derived address so derived keys never
// collide with caller-supplied participant addresses by accident.
const derivationDomain = "memek:pda"

// ErrInvalidAddress indicates an address string could not be parsed.
var ErrInvalidAddress = errors.New("invalid address")

// Address identifies a participant or a stored record.
//
// Participant addresses are supplied by callers. Record addresses are
// derived deterministically from stable identity with Derive, so the same
// inputs always land on the same storage slot.
type Address [AddressLen]byte

// String renders the address as 64 lowercase hex characters.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress parses a 64 character hex address. Upper case input is
// accepted and normalized.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimSpace(s)
	if len(s) != AddressLen*2 {
		return a, fmt.Errorf("%w: want %d hex chars, got %d", ErrInvalidAddress, AddressLen*2, len(s))
	}
	raw, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests. It panics on
// malformed input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Derive computes a deterministic record address from the given seeds.
//
// Description:
//
//	Hashes the derivation domain followed by every seed, each prefixed with
//	its little-endian u32 length so ("ab","c") and ("a","bc") differ.
//
// Inputs:
//
//	seeds - Ordered seed byte slices. Empty seeds are allowed.
//
// Outputs:
//
//	Address - Keccak-256 of the encoded seed list.
func Derive(seeds ...[]byte) Address {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(derivationDomain))
	var lenBuf [4]byte
	for _, seed := range seeds {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(seed)))
		h.Write(lenBuf[:])
		h.Write(seed)
	}
	var out Address
	h.Sum(out[:0])
	return out
}

// U64Seed encodes v as an 8 byte little-endian seed.
func U64Seed(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf[:]
}

// KernelAddress is the slot of the KernelSeed with the given id.
func KernelAddress(seedID uint64) Address {
	return Derive([]byte("kernel"), U64Seed(seedID))
}

// EvolutionAddress is the slot of the EvolutionState paired with seedID.
func EvolutionAddress(seedID uint64) Address {
	return Derive([]byte("evolution"), U64Seed(seedID))
}

// ResonanceAddress is the per-puzzle aggregate slot for a kernel.
func ResonanceAddress(kernel Address) Address {
	return Derive([]byte("resonance"), kernel[:])
}

// ScoreAddress is the per-participant score slot. Scores are global to the
// participant, not scoped to a puzzle.
func ScoreAddress(participant Address) Address {
	return Derive([]byte("score"), participant[:])
}

// VibeAddress is the one inscription slot a participant may ever fill.
func VibeAddress(participant Address) Address {
	return Derive([]byte("vibe"), participant[:])
}

// MintAuthorityAddress is the authority every mint issued by this program
// must name.
func MintAuthorityAddress() Address {
	return Derive([]byte("mint_authority"))
}

// MintAddress is the mint slot for a token standard.
func MintAddress(standard string) Address {
	return Derive([]byte("mint"), []byte(standard))
}

// TokenAccountAddress is the balance slot of owner under a mint.
func TokenAccountAddress(standard string, mint, owner Address) Address {
	return Derive([]byte("token_account"), []byte(standard), mint[:], owner[:])
}

// MetadataAddress is the descriptive metadata slot for a mint.
func MetadataAddress(mint Address) Address {
	return Derive([]byte("metadata"), mint[:])
}

// OracleAddress is the singleton resonance oracle slot.
func OracleAddress() Address {
	return Derive([]byte("oracle"))
}
