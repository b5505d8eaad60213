// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package records defines the persisted ledger records of the MEMEk program.
//
// Every record lives at a deterministic Address (see Derive) and is stored as
// an 8 byte discriminator followed by a fixed-width little-endian body.
// Strings are the only variable-length fields and carry a u32 length prefix.
//
// # Mutation Rules
//
//   - KernelSeed and EvolutionState change only through Evolve.
//   - ResonanceMetadata and MemeticResonanceScore change only through their
//     counter methods, which never wrap.
//   - XenianAnchor is sealed at construction; it has no mutators.
package records

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrArithmeticOverflow indicates a counter would exceed its width.
var ErrArithmeticOverflow = errors.New("arithmetic overflow")

// GenesisStyle is the dominant style label of a fresh EvolutionState.
const GenesisStyle = "Genesis"

// InitialMutationRate is the mutation-rate counter of a fresh EvolutionState.
const InitialMutationRate = 1

// FragmentDrift is appended to the fragment on every epoch advance.
const FragmentDrift = "..."

// CanonicalBump is stored in ResonanceMetadata.Bump. Derived addresses need
// no bump search, so every slot is canonical.
const CanonicalBump uint8 = 255

// NoveltyIncrement is the semantic diversity added per bridged gap.
const NoveltyIncrement uint8 = 10

// CheckedAdd returns a+b or ErrArithmeticOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %d + %d", ErrArithmeticOverflow, a, b)
	}
	return sum, nil
}

// CheckedMul returns a*b or ErrArithmeticOverflow.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d * %d", ErrArithmeticOverflow, a, b)
	}
	return lo, nil
}

// SaturatingSub returns a-b clamped at zero.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// =============================================================================
// KernelSeed
// =============================================================================

// KernelSeed is one puzzle instance.
//
// The fragment is append-only: it is set at construction and only grows by
// FragmentDrift when the paired EvolutionState advances.
type KernelSeed struct {
	SeedID         uint64
	fragment       string
	ConstraintHash [32]byte
	Difficulty     uint8
	IsActive       bool
}

// NewKernelSeed builds an active puzzle record.
func NewKernelSeed(seedID uint64, difficulty uint8, fragment string) *KernelSeed {
	return &KernelSeed{
		SeedID:     seedID,
		fragment:   fragment,
		Difficulty: difficulty,
		IsActive:   true,
	}
}

// Fragment returns the stored fragment text verbatim.
func (k *KernelSeed) Fragment() string { return k.fragment }

func (*KernelSeed) Kind() string { return "KernelSeed" }

func (k *KernelSeed) encode(e *encoder) {
	e.u64(k.SeedID)
	e.str(k.fragment)
	e.fixed32(k.ConstraintHash)
	e.u8(k.Difficulty)
	e.boolean(k.IsActive)
}

func (k *KernelSeed) decode(d *decoder) {
	k.SeedID = d.u64()
	k.fragment = d.str()
	k.ConstraintHash = d.fixed32()
	k.Difficulty = d.u8()
	k.IsActive = d.boolean()
}

// =============================================================================
// EvolutionState
// =============================================================================

// EvolutionState is the mutation clock paired with a KernelSeed.
type EvolutionState struct {
	CurrentEpoch           uint64
	DominantStyle          string
	ConstraintMutationRate uint64
}

// NewEvolutionState returns the genesis state: epoch 0, GenesisStyle,
// InitialMutationRate.
func NewEvolutionState() *EvolutionState {
	return &EvolutionState{
		DominantStyle:          GenesisStyle,
		ConstraintMutationRate: InitialMutationRate,
	}
}

func (*EvolutionState) Kind() string { return "EvolutionState" }

func (s *EvolutionState) encode(e *encoder) {
	e.u64(s.CurrentEpoch)
	e.str(s.DominantStyle)
	e.u64(s.ConstraintMutationRate)
}

func (s *EvolutionState) decode(d *decoder) {
	s.CurrentEpoch = d.u64()
	s.DominantStyle = d.str()
	s.ConstraintMutationRate = d.u64()
}

// Evolve applies the single epoch transition to a puzzle.
//
// Description:
//
//	epoch += 1, mutation rate += 1, difficulty toggles (d+1) mod 2 and the
//	fragment gains FragmentDrift. Both records are left untouched when
//	either counter would overflow.
//
// Outputs:
//
//	error - ErrArithmeticOverflow when a counter is saturated.
func Evolve(seed *KernelSeed, state *EvolutionState) error {
	epoch, err := CheckedAdd(state.CurrentEpoch, 1)
	if err != nil {
		return fmt.Errorf("epoch: %w", err)
	}
	rate, err := CheckedAdd(state.ConstraintMutationRate, 1)
	if err != nil {
		return fmt.Errorf("mutation rate: %w", err)
	}
	state.CurrentEpoch = epoch
	state.ConstraintMutationRate = rate
	seed.Difficulty = uint8((uint16(seed.Difficulty) + 1) % 2)
	seed.fragment += FragmentDrift
	return nil
}

// =============================================================================
// ResonanceMetadata
// =============================================================================

// ResonanceMetadata is the per-puzzle aggregate, created on the first
// successful completion.
type ResonanceMetadata struct {
	Mint              Address
	TotalGapsBridged  uint64
	SemanticDiversity uint64
	KernelStrain      uint64
	LastMutation      int64
	Bump              uint8
}

// NewResonanceMetadata creates the aggregate and captures the issuer mint.
// The mint is never overwritten afterwards.
func NewResonanceMetadata(mint Address) *ResonanceMetadata {
	return &ResonanceMetadata{Mint: mint, Bump: CanonicalBump}
}

// RecordBridgingEvent counts one successful completion.
//
// fragmentComplexity is accepted for parity with the puzzle difficulty but
// does not influence the counters. Strain decays toward zero and never
// underflows. On error the record is unchanged.
func (r *ResonanceMetadata) RecordBridgingEvent(fragmentComplexity uint8, novelty uint8) error {
	total, err := CheckedAdd(r.TotalGapsBridged, 1)
	if err != nil {
		return fmt.Errorf("total gaps bridged: %w", err)
	}
	diversity, err := CheckedAdd(r.SemanticDiversity, uint64(novelty))
	if err != nil {
		return fmt.Errorf("semantic diversity: %w", err)
	}
	r.TotalGapsBridged = total
	r.SemanticDiversity = diversity
	r.KernelStrain = SaturatingSub(r.KernelStrain, 1)
	return nil
}

func (*ResonanceMetadata) Kind() string { return "ResonanceMetadata" }

func (r *ResonanceMetadata) encode(e *encoder) {
	e.fixed32(r.Mint)
	e.u64(r.TotalGapsBridged)
	e.u64(r.SemanticDiversity)
	e.u64(r.KernelStrain)
	e.i64(r.LastMutation)
	e.u8(r.Bump)
}

func (r *ResonanceMetadata) decode(d *decoder) {
	r.Mint = d.fixed32()
	r.TotalGapsBridged = d.u64()
	r.SemanticDiversity = d.u64()
	r.KernelStrain = d.u64()
	r.LastMutation = d.i64()
	r.Bump = d.u8()
}

// =============================================================================
// MemeticResonanceScore
// =============================================================================

// MemeticResonanceScore is the per-participant cumulative score.
type MemeticResonanceScore struct {
	User             Address
	ResonanceScore   uint64
	ViralCoefficient uint16
	CreativeVariance uint16
	LastActive       int64
}

// NewMemeticResonanceScore creates a zero score owned by user.
func NewMemeticResonanceScore(user Address) *MemeticResonanceScore {
	return &MemeticResonanceScore{User: user}
}

// Credit adds reward to the score and stamps activity. The record is
// unchanged when the score would overflow.
func (s *MemeticResonanceScore) Credit(reward uint64, now int64) error {
	score, err := CheckedAdd(s.ResonanceScore, reward)
	if err != nil {
		return fmt.Errorf("resonance score: %w", err)
	}
	s.ResonanceScore = score
	s.LastActive = now
	return nil
}

func (*MemeticResonanceScore) Kind() string { return "MemeticResonanceScore" }

func (s *MemeticResonanceScore) encode(e *encoder) {
	e.fixed32(s.User)
	e.u64(s.ResonanceScore)
	e.u16(s.ViralCoefficient)
	e.u16(s.CreativeVariance)
	e.i64(s.LastActive)
}

func (s *MemeticResonanceScore) decode(d *decoder) {
	s.User = d.fixed32()
	s.ResonanceScore = d.u64()
	s.ViralCoefficient = d.u16()
	s.CreativeVariance = d.u16()
	s.LastActive = d.i64()
}
