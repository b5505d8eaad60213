// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package oracle keeps the vote-weighted resonance aggregate.
//
// Voters submit a boolean resonance verdict with an integer weight. The
// oracle only accumulates; it has no influence on completion verification.
package oracle

import (
	"fmt"
	"math/big"

	"github.com/AleutianAI/memek/services/kernel/ledger"
	"github.com/AleutianAI/memek/services/kernel/records"
)

// BasisPointsScale is 100% expressed in basis points.
const BasisPointsScale = 10_000

// Initialize creates the zeroed aggregate. ledger.ErrDuplicate when present.
func Initialize(txn ledger.Txn) (*records.OracleState, error) {
	state := &records.OracleState{}
	if err := txn.Create(records.OracleAddress(), state); err != nil {
		return nil, err
	}
	return state, nil
}

// Load reads the aggregate. ledger.ErrNotFound when uninitialized.
func Load(txn ledger.Txn) (*records.OracleState, error) {
	var state records.OracleState
	if err := txn.Get(records.OracleAddress(), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Vote adds weight to one side and counts the vote.
//
// Inputs:
//
//	txn - Ledger transaction.
//	isResonant - Which side the weight goes to.
//	weight - Vote weight. Zero counts as a vote with no weight.
//	now - Unix seconds stamped into LastUpdate.
//
// Outputs:
//
//	*records.OracleState - The updated aggregate.
//	error - ledger.ErrNotFound or records.ErrArithmeticOverflow. The stored
//	aggregate is unchanged on error.
func Vote(txn ledger.Txn, isResonant bool, weight uint64, now int64) (*records.OracleState, error) {
	state, err := Load(txn)
	if err != nil {
		return nil, err
	}

	side := &state.DissonantWeight
	if isResonant {
		side = &state.ResonantWeight
	}
	sum, err := records.CheckedAdd(*side, weight)
	if err != nil {
		return nil, fmt.Errorf("oracle weight: %w", err)
	}
	votes, err := records.CheckedAdd(state.TotalVotes, 1)
	if err != nil {
		return nil, fmt.Errorf("oracle votes: %w", err)
	}

	*side = sum
	state.TotalVotes = votes
	state.LastUpdate = now
	if err := txn.Put(records.OracleAddress(), state); err != nil {
		return nil, err
	}
	return state, nil
}

// Resonance is the resonant share of all weight in basis points. Zero when
// no weight has been cast.
func Resonance(state *records.OracleState) uint64 {
	total := new(big.Int).SetUint64(state.ResonantWeight)
	total.Add(total, new(big.Int).SetUint64(state.DissonantWeight))
	if total.Sign() == 0 {
		return 0
	}
	share := new(big.Int).SetUint64(state.ResonantWeight)
	share.Mul(share, big.NewInt(BasisPointsScale))
	return share.Quo(share, total).Uint64()
}
