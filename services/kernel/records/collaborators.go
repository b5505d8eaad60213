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

// Records owned by the collaborators (issuance, metadata, oracle). They share
// the codec so every slot in the ledger has the same framing.

// Mint is a fungible unit that rewards are issued in.
type Mint struct {
	Authority     Address
	Supply        uint64
	Decimals      uint8
	IsInitialized bool
}

func (*Mint) Kind() string { return "Mint" }

func (m *Mint) encode(e *encoder) {
	e.fixed32(m.Authority)
	e.u64(m.Supply)
	e.u8(m.Decimals)
	e.boolean(m.IsInitialized)
}

func (m *Mint) decode(d *decoder) {
	m.Authority = d.fixed32()
	m.Supply = d.u64()
	m.Decimals = d.u8()
	m.IsInitialized = d.boolean()
}

// TokenAccount holds an owner's balance under one mint.
type TokenAccount struct {
	Mint   Address
	Owner  Address
	Amount uint64
}

func (*TokenAccount) Kind() string { return "TokenAccount" }

func (t *TokenAccount) encode(e *encoder) {
	e.fixed32(t.Mint)
	e.fixed32(t.Owner)
	e.u64(t.Amount)
}

func (t *TokenAccount) decode(d *decoder) {
	t.Mint = d.fixed32()
	t.Owner = d.fixed32()
	t.Amount = d.u64()
}

// TokenMetadata is the human-readable description registered for a mint.
type TokenMetadata struct {
	Mint                 Address
	UpdateAuthority      Address
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	IsMutable            bool
}

func (*TokenMetadata) Kind() string { return "TokenMetadata" }

func (m *TokenMetadata) encode(e *encoder) {
	e.fixed32(m.Mint)
	e.fixed32(m.UpdateAuthority)
	e.str(m.Name)
	e.str(m.Symbol)
	e.str(m.URI)
	e.u16(m.SellerFeeBasisPoints)
	e.boolean(m.IsMutable)
}

func (m *TokenMetadata) decode(d *decoder) {
	m.Mint = d.fixed32()
	m.UpdateAuthority = d.fixed32()
	m.Name = d.str()
	m.Symbol = d.str()
	m.URI = d.str()
	m.SellerFeeBasisPoints = d.u16()
	m.IsMutable = d.boolean()
}

// OracleState is the vote-weighted resonance aggregate.
type OracleState struct {
	ResonantWeight  uint64
	DissonantWeight uint64
	TotalVotes      uint64
	LastUpdate      int64
}

func (*OracleState) Kind() string { return "OracleState" }

func (o *OracleState) encode(e *encoder) {
	e.u64(o.ResonantWeight)
	e.u64(o.DissonantWeight)
	e.u64(o.TotalVotes)
	e.i64(o.LastUpdate)
}

func (o *OracleState) decode(d *decoder) {
	o.ResonantWeight = d.u64()
	o.DissonantWeight = d.u64()
	o.TotalVotes = d.u64()
	o.LastUpdate = d.i64()
}
