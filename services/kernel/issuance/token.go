// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package issuance

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/AleutianAI/memek/services/kernel/ledger"
	"github.com/AleutianAI/memek/services/kernel/records"
)

// TokenIssuer mints through a direct typed call.
type TokenIssuer struct {
	authority records.Address
}

// NewTokenIssuer signs as the program mint authority.
func NewTokenIssuer() *TokenIssuer {
	return &TokenIssuer{authority: records.MintAuthorityAddress()}
}

func (*TokenIssuer) Standard() Standard { return StandardToken }

func (*TokenIssuer) MintAddress() records.Address { return StandardToken.MintAddress() }

func (t *TokenIssuer) Mint(_ context.Context, txn ledger.Txn, recipient records.Address, amount uint64) error {
	return mintTo(txn, StandardToken, t.authority, recipient, amount)
}

// =============================================================================
// Instruction-based standard
// =============================================================================

// OpMintTo is the instruction tag for mint-to.
const OpMintTo byte = 7

// Instruction is an encoded call against a token standard.
type Instruction struct {
	Mint        records.Address
	Destination records.Address
	Authority   records.Address
	Data        []byte
}

// EncodeMintTo builds the mint-to payload: tag || le64(amount).
func EncodeMintTo(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = OpMintTo
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// Execute decodes and runs an instruction against the standard's records.
func Execute(txn ledger.Txn, std Standard, ix Instruction) error {
	if len(ix.Data) == 0 {
		return &Error{Op: "execute", Standard: std, Err: fmt.Errorf("%w: empty data", ErrInvalidInstruction)}
	}
	if ix.Mint != std.MintAddress() {
		return &Error{Op: "execute", Standard: std, Err: fmt.Errorf("%w: mint %s", ErrInvalidInstruction, ix.Mint)}
	}
	switch ix.Data[0] {
	case OpMintTo:
		if len(ix.Data) != 9 {
			return &Error{Op: "execute", Standard: std, Err: fmt.Errorf("%w: mint_to wants 9 bytes, got %d", ErrInvalidInstruction, len(ix.Data))}
		}
		amount := binary.LittleEndian.Uint64(ix.Data[1:])
		return mintTo(txn, std, ix.Authority, ix.Destination, amount)
	default:
		return &Error{Op: "execute", Standard: std, Err: fmt.Errorf("%w: tag %d", ErrInvalidInstruction, ix.Data[0])}
	}
}

// Token2022Issuer mints by encoding and executing a mint-to instruction.
type Token2022Issuer struct {
	authority records.Address
}

// NewToken2022Issuer signs as the program mint authority.
func NewToken2022Issuer() *Token2022Issuer {
	return &Token2022Issuer{authority: records.MintAuthorityAddress()}
}

func (*Token2022Issuer) Standard() Standard { return StandardToken2022 }

func (*Token2022Issuer) MintAddress() records.Address { return StandardToken2022.MintAddress() }

func (t *Token2022Issuer) Mint(_ context.Context, txn ledger.Txn, recipient records.Address, amount uint64) error {
	return Execute(txn, StandardToken2022, Instruction{
		Mint:        StandardToken2022.MintAddress(),
		Destination: recipient,
		Authority:   t.authority,
		Data:        EncodeMintTo(amount),
	})
}
