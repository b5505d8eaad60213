// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package issuance credits reward units to participants.
//
// Two interchangeable token standards are supported behind one Issuer
// interface. Both keep a Mint record and per-owner TokenAccount records in
// the ledger; issuers act inside the caller's ledger transaction so a
// failure later in the same operation discards the issuance as well.
//
// Only the program mint authority (records.MintAuthorityAddress) may mint.
package issuance

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/memek/services/kernel/ledger"
	"github.com/AleutianAI/memek/services/kernel/records"
)

// Standard names a token standard.
type Standard string

const (
	// StandardToken issues with a typed mint-to call.
	StandardToken Standard = "token"

	// StandardToken2022 issues by executing an encoded instruction.
	StandardToken2022 Standard = "token-2022"
)

// DefaultDecimals is the precision new mints declare.
const DefaultDecimals uint8 = 9

// MaxDecimals keeps 10^decimals inside a uint64.
const MaxDecimals uint8 = 19

// ParseStandard validates a standard name.
func ParseStandard(s string) (Standard, error) {
	switch Standard(s) {
	case StandardToken, StandardToken2022:
		return Standard(s), nil
	default:
		return "", fmt.Errorf("unknown token standard %q", s)
	}
}

// MintAddress is the ledger slot of the standard's mint.
func (s Standard) MintAddress() records.Address {
	return records.MintAddress(string(s))
}

// AccountAddress is the ledger slot of owner's balance under the standard.
func (s Standard) AccountAddress(owner records.Address) records.Address {
	return records.TokenAccountAddress(string(s), s.MintAddress(), owner)
}

var (
	// ErrIssuance is the root of every issuance failure.
	ErrIssuance = errors.New("issuance failed")

	// ErrMintNotInitialized indicates the standard has no mint yet.
	ErrMintNotInitialized = errors.New("mint not initialized")

	// ErrAuthorityMismatch indicates the caller is not the mint authority.
	ErrAuthorityMismatch = errors.New("mint authority mismatch")

	// ErrInvalidInstruction indicates undecodable instruction data.
	ErrInvalidInstruction = errors.New("invalid instruction")
)

// Error is an issuance failure. It matches ErrIssuance and its cause
// with errors.Is.
type Error struct {
	Op       string
	Standard Standard
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Standard, e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrIssuance, e.Err}
}

// Issuer credits reward units.
type Issuer interface {
	// Standard identifies the backend.
	Standard() Standard

	// MintAddress is the mint rewards are issued in.
	MintAddress() records.Address

	// Mint credits amount base units to recipient inside txn.
	Mint(ctx context.Context, txn ledger.Txn, recipient records.Address, amount uint64) error
}

// New returns the issuer for a standard.
func New(std Standard) (Issuer, error) {
	switch std {
	case StandardToken:
		return NewTokenIssuer(), nil
	case StandardToken2022:
		return NewToken2022Issuer(), nil
	default:
		return nil, fmt.Errorf("unknown token standard %q", std)
	}
}

// InitializeMint creates the standard's mint owned by the program authority.
//
// Outputs:
//
//	*records.Mint - The new mint.
//	error - ledger.ErrDuplicate when it already exists, an *Error when
//	decimals exceed MaxDecimals.
func InitializeMint(txn ledger.Txn, std Standard, decimals uint8) (*records.Mint, error) {
	if decimals > MaxDecimals {
		return nil, &Error{Op: "initialize_mint", Standard: std, Err: fmt.Errorf("decimals %d exceeds %d", decimals, MaxDecimals)}
	}
	mint := &records.Mint{
		Authority:     records.MintAuthorityAddress(),
		Decimals:      decimals,
		IsInitialized: true,
	}
	if err := txn.Create(std.MintAddress(), mint); err != nil {
		return nil, err
	}
	return mint, nil
}

// LoadMint reads the standard's mint, failing with an *Error when absent.
func LoadMint(txn ledger.Txn, std Standard) (*records.Mint, error) {
	var mint records.Mint
	err := txn.Get(std.MintAddress(), &mint)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, &Error{Op: "load_mint", Standard: std, Err: ErrMintNotInitialized}
	}
	if err != nil {
		return nil, err
	}
	if !mint.IsInitialized {
		return nil, &Error{Op: "load_mint", Standard: std, Err: ErrMintNotInitialized}
	}
	return &mint, nil
}

// Scale converts a reward in whole units to base units at the given
// precision. Overflow is an issuance failure.
func Scale(std Standard, reward uint64, decimals uint8) (uint64, error) {
	if decimals > MaxDecimals {
		return 0, &Error{Op: "scale", Standard: std, Err: fmt.Errorf("decimals %d exceeds %d", decimals, MaxDecimals)}
	}
	factor := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		factor *= 10
	}
	amount, err := records.CheckedMul(reward, factor)
	if err != nil {
		return 0, &Error{Op: "scale", Standard: std, Err: err}
	}
	return amount, nil
}

// Balance returns owner's balance, zero when no account exists.
func Balance(txn ledger.Txn, std Standard, owner records.Address) (uint64, error) {
	var acct records.TokenAccount
	err := txn.Get(std.AccountAddress(owner), &acct)
	if errors.Is(err, ledger.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Amount, nil
}

// mintTo is the state transition shared by both standards.
func mintTo(txn ledger.Txn, std Standard, authority, recipient records.Address, amount uint64) error {
	fail := func(err error) error {
		return &Error{Op: "mint_to", Standard: std, Err: err}
	}

	mint, err := LoadMint(txn, std)
	if err != nil {
		return err
	}
	if mint.Authority != authority {
		return fail(fmt.Errorf("%w: signer %s", ErrAuthorityMismatch, authority))
	}
	supply, err := records.CheckedAdd(mint.Supply, amount)
	if err != nil {
		return fail(fmt.Errorf("supply: %w", err))
	}

	acctAddr := std.AccountAddress(recipient)
	var acct records.TokenAccount
	err = txn.Get(acctAddr, &acct)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		acct = records.TokenAccount{Mint: std.MintAddress(), Owner: recipient}
	case err != nil:
		return err
	}
	balance, err := records.CheckedAdd(acct.Amount, amount)
	if err != nil {
		return fail(fmt.Errorf("balance: %w", err))
	}

	mint.Supply = supply
	acct.Amount = balance
	if err := txn.Put(std.MintAddress(), mint); err != nil {
		return err
	}
	return txn.Put(acctAddr, &acct)
}

