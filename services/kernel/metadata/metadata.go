// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metadata registers human-readable descriptions for reward mints.
package metadata

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/memek/services/kernel/issuance"
	"github.com/AleutianAI/memek/services/kernel/ledger"
	"github.com/AleutianAI/memek/services/kernel/records"
)

// Field limits in bytes.
const (
	MaxNameLen   = 32
	MaxSymbolLen = 10
	MaxURILen    = 200
)

// ErrInvalidMetadata indicates a field is empty or over its limit.
var ErrInvalidMetadata = errors.New("invalid metadata")

// Params is what a caller registers.
type Params struct {
	Name   string
	Symbol string
	URI    string
}

// Validate checks field lengths.
func (p Params) Validate() error {
	check := func(field, v string, max int) error {
		if v == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidMetadata, field)
		}
		if len(v) > max {
			return fmt.Errorf("%w: %s is %d bytes, max %d", ErrInvalidMetadata, field, len(v), max)
		}
		return nil
	}
	if err := check("name", p.Name, MaxNameLen); err != nil {
		return err
	}
	if err := check("symbol", p.Symbol, MaxSymbolLen); err != nil {
		return err
	}
	return check("uri", p.URI, MaxURILen)
}

// Create registers metadata for the standard's mint.
//
// The record names the program mint authority as update authority, charges
// no seller fee and stays mutable.
//
// Outputs:
//
//	*records.TokenMetadata - The stored record.
//	error - ErrInvalidMetadata, an issuance error when the mint is missing,
//	or ledger.ErrDuplicate when metadata already exists.
func Create(txn ledger.Txn, std issuance.Standard, p Params) (*records.TokenMetadata, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := issuance.LoadMint(txn, std); err != nil {
		return nil, err
	}
	md := &records.TokenMetadata{
		Mint:            std.MintAddress(),
		UpdateAuthority: records.MintAuthorityAddress(),
		Name:            p.Name,
		Symbol:          p.Symbol,
		URI:             p.URI,
		IsMutable:       true,
	}
	if err := txn.Create(records.MetadataAddress(md.Mint), md); err != nil {
		return nil, err
	}
	return md, nil
}

// Load reads the metadata registered for the standard's mint.
func Load(txn ledger.Txn, std issuance.Standard) (*records.TokenMetadata, error) {
	var md records.TokenMetadata
	if err := txn.Get(records.MetadataAddress(std.MintAddress()), &md); err != nil {
		return nil, err
	}
	return &md, nil
}
