// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ledger is the keyed record store every MEMEk operation runs against.
//
// Records live at deterministic addresses (records.Derive). Each public
// operation is one Store.Update call: all reads and writes inside the
// closure commit together or not at all, and two closures touching an
// overlapping set of addresses behave as if run one after the other.
//
// # Create-if-absent
//
// Txn.Create reads the slot and writes it in the same transaction. The read
// of the absent key is tracked, so a concurrent creator that commits first
// makes this transaction conflict and re-run, where it then observes the
// record and fails with ErrDuplicate (or takes the update branch).
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/memek/services/kernel/records"
	store "github.com/AleutianAI/memek/services/kernel/storage/badger"
)

// keyPrefix namespaces record slots inside the database.
const keyPrefix = "rec/"

var (
	// ErrNotFound indicates no record exists at the address.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a create targeted an occupied address.
	ErrDuplicate = errors.New("record already exists")

	// ErrReadOnly indicates a write was attempted inside View.
	ErrReadOnly = errors.New("read-only transaction")
)

// Txn is the record-level view of one ledger transaction.
//
// Implementations are not safe for concurrent use; a Txn belongs to the
// closure it was passed to.
type Txn interface {
	// Get decodes the record at addr into rec. ErrNotFound when absent.
	Get(addr records.Address, rec records.Record) error

	// Exists reports whether any record occupies addr.
	Exists(addr records.Address) (bool, error)

	// Create stores rec at addr. ErrDuplicate when occupied.
	Create(addr records.Address, rec records.Record) error

	// Put stores rec at addr, replacing any existing record.
	Put(addr records.Address, rec records.Record) error
}

// Store is the ledger backed by BadgerDB.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	db     *store.DB
	logger *slog.Logger
}

// New wraps an open database. The Store does not own db; the caller closes it.
func New(db *store.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger.With(slog.String("component", "ledger"))}
}

// Update runs fn in a serializable read-write transaction.
//
// Description:
//
//	fn may be re-run after a commit conflict, so it must only mutate state
//	through txn. Any error from fn discards every write made in that
//	attempt.
//
// Inputs:
//
//	ctx - Cancellation, checked before every attempt.
//	fn - Operation body.
//
// Outputs:
//
//	error - fn's error unchanged, or a storage failure.
func (s *Store) Update(ctx context.Context, fn func(txn Txn) error) error {
	return s.db.Update(ctx, func(btxn *badger.Txn) error {
		return fn(&badgerTxn{txn: btxn, writable: true})
	})
}

// View runs fn against a consistent read-only snapshot.
func (s *Store) View(ctx context.Context, fn func(txn Txn) error) error {
	return s.db.View(ctx, func(btxn *badger.Txn) error {
		return fn(&badgerTxn{txn: btxn})
	})
}

// Load is a single-record View.
func (s *Store) Load(ctx context.Context, addr records.Address, rec records.Record) error {
	return s.View(ctx, func(txn Txn) error {
		return txn.Get(addr, rec)
	})
}

func key(addr records.Address) []byte {
	k := make([]byte, 0, len(keyPrefix)+records.AddressLen)
	k = append(k, keyPrefix...)
	return append(k, addr[:]...)
}

type badgerTxn struct {
	txn      *badger.Txn
	writable bool
}

func (t *badgerTxn) Get(addr records.Address, rec records.Record) error {
	item, err := t.txn.Get(key(addr))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s at %s", ErrNotFound, rec.Kind(), addr)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", addr, err)
	}
	return item.Value(func(val []byte) error {
		return records.Unmarshal(val, rec)
	})
}

func (t *badgerTxn) Exists(addr records.Address) (bool, error) {
	_, err := t.txn.Get(key(addr))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("get %s: %w", addr, err)
	}
}

func (t *badgerTxn) Create(addr records.Address, rec records.Record) error {
	exists, err := t.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s at %s", ErrDuplicate, rec.Kind(), addr)
	}
	return t.Put(addr, rec)
}

func (t *badgerTxn) Put(addr records.Address, rec records.Record) error {
	if !t.writable {
		return ErrReadOnly
	}
	if err := t.txn.Set(key(addr), records.Marshal(rec)); err != nil {
		return fmt.Errorf("put %s at %s: %w", rec.Kind(), addr, err)
	}
	return nil
}
