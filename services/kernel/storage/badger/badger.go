// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package badger opens and manages the BadgerDB instance backing the ledger.
//
// BadgerDB provides serializable snapshot isolation: a read-write
// transaction that read a key (present or absent) another transaction wrote
// after the snapshot fails at commit with badger.ErrConflict. DB.Update
// turns that into serial semantics by re-running the whole closure.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultConflictRetries is how many times Update re-runs a closure that
// lost a commit race before giving up.
const DefaultConflictRetries = 16

// ErrTooManyConflicts is returned when Update exhausts its retries.
var ErrTooManyConflicts = errors.New("transaction conflict retries exhausted")

// Config holds configuration for the ledger database.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests and `--in-memory`.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Logger receives BadgerDB's internal log lines. Nil silences them.
	Logger *slog.Logger

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the garbage ratio that triggers a rewrite (0.0-1.0).
	GCDiscardRatio float64

	// ConflictRetries bounds Update's retry loop. Zero means
	// DefaultConflictRetries.
	ConflictRetries int
}

// DefaultConfig returns durable production settings.
//
// Outputs:
//
//	Config - SyncWrites on, 5-minute GC at a 0.5 discard ratio.
func DefaultConfig() Config {
	return Config{
		SyncWrites:      true,
		GCInterval:      5 * time.Minute,
		GCDiscardRatio:  0.5,
		ConflictRetries: DefaultConflictRetries,
	}
}

// InMemoryConfig returns settings for tests: no disk, no fsync, no GC.
func InMemoryConfig() Config {
	return Config{
		InMemory:        true,
		ConflictRetries: DefaultConflictRetries,
	}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// options translates cfg into BadgerDB options. Only the latest version of
// each record is ever read, so one version is kept.
func options(cfg Config) (badger.Options, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return opts, errors.New("path is required for persistent database")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return opts, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	return opts, nil
}

// =============================================================================
// DB
// =============================================================================

// DB wraps a BadgerDB instance with GC lifecycle and retrying transactions.
//
// Thread Safety: Safe for concurrent use.
type DB struct {
	*badger.DB
	gc       *GCRunner
	path     string
	inMemory bool
	retries  int
}

// Open opens the database and starts value log GC when configured.
//
// Inputs:
//
//	cfg - Database configuration. Path is required unless InMemory is set.
//
// Outputs:
//
//	*DB - The managed database. Caller must Close it.
//	error - Non-nil if the path is unusable or BadgerDB fails to open.
func Open(cfg Config) (*DB, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	raw, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	retries := cfg.ConflictRetries
	if retries <= 0 {
		retries = DefaultConflictRetries
	}
	db := &DB{DB: raw, path: cfg.Path, inMemory: cfg.InMemory, retries: retries}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		runner, err := NewGCRunner(raw, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("create GC runner: %w", err)
		}
		db.gc = runner
		runner.Start()
	}
	return db, nil
}

// OpenInMemory opens a throwaway in-memory database.
func OpenInMemory() (*DB, error) {
	return Open(InMemoryConfig())
}

// Close stops GC and closes the database.
func (d *DB) Close() error {
	if d.gc != nil {
		d.gc.Stop()
	}
	return d.DB.Close()
}

// Path returns the database directory, empty for in-memory databases.
func (d *DB) Path() string { return d.path }

// InMemory reports whether the database lives in RAM only.
func (d *DB) InMemory() bool { return d.inMemory }

// Sync flushes pending writes. No-op in memory.
func (d *DB) Sync() error {
	if d.inMemory {
		return nil
	}
	return d.DB.Sync()
}

// Update runs fn in a read-write transaction and commits it.
//
// Description:
//
//	fn may run more than once: when the commit fails with badger.ErrConflict
//	the transaction is discarded and fn is re-run against a fresh snapshot,
//	up to the configured retry count. fn must therefore have no effects
//	outside the transaction. The context is checked before every attempt.
//
// Inputs:
//
//	ctx - Cancellation for the retry loop.
//	fn - Transaction body. A non-nil return discards the transaction.
//
// Outputs:
//
//	error - fn's error, the commit error, a context error, or
//	ErrTooManyConflicts.
//
// Thread Safety: Safe for concurrent use.
func (d *DB) Update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; attempt <= d.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}
		err := d.attempt(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrTooManyConflicts, d.retries+1)
}

func (d *DB) attempt(fn func(txn *badger.Txn) error) error {
	txn := d.DB.NewTransaction(true)
	defer txn.Discard()

	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}

// View runs fn in a read-only transaction over a consistent snapshot.
func (d *DB) View(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	txn := d.DB.NewTransaction(false)
	defer txn.Discard()
	return fn(txn)
}

// =============================================================================
// GC
// =============================================================================

// GCRunner triggers value log garbage collection on an interval.
type GCRunner struct {
	db       *badger.DB
	interval time.Duration
	ratio    float64
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewGCRunner validates its inputs and returns a stopped runner.
func NewGCRunner(db *badger.DB, interval time.Duration, ratio float64, logger *slog.Logger) (*GCRunner, error) {
	if db == nil {
		return nil, errors.New("db must not be nil")
	}
	if interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	if ratio < 0 || ratio > 1 {
		return nil, errors.New("ratio must be between 0 and 1")
	}
	return &GCRunner{
		db:       db,
		interval: interval,
		ratio:    ratio,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start launches the GC loop.
func (r *GCRunner) Start() {
	go r.run()
}

// Stop halts the loop and waits for it. Safe to call more than once.
func (r *GCRunner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

func (r *GCRunner) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.collect()
		}
	}
}

func (r *GCRunner) collect() {
	// ErrNoRewrite only means nothing was worth reclaiming.
	err := r.db.RunValueLogGC(r.ratio)
	if r.logger == nil {
		return
	}
	switch {
	case err == nil:
		r.logger.Debug("ledger value log GC completed")
	case !errors.Is(err, badger.ErrNoRewrite):
		r.logger.Warn("ledger value log GC error", slog.String("error", err.Error()))
	}
}
