// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/memek/cmd/memek/config"
	"github.com/AleutianAI/memek/pkg/logging"
	"github.com/AleutianAI/memek/pkg/ux"
	"github.com/AleutianAI/memek/services/kernel"
	"github.com/AleutianAI/memek/services/kernel/events"
	"github.com/AleutianAI/memek/services/kernel/issuance"
	"github.com/AleutianAI/memek/services/kernel/ledger"
	"github.com/AleutianAI/memek/services/kernel/telemetry"
	store "github.com/AleutianAI/memek/services/kernel/storage/badger"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	inMemory   bool
	logLevel   string
	output     string
	verbose    bool
}

// app is everything a command needs, opened from config and closed when
// the command returns.
type app struct {
	cfg     *config.MemekConfig
	logger  *logging.Logger
	db      *store.DB
	bus     *events.Bus
	program *kernel.Program
	printer *ux.Printer

	// shutdownTelemetry is set only for serve.
	shutdownTelemetry func(context.Context) error
}

func openApp(cmd *cobra.Command, opts *rootOptions, serving bool) (*app, error) {
	cfg, err := config.Load(opts.configPath, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if opts.inMemory {
		cfg.Storage.InMemory = true
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.LogDir,
		Service: cfg.Telemetry.ServiceName,
		JSON:    serving && cfg.Server.GinMode == "release",
		Quiet:   !serving && !opts.verbose,
		Output:  cmd.ErrOrStderr(),
	})
	slogger := logger.Slog()

	a := &app{cfg: cfg, logger: logger}
	if serving {
		// Providers must be installed before the program creates its
		// instruments.
		a.shutdownTelemetry, err = telemetry.Init(cmd.Context(), telemetryConfig(cfg))
		if err != nil {
			logger.Close()
			return nil, err
		}
	}

	db, err := store.Open(store.Config{
		Path:            cfg.Storage.Path,
		InMemory:        cfg.Storage.InMemory,
		SyncWrites:      cfg.Storage.SyncWrites,
		Logger:          slogger,
		GCInterval:      cfg.Storage.GCInterval,
		GCDiscardRatio:  0.5,
		ConflictRetries: cfg.Storage.ConflictRetries,
	})
	if err != nil {
		a.closeTelemetry()
		logger.Close()
		return nil, err
	}
	a.db = db

	bus := events.NewBus(events.LogSink{Logger: slogger})
	program, err := kernel.NewProgram(ledger.New(db, slogger), kernel.Config{
		Primary:   issuance.Standard(cfg.Issuance.Primary),
		Alternate: issuance.Standard(cfg.Issuance.Alternate),
		Bus:       bus,
		Logger:    slogger,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	mode := ux.DetectMode()
	if opts.output != "" {
		mode = ux.ParseMode(opts.output)
	}

	a.bus = bus
	a.program = program
	a.printer = &ux.Printer{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr(), Mode: mode}
	return a, nil
}

func telemetryConfig(cfg *config.MemekConfig) telemetry.Config {
	return telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: kernel.ServiceVersion,
		Environment:    cfg.Telemetry.Environment,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTLPInsecure,
	}
}

func (a *app) closeTelemetry() error {
	if a.shutdownTelemetry == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.shutdownTelemetry(ctx)
}

// Close releases the ledger, telemetry and log files.
func (a *app) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	errs = append(errs, a.closeTelemetry(), a.logger.Close())
	return errors.Join(errs...)
}

func (a *app) slog() *slog.Logger { return a.logger.Slog() }

// runWith opens the app, runs fn and closes the app.
func runWith(opts *rootOptions, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := openApp(cmd, opts, false)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close: %w", cerr)
			}
		}()
		return fn(cmd.Context(), a, args)
	}
}
