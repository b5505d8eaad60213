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
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/memek/pkg/extensions"
	"github.com/AleutianAI/memek/services/kernel"
	"github.com/AleutianAI/memek/services/kernel/telemetry"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MEMEk HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *rootOptions, port int) (err error) {
	a, err := openApp(cmd, opts, true)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	var metricsHandler http.Handler
	if a.cfg.Telemetry.MetricExporter == "prometheus" {
		metricsHandler = telemetry.MetricsHandler()
	}

	ext := extensions.DefaultOptions().WithAudit(extensions.NewSlogAuditLogger(a.slog()))
	if a.cfg.Server.AdminToken != "" {
		ext = ext.WithAuth(extensions.NewTokenAuthProvider(a.cfg.Server.AdminToken))
	} else {
		a.logger.Warn("No admin token configured; authority routes are open")
	}

	if port == 0 {
		port = a.cfg.Server.Port
	}
	svc := kernel.NewService(a.program, kernel.ServiceConfig{
		Port:           port,
		GinMode:        a.cfg.Server.GinMode,
		RateLimitRPS:   a.cfg.Server.RateLimitRPS,
		RateLimitBurst: a.cfg.Server.RateLimitBurst,
		Bus:            a.bus,
		RecorderSize:   a.cfg.Server.EventBuffer,
		MetricsHandler: metricsHandler,
		Extensions:     ext,
		ServiceName:    a.cfg.Telemetry.ServiceName,
		Logger:         a.slog(),
	})
	a.printer.Success("MEMEk listening on :%d (primary %s, alternate %s)", port, a.program.Primary(), a.program.Alternate())
	return svc.Run(ctx)
}
