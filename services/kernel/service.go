// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/memek/pkg/extensions"
	"github.com/AleutianAI/memek/services/kernel/events"
	"github.com/AleutianAI/memek/services/kernel/telemetry"
)

// Service is the HTTP front of a Program.
//
// # Assumptions
//
//   - Run is called at most once per Service instance
type Service interface {
	// Run serves until ctx is cancelled or the listener fails, then shuts
	// down gracefully within ShutdownTimeout.
	Run(ctx context.Context) error

	// Router returns the underlying Gin engine for testing.
	Router() *gin.Engine
}

// ServiceConfig configures the HTTP service.
type ServiceConfig struct {
	// Port to listen on. Default: 12290.
	Port int

	// GinMode is gin.ReleaseMode, gin.DebugMode or gin.TestMode. Empty
	// leaves the process-wide mode untouched.
	GinMode string

	// RateLimitRPS and RateLimitBurst bound write endpoints. Zero RPS
	// disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	// Bus is the program's event bus. When set, the service subscribes a
	// recorder and a websocket hub to it.
	Bus *events.Bus

	// RecorderSize is how many events GET /v1/events keeps.
	RecorderSize int

	// MetricsHandler serves GET /metrics. Nil omits the route.
	MetricsHandler http.Handler

	// Extensions guards authority routes. The zero value admits every
	// caller as the local authority.
	Extensions extensions.ServiceOptions

	// ServiceName labels spans from the otelgin middleware.
	ServiceName string

	Logger *slog.Logger
}

func applyServiceDefaults(cfg ServiceConfig) ServiceConfig {
	if cfg.Port == 0 {
		cfg.Port = 12290
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = telemetry.DefaultConfig().ServiceName
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

type service struct {
	config   ServiceConfig
	program  *Program
	router   *gin.Engine
	hub      *events.Hub
	recorder *events.Recorder
	logger   *slog.Logger
}

// NewService builds the router for program.
func NewService(program *Program, cfg ServiceConfig) Service {
	cfg = applyServiceDefaults(cfg)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	s := &service{
		config:  cfg,
		program: program,
		logger:  cfg.Logger.With("component", "http"),
	}
	if cfg.Bus != nil {
		s.recorder = events.NewRecorder(cfg.RecorderSize)
		s.hub = events.NewHub(cfg.Logger)
		cfg.Bus.Subscribe(s.recorder)
		cfg.Bus.Subscribe(s.hub)
	}
	s.initRouter()
	return s
}

func (s *service) initRouter() {
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(otelgin.Middleware(s.config.ServiceName))
	s.router.Use(RequestLogger(s.logger))

	handlers := NewHandlers(s.program).WithEvents(s.recorder, s.hub)
	s.router.GET("/health", handlers.HandleHealth)
	if s.config.MetricsHandler != nil {
		s.router.GET("/metrics", gin.WrapH(s.config.MetricsHandler))
	}

	v1 := s.router.Group("/v1")
	RegisterRoutes(v1, handlers, RouteGuards{
		Write:     RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst),
		Authority: RequireAuthority(s.config.Extensions, s.logger),
	})
}

func (s *service) Router() *gin.Engine {
	return s.router
}

func (s *service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting MEMEk server", "port", s.config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.cleanup()
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down MEMEk server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.cleanup()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *service) cleanup() {
	if s.hub != nil {
		s.hub.Close()
	}
}
