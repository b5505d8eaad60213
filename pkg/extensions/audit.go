// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extensions

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Outcome values for AuditEvent.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// AuditEvent records one attempt at an authority operation.
type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`

	// Action is the route, e.g. "POST /v1/kernels".
	Action  string `json:"action"`
	Outcome string `json:"outcome"`

	// Reason is set when Outcome is OutcomeDenied.
	Reason string `json:"reason,omitempty"`
}

// AuditLogger records authority actions. Log must not block for long.
type AuditLogger interface {
	Log(ctx context.Context, event AuditEvent) error
}

// NopAuditLogger discards all events.
type NopAuditLogger struct{}

func (l *NopAuditLogger) Log(context.Context, AuditEvent) error { return nil }

// SlogAuditLogger writes events as structured log lines.
type SlogAuditLogger struct {
	logger *slog.Logger
}

// NewSlogAuditLogger logs to logger, or slog.Default() when nil.
func NewSlogAuditLogger(logger *slog.Logger) *SlogAuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditLogger{logger: logger.With("component", "audit")}
}

func (l *SlogAuditLogger) Log(ctx context.Context, e AuditEvent) error {
	level := slog.LevelInfo
	if e.Outcome == OutcomeDenied {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "authority action",
		"action", e.Action,
		"outcome", e.Outcome,
		"subject", e.Subject,
		"request_id", e.RequestID,
		"reason", e.Reason,
	)
	return nil
}

// MemoryAuditLogger keeps events in memory.
type MemoryAuditLogger struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (l *MemoryAuditLogger) Log(_ context.Context, e AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

// Events returns a copy of everything logged so far.
func (l *MemoryAuditLogger) Events() []AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEvent, len(l.events))
	copy(out, l.events)
	return out
}
