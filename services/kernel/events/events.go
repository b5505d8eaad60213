// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package events carries program notifications to observers.
//
// Operations publish only after their ledger transaction commits, so an
// observer never sees an event for state that was rolled back.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/memek/services/kernel/records"
)

// Kind names an event type.
type Kind string

const (
	KindKernelGlitch  Kind = "kernel_glitch"
	KindGapBridged    Kind = "gap_bridged"
	KindVibeInscribed Kind = "vibe_inscribed"
)

// Payload is implemented by every event body.
type Payload interface {
	EventKind() Kind
}

// KernelGlitch is emitted when a puzzle advances an epoch.
type KernelGlitch struct {
	SeedID      uint64 `json:"seed_id"`
	Epoch       uint64 `json:"epoch"`
	Description string `json:"description"`
}

func (KernelGlitch) EventKind() Kind { return KindKernelGlitch }

// GapBridged is emitted by the alternate-standard completion path.
type GapBridged struct {
	Participant records.Address `json:"participant"`
	Kernel      records.Address `json:"kernel"`
	Completion  string          `json:"completion"`
	Reward      uint64          `json:"reward"`
	Hash        string          `json:"hash"`
}

func (GapBridged) EventKind() Kind { return KindGapBridged }

// VibeInscribed is emitted when an inscription is sealed.
type VibeInscribed struct {
	Participant records.Address `json:"participant"`
	Hash        string          `json:"hash"`
	PurpleDepth uint8           `json:"purple_depth"`
	ClaudeTau   uint64          `json:"claude_tau"`
	Timestamp   int64           `json:"timestamp"`
}

func (VibeInscribed) EventKind() Kind { return KindVibeInscribed }

// Envelope wraps a payload with identity and time.
type Envelope struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	At      time.Time `json:"at"`
	Payload Payload   `json:"payload"`
}

// Sink receives published envelopes. Deliver must not block for long; the
// bus calls sinks synchronously from the publishing goroutine.
type Sink interface {
	Deliver(ctx context.Context, env Envelope)
}

// Bus fans envelopes out to sinks.
//
// Thread Safety: Safe for concurrent use.
type Bus struct {
	mu    sync.RWMutex
	sinks []Sink
}

// NewBus returns a bus delivering to the given sinks.
func NewBus(sinks ...Sink) *Bus {
	return &Bus{sinks: sinks}
}

// Subscribe adds a sink.
func (b *Bus) Subscribe(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Publish wraps p and delivers it to every sink.
func (b *Bus) Publish(ctx context.Context, p Payload, at time.Time) Envelope {
	env := Envelope{
		ID:      uuid.New().String(),
		Kind:    p.EventKind(),
		At:      at.UTC(),
		Payload: p,
	}

	b.mu.RLock()
	sinks := make([]Sink, len(b.sinks))
	copy(sinks, b.sinks)
	b.mu.RUnlock()

	for _, s := range sinks {
		s.Deliver(ctx, env)
	}
	return env
}

// =============================================================================
// Sinks
// =============================================================================

// LogSink writes each envelope as a structured log line.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Deliver(ctx context.Context, env Envelope) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "event",
		slog.String("event_id", env.ID),
		slog.String("kind", string(env.Kind)),
		slog.Any("payload", env.Payload),
	)
}

// DefaultRecorderSize is how many envelopes a Recorder keeps by default.
const DefaultRecorderSize = 256

// Recorder keeps the most recent envelopes in memory.
//
// Thread Safety: Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	size int
	buf  []Envelope
}

// NewRecorder keeps up to size envelopes. Non-positive means
// DefaultRecorderSize.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultRecorderSize
	}
	return &Recorder{size: size}
}

func (r *Recorder) Deliver(_ context.Context, env Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, env)
	if over := len(r.buf) - r.size; over > 0 {
		r.buf = append(r.buf[:0], r.buf[over:]...)
	}
}

// Recent returns up to n envelopes, oldest first, optionally filtered by
// kind. n <= 0 returns everything kept.
func (r *Recorder) Recent(n int, kind Kind) []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Envelope, 0, len(r.buf))
	for _, env := range r.buf {
		if kind == "" || env.Kind == kind {
			out = append(out, env)
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
