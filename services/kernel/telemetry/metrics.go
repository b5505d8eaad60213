// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the program's instruments.
const MeterName = "github.com/AleutianAI/memek/services/kernel"

// Metrics holds the program's instruments.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// CompletionsTotal counts accepted completions by tier and standard.
	CompletionsTotal metric.Int64Counter

	// RejectionsTotal counts completions that lacked resonance.
	RejectionsTotal metric.Int64Counter

	// RewardBaseUnitsTotal sums issued base units by standard.
	RewardBaseUnitsTotal metric.Int64Counter

	// EvolutionsTotal counts epoch advances.
	EvolutionsTotal metric.Int64Counter

	// InscriptionsTotal counts sealed inscriptions.
	InscriptionsTotal metric.Int64Counter

	// OperationDuration records operation latency in seconds by op.
	OperationDuration metric.Float64Histogram
}

// NewMetrics registers every instrument with meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	if m.CompletionsTotal, err = meter.Int64Counter("memek_completions_total",
		metric.WithDescription("Accepted completions by tier and standard")); err != nil {
		return nil, fmt.Errorf("create completions counter: %w", err)
	}
	if m.RejectionsTotal, err = meter.Int64Counter("memek_rejections_total",
		metric.WithDescription("Completions rejected for lacking resonance")); err != nil {
		return nil, fmt.Errorf("create rejections counter: %w", err)
	}
	if m.RewardBaseUnitsTotal, err = meter.Int64Counter("memek_reward_base_units_total",
		metric.WithDescription("Reward base units issued by standard")); err != nil {
		return nil, fmt.Errorf("create reward counter: %w", err)
	}
	if m.EvolutionsTotal, err = meter.Int64Counter("memek_evolutions_total",
		metric.WithDescription("Kernel epoch advances")); err != nil {
		return nil, fmt.Errorf("create evolutions counter: %w", err)
	}
	if m.InscriptionsTotal, err = meter.Int64Counter("memek_inscriptions_total",
		metric.WithDescription("Vibe inscriptions sealed")); err != nil {
		return nil, fmt.Errorf("create inscriptions counter: %w", err)
	}
	if m.OperationDuration, err = meter.Float64Histogram("memek_operation_duration_seconds",
		metric.WithDescription("Program operation latency"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return &m, nil
}

// DefaultMetrics registers instruments on the global meter provider. It
// falls back to instruments from a no-op provider if registration fails.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(otel.Meter(MeterName))
	if err != nil {
		otel.Handle(err)
		m, _ = NewMetrics(noopMeter())
	}
	return m
}

// RecordCompletion counts an accepted completion and its issued amount.
// Amounts beyond the int64 range are clamped.
func (m *Metrics) RecordCompletion(ctx context.Context, tier, standard string, baseUnits uint64) {
	m.CompletionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("standard", standard),
	))
	amount := int64(baseUnits)
	if baseUnits > 1<<63-1 {
		amount = 1<<63 - 1
	}
	m.RewardBaseUnitsTotal.Add(ctx, amount, metric.WithAttributes(attribute.String("standard", standard)))
}

// RecordRejection counts a completion that lacked resonance.
func (m *Metrics) RecordRejection(ctx context.Context) {
	m.RejectionsTotal.Add(ctx, 1)
}

// RecordEvolution counts an epoch advance.
func (m *Metrics) RecordEvolution(ctx context.Context) {
	m.EvolutionsTotal.Add(ctx, 1)
}

// RecordInscription counts a sealed inscription.
func (m *Metrics) RecordInscription(ctx context.Context) {
	m.InscriptionsTotal.Add(ctx, 1)
}

// ObserveDuration records time since start for op.
func (m *Metrics) ObserveDuration(ctx context.Context, op string, start time.Time) {
	m.OperationDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("op", op)))
}
