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
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	require.NotNil(t, opts.AuthProvider)
	require.NotNil(t, opts.AuditLogger)

	info, err := opts.AuthProvider.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, info.HasRole(RoleAuthority))
}

func TestServiceOptions_Normalize(t *testing.T) {
	opts := ServiceOptions{}.Normalize()
	assert.IsType(t, &NopAuthProvider{}, opts.AuthProvider)
	assert.IsType(t, &NopAuditLogger{}, opts.AuditLogger)

	audit := &MemoryAuditLogger{}
	opts = ServiceOptions{}.WithAudit(audit).Normalize()
	assert.Same(t, audit, opts.AuditLogger)
}

func TestTokenAuthProvider(t *testing.T) {
	p := NewTokenAuthProvider("s3cret")
	ctx := context.Background()

	info, err := p.Validate(ctx, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "token-authority", info.Subject)
	assert.True(t, info.HasRole(RoleAuthority))
	assert.False(t, info.HasRole("viewer"))

	_, err = p.Validate(ctx, "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = p.Validate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMemoryAuditLogger(t *testing.T) {
	l := &MemoryAuditLogger{}
	require.NoError(t, l.Log(context.Background(), AuditEvent{Action: "POST /v1/kernels", Outcome: OutcomeAllowed}))

	events := l.Events()
	require.Len(t, events, 1)
	events[0].Action = "mutated"
	assert.Equal(t, "POST /v1/kernels", l.Events()[0].Action)
}

func TestSlogAuditLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, l.Log(context.Background(), AuditEvent{
		Action:  "POST /v1/mints",
		Outcome: OutcomeDenied,
		Reason:  "token rejected",
	}))
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "component=audit")
	assert.Contains(t, out, `reason="token rejected"`)
}
