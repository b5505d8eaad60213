// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)

func TestBus_Publish(t *testing.T) {
	rec := NewRecorder(0)
	var buf bytes.Buffer
	bus := NewBus(rec, LogSink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))})

	env := bus.Publish(context.Background(), KernelGlitch{SeedID: 1, Epoch: 3, Description: "Glitch! New Difficulty: 1"}, at)

	_, err := uuid.Parse(env.ID)
	require.NoError(t, err)
	assert.Equal(t, KindKernelGlitch, env.Kind)
	assert.Equal(t, at, env.At)

	got := rec.Recent(0, "")
	require.Len(t, got, 1)
	assert.Equal(t, env, got[0])

	assert.Contains(t, buf.String(), `"kind":"kernel_glitch"`)
	assert.Contains(t, buf.String(), env.ID)
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder(3)
	ctx := context.Background()
	bus := NewBus()
	bus.Subscribe(rec)

	for i := uint64(1); i <= 5; i++ {
		bus.Publish(ctx, KernelGlitch{Epoch: i}, at)
	}
	bus.Publish(ctx, VibeInscribed{PurpleDepth: 9}, at)

	all := rec.Recent(0, "")
	require.Len(t, all, 3)
	assert.Equal(t, uint64(4), all[0].Payload.(KernelGlitch).Epoch)
	assert.Equal(t, KindVibeInscribed, all[2].Kind)

	glitches := rec.Recent(1, KindKernelGlitch)
	require.Len(t, glitches, 1)
	assert.Equal(t, uint64(5), glitches[0].Payload.(KernelGlitch).Epoch)

	assert.Empty(t, rec.Recent(0, KindGapBridged))
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	bus := NewBus(hub)
	sent := bus.Publish(context.Background(), GapBridged{Completion: "gm fr", Reward: 650, Hash: "ab65"}, at)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		ID      string          `json:"id"`
		Kind    Kind            `json:"kind"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, KindGapBridged, got.Kind)

	var payload GapBridged
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "gm fr", payload.Completion)
	assert.Equal(t, uint64(650), payload.Reward)
}

func TestHub_DisconnectRemovesClient(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
