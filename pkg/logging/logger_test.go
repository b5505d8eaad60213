// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" Error ", LevelError, false},
		{"trace", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestNew_ConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Service: "test"})

	l.Info("hidden")
	l.Warn("shown", "seed_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "seed_id=7")
	assert.Contains(t, out, "service=test")
}

func TestNew_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf, JSON: true})
	l.With("request_id", "abc").Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "abc", rec["request_id"])
}

func TestNew_FileSink(t *testing.T) {
	dir := t.TempDir()
	l := New(Config{Level: LevelInfo, LogDir: dir, Service: "memek", Quiet: true})
	l.Info("to file", "k", "v")
	require.NoError(t, l.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "memek_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "to file", rec["msg"])
	assert.Equal(t, "memek", rec["service"])
}

func TestExporter_ReceivesSlogRecords(t *testing.T) {
	exp := NewBufferedExporter()
	l := New(Config{Level: LevelInfo, Quiet: true, Service: "svc", Exporter: exp})

	l.Debug("too low")
	l.Slog().With("component", "program").WithGroup("req").Warn("rejected", "code", 422)

	entries := exp.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, LevelWarn, e.Level)
	assert.Equal(t, "rejected", e.Message)
	assert.Equal(t, "svc", e.Service)
	assert.Equal(t, "program", e.Attrs["component"])
	assert.EqualValues(t, 422, e.Attrs["req.code"])
	assert.NotContains(t, e.Attrs, "service")

	require.NoError(t, l.Close())
	assert.NoError(t, l.Close(), "second close is a no-op")
}

func TestQuietWithoutSinks(t *testing.T) {
	l := New(Config{Quiet: true})
	l.Error("discarded")
	assert.NoError(t, l.Close())
}

func TestNopExporter(t *testing.T) {
	l := New(Config{Quiet: true, Exporter: NopExporter{}})
	l.Info("nothing")
	assert.NoError(t, l.Close())
}
