// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "memek.yaml")
	var notice bytes.Buffer

	cfg, err := Load(path, &notice)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Contains(t, notice.String(), "First run detected")
	assert.Equal(t, 12290, cfg.Server.Port)
	assert.Equal(t, "token", cfg.Issuance.Primary)
	assert.Equal(t, "token-2022", cfg.Issuance.Alternate)
	assert.Equal(t, CurrentConfigVersion, cfg.Meta.Version)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".memek", "data"), cfg.Storage.Path)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memek.yaml")
	custom := DefaultConfig()
	custom.Server.Port = 9000
	custom.Storage.Path = "/var/lib/memek"
	custom.Storage.GCInterval = time.Minute
	custom.Issuance.Primary = "token-2022"
	data, err := yaml.Marshal(custom)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/var/lib/memek", cfg.Storage.Path)
	assert.Equal(t, time.Minute, cfg.Storage.GCInterval)
	assert.Equal(t, "token-2022", cfg.Issuance.Primary)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memek.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8088\n"), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
	assert.Equal(t, uint8(9), cfg.Issuance.Decimals)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memek.yaml")
	t.Setenv("MEMEK_SERVER_PORT", "7000")
	t.Setenv("MEMEK_STORAGE_IN_MEMORY", "true")
	t.Setenv("MEMEK_ISSUANCE_ALTERNATE", "token")
	t.Setenv("MEMEK_LOG_LEVEL", "debug")
	t.Setenv("MEMEK_TELEMETRY_TRACE_EXPORTER", "stdout")
	t.Setenv("MEMEK_SERVER_ADMIN_TOKEN", "s3cret")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.True(t, cfg.Storage.InMemory)
	assert.Equal(t, "token", cfg.Issuance.Alternate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
	assert.Equal(t, "s3cret", cfg.Server.AdminToken)
}

func TestLoad_InvalidEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memek.yaml")
	t.Setenv("MEMEK_SERVER_PORT", "not-a-port")

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memek.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MemekConfig)
		wantErr bool
	}{
		{"defaults", func(*MemekConfig) {}, false},
		{"bad port", func(c *MemekConfig) { c.Server.Port = 70000 }, true},
		{"unknown standard", func(c *MemekConfig) { c.Issuance.Primary = "nft" }, true},
		{"too many decimals", func(c *MemekConfig) { c.Issuance.Decimals = 20 }, true},
		{"bad log level", func(c *MemekConfig) { c.Logging.Level = "loud" }, true},
		{"bad exporter", func(c *MemekConfig) { c.Telemetry.TraceExporter = "jaeger" }, true},
		{"missing path", func(c *MemekConfig) { c.Storage.Path = "" }, true},
		{"in-memory without path", func(c *MemekConfig) {
			c.Storage.Path = ""
			c.Storage.InMemory = true
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), expandHome("~/x"))
	assert.Equal(t, "/abs", expandHome("/abs"))
	assert.Equal(t, "rel/~", expandHome("rel/~"))
}
