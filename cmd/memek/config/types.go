// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the memek CLI configuration: a YAML file under
// ~/.memek with MEMEK_* environment overrides.
package config

import "time"

// CurrentConfigVersion is written into new config files.
const CurrentConfigVersion = "1"

// MemekConfig is the root of memek.yaml.
type MemekConfig struct {
	Meta      MetaConfig      `yaml:"meta"`
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Storage   StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	Issuance  IssuanceConfig  `yaml:"issuance" envPrefix:"ISSUANCE_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOG_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

// ServerConfig configures `memek serve`.
type ServerConfig struct {
	Port           int     `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	GinMode        string  `yaml:"gin_mode" env:"GIN_MODE" validate:"omitempty,oneof=debug release test"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS" validate:"min=0"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST" validate:"min=0"`
	EventBuffer    int     `yaml:"event_buffer" env:"EVENT_BUFFER" validate:"min=0"`

	// AdminToken guards authority routes. Empty admits every caller.
	AdminToken string `yaml:"admin_token,omitempty" env:"ADMIN_TOKEN"`
}

// StorageConfig configures the BadgerDB ledger.
type StorageConfig struct {
	Path            string        `yaml:"path" env:"PATH" validate:"required_unless=InMemory true"`
	InMemory        bool          `yaml:"in_memory" env:"IN_MEMORY"`
	SyncWrites      bool          `yaml:"sync_writes" env:"SYNC_WRITES"`
	GCInterval      time.Duration `yaml:"gc_interval" env:"GC_INTERVAL" validate:"min=0"`
	ConflictRetries int           `yaml:"conflict_retries" env:"CONFLICT_RETRIES" validate:"min=0"`
}

// IssuanceConfig selects the reward backends. Primary serves bridge,
// Alternate serves bridge-alt.
type IssuanceConfig struct {
	Primary   string `yaml:"primary" env:"PRIMARY" validate:"required,oneof=token token-2022"`
	Alternate string `yaml:"alternate" env:"ALTERNATE" validate:"required,oneof=token token-2022"`
	Decimals  uint8  `yaml:"decimals" env:"DECIMALS" validate:"max=19"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn warning error"`
	LogDir string `yaml:"log_dir" env:"DIR"`
}

// TelemetryConfig mirrors telemetry.Config.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" env:"SERVICE_NAME" validate:"required"`
	Environment    string `yaml:"environment" env:"ENVIRONMENT"`
	TraceExporter  string `yaml:"trace_exporter" env:"TRACE_EXPORTER" validate:"oneof=otlp stdout none"`
	MetricExporter string `yaml:"metric_exporter" env:"METRIC_EXPORTER" validate:"oneof=prometheus stdout none"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	OTLPInsecure   bool   `yaml:"otlp_insecure" env:"OTLP_INSECURE"`
}

// DefaultConfig returns the settings written on first run.
func DefaultConfig() MemekConfig {
	return MemekConfig{
		Meta: MetaConfig{Version: CurrentConfigVersion},
		Server: ServerConfig{
			Port:           12290,
			GinMode:        "release",
			RateLimitRPS:   20,
			RateLimitBurst: 40,
			EventBuffer:    256,
		},
		Storage: StorageConfig{
			Path:            "~/.memek/data",
			SyncWrites:      true,
			GCInterval:      5 * time.Minute,
			ConflictRetries: 16,
		},
		Issuance: IssuanceConfig{
			Primary:   "token",
			Alternate: "token-2022",
			Decimals:  9,
		},
		Logging: LoggingConfig{
			Level:  "info",
			LogDir: "~/.memek/logs",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "memek",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
		},
	}
}
