// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package config loads the calibrec configuration.
//
// Sources are layered, later layers overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: the --config flag, CONFIG_PATH, or the first
//     of DefaultConfigPaths that exists
//  3. Environment variables listed in envMappings
//
// A minimal file:
//
//	data:
//	  items: /data/items.csv
//	  preferences: /data/train.csv
//	  candidates: /data/candidates.parquet
//	  output: /data/calibrated.csv
//	calibration:
//	  distribution: CWS
//	  fairness: KL
//	  weight: C@0.5
//	  list_size: 10
package config

import (
	"time"

	"github.com/tomtom215/calibrec/internal/recommend"
)

// Config is the complete application configuration.
type Config struct {
	Logging     LoggingConfig    `koanf:"logging"`
	Data        DataConfig       `koanf:"data"`
	DuckDB      DuckDBConfig     `koanf:"duckdb"`
	Calibration recommend.Config `koanf:"calibration"`
	Metrics     MetricsConfig    `koanf:"metrics"`
	Schedule    ScheduleConfig   `koanf:"schedule"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DataConfig names the input and output tables. Every path must end in a
// supported extension (.csv, .tsv, .parquet, .json, .ndjson).
type DataConfig struct {
	// Items is the item table with GENRES and/or POPULARITY columns.
	Items string `koanf:"items" validate:"omitempty,datafile"`

	// Preferences is the user preference table.
	Preferences string `koanf:"preferences" validate:"omitempty,datafile"`

	// Candidates is the upstream candidate table.
	Candidates string `koanf:"candidates" validate:"omitempty,datafile"`

	// Distributions is an optional precomputed USER_ID x class table used
	// as the target distribution of a single-stage run.
	Distributions string `koanf:"distributions" validate:"omitempty,datafile"`

	// PopularityDistributions and GenreDistributions are the optional
	// precomputed targets of the two stages of a two-stage run.
	PopularityDistributions string `koanf:"popularity_distributions" validate:"omitempty,datafile"`
	GenreDistributions      string `koanf:"genre_distributions" validate:"omitempty,datafile"`

	// Output receives the calibrated lists or exported distributions.
	Output string `koanf:"output" validate:"omitempty,datafile"`

	// Users restricts a run to these users. Empty means every preference
	// user.
	Users []int `koanf:"users"`

	// TwoStage calibrates popularity first and genres second.
	TwoStage bool `koanf:"two_stage"`
}

// DuckDBConfig configures the embedded DuckDB used to read and write
// tables.
type DuckDBConfig struct {
	// Path is the database file. Empty opens an in-memory database.
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory_limit, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is DuckDB's thread count. Zero keeps DuckDB's default.
	Threads int `koanf:"threads" validate:"min=0"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Address string `koanf:"address" validate:"omitempty,hostname_port"`
	Path    string `koanf:"path" validate:"omitempty,startswith=/"`

	// RateLimit is the number of requests per minute accepted from one
	// client IP. Zero disables limiting.
	RateLimit int `koanf:"rate_limit" validate:"min=0"`
}

// ScheduleConfig controls repeated runs under the supervisor.
type ScheduleConfig struct {
	// Interval between runs. Zero runs once.
	Interval time.Duration `koanf:"interval" validate:"min=0"`

	// Timeout bounds a single run. Zero means no bound.
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`
}

// defaultConfig returns the defaults layered under every other source.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		DuckDB: DuckDBConfig{
			MaxMemory: "2GB",
		},
		Calibration: *recommend.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled:   false,
			Address:   "127.0.0.1:9464",
			Path:      "/metrics",
			RateLimit: 120,
		},
	}
}

// Default returns a copy of the built-in defaults.
func Default() *Config {
	return defaultConfig()
}
