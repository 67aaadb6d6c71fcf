// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"calibrec.yaml",
	"calibrec.yml",
	"/etc/calibrec/config.yaml",
	"/etc/calibrec/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envMappings maps environment variables (lowercased) to koanf keys.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"calibrec_items":                    "data.items",
	"calibrec_preferences":              "data.preferences",
	"calibrec_candidates":               "data.candidates",
	"calibrec_distributions":            "data.distributions",
	"calibrec_popularity_distributions": "data.popularity_distributions",
	"calibrec_genre_distributions":      "data.genre_distributions",
	"calibrec_output":                   "data.output",
	"calibrec_users":                    "data.users",
	"calibrec_two_stage":                "data.two_stage",

	"duckdb_path":       "duckdb.path",
	"duckdb_max_memory": "duckdb.max_memory",
	"duckdb_threads":    "duckdb.threads",

	"calibrec_distribution":       "calibration.distribution",
	"calibrec_fairness":           "calibration.fairness",
	"calibrec_relevance":          "calibration.relevance",
	"calibrec_weight":             "calibration.weight",
	"calibrec_selector":           "calibration.selector",
	"calibrec_tradeoff":           "calibration.tradeoff",
	"calibrec_classes":            "calibration.classes",
	"calibrec_list_size":          "calibration.list_size",
	"calibrec_alpha":              "calibration.alpha",
	"calibrec_d":                  "calibration.d",
	"calibrec_missing_class_fill": "calibration.missing_class_fill",
	"calibrec_batch_size":         "calibration.batch_size",
	"calibrec_workers":            "calibration.workers",

	"metrics_enabled":    "metrics.enabled",
	"metrics_address":    "metrics.address",
	"metrics_path":       "metrics.path",
	"metrics_rate_limit": "metrics.rate_limit",

	"schedule_interval": "schedule.interval",
	"schedule_timeout":  "schedule.timeout",
}

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"data.users",
}

// Load builds the configuration from defaults, the config file at path
// (or the discovered one when path is empty) and the environment, then
// validates it.
func Load(path string) (*Config, error) {
	k, err := load(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func load(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}
	return k, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first
// existing default path, else "".
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
