// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package recommend

import (
	"fmt"
	"runtime"
	"strings"
)

// Tradeoff selects how relevance and fairness are combined into a utility.
type Tradeoff string

const (
	// TradeoffLinear is (1-lambda)*relevance +/- lambda*fairness.
	TradeoffLinear Tradeoff = "LINEAR"

	// TradeoffLogBias applies sign(u)*ln(|u|+1) to the linear utility and
	// adds a per-user bias learned from preference values.
	TradeoffLogBias Tradeoff = "LOG_BIAS"
)

// Class sources for building the item catalog.
const (
	ClassSourceGenres         = "GENRES"
	ClassSourcePopularity     = "POPULARITY"
	ClassSourcePopularityRank = "POPULARITY_RANK"
)

// Legacy missing-class fill used by the first published version of the
// framework. Zero is the canonical fill.
const LegacyMissingClassFill = 0.00001

// Config is the calibration record. It is built once per run and treated as
// read-only afterwards; use Clone before mutating a shared instance.
type Config struct {
	// Distribution is the target/realized distribution strategy code (e.g. CWS).
	Distribution string `json:"distribution" koanf:"distribution" validate:"required"`

	// Fairness is the divergence or similarity measure code (e.g. KL).
	Fairness string `json:"fairness" koanf:"fairness" validate:"required"`

	// Relevance is the list relevance aggregator code (e.g. SUM).
	Relevance string `json:"relevance" koanf:"relevance" validate:"required"`

	// Weight is either "C@<float>" or a tradeoff weight strategy code.
	Weight string `json:"weight" koanf:"weight" validate:"required"`

	// Selector is the greedy selector code. Only SURROGATE is defined.
	Selector string `json:"selector" koanf:"selector" validate:"required"`

	// Tradeoff picks the utility balance.
	Tradeoff Tradeoff `json:"tradeoff" koanf:"tradeoff" validate:"required,oneof=LINEAR LOG_BIAS"`

	// Classes picks the item class source used to build the catalog.
	Classes string `json:"classes" koanf:"classes" validate:"required,oneof=GENRES POPULARITY POPULARITY_RANK"`

	// ListSize is the number of items placed per user.
	ListSize int `json:"list_size" koanf:"list_size" validate:"min=1"`

	// Alpha smooths the realized distribution toward the target.
	Alpha float64 `json:"alpha" koanf:"alpha" validate:"min=0,max=1"`

	// D is the Minkowski order.
	D int `json:"d" koanf:"d" validate:"min=1"`

	// MissingClassFill is the value used for a class present on one side of
	// a comparison only.
	MissingClassFill float64 `json:"missing_class_fill" koanf:"missing_class_fill" validate:"min=0"`

	// BatchSize is the number of users between progress reports.
	BatchSize int `json:"batch_size" koanf:"batch_size" validate:"min=1"`

	// Workers bounds per-user parallelism. Zero means runtime.NumCPU().
	Workers int `json:"workers" koanf:"workers" validate:"min=0"`
}

// DefaultConfig returns the default calibration configuration.
func DefaultConfig() *Config {
	return &Config{
		Distribution: "CWS",
		Fairness:     "KL",
		Relevance:    "SUM",
		Weight:       "STD",
		Selector:     "SURROGATE",
		Tradeoff:     TradeoffLinear,
		Classes:      ClassSourceGenres,
		ListSize:     10,
		Alpha:        0.01,
		D:            3,
		BatchSize:    128,
		Workers:      runtime.NumCPU(),
	}
}

// Validate checks the structural validity of the configuration. Registry
// codes are resolved, and reported, when the engine is configured.
func (c *Config) Validate() error {
	for _, f := range []struct{ key, value string }{
		{"distribution", c.Distribution},
		{"fairness", c.Fairness},
		{"relevance", c.Relevance},
		{"weight", c.Weight},
		{"selector", c.Selector},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrConfiguration, f.key)
		}
	}

	switch c.Tradeoff {
	case TradeoffLinear, TradeoffLogBias:
	default:
		return &UnknownCodeError{Registry: RegistryTradeoff, Code: string(c.Tradeoff)}
	}

	switch c.Classes {
	case ClassSourceGenres, ClassSourcePopularity, ClassSourcePopularityRank:
	default:
		return &UnknownCodeError{Registry: RegistryClassSource, Code: c.Classes}
	}

	if c.ListSize < 1 {
		return fmt.Errorf("%w: list_size must be positive, got %d", ErrConfiguration, c.ListSize)
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha must be in [0, 1], got %f", ErrConfiguration, c.Alpha)
	}
	if c.D < 1 {
		return fmt.Errorf("%w: d must be positive, got %d", ErrConfiguration, c.D)
	}
	if c.MissingClassFill < 0 {
		return fmt.Errorf("%w: missing_class_fill must be non-negative, got %f", ErrConfiguration, c.MissingClassFill)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch_size must be positive, got %d", ErrConfiguration, c.BatchSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrConfiguration, c.Workers)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// EffectiveWorkers returns the worker bound, resolving zero to NumCPU.
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
