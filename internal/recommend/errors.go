// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package recommend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error categories. Every error produced by the engine unwraps to exactly one
// of these, so callers can branch with errors.Is.
var (
	// ErrConfiguration covers unknown registry codes, malformed values and
	// running a fit before the engine was configured.
	ErrConfiguration = errors.New("configuration error")

	// ErrSchema covers required columns missing from an input table.
	ErrSchema = errors.New("schema error")

	// ErrConsistency covers identifiers that do not line up between tables.
	ErrConsistency = errors.New("consistency error")

	// ErrArithmeticGuard is never returned: every division and logarithm in
	// the engine substitutes an epsilon for zero operands instead.
	ErrArithmeticGuard = errors.New("arithmetic guard")

	// ErrNotConfigured is returned by Fit when Configure was never called.
	ErrNotConfigured = fmt.Errorf("%w: engine must be configured before fit", ErrConfiguration)
)

// Registry names a closed set of codes.
type Registry string

// Registries resolved from configuration codes.
const (
	RegistryDistribution Registry = "distribution strategy"
	RegistryMeasure      Registry = "fairness measure"
	RegistryRelevance    Registry = "relevance aggregator"
	RegistryWeight       Registry = "tradeoff weight"
	RegistrySelector     Registry = "selector"
	RegistryTradeoff     Registry = "tradeoff"
	RegistryClassSource  Registry = "class source"
)

// UnknownCodeError reports a code that is not part of a registry.
type UnknownCodeError struct {
	Registry Registry
	Code     string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Registry, e.Code)
}

// Unwrap returns ErrConfiguration.
func (e *UnknownCodeError) Unwrap() error {
	return ErrConfiguration
}

// MissingColumnError reports a required column absent from an input table.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("missing column %s", e.Column)
	}
	return fmt.Sprintf("%s: missing column %s", e.Table, e.Column)
}

// Unwrap returns ErrSchema.
func (e *MissingColumnError) Unwrap() error {
	return ErrSchema
}

// UnknownItemError lists item ids referenced by preferences or candidates
// that are absent from the item catalog.
type UnknownItemError struct {
	ItemIDs []int
}

func (e *UnknownItemError) Error() string {
	return "items not in catalog: " + joinInts(e.ItemIDs)
}

// Unwrap returns ErrConsistency.
func (e *UnknownItemError) Unwrap() error {
	return ErrConsistency
}

// UserMismatchError lists users present in one table but missing from
// another table expected to cover the same users.
type UserMismatchError struct {
	Table   string
	UserIDs []int
}

func (e *UserMismatchError) Error() string {
	return fmt.Sprintf("users missing from %s: %s", e.Table, joinInts(e.UserIDs))
}

// Unwrap returns ErrConsistency.
func (e *UserMismatchError) Unwrap() error {
	return ErrConsistency
}

// maxListedIDs bounds the ids rendered in an error message.
const maxListedIDs = 20

func joinInts(ids []int) string {
	n := len(ids)
	if n > maxListedIDs {
		n = maxListedIDs
	}
	parts := make([]string, 0, n+1)
	for _, id := range ids[:n] {
		parts = append(parts, strconv.Itoa(id))
	}
	if len(ids) > maxListedIDs {
		parts = append(parts, fmt.Sprintf("... (%d more)", len(ids)-maxListedIDs))
	}
	return strings.Join(parts, ", ")
}
