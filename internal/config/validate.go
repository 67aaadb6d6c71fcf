// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package config

import (
	"fmt"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/validation"
)

// Validate runs the struct tag rules and the cross-field checks. Errors
// wrap recommend.ErrConfiguration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %w", recommend.ErrConfiguration, err)
	}
	if err := c.Calibration.Validate(); err != nil {
		return err
	}
	if c.Metrics.Enabled && (c.Metrics.Address == "" || c.Metrics.Path == "") {
		return fmt.Errorf("%w: metrics.address and metrics.path are required when metrics are enabled", recommend.ErrConfiguration)
	}
	if c.Data.TwoStage && c.Data.Distributions != "" {
		return fmt.Errorf("%w: data.distributions applies to single-stage runs; use popularity_distributions and genre_distributions", recommend.ErrConfiguration)
	}
	if !c.Data.TwoStage && (c.Data.PopularityDistributions != "" || c.Data.GenreDistributions != "") {
		return fmt.Errorf("%w: stage distributions require data.two_stage", recommend.ErrConfiguration)
	}
	return nil
}

// RequireInputs reports the missing input paths a calibration run needs.
func (c *Config) RequireInputs(withCandidates bool) error {
	missing := make([]string, 0, 3)
	if c.Data.Items == "" {
		missing = append(missing, "data.items")
	}
	if c.Data.Preferences == "" {
		missing = append(missing, "data.preferences")
	}
	if withCandidates && c.Data.Candidates == "" {
		missing = append(missing, "data.candidates")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", recommend.ErrConfiguration, missing)
	}
	return nil
}
