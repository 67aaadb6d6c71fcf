// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/calibrec/internal/config"
	"github.com/tomtom215/calibrec/internal/dataset"
	"github.com/tomtom215/calibrec/internal/logging"
	"github.com/tomtom215/calibrec/internal/metrics"
	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/catalog"
	"github.com/tomtom215/calibrec/internal/recommend/tradeoff"
)

// fitter is implemented by the single-stage and two-stage engines.
type fitter interface {
	Fit(ctx context.Context, users []int) ([]recommend.Recommendation, error)
}

// calibrationJob loads the configured tables, fits and writes the output.
// It remembers the result of the last run for the health probe.
type calibrationJob struct {
	cfg    *config.Config
	stdout io.Writer

	mu      sync.Mutex
	lastErr error
}

func newCalibrationJob(cfg *config.Config, stdout io.Writer) *calibrationJob {
	return &calibrationJob{cfg: cfg, stdout: stdout}
}

// Run implements services.CalibrationJob.
func (j *calibrationJob) Run(ctx context.Context) error {
	err := j.run(ctx)
	j.mu.Lock()
	j.lastErr = err
	j.mu.Unlock()
	return err
}

// Health reports the error of the last finished run.
func (j *calibrationJob) Health() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastErr != nil {
		return fmt.Errorf("last calibration run failed: %w", j.lastErr)
	}
	return nil
}

func (j *calibrationJob) run(ctx context.Context) error {
	log := *logging.Ctx(ctx)
	data := j.cfg.Data

	db, err := dataset.Open(ctx, duckDBConfig(j.cfg), log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing dataset database")
		}
	}()

	items, err := db.Items(ctx, data.Items)
	if err != nil {
		return err
	}
	prefs, err := db.Preferences(ctx, data.Preferences)
	if err != nil {
		return err
	}
	cands, err := db.Candidates(ctx, data.Candidates)
	if err != nil {
		return err
	}
	log.Info().
		Int("items", len(items.Rows)).
		Int("preferences", len(prefs.Rows)).
		Int("candidates", len(cands.Rows)).
		Bool("two_stage", data.TwoStage).
		Msg("tables loaded")

	progress := tradeoff.WithProgress(tradeoff.MultiProgress(
		tradeoff.LogProgress{Logger: log},
		metrics.Recorder{},
	))

	var engine fitter
	if data.TwoStage {
		engine, err = j.twoStage(ctx, db, items, prefs, cands, log, progress)
	} else {
		engine, err = j.singleStage(ctx, db, items, prefs, cands, log, progress)
	}
	if err != nil {
		return err
	}

	recs, err := engine.Fit(ctx, data.Users)
	if err != nil {
		return err
	}

	if data.Output == "" {
		return dataset.EncodeRecommendations(j.stdout, recs)
	}
	if err := db.WriteRecommendations(ctx, data.Output, recs); err != nil {
		return err
	}
	log.Info().Str("output", data.Output).Int("rows", len(recs)).Msg("recommendations written")
	return nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (j *calibrationJob) singleStage(ctx context.Context, db *dataset.DB, items recommend.ItemTable, prefs, cands recommend.Frame, log zerolog.Logger, opts ...tradeoff.Option) (fitter, error) {
	store, err := catalog.FromTable(items, j.cfg.Calibration.Classes, prefs)
	if err != nil {
		return nil, err
	}
	if path := j.cfg.Data.Distributions; path != "" {
		dists, err := db.UserDistributions(ctx, path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tradeoff.WithDistributions(dists.Clean()))
	}

	engine, err := tradeoff.New(store, prefs, cands, log, opts...)
	if err != nil {
		return nil, err
	}
	if err := engine.Configure(&j.cfg.Calibration); err != nil {
		return nil, err
	}
	return engine, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (j *calibrationJob) twoStage(ctx context.Context, db *dataset.DB, items recommend.ItemTable, prefs, cands recommend.Frame, log zerolog.Logger, opts ...tradeoff.Option) (fitter, error) {
	var dists tradeoff.StageDistributions
	if path := j.cfg.Data.PopularityDistributions; path != "" {
		d, err := db.UserDistributions(ctx, path)
		if err != nil {
			return nil, err
		}
		dists.Popularity = d.Clean()
	}
	if path := j.cfg.Data.GenreDistributions; path != "" {
		d, err := db.UserDistributions(ctx, path)
		if err != nil {
			return nil, err
		}
		dists.Genres = d.Clean()
	}

	engine, err := tradeoff.NewTwoStage(items, prefs, cands, dists, log, opts...)
	if err != nil {
		return nil, err
	}
	if err := engine.Configure(&j.cfg.Calibration); err != nil {
		return nil, err
	}
	first, second := engine.Sources()
	log.Info().Str("first_stage", first).Str("second_stage", second).Msg("two-stage calibration configured")
	return engine, nil
}

func duckDBConfig(cfg *config.Config) dataset.Config {
	return dataset.Config{
		Path:      cfg.DuckDB.Path,
		MaxMemory: cfg.DuckDB.MaxMemory,
		Threads:   cfg.DuckDB.Threads,
	}
}
