// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/calibrec/internal/logging"
	"github.com/tomtom215/calibrec/internal/metrics"
)

// CalibrationJob runs one complete calibration: load, fit and write.
type CalibrationJob interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to CalibrationJob.
type JobFunc func(ctx context.Context) error

// Run calls f.
func (f JobFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// CalibrationServiceConfig holds configuration for the calibration service.
type CalibrationServiceConfig struct {
	// Interval between runs. Zero runs the job once and stops.
	Interval time.Duration

	// Timeout bounds a single run. Zero means no bound.
	Timeout time.Duration
}

// CalibrationService runs a calibration job under supervision.
//
// In one-shot mode the result of the single run is delivered on Done and
// the service returns suture.ErrDoNotRestart. In periodic mode the job runs
// immediately and then on every tick; a failed run is logged and retried on
// the next tick.
type CalibrationService struct {
	job    CalibrationJob
	config CalibrationServiceConfig
	logger zerolog.Logger
	name   string

	runs     atomic.Int64
	done     chan error
	doneOnce sync.Once
}

// NewCalibrationService creates a calibration service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCalibrationService(job CalibrationJob, cfg CalibrationServiceConfig, logger zerolog.Logger) *CalibrationService {
	return &CalibrationService{
		job:    job,
		config: cfg,
		logger: logger.With().Str("service", "calibration").Logger(),
		name:   "calibration-service",
		done:   make(chan error, 1),
	}
}

// Serve implements suture.Service.
func (s *CalibrationService) Serve(ctx context.Context) error {
	if s.config.Interval <= 0 {
		err := s.run(ctx)
		s.doneOnce.Do(func() {
			s.done <- err
			close(s.done)
		})
		return suture.ErrDoNotRestart
	}

	s.logger.Info().Dur("interval", s.config.Interval).Msg("calibration service starting")
	if err := s.run(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("calibration run failed (will retry on schedule)")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("calibration service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.run(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled calibration run failed")
			}
		}
	}
}

// run performs one calibration with its own correlation id and timeout.
func (s *CalibrationService) run(ctx context.Context) error {
	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	id := logging.NewCorrelationID()
	runCtx = logging.WithLogger(runCtx, s.logger)
	runCtx = logging.WithCorrelationID(runCtx, id)
	runCtx = logging.WithJob(runCtx, "calibration")
	log := logging.Ctx(runCtx)

	n := s.runs.Add(1)
	start := time.Now()
	log.Info().Int64("run", n).Msg("calibration run starting")

	err := s.job.Run(runCtx)
	elapsed := time.Since(start)
	metrics.RecordRun(elapsed, err)

	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("calibration run failed")
		return err
	}
	log.Info().Dur("duration", elapsed).Msg("calibration run complete")
	return nil
}

// Done delivers the result of a one-shot run. It is never written in
// periodic mode.
func (s *CalibrationService) Done() <-chan error {
	return s.done
}

// Runs returns the number of runs started.
func (s *CalibrationService) Runs() int64 {
	return s.runs.Load()
}

// String returns the service name for logging.
func (s *CalibrationService) String() string {
	return s.name
}
