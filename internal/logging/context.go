// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	jobKey           contextKey = "job"
	loggerKey        contextKey = "logger"
)

// NewCorrelationID returns the first 8 characters of a random UUID.
func NewCorrelationID() string {
	return uuid.NewString()[:8]
}

// WithCorrelationID stores id in ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the correlation id stored in ctx, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// WithJob stores the name of the running job in ctx.
func WithJob(ctx context.Context, job string) context.Context {
	return context.WithValue(ctx, jobKey, job)
}

// Job returns the job name stored in ctx, or "".
func Job(ctx context.Context) string {
	job, _ := ctx.Value(jobKey).(string)
	return job
}

// WithLogger stores logger in ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return l
	}
	return Logger()
}

// Ctx returns the context logger with correlation_id and job fields added
// when present.
//
//	logging.Ctx(ctx).Info().Int("users", n).Msg("calibration finished")
func Ctx(ctx context.Context) *zerolog.Logger {
	base := FromContext(ctx)
	lc := base.With()
	if id := CorrelationID(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	if job := Job(ctx); job != "" {
		lc = lc.Str("job", job)
	}
	l := lc.Logger()
	return &l
}
