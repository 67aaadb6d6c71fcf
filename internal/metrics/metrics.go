// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/calibrec/internal/recommend"
)

var (
	// Dataset Metrics
	DatasetQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calibrec_dataset_query_duration_seconds",
			Help:    "Duration of DuckDB dataset reads and writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DatasetQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibrec_dataset_query_errors_total",
			Help: "Total number of failed dataset reads and writes",
		},
		[]string{"operation", "table", "error_type"},
	)

	DatasetRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibrec_dataset_rows_total",
			Help: "Total number of rows read or written per table",
		},
		[]string{"operation", "table"},
	)

	// Calibration Metrics
	CalibrationRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "calibrec_run_duration_seconds",
			Help:    "Duration of complete calibration runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600},
		},
	)

	CalibrationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibrec_runs_total",
			Help: "Total number of calibration runs by outcome",
		},
		[]string{"status"}, // "success", "failure"
	)

	CalibrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibrec_run_errors_total",
			Help: "Total number of failed calibration runs by error category",
		},
		[]string{"category"}, // "configuration", "schema", "consistency", "canceled", "other"
	)

	CalibrationLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calibrec_run_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful calibration run",
		},
	)

	CalibrationUsers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calibrec_users_processed_total",
			Help: "Total number of users whose list was calibrated",
		},
	)

	CalibrationUserDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "calibrec_user_duration_seconds",
			Help:    "Time spent building one calibrated list",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	CalibrationListLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "calibrec_list_length",
			Help:    "Number of items placed per calibrated list",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	CalibrationProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calibrec_run_progress_ratio",
			Help: "Fraction of users completed in the current run",
		},
	)

	// Telemetry Server Metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibrec_http_requests_total",
			Help: "Total number of telemetry HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calibrec_http_request_duration_seconds",
			Help:    "Telemetry HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"method", "endpoint"},
	)

	// Supervisor Metrics
	ServiceRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibrec_service_restarts_total",
			Help: "Total number of supervised service restarts",
		},
		[]string{"service"},
	)
)

// RecordDatasetQuery records a dataset read or write. rows is added to the
// row counter only on success.
func RecordDatasetQuery(operation, table string, duration time.Duration, rows int, err error) {
	DatasetQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DatasetQueryErrors.WithLabelValues(operation, table, ErrorCategory(err)).Inc()
		return
	}
	DatasetRows.WithLabelValues(operation, table).Add(float64(rows))
}

// RecordRun records the outcome of a calibration run.
func RecordRun(duration time.Duration, err error) {
	CalibrationRunDuration.Observe(duration.Seconds())
	if err != nil {
		CalibrationRuns.WithLabelValues("failure").Inc()
		CalibrationErrors.WithLabelValues(ErrorCategory(err)).Inc()
		return
	}
	CalibrationRuns.WithLabelValues("success").Inc()
	CalibrationLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordHTTPRequest records a telemetry request.
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordServiceRestart counts a supervisor restart of service.
func RecordServiceRestart(service string) {
	ServiceRestarts.WithLabelValues(service).Inc()
}

// ErrorCategory maps err to a bounded label value.
func ErrorCategory(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, recommend.ErrConfiguration):
		return "configuration"
	case errors.Is(err, recommend.ErrSchema):
		return "schema"
	case errors.Is(err, recommend.ErrConsistency):
		return "consistency"
	default:
		return "other"
	}
}

// Recorder reports calibration progress to Prometheus. It satisfies the
// engine's progress interface.
type Recorder struct{}

// UserDone observes one finished user.
func (Recorder) UserDone(_ int, placed int, elapsed time.Duration) {
	CalibrationUsers.Inc()
	CalibrationUserDuration.Observe(elapsed.Seconds())
	CalibrationListLength.Observe(float64(placed))
}

// BatchDone updates the progress gauge.
func (Recorder) BatchDone(done, total int) {
	if total <= 0 {
		CalibrationProgress.Set(1)
		return
	}
	CalibrationProgress.Set(float64(done) / float64(total))
}
