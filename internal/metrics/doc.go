// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

/*
Package metrics provides Prometheus instrumentation for calibration runs.

All collectors are registered on the default registry through promauto and
exposed by the telemetry server at the configured path (default /metrics):

	curl http://127.0.0.1:9464/metrics

# Available Metrics

Dataset Metrics:
  - calibrec_dataset_query_duration_seconds: DuckDB read/write time (histogram)
    Labels: operation (read, write), table
  - calibrec_dataset_query_errors_total: Failed reads/writes (counter)
    Labels: operation, table, error_type
  - calibrec_dataset_rows_total: Rows read or written (counter)
    Labels: operation, table

Calibration Metrics:
  - calibrec_run_duration_seconds: Complete run time (histogram)
  - calibrec_runs_total: Runs by outcome (counter)
    Labels: status (success, failure)
  - calibrec_run_errors_total: Failed runs (counter)
    Labels: category (configuration, schema, consistency, canceled, other)
  - calibrec_run_last_success_timestamp_seconds: Last successful run (gauge)
  - calibrec_users_processed_total: Calibrated users (counter)
  - calibrec_user_duration_seconds: Per-user list construction (histogram)
  - calibrec_list_length: Items placed per list (histogram)
  - calibrec_run_progress_ratio: Completed fraction of the current run (gauge)

Telemetry Metrics:
  - calibrec_http_requests_total: Requests (counter)
    Labels: method, endpoint, status
  - calibrec_http_request_duration_seconds: Latency (histogram)
    Labels: method, endpoint
  - calibrec_service_restarts_total: Supervisor restarts (counter)
    Labels: service

# Usage

The engine reports progress through an interface that Recorder satisfies:

	engine, _ := tradeoff.New(store, prefs, cands, logger,
	    tradeoff.WithProgress(tradeoff.MultiProgress(
	        tradeoff.LogProgress{Logger: logger},
	        metrics.Recorder{},
	    )))

	start := time.Now()
	recs, err := engine.Fit(ctx, nil)
	metrics.RecordRun(time.Since(start), err)
*/
package metrics
