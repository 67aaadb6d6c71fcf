// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

/*
Package services provides suture.Service wrappers for calibrec components.

Each wrapper translates a component lifecycle into suture's
Serve(ctx context.Context) error and names itself through fmt.Stringer.

# Available Services

Calibration (CalibrationService):
  - Runs a CalibrationJob once, or every Interval
  - One-shot results are delivered on Done; the service then returns
    suture.ErrDoNotRestart
  - Each run gets a correlation id, an optional timeout and run metrics

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Serves NewTelemetryRouter: Prometheus metrics and /healthz, with
    optional per-IP rate limiting
*/
package services
