// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package services

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/calibrec/internal/metrics"
)

// HealthFunc reports whether the process is healthy. A nil HealthFunc
// always reports healthy.
type HealthFunc func() error

// healthResponse is the /healthz body.
type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// TelemetryConfig configures the telemetry router.
type TelemetryConfig struct {
	// MetricsPath serves Prometheus metrics. Defaults to /metrics.
	MetricsPath string

	// Health backs /healthz.
	Health HealthFunc

	// RateLimit is the number of requests per RateWindow allowed from one
	// client IP. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
}

// NewTelemetryRouter serves Prometheus metrics and a health probe at
// /healthz.
func NewTelemetryRouter(cfg TelemetryConfig) http.Handler {
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	health := cfg.Health

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(recordRequests)
	if cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(cfg.RateLimit, window))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if health != nil {
			if err := health(); err != nil {
				resp = healthResponse{Status: "unhealthy", Error: err.Error()}
				status = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	})
	r.Handle(metricsPath, promhttp.Handler())

	return r
}

// recordRequests records every request by its route pattern. Unrouted
// paths share one label value.
func recordRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(r.Method, endpoint, status, time.Since(start))
	})
}
