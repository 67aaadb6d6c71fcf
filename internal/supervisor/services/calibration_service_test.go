// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/calibrec/internal/logging"
	"github.com/tomtom215/calibrec/internal/metrics"
)

// fakeJob records its invocations.
type fakeJob struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
	ids   []string
}

func (f *fakeJob) Run(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	f.ids = append(f.ids, logging.CorrelationID(ctx))
	err, delay := f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func (f *fakeJob) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCalibrationService_String(t *testing.T) {
	svc := NewCalibrationService(&fakeJob{}, CalibrationServiceConfig{}, zerolog.Nop())
	if got := svc.String(); got != "calibration-service" {
		t.Errorf("String() = %q, want calibration-service", got)
	}
	var _ suture.Service = svc
}

func TestCalibrationService_OneShot(t *testing.T) {
	tests := []struct {
		name    string
		jobErr  error
		wantErr bool
	}{
		{"success", nil, false},
		{"failure", errors.New("write failed"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &fakeJob{err: tt.jobErr}
			svc := NewCalibrationService(job, CalibrationServiceConfig{}, zerolog.Nop())

			if err := svc.Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) {
				t.Errorf("Serve() error = %v, want ErrDoNotRestart", err)
			}
			select {
			case err := <-svc.Done():
				if (err != nil) != tt.wantErr {
					t.Errorf("Done() = %v, wantErr %v", err, tt.wantErr)
				}
			default:
				t.Fatal("Done() has no result")
			}
			if job.Calls() != 1 || svc.Runs() != 1 {
				t.Errorf("calls = %d, runs = %d, want 1", job.Calls(), svc.Runs())
			}
			if len(job.ids[0]) != 8 {
				t.Errorf("correlation id = %q, want 8 chars", job.ids[0])
			}
		})
	}
}

func TestCalibrationService_Timeout(t *testing.T) {
	job := &fakeJob{delay: time.Second}
	svc := NewCalibrationService(job, CalibrationServiceConfig{Timeout: 20 * time.Millisecond}, zerolog.Nop())

	_ = svc.Serve(context.Background())
	if err := <-svc.Done(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Done() = %v, want DeadlineExceeded", err)
	}
}

func TestCalibrationService_Periodic(t *testing.T) {
	job := &fakeJob{err: errors.New("transient")}
	var buf bytes.Buffer
	svc := NewCalibrationService(job, CalibrationServiceConfig{Interval: 10 * time.Millisecond}, logging.NewTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for job.Calls() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("calls = %d, want >= 3", job.Calls())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	select {
	case err := <-svc.Done():
		t.Errorf("periodic mode delivered %v on Done", err)
	default:
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	if job.ids[0] == job.ids[1] {
		t.Error("runs share a correlation id")
	}
	if !strings.Contains(buf.String(), `"service":"calibration"`) {
		t.Errorf("service field missing from logs: %s", buf.String())
	}
}

func TestCalibrationService_RecordsMetrics(t *testing.T) {
	success := testutil.ToFloat64(metrics.CalibrationRuns.WithLabelValues("success"))

	svc := NewCalibrationService(JobFunc(func(context.Context) error { return nil }), CalibrationServiceConfig{}, zerolog.Nop())
	_ = svc.Serve(context.Background())

	if got := testutil.ToFloat64(metrics.CalibrationRuns.WithLabelValues("success")) - success; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
}
