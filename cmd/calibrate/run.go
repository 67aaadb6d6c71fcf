// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tomtom215/calibrec/internal/config"
	"github.com/tomtom215/calibrec/internal/logging"
	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/supervisor"
	"github.com/tomtom215/calibrec/internal/supervisor/services"
)

const shutdownTimeout = 10 * time.Second

// dataFlags are the table flags shared by run and distributions.
type dataFlags struct {
	items       string
	preferences string
	output      string
	users       []int
}

func (f *dataFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.items, "items", "", "Item table with GENRES and/or POPULARITY")
	fs.StringVar(&f.preferences, "preferences", "", "User preference table")
	fs.StringVarP(&f.output, "output", "o", "", "Output table (NDJSON to stdout when empty)")
	fs.IntSliceVar(&f.users, "users", nil, "Restrict to these user ids")
}

func (f *dataFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("items") {
		cfg.Data.Items = f.items
	}
	if fs.Changed("preferences") {
		cfg.Data.Preferences = f.preferences
	}
	if fs.Changed("output") {
		cfg.Data.Output = f.output
	}
	if fs.Changed("users") {
		cfg.Data.Users = f.users
	}
}

// runFlags hold every run override. A flag only replaces the configured
// value when set on the command line.
type runFlags struct {
	data          dataFlags
	candidates    string
	distributions string
	twoStage      bool

	distribution string
	fairness     string
	relevance    string
	weight       string
	tradeoff     string
	classes      string
	listSize     int
	alpha        float64
	workers      int

	interval time.Duration
	timeout  time.Duration
	metrics  string
}

func newRunCmd(global *globalOptions) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Calibrate candidate lists and write the re-ranked output",
		Long: `Run loads the item, preference and candidate tables, re-ranks every
user's candidates toward that user's class distribution and writes the
resulting lists.

With --interval the run repeats on a schedule until interrupted. With
--metrics a Prometheus endpoint and /healthz are served while running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig(cmd, func(cfg *config.Config) {
				flags.apply(cmd.Flags(), cfg)
			})
			if err != nil {
				return err
			}
			if err := cfg.RequireInputs(true); err != nil {
				return err
			}
			return runCalibration(cmd, cfg)
		},
	}

	fs := cmd.Flags()
	flags.data.register(fs)
	fs.StringVar(&flags.candidates, "candidates", "", "Candidate table with TRANSACTION_VALUE or PREDICTED_VALUE")
	fs.StringVar(&flags.distributions, "distributions", "", "Precomputed USER_ID x class target table")
	fs.BoolVar(&flags.twoStage, "two-stage", false, "Calibrate popularity first, then genres")

	fs.StringVar(&flags.distribution, "distribution", "", "Distribution strategy code")
	fs.StringVar(&flags.fairness, "fairness", "", "Fairness measure code")
	fs.StringVar(&flags.relevance, "relevance", "", "Relevance aggregator code")
	fs.StringVar(&flags.weight, "weight", "", "Tradeoff weight code or C@<value>")
	fs.StringVar(&flags.tradeoff, "tradeoff", "", "Tradeoff utility (LINEAR, LOG_BIAS)")
	fs.StringVar(&flags.classes, "classes", "", "Class source (GENRES, POPULARITY, POPULARITY_RANK)")
	fs.IntVarP(&flags.listSize, "list-size", "k", 0, "Items per calibrated list")
	fs.Float64Var(&flags.alpha, "alpha", 0, "Smoothing toward the target distribution")
	fs.IntVar(&flags.workers, "workers", 0, "Parallel users (0 = number of CPUs)")

	fs.DurationVar(&flags.interval, "interval", 0, "Repeat the run at this interval")
	fs.DurationVar(&flags.timeout, "timeout", 0, "Bound a single run")
	fs.StringVar(&flags.metrics, "metrics", "", "Serve metrics and /healthz on this address")
	return cmd
}

func (f *runFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	f.data.apply(fs, cfg)

	strs := []struct {
		name string
		dst  *string
		val  string
	}{
		{"candidates", &cfg.Data.Candidates, f.candidates},
		{"distributions", &cfg.Data.Distributions, f.distributions},
		{"distribution", &cfg.Calibration.Distribution, f.distribution},
		{"fairness", &cfg.Calibration.Fairness, f.fairness},
		{"relevance", &cfg.Calibration.Relevance, f.relevance},
		{"weight", &cfg.Calibration.Weight, f.weight},
		{"classes", &cfg.Calibration.Classes, f.classes},
	}
	for _, s := range strs {
		if fs.Changed(s.name) {
			*s.dst = s.val
		}
	}

	if fs.Changed("two-stage") {
		cfg.Data.TwoStage = f.twoStage
	}
	if fs.Changed("tradeoff") {
		cfg.Calibration.Tradeoff = recommend.Tradeoff(f.tradeoff)
	}
	if fs.Changed("list-size") {
		cfg.Calibration.ListSize = f.listSize
	}
	if fs.Changed("alpha") {
		cfg.Calibration.Alpha = f.alpha
	}
	if fs.Changed("workers") {
		cfg.Calibration.Workers = f.workers
	}
	if fs.Changed("interval") {
		cfg.Schedule.Interval = f.interval
	}
	if fs.Changed("timeout") {
		cfg.Schedule.Timeout = f.timeout
	}
	if fs.Changed("metrics") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = f.metrics
	}
}

// runCalibration runs the calibration job under the supervisor tree. A
// one-shot run returns the job's result; a scheduled run returns when the
// command context is canceled.
func runCalibration(cmd *cobra.Command, cfg *config.Config) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: shutdownTimeout,
	})
	if err != nil {
		return err
	}

	job := newCalibrationJob(cfg, cmd.OutOrStdout())
	svc := services.NewCalibrationService(job, services.CalibrationServiceConfig{
		Interval: cfg.Schedule.Interval,
		Timeout:  cfg.Schedule.Timeout,
	}, logging.WithComponent("calibration"))
	tree.AddJobService(svc)

	if cfg.Metrics.Enabled {
		router := services.NewTelemetryRouter(services.TelemetryConfig{
			MetricsPath: cfg.Metrics.Path,
			Health:      job.Health,
			RateLimit:   cfg.Metrics.RateLimit,
			RateWindow:  time.Minute,
		})
		server := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddTelemetryService(services.NewHTTPServerService(server, shutdownTimeout))
		logging.Info().
			Str("address", cfg.Metrics.Address).
			Str("path", cfg.Metrics.Path).
			Msg("telemetry endpoint enabled")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	var result error
	select {
	case result = <-svc.Done():
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Err(err).Msg("supervisor tree stopped")
			result = err
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, u := range unstopped {
		logging.Warn().Str("service", u.Name).Msg("service failed to stop")
	}
	return result
}
