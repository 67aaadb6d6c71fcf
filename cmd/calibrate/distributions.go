// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/calibrec/internal/config"
	"github.com/tomtom215/calibrec/internal/dataset"
	"github.com/tomtom215/calibrec/internal/logging"
	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/catalog"
	"github.com/tomtom215/calibrec/internal/recommend/tradeoff"
)

func newDistributionsCmd(global *globalOptions) *cobra.Command {
	var (
		data         dataFlags
		distribution string
		classes      string
	)

	cmd := &cobra.Command{
		Use:   "distributions",
		Short: "Export each user's target class distribution",
		Long: `Distributions computes the target distribution of every preference user
and writes one row per user: USER_ID followed by one column per class.

The output can be passed back to run with --distributions to skip the
estimation step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig(cmd, func(cfg *config.Config) {
				fs := cmd.Flags()
				data.apply(fs, cfg)
				if fs.Changed("distribution") {
					cfg.Calibration.Distribution = distribution
				}
				if fs.Changed("classes") {
					cfg.Calibration.Classes = classes
				}
			})
			if err != nil {
				return err
			}
			if err := cfg.RequireInputs(false); err != nil {
				return err
			}
			return exportDistributions(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	data.register(fs)
	fs.StringVar(&distribution, "distribution", "", "Distribution strategy code")
	fs.StringVar(&classes, "classes", "", "Class source (GENRES, POPULARITY, POPULARITY_RANK)")
	return cmd
}

func exportDistributions(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	ctx = logging.WithJob(logging.WithCorrelationID(ctx, logging.NewCorrelationID()), "distributions")
	log := *logging.Ctx(ctx)

	db, err := dataset.Open(ctx, duckDBConfig(cfg), log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing dataset database")
		}
	}()

	items, err := db.Items(ctx, cfg.Data.Items)
	if err != nil {
		return err
	}
	prefs, err := db.Preferences(ctx, cfg.Data.Preferences)
	if err != nil {
		return err
	}

	// Popularity ranks come from every user, not only the exported ones.
	store, err := catalog.FromTable(items, cfg.Calibration.Classes, prefs)
	if err != nil {
		return err
	}
	dists, err := tradeoff.ComputeUserDistributions(ctx, store, filterUsers(prefs, cfg.Data.Users), cfg.Calibration.Distribution)
	if err != nil {
		return err
	}
	log.Info().
		Int("users", len(dists)).
		Int("classes", len(dists.Labels())).
		Str("distribution", cfg.Calibration.Distribution).
		Msg("distributions computed")

	if cfg.Data.Output == "" {
		return encodeDistributions(stdout, dists)
	}
	return db.WriteDistributions(ctx, cfg.Data.Output, dists)
}

// filterUsers keeps the rows of the listed users. An empty list keeps
// every row.
func filterUsers(f recommend.Frame, users []int) recommend.Frame {
	if len(users) == 0 {
		return f
	}
	keep := make(map[int]struct{}, len(users))
	for _, u := range users {
		keep[u] = struct{}{}
	}
	out := recommend.Frame{HasTimestamp: f.HasTimestamp, HasOrder: f.HasOrder}
	for _, r := range f.Rows {
		if _, ok := keep[r.UserID]; ok {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// encodeDistributions writes one JSON object per user, ordered by user id.
func encodeDistributions(w io.Writer, dists tradeoff.Distributions) error {
	enc := json.NewEncoder(w)
	labels := dists.Labels()
	for _, uid := range dists.Users() {
		rec := make(map[string]any, len(labels)+1)
		rec[recommend.ColumnUserID] = uid
		for _, label := range labels {
			rec[label] = dists[uid][label]
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode distributions: %w", err)
		}
	}
	return nil
}
