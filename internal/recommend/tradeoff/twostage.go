// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package tradeoff

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/catalog"
)

// StageDistributions are the optional precomputed targets of each stage.
type StageDistributions struct {
	Popularity Distributions
	Genres     Distributions
}

// TwoStage calibrates popularity first and genres second. The first stage
// shortens each candidate list to half the mean preference count per user,
// and the second stage re-ranks that output to the configured list size.
type TwoStage struct {
	items  recommend.ItemTable
	prefs  recommend.Frame
	cands  recommend.Frame
	dists  StageDistributions
	opts   []Option
	logger zerolog.Logger
	cfg    *recommend.Config
}

// NewTwoStage creates a two-stage pipeline. The item table needs a
// POPULARITY or a GENRES column.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTwoStage(items recommend.ItemTable, prefs, candidates recommend.Frame, dists StageDistributions, logger zerolog.Logger, opts ...Option) (*TwoStage, error) {
	if !items.HasPopularity && !items.HasGenres {
		return nil, &recommend.MissingColumnError{Table: "items", Column: recommend.ColumnPopularity + " or " + recommend.ColumnGenres}
	}
	return &TwoStage{
		items:  items,
		prefs:  prefs,
		cands:  candidates,
		dists:  dists,
		opts:   opts,
		logger: logger.With().Str("component", "two_stage").Logger(),
	}, nil
}

// Configure validates cfg and keeps it for both stages.
func (t *TwoStage) Configure(cfg *recommend.Config) error {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.cfg = cfg.Clone()
	return nil
}

// FirstStageSize returns ceil(len(prefs) / users / 2), at least 1.
func FirstStageSize(prefs recommend.Frame) int {
	users := len(prefs.Users())
	if users == 0 {
		return 1
	}
	size := int(math.Ceil(float64(len(prefs.Rows)) / float64(users) / 2))
	if size < 1 {
		size = 1
	}
	return size
}

// Sources returns the class sources of the popularity and genre stages.
// Without a POPULARITY column the first stage derives popularity bands
// from preferences; without GENRES the second stage reuses popularity.
func (t *TwoStage) Sources() (first, second string) {
	first = recommend.ClassSourcePopularityRank
	if t.items.HasPopularity {
		first = recommend.ClassSourcePopularity
	}
	second = recommend.ClassSourceGenres
	if !t.items.HasGenres {
		second = first
	}
	return first, second
}

// Fit runs both stages for users, or every preference user when empty.
func (t *TwoStage) Fit(ctx context.Context, users []int) ([]recommend.Recommendation, error) {
	if t.cfg == nil {
		return nil, recommend.ErrNotConfigured
	}
	first, second := t.Sources()

	firstCfg := t.cfg.Clone()
	firstCfg.Classes = first
	firstCfg.ListSize = FirstStageSize(t.prefs)

	t.logger.Info().
		Str("source", first).
		Int("list_size", firstCfg.ListSize).
		Msg("starting popularity stage")
	shortlist, err := t.stage(ctx, firstCfg, t.cands, t.dists.Popularity, users)
	if err != nil {
		return nil, fmt.Errorf("popularity stage: %w", err)
	}

	secondCfg := t.cfg.Clone()
	secondCfg.Classes = second

	t.logger.Info().
		Str("source", second).
		Int("list_size", secondCfg.ListSize).
		Msg("starting genre stage")
	out, err := t.stage(ctx, secondCfg, RecommendationFrame(shortlist), t.dists.Genres, users)
	if err != nil {
		return nil, fmt.Errorf("genre stage: %w", err)
	}
	return out, nil
}

func (t *TwoStage) stage(ctx context.Context, cfg *recommend.Config, cands recommend.Frame, dists Distributions, users []int) ([]recommend.Recommendation, error) {
	store, err := catalog.FromTable(t.items, cfg.Classes, t.prefs)
	if err != nil {
		return nil, err
	}
	opts := t.opts
	if dists != nil {
		opts = append(append([]Option(nil), t.opts...), WithDistributions(dists))
	}
	engine, err := New(store, t.prefs, cands, t.logger, opts...)
	if err != nil {
		return nil, err
	}
	if err := engine.Configure(cfg); err != nil {
		return nil, err
	}
	return engine.Fit(ctx, users)
}

// RecommendationFrame turns calibrated output into a candidate frame that
// carries the ORDER column.
func RecommendationFrame(recs []recommend.Recommendation) recommend.Frame {
	rows := make([]recommend.Interaction, len(recs))
	for i, r := range recs {
		rows[i] = recommend.Interaction{
			UserID: r.UserID,
			ItemID: r.ItemID,
			Value:  r.Value,
			Order:  r.Order,
		}
	}
	return recommend.Frame{Rows: rows, HasOrder: true}
}
