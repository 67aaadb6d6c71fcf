// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package tradeoff orchestrates calibrated re-ranking over every user of a
// candidate table.
//
// An Engine is created over an item catalog, the users' preferences and the
// upstream candidates, configured once with a recommend.Config, and fitted
// for a set of users. Per user it derives the target distribution (estimated
// from preferences or read from a precomputed table), resolves the tradeoff
// weight and runs the greedy selector. Users run in parallel on a bounded
// worker pool; the first error cancels the run and no partial output is
// returned.
package tradeoff

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/catalog"
	"github.com/tomtom215/calibrec/internal/recommend/distribution"
	"github.com/tomtom215/calibrec/internal/recommend/measures"
	"github.com/tomtom215/calibrec/internal/recommend/relevance"
	"github.com/tomtom215/calibrec/internal/recommend/reranking"
	"github.com/tomtom215/calibrec/internal/recommend/weight"
)

// Option configures an Engine.
type Option func(*Engine)

// WithDistributions replaces on-the-fly target estimation with a
// precomputed per-user table. NaN cells are read as zero.
func WithDistributions(d Distributions) Option {
	return func(e *Engine) {
		e.precomputed = d.Clean()
	}
}

// WithProgress sets the receiver of progress notifications.
func WithProgress(p Progress) Option {
	return func(e *Engine) {
		if p != nil {
			e.progress = p
		}
	}
}

// Engine runs calibrated re-ranking. It is safe for concurrent use; Fit
// calls share the configuration bound by the latest Configure.
type Engine struct {
	store       *catalog.Store
	prefs       map[int]recommend.Frame
	prefRows    []recommend.Interaction
	prefUsers   []int
	cands       map[int]recommend.Frame
	precomputed Distributions
	progress    Progress
	logger      zerolog.Logger

	mu    sync.RWMutex
	cfg   *recommend.Config
	bound *bound
}

// bound holds the components resolved from a Config.
type bound struct {
	store     *catalog.Store
	estimator distribution.Estimator
	weight    weight.Selector
	selector  reranking.Selector
	fill      float64
}

// New creates an engine. Every preference and candidate item must be in
// the catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(store *catalog.Store, prefs, candidates recommend.Frame, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	ids := append(prefs.ItemIDs(), candidates.ItemIDs()...)
	if missing := store.Missing(ids); len(missing) > 0 {
		return nil, &recommend.UnknownItemError{ItemIDs: missing}
	}

	e := &Engine{
		store:     store,
		prefs:     prefs.GroupByUser(),
		prefRows:  prefs.Rows,
		prefUsers: prefs.Users(),
		cands:     candidates.GroupByUser(),
		progress:  nopProgress{},
		logger:    logger.With().Str("component", "tradeoff").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Configure validates cfg and binds every registry code it names.
func (e *Engine) Configure(cfg *recommend.Config) error {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	strategy, err := distribution.Parse(cfg.Distribution)
	if err != nil {
		return err
	}
	estimator := strategy.Estimator()
	measure, err := measures.Parse(cfg.Fairness)
	if err != nil {
		return err
	}
	rel, err := relevance.New(cfg.Relevance)
	if err != nil {
		return err
	}
	w, err := weight.Parse(cfg.Weight)
	if err != nil {
		return err
	}

	store := e.store
	linear := reranking.Linear{Similarity: measure.Similarity()}
	var balance reranking.Balance = linear
	if cfg.Tradeoff == recommend.TradeoffLogBias {
		mean, bias := reranking.ItemBiases(e.prefRows)
		store = e.store.WithBias(bias)
		balance = reranking.LogBias{Linear: linear, Mean: mean}
	}

	selector, err := reranking.New(cfg.Selector, reranking.Components{
		Estimator: estimator,
		Fairness:  measure.Func(cfg.D),
		Relevance: rel,
		Balance:   balance,
		ListSize:  cfg.ListSize,
		Alpha:     cfg.Alpha,
		Fill:      cfg.MissingClassFill,
	}, e.logger)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.cfg = cfg.Clone()
	e.bound = &bound{store: store, estimator: estimator, weight: w, selector: selector, fill: cfg.MissingClassFill}
	e.mu.Unlock()

	e.logger.Info().
		Str("distribution", string(strategy)).
		Bool("probabilistic", strategy.Probabilistic()).
		Str("fairness", string(measure)).
		Str("relevance", cfg.Relevance).
		Str("weight", w.Code()).
		Str("tradeoff", string(cfg.Tradeoff)).
		Int("list_size", cfg.ListSize).
		Msg("engine configured")
	return nil
}

// Config returns a copy of the bound configuration, or nil before
// Configure.
func (e *Engine) Config() *recommend.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.cfg == nil {
		return nil
	}
	return e.cfg.Clone()
}

// Fit builds the calibrated list of every user in users, or of every
// preference user when users is empty. Output rows are grouped by user in
// the order of users and by position within a user.
func (e *Engine) Fit(ctx context.Context, users []int) ([]recommend.Recommendation, error) {
	e.mu.RLock()
	cfg, b := e.cfg, e.bound
	e.mu.RUnlock()
	if b == nil {
		return nil, recommend.ErrNotConfigured
	}

	if len(users) == 0 {
		users = e.prefUsers
	}
	if err := e.checkUsers(users); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := e.logger.With().Str("run_id", runID).Logger()
	start := time.Now()
	logger.Info().
		Int("users", len(users)).
		Int("workers", cfg.EffectiveWorkers()).
		Int("batch_size", cfg.BatchSize).
		Msg("starting calibration")

	lists := make([][]recommend.Recommendation, len(users))
	for lo := 0; lo < len(users); lo += cfg.BatchSize {
		hi := lo + cfg.BatchSize
		if hi > len(users) {
			hi = len(users)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.EffectiveWorkers())
		for i := lo; i < hi; i++ {
			g.Go(func() error {
				list, err := e.fitUser(gctx, b, users[i])
				if err != nil {
					return fmt.Errorf("user %d: %w", users[i], err)
				}
				lists[i] = list
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			logger.Error().Err(err).Msg("calibration failed")
			return nil, err
		}
		e.progress.BatchDone(hi, len(users))
	}

	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]recommend.Recommendation, 0, total)
	for _, l := range lists {
		out = append(out, l...)
	}

	logger.Info().
		Int("users", len(users)).
		Int("rows", len(out)).
		Dur("duration", time.Since(start)).
		Msg("calibration complete")
	return out, nil
}

// checkUsers reports users without candidates, and users without a target
// source: a row in the precomputed table, or preferences when there is none.
func (e *Engine) checkUsers(users []int) error {
	var noCands, noTarget []int
	for _, uid := range users {
		if _, ok := e.cands[uid]; !ok {
			noCands = append(noCands, uid)
		}
		if e.precomputed != nil {
			if _, ok := e.precomputed[uid]; !ok {
				noTarget = append(noTarget, uid)
			}
		} else if _, ok := e.prefs[uid]; !ok {
			noTarget = append(noTarget, uid)
		}
	}
	if len(noCands) > 0 {
		return &recommend.UserMismatchError{Table: "candidates", UserIDs: noCands}
	}
	if len(noTarget) > 0 {
		table := "preferences"
		if e.precomputed != nil {
			table = "distributions"
		}
		return &recommend.UserMismatchError{Table: table, UserIDs: noTarget}
	}
	return nil
}

func (e *Engine) fitUser(ctx context.Context, b *bound, uid int) ([]recommend.Recommendation, error) {
	start := time.Now()

	candidates, err := b.store.Select(e.cands[uid])
	if err != nil {
		return nil, err
	}
	target, err := e.target(b, uid)
	if err != nil {
		return nil, err
	}

	in := weight.Input{Target: target, Fill: b.fill}
	if b.weight.NeedsCandidates() {
		in.Candidate = b.estimator.Estimate(candidates)
		in.CandidateScores = catalog.Scores(candidates)
	}
	lambda := b.weight.Lambda(in)

	placed, err := b.selector.Select(ctx, target, candidates, lambda)
	if err != nil {
		return nil, err
	}

	out := make([]recommend.Recommendation, len(placed))
	for i := range placed {
		out[i] = recommend.Recommendation{
			UserID: uid,
			ItemID: placed[i].ID(),
			Order:  placed[i].Position,
			Value:  placed[i].Score,
		}
	}
	e.progress.UserDone(uid, len(out), time.Since(start))
	return out, nil
}

func (e *Engine) target(b *bound, uid int) (distribution.Distribution, error) {
	if e.precomputed != nil {
		return e.precomputed[uid], nil
	}
	history, err := b.store.Select(e.prefs[uid])
	if err != nil {
		return nil, err
	}
	return b.estimator.Estimate(history), nil
}
