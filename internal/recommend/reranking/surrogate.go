// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package reranking

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/catalog"
	"github.com/tomtom215/calibrec/internal/recommend/distribution"
	"github.com/tomtom215/calibrec/internal/recommend/measures"
	"github.com/tomtom215/calibrec/internal/recommend/relevance"
)

// SelectorSurrogate is the only selector code.
const SelectorSurrogate = "SURROGATE"

// Selector builds a calibrated list for one user.
type Selector interface {
	Select(ctx context.Context, target distribution.Distribution, candidates []catalog.ScoredItem, lambda float64) ([]catalog.ScoredItem, error)
}

// Components are the bound, read-only parts of the utility.
type Components struct {
	Estimator distribution.Estimator
	Fairness  measures.Func
	Relevance relevance.Func
	Balance   Balance

	// ListSize is the number of positions to fill.
	ListSize int

	// Alpha smooths the realized distribution toward the target.
	Alpha float64

	// Fill is the value for a class present on one side only.
	Fill float64
}

// New returns the selector for a code.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(code string, c Components, logger zerolog.Logger) (Selector, error) {
	if strings.ToUpper(strings.TrimSpace(code)) != SelectorSurrogate {
		return nil, &recommend.UnknownCodeError{Registry: recommend.RegistrySelector, Code: code}
	}
	return NewSurrogate(c, logger), nil
}

// Surrogate is the greedy surrogate submodular selector.
type Surrogate struct {
	c      Components
	logger zerolog.Logger
}

// NewSurrogate creates a surrogate selector.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSurrogate(c Components, logger zerolog.Logger) *Surrogate {
	return &Surrogate{
		c:      c,
		logger: logger.With().Str("component", "surrogate").Logger(),
	}
}

// Utility returns the utility of a tentative list against the target.
func (s *Surrogate) Utility(target distribution.Distribution, tentative []catalog.ScoredItem, lambda float64) float64 {
	realized := s.c.Estimator.Estimate(tentative)
	p, q, _ := distribution.Align(target, realized, s.c.Fill)
	fair := s.c.Fairness(p, distribution.TildeQ(p, q, s.c.Alpha))
	rel := s.c.Relevance(catalog.Scores(tentative))
	return s.c.Balance.Combine(lambda, rel, fair, tentative)
}

// Select fills up to ListSize positions. Candidates are visited in
// ascending item id order and the strictly greatest utility wins, so ties
// go to the smallest id. Each committed item carries its 1-based Position
// and the recency weight 1/position.
func (s *Surrogate) Select(ctx context.Context, target distribution.Distribution, candidates []catalog.ScoredItem, lambda float64) ([]catalog.ScoredItem, error) {
	pool := make([]catalog.ScoredItem, len(candidates))
	copy(pool, candidates)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].ID() < pool[j].ID()
	})

	size := s.c.ListSize
	if size > len(pool) {
		size = len(pool)
	}
	placed := make([]catalog.ScoredItem, 0, size)
	used := make([]bool, len(pool))
	tentative := make([]catalog.ScoredItem, 0, size)

	for k := 1; k <= s.c.ListSize; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best := -1
		var bestUtility float64
		for i := range pool {
			if used[i] {
				continue
			}
			cand := pool[i]
			cand.Time = 1 / float64(k)

			tentative = append(tentative[:0], placed...)
			tentative = append(tentative, cand)
			u := s.Utility(target, tentative, lambda)

			if best < 0 || u > bestUtility {
				best = i
				bestUtility = u
			}
		}
		if best < 0 {
			break
		}

		chosen := pool[best]
		chosen.Time = 1 / float64(k)
		chosen.Position = k
		placed = append(placed, chosen)
		used[best] = true

		s.logger.Trace().
			Int("position", k).
			Int("item_id", chosen.ID()).
			Float64("utility", bestUtility).
			Msg("committed item")
	}

	return placed, nil
}

// Ensure interface compliance.
var _ Selector = (*Surrogate)(nil)
