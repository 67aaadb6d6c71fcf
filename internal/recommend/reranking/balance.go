// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package reranking

import (
	"math"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/catalog"
)

// Smoothing constants of the logarithmic-bias tradeoff.
const (
	BiasAlpha = 0.001
	BiasSigma = 0.001
)

// Balance combines relevance and fairness into a utility for a tentative
// list.
type Balance interface {
	Combine(lambda, rel, fair float64, tentative []catalog.ScoredItem) float64
}

// Linear is the linear tradeoff balance.
type Linear struct {
	// Similarity is true when the fairness measure grows with closeness.
	Similarity bool
}

// Combine returns (1-lambda)*rel + lambda*fair for similarity measures and
// (1-lambda)*rel - lambda*fair otherwise.
func (l Linear) Combine(lambda, rel, fair float64, _ []catalog.ScoredItem) float64 {
	if l.Similarity {
		return (1-lambda)*rel + lambda*fair
	}
	return (1-lambda)*rel - lambda*fair
}

// LogBias is the logarithmic-bias tradeoff balance.
type LogBias struct {
	Linear

	// Mean is the global mean preference value.
	Mean float64
}

// Combine returns sign(u)*ln(|u|+1) + userBias, u being the linear utility
// and userBias the mean residual score of the tentative list after removing
// the global mean and each item's bias.
func (b LogBias) Combine(lambda, rel, fair float64, tentative []catalog.ScoredItem) float64 {
	u := b.Linear.Combine(lambda, rel, fair, tentative)
	return sign(u)*math.Log(math.Abs(u)+1) + b.UserBias(tentative)
}

// UserBias returns sum(score - mean - item.bias) / (BiasSigma + len).
func (b LogBias) UserBias(tentative []catalog.ScoredItem) float64 {
	var num float64
	for i := range tentative {
		num += tentative[i].Score - b.Mean - tentative[i].Item.Bias
	}
	return num / (BiasSigma + float64(len(tentative)))
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// ItemBiases learns the global mean preference value and each item's bias
// sum(v - mean) / (BiasAlpha + n_item) from a preference table.
func ItemBiases(prefs []recommend.Interaction) (mean float64, bias map[int]float64) {
	bias = make(map[int]float64)
	if len(prefs) == 0 {
		return 0, bias
	}
	for i := range prefs {
		mean += prefs[i].Value
	}
	mean /= float64(len(prefs))

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i := range prefs {
		sums[prefs[i].ItemID] += prefs[i].Value - mean
		counts[prefs[i].ItemID]++
	}
	for id, s := range sums {
		bias[id] = s / (BiasAlpha + float64(counts[id]))
	}
	return mean, bias
}
