// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package relevance aggregates the predicted scores of a ranked list into
// one relevance value.
package relevance

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/calibrec/internal/recommend"
)

// Aggregator is a relevance aggregator code.
type Aggregator string

// Aggregator codes.
const (
	Sum    Aggregator = "SUM"
	NDCG   Aggregator = "NDCG"
	UREL   Aggregator = "UREL"
	TECREC Aggregator = "TECREC"
)

// Func maps list scores, in list order, to a relevance value.
type Func func(scores []float64) float64

var registry = map[Aggregator]Func{
	Sum:    SumScore,
	NDCG:   NDCGScore,
	UREL:   UtilityScore,
	TECREC: TecRecScore,
}

var aliases = map[string]Aggregator{
	"UTILITY": UREL,
}

// Codes returns the aggregator codes.
func Codes() []Aggregator {
	return []Aggregator{Sum, NDCG, UREL, TECREC}
}

// Parse resolves an aggregator code or alias, case-insensitively.
func Parse(code string) (Aggregator, error) {
	norm := strings.ToUpper(strings.TrimSpace(code))
	if a, ok := aliases[norm]; ok {
		return a, nil
	}
	if _, ok := registry[Aggregator(norm)]; ok {
		return Aggregator(norm), nil
	}
	return "", &recommend.UnknownCodeError{Registry: recommend.RegistryRelevance, Code: code}
}

// New returns the aggregator function for a code.
func New(code string) (Func, error) {
	a, err := Parse(code)
	if err != nil {
		return nil, err
	}
	return registry[a], nil
}

// SumScore returns the plain sum of scores.
func SumScore(scores []float64) float64 {
	return floats.Sum(scores)
}

func dcg(scores []float64) float64 {
	var total float64
	for i, s := range scores {
		total += (math.Pow(2, s) - 1) / math.Log2(float64(i+2))
	}
	return total
}

func sortedDesc(scores []float64) []float64 {
	out := make([]float64, len(scores))
	copy(out, scores)
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}

// NDCGScore returns DCG over the list divided by DCG over the same scores
// sorted descending. Empty lists and a zero ideal give 0.
func NDCGScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	ideal := dcg(sortedDesc(scores))
	if ideal == 0 {
		return 0
	}
	return dcg(scores) / ideal
}

func utility(scores []float64) float64 {
	var total float64
	for i, s := range scores {
		rank := float64(i + 1)
		total += s / math.Log(rank+1)
	}
	return total
}

// UtilityScore returns sum(s_i / ln(i+1)) over 1-based ranks, normalised
// by the same sum over the scores sorted descending. A zero ideal gives 0.
func UtilityScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	ideal := utility(sortedDesc(scores))
	if ideal == 0 {
		return 0
	}
	return utility(scores) / ideal
}

// TecRecScore returns mean(scores) / (n+1). An empty list gives 0.
func TecRecScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, nil) / float64(len(scores)+1)
}
