// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package weight selects the per-user tradeoff weight lambda that balances
// relevance against fairness.
//
// A weight is either a constant ("C@0.5") or a strategy computed from the
// user's target distribution values (CGR, VAR, STD, TRT, AMP, EFF). MIT also
// looks at the candidate list: it combines the NDCG of the candidate scores
// with the Jensen-Shannon fidelity between target and candidate
// distributions.
package weight

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/distribution"
	"github.com/tomtom215/calibrec/internal/recommend/measures"
	"github.com/tomtom215/calibrec/internal/recommend/relevance"
)

// ConstantPrefix introduces a constant weight code.
const ConstantPrefix = "C@"

// Strategy codes.
const (
	CGR = "CGR"
	VAR = "VAR"
	STD = "STD"
	TRT = "TRT"
	AMP = "AMP"
	EFF = "EFF"
	MIT = "MIT"
)

// VectorFunc computes a weight from a distribution's values.
type VectorFunc func(values []float64) float64

var vectorStrategies = map[string]VectorFunc{
	CGR: GenreCount,
	VAR: NormVariance,
	STD: NormStd,
	TRT: Trust,
	AMP: Amplitude,
	EFF: Efficiency,
}

// Codes returns the strategy codes; constants are written C@<float>.
func Codes() []string {
	return []string{CGR, VAR, STD, TRT, AMP, EFF, MIT}
}

// Input carries everything a strategy may look at for one user.
type Input struct {
	// Target is the user's target distribution.
	Target distribution.Distribution

	// Candidate is the distribution of the user's full candidate list.
	// Only MIT reads it.
	Candidate distribution.Distribution

	// CandidateScores are the candidate predicted values in list order.
	// Only MIT reads them.
	CandidateScores []float64

	// Fill is the missing-class fill used to align Target and Candidate.
	Fill float64
}

// Selector resolves lambda for a user.
type Selector struct {
	code     string
	constant float64
	isConst  bool
	vector   VectorFunc
}

// Parse resolves a weight code.
func Parse(code string) (Selector, error) {
	norm := strings.ToUpper(strings.TrimSpace(code))

	if strings.HasPrefix(norm, ConstantPrefix) {
		raw := strings.TrimPrefix(norm, ConstantPrefix)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Selector{}, fmt.Errorf("%w: malformed constant weight %q", recommend.ErrConfiguration, code)
		}
		return Selector{code: norm, constant: v, isConst: true}, nil
	}

	if norm == MIT {
		return Selector{code: norm}, nil
	}
	if fn, ok := vectorStrategies[norm]; ok {
		return Selector{code: norm, vector: fn}, nil
	}
	return Selector{}, &recommend.UnknownCodeError{Registry: recommend.RegistryWeight, Code: code}
}

// Code returns the normalised weight code.
func (s Selector) Code() string {
	return s.code
}

// Constant reports whether lambda is fixed, and its value.
func (s Selector) Constant() (float64, bool) {
	return s.constant, s.isConst
}

// NeedsCandidates reports whether Lambda reads the candidate fields of Input.
func (s Selector) NeedsCandidates() bool {
	return s.code == MIT
}

// Lambda returns the tradeoff weight for one user.
func (s Selector) Lambda(in Input) float64 {
	switch {
	case s.isConst:
		return s.constant
	case s.code == MIT:
		return Mitigation(in.CandidateScores, in.Target, in.Candidate, in.Fill)
	case s.vector != nil:
		return s.vector(values(in.Target))
	default:
		return 0
	}
}

// values returns the distribution's weights in label order.
func values(d distribution.Distribution) []float64 {
	labels := d.Labels()
	out := make([]float64, len(labels))
	for i, k := range labels {
		out[i] = d[k]
	}
	return out
}

// GenreCount is CGR: the share of positive components.
func GenreCount(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	count := 0
	for _, v := range x {
		if v > 0 {
			count++
		}
	}
	return float64(count) / float64(len(x))
}

// NormVariance is VAR: one minus the population variance.
func NormVariance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, variance := stat.PopMeanVariance(x, nil)
	return 1 - variance
}

// NormStd is STD: one minus the population standard deviation.
func NormStd(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, variance := stat.PopMeanVariance(x, nil)
	return 1 - math.Sqrt(variance)
}

// Trust is TRT: the mean.
func Trust(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Sum(x) / float64(len(x))
}

// Amplitude is AMP: one minus the mean absolute pairwise difference.
func Amplitude(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	var magnitude float64
	for _, y := range x {
		for _, v := range x {
			magnitude += math.Abs(v - y)
		}
	}
	return 1 - magnitude/float64(n*n)
}

// Efficiency is EFF: population variance over the squared mean.
func Efficiency(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	if mean == 0 {
		mean = measures.Epsilon
	}
	return variance / (mean * mean)
}

// Mitigation is MIT: (ndcg*jsf)/(ndcg+jsf) with ndcg over the candidate
// scores and jsf = 1 - JensenShannon(target, candidate) on aligned vectors.
func Mitigation(scores []float64, target, candidate distribution.Distribution, fill float64) float64 {
	ndcg := relevance.NDCGScore(scores)
	p, q, _ := distribution.Align(target, candidate, fill)
	jsf := 1 - measures.JensenShannon(p, q)
	den := ndcg + jsf
	if den == 0 {
		den = measures.Epsilon
	}
	return ndcg * jsf / den
}
