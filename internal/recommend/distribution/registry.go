// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package distribution

import (
	"strings"

	"github.com/tomtom215/calibrec/internal/recommend"
)

// Strategy is a distribution strategy code.
type Strategy string

// Strategy codes. The _P suffix renormalises the output to sum to 1.
const (
	CWS         Strategy = "CWS"
	WPS         Strategy = "WPS"
	PGD         Strategy = "PGD"
	PGDP        Strategy = "PGD_P"
	TWB         Strategy = "TWB"
	TWBP        Strategy = "TWB_P"
	TGD         Strategy = "TGD"
	TGDP        Strategy = "TGD_P"
	GLEB        Strategy = "GLEB"
	GLEBP       Strategy = "GLEB_P"
	TWBGLEB     Strategy = "TWB_GLEB"
	TWBGLEBP    Strategy = "TWB_GLEB_P"
	TSW         Strategy = "TSW"
	TSWP        Strategy = "TSW_P"
	TSWGLEB     Strategy = "TSW_GLEB"
	TSWGLEBP    Strategy = "TSW_GLEB_P"
	TSWTWB      Strategy = "TSW_TWB"
	TSWTWBP     Strategy = "TSW_TWB_P"
	TSWTWBGLEB  Strategy = "TSW_TWB_GLEB"
	TSWTWBGLEBP Strategy = "TSW_TWB_GLEB_P"
)

var registry = map[Strategy]EstimatorFunc{
	CWS:         ClassWeighted,
	WPS:         Probability(ClassWeighted),
	PGD:         PureGenre,
	PGDP:        Probability(PureGenre),
	TWB:         TimeWeighted,
	TWBP:        Probability(TimeWeighted),
	TGD:         TimeGenre,
	TGDP:        Probability(TimeGenre),
	GLEB:        GlobalLocalEntropy,
	GLEBP:       Probability(GlobalLocalEntropy),
	TWBGLEB:     TimeWeightedEntropy,
	TWBGLEBP:    Probability(TimeWeightedEntropy),
	TSW:         SlideWindow(ClassWeighted),
	TSWP:        Probability(SlideWindow(ClassWeighted)),
	TSWGLEB:     SlideWindow(GlobalLocalEntropy),
	TSWGLEBP:    Probability(SlideWindow(GlobalLocalEntropy)),
	TSWTWB:      SlideWindow(TimeWeighted),
	TSWTWBP:     Probability(SlideWindow(TimeWeighted)),
	TSWTWBGLEB:  SlideWindow(TimeWeightedEntropy),
	TSWTWBGLEBP: Probability(SlideWindow(TimeWeightedEntropy)),
}

// Codes returns every strategy code in declaration order.
func Codes() []Strategy {
	return []Strategy{
		CWS, WPS, PGD, PGDP, TWB, TWBP, TGD, TGDP, GLEB, GLEBP,
		TWBGLEB, TWBGLEBP, TSW, TSWP, TSWGLEB, TSWGLEBP,
		TSWTWB, TSWTWBP, TSWTWBGLEB, TSWTWBGLEBP,
	}
}

// Parse resolves a strategy code, case-insensitively.
func Parse(code string) (Strategy, error) {
	s := Strategy(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := registry[s]; !ok {
		return "", &recommend.UnknownCodeError{Registry: recommend.RegistryDistribution, Code: code}
	}
	return s, nil
}

// New returns the estimator for a strategy code.
func New(code string) (Estimator, error) {
	s, err := Parse(code)
	if err != nil {
		return nil, err
	}
	return registry[s], nil
}

// Probabilistic reports whether the strategy's output sums to 1.
func (s Strategy) Probabilistic() bool {
	return s == WPS || strings.HasSuffix(string(s), "_P")
}

// Estimator returns the strategy's estimator, or nil for an unknown code.
func (s Strategy) Estimator() Estimator {
	f, ok := registry[s]
	if !ok {
		return nil
	}
	return f
}
