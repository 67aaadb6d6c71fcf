// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package measures implements the divergence and similarity library used as
// the fairness term of the calibration utility.
//
// Every measure takes two aligned, equal-length vectors p (target) and q
// (smoothed realized) and returns a finite float. Zero operands are replaced
// by Epsilon instead of failing: families built on logarithms or ratios of
// components substitute Epsilon for zero components up front, the others
// substitute Epsilon for a zero denominator only.
//
// Families follow Cha (2007), "Comprehensive Survey on Distance/Similarity
// Measures between Probability Density Functions":
//
//   - Minkowski: MINKOWSKI, EUCLIDEAN, CITY_BLOCK, CHEBYSHEV
//   - L1: SORENSEN, GOWER, SOERGEL, KULCZYNSKI_D, CANBERRA, LORENTZIAN
//   - Intersection: INTERSECTION_SIM/DIV, WAVE, CZEKANOWSKI_SIM/DIV,
//     MOTYKA_SIM/DIV, KULCZYNSKI_S, RUZICKA, TANIMOTO
//   - Inner product: INNER, HARMONIC, COSINE, KUMAR_HASSEBROOK, JACCARD,
//     DICE_SIM/DIV
//   - Fidelity: FIDELITY, BHATTACHARYYA, HELLINGER, MATUSITA,
//     SQUARED_CHORD_SIM/DIV
//   - Squared chi: SQUARED_EUCLIDEAN, CHI_SQUARE, NEYMAN, SQUARED_CHI,
//     PROBABILISTIC_CHI, DIVERGENCE, CLARK, ADDITIVE_CHI
//   - Shannon: KL, JEFFREYS, K_DIV, TOPSOE, JENSEN_SHANNON, JENSEN_DIFF
//   - Combinations: TANEJA, KUMAR_JOHNSON, AVG, WTV
//   - Vicissitude: VICIS_WAVE, VICIS_EMANON2 .. VICIS_EMANON6
package measures

// Epsilon replaces zero operands.
const Epsilon = 0.00001

// Func compares two aligned vectors.
type Func func(p, q []float64) float64

// nz substitutes Epsilon for an exact zero.
func nz(x float64) float64 {
	if x == 0 {
		return Epsilon
	}
	return x
}

// safeDiv divides, substituting Epsilon for an exact zero denominator.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return num / Epsilon
	}
	return num / den
}
