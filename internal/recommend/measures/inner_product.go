// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import "math"

// products holds dot(p,q), |p|^2, |q|^2 and |p-q|^2.
type products struct {
	dot, pp, qq, diff2 float64
}

func productsOf(p, q []float64) products {
	var s products
	for i := range p {
		s.dot += p[i] * q[i]
		s.pp += p[i] * p[i]
		s.qq += q[i] * q[i]
		d := p[i] - q[i]
		s.diff2 += d * d
	}
	return s
}

func inner(p, q []float64) float64 {
	return productsOf(p, q).dot
}

func harmonic(p, q []float64) float64 {
	var sum float64
	for i := range p {
		sum += safeDiv(p[i]*q[i], p[i]+q[i])
	}
	return 2 * sum
}

func cosine(p, q []float64) float64 {
	s := productsOf(p, q)
	return safeDiv(s.dot, math.Sqrt(s.pp)*math.Sqrt(s.qq))
}

func kumarHassebrook(p, q []float64) float64 {
	s := productsOf(p, q)
	return safeDiv(s.dot, s.pp+s.qq-s.dot)
}

func jaccard(p, q []float64) float64 {
	s := productsOf(p, q)
	return safeDiv(s.diff2, s.pp+s.qq-s.dot)
}

func diceSim(p, q []float64) float64 {
	s := productsOf(p, q)
	return safeDiv(2*s.dot, s.pp+s.qq)
}

func diceDiv(p, q []float64) float64 {
	s := productsOf(p, q)
	return safeDiv(s.diff2, s.pp+s.qq)
}
