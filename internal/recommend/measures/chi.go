// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import "math"

func squaredEuclidean(p, q []float64) float64 {
	return productsOf(p, q).diff2
}

func pearsonChi(p, q []float64) float64 {
	var sum float64
	for i := range p {
		d := p[i] - q[i]
		sum += safeDiv(d*d, q[i])
	}
	return sum
}

func neyman(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := p[i], q[i]
		if a == 0 {
			a, b = nz(a), nz(b)
		}
		d := a - b
		sum += d * d / a
	}
	return sum
}

// symmetricTerm is (p-q)^2 / (p+q), substituting Epsilon for zero
// components when the denominator vanishes.
func symmetricTerm(a, b float64) float64 {
	if a+b == 0 {
		a, b = nz(a), nz(b)
	}
	d := a - b
	return d * d / (a + b)
}

func squaredChi(p, q []float64) float64 {
	var sum float64
	for i := range p {
		sum += symmetricTerm(p[i], q[i])
	}
	return sum
}

func probabilisticChi(p, q []float64) float64 {
	return 2 * squaredChi(p, q)
}

func divergence(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := p[i], q[i]
		if a+b == 0 {
			a, b = nz(a), nz(b)
		}
		d := a - b
		s := a + b
		sum += d * d / (s * s)
	}
	return 2 * sum
}

func clark(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := p[i], q[i]
		if a+b == 0 {
			a, b = nz(a), nz(b)
		}
		r := math.Abs(a-b) / (a + b)
		sum += r * r
	}
	return math.Sqrt(sum)
}

func additiveChi(p, q []float64) float64 {
	var sum float64
	for i := range p {
		d := p[i] - q[i]
		sum += safeDiv(d*d*(p[i]+q[i]), p[i]*q[i])
	}
	return sum
}
