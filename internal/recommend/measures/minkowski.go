// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import "math"

// Minkowski returns the order-d Minkowski distance.
func Minkowski(d int) Func {
	order := float64(d)
	return func(p, q []float64) float64 {
		var sum float64
		for i := range p {
			sum += math.Pow(math.Abs(p[i]-q[i]), order)
		}
		return math.Pow(sum, 1/order)
	}
}

func euclidean(p, q []float64) float64 {
	var sum float64
	for i := range p {
		d := p[i] - q[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func cityBlock(p, q []float64) float64 {
	var sum float64
	for i := range p {
		sum += math.Abs(p[i] - q[i])
	}
	return sum
}

func chebyshev(p, q []float64) float64 {
	var maxDiff float64
	for i := range p {
		if d := math.Abs(p[i] - q[i]); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}
