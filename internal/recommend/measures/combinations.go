// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import "math"

func taneja(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		sum += (a + b) / 2 * math.Log((a+b)/(2*math.Sqrt(a*b)))
	}
	return sum
}

func kumarJohnson(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		d := a*a - b*b
		sum += d * d / (2 * math.Pow(a*b, 1.5))
	}
	return sum
}

// avg is the average of the city block and Chebyshev distances.
func avg(p, q []float64) float64 {
	diff := chebyshev(p, q)
	var sum float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		sum += math.Abs(a-b) + diff
	}
	return sum / 2
}

func weightedTotalVariation(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		sum += (a + 1) * math.Abs(a-b)
	}
	return sum / 2
}
