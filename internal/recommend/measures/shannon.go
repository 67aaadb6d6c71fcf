// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import "math"

// KullbackLeibler returns KL(p || q) with zero components replaced by Epsilon.
func KullbackLeibler(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		sum += a * math.Log(a/b)
	}
	return sum
}

func jeffreys(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		sum += (a - b) * math.Log(a/b)
	}
	return sum
}

func kDivergence(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		sum += a * math.Log(2*a/(a+b))
	}
	return sum
}

func topsoe(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		sum += a*math.Log(2*a/(a+b)) + b*math.Log(2*b/(a+b))
	}
	return sum
}

// JensenShannon returns the Jensen-Shannon divergence (natural log) with
// zero components replaced by Epsilon.
func JensenShannon(p, q []float64) float64 {
	var left, right float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		left += a * math.Log(2*a/(a+b))
		right += b * math.Log(2*b/(a+b))
	}
	return (left + right) / 2
}

func jensenDifference(p, q []float64) float64 {
	var sum float64
	for i := range p {
		a, b := nz(p[i]), nz(q[i])
		m := (a + b) / 2
		sum += (a*math.Log(a)+b*math.Log(b))/2 - m*math.Log(m)
	}
	return sum
}
