// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import "math"

func sorensen(p, q []float64) float64 {
	var num, den float64
	for i := range p {
		num += math.Abs(p[i] - q[i])
		den += p[i] + q[i]
	}
	return safeDiv(num, den)
}

func gower(p, q []float64) float64 {
	if len(p) == 0 {
		return 0
	}
	return cityBlock(p, q) / float64(len(p))
}

func soergel(p, q []float64) float64 {
	var num, den float64
	for i := range p {
		num += math.Abs(p[i] - q[i])
		den += math.Max(p[i], q[i])
	}
	return safeDiv(num, den)
}

func kulczynskiD(p, q []float64) float64 {
	var num, den float64
	for i := range p {
		num += math.Abs(p[i] - q[i])
		den += math.Min(p[i], q[i])
	}
	return safeDiv(num, den)
}

func canberra(p, q []float64) float64 {
	var sum float64
	for i := range p {
		sum += safeDiv(math.Abs(p[i]-q[i]), p[i]+q[i])
	}
	return sum
}

func lorentzian(p, q []float64) float64 {
	var sum float64
	for i := range p {
		sum += math.Log(1 + math.Abs(p[i]-q[i]))
	}
	return sum
}
