// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import "math"

// overlap holds the component sums shared by the intersection family.
type overlap struct {
	min, max, sum, absDiff float64
}

func overlapOf(p, q []float64) overlap {
	var o overlap
	for i := range p {
		o.min += math.Min(p[i], q[i])
		o.max += math.Max(p[i], q[i])
		o.sum += p[i] + q[i]
		o.absDiff += math.Abs(p[i] - q[i])
	}
	return o
}

func intersectionSim(p, q []float64) float64 {
	return overlapOf(p, q).min
}

func intersectionDiv(p, q []float64) float64 {
	return overlapOf(p, q).absDiff / 2
}

func waveHedges(p, q []float64) float64 {
	var sum float64
	for i := range p {
		sum += safeDiv(math.Abs(p[i]-q[i]), math.Max(p[i], q[i]))
	}
	return sum
}

func czekanowskiSim(p, q []float64) float64 {
	o := overlapOf(p, q)
	return safeDiv(2*o.min, o.sum)
}

func czekanowskiDiv(p, q []float64) float64 {
	o := overlapOf(p, q)
	return safeDiv(o.absDiff, o.sum)
}

func motykaSim(p, q []float64) float64 {
	o := overlapOf(p, q)
	return safeDiv(o.min, o.sum)
}

func motykaDiv(p, q []float64) float64 {
	o := overlapOf(p, q)
	return safeDiv(o.max, o.sum)
}

func kulczynskiS(p, q []float64) float64 {
	o := overlapOf(p, q)
	return safeDiv(o.min, o.absDiff)
}

func ruzicka(p, q []float64) float64 {
	o := overlapOf(p, q)
	return safeDiv(o.min, o.max)
}

func tanimoto(p, q []float64) float64 {
	o := overlapOf(p, q)
	return safeDiv(o.max-o.min, o.max)
}
