// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import "math"

func fidelity(p, q []float64) float64 {
	var sum float64
	for i := range p {
		sum += math.Sqrt(p[i] * q[i])
	}
	return sum
}

func bhattacharyya(p, q []float64) float64 {
	return -math.Log(nz(fidelity(p, q)))
}

func chordSquared(p, q []float64) float64 {
	var sum float64
	for i := range p {
		d := math.Sqrt(p[i]) - math.Sqrt(q[i])
		sum += d * d
	}
	return sum
}

func hellinger(p, q []float64) float64 {
	return math.Sqrt(2 * chordSquared(p, q))
}

func matusita(p, q []float64) float64 {
	return math.Sqrt(chordSquared(p, q))
}

func squaredChordSim(p, q []float64) float64 {
	return 2*fidelity(p, q) - 1
}

func squaredChordDiv(p, q []float64) float64 {
	return chordSquared(p, q)
}
