// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import "math"

// vicis sums term(a, b) over epsilon-substituted components.
func vicis(term func(a, b float64) float64) Func {
	return func(p, q []float64) float64 {
		var sum float64
		for i := range p {
			sum += term(nz(p[i]), nz(q[i]))
		}
		return sum
	}
}

var (
	vicisWave = vicis(func(a, b float64) float64 {
		return math.Abs(a-b) / math.Min(a, b)
	})
	vicisEmanon2 = vicis(func(a, b float64) float64 {
		m := math.Min(a, b)
		return (a - b) * (a - b) / (m * m)
	})
	vicisEmanon3 = vicis(func(a, b float64) float64 {
		return (a - b) * (a - b) / math.Min(a, b)
	})
	vicisEmanon4 = vicis(func(a, b float64) float64 {
		return (a - b) * (a - b) / math.Max(a, b)
	})
	vicisLeft = vicis(func(a, b float64) float64 {
		return (a - b) * (a - b) / a
	})
	vicisRight = vicis(func(a, b float64) float64 {
		return (a - b) * (a - b) / b
	})
)

func vicisEmanon5(p, q []float64) float64 {
	return math.Max(vicisLeft(p, q), vicisRight(p, q))
}

func vicisEmanon6(p, q []float64) float64 {
	return math.Min(vicisLeft(p, q), vicisRight(p, q))
}
