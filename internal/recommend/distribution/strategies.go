// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package distribution

import (
	"math"

	"github.com/tomtom215/calibrec/internal/recommend/catalog"
)

// ratio accumulates a per-class numerator and denominator.
type ratio struct {
	num map[string]float64
	den map[string]float64
}

func newRatio() ratio {
	return ratio{num: make(map[string]float64), den: make(map[string]float64)}
}

func (r ratio) add(class string, num, den float64) {
	r.num[class] += num
	r.den[class] += den
}

// result divides per class, flooring classes whose numerator or
// denominator is not positive. Keys are the classes touched.
func (r ratio) result() Distribution {
	out := make(Distribution, len(r.num))
	for class, num := range r.num {
		den := r.den[class]
		if num > 0 && den > 0 {
			out[class] = num / den
		} else {
			out[class] = Floor
		}
	}
	return out
}

// ClassWeighted is CWS: per class, sum(score*w) / sum(score).
func ClassWeighted(items []catalog.ScoredItem) Distribution {
	r := newRatio()
	for i := range items {
		it := &items[i]
		for class, w := range it.Item.Classes {
			r.add(class, it.Score*w, it.Score)
		}
	}
	return r.result()
}

// PureGenre is PGD: per class, sum(w).
func PureGenre(items []catalog.ScoredItem) Distribution {
	out := make(Distribution)
	for i := range items {
		for class, w := range items[i].Item.Classes {
			out[class] += w
		}
	}
	return out
}

// TimeWeighted is TWB: per class, sum(time*score*w) / sum(score).
func TimeWeighted(items []catalog.ScoredItem) Distribution {
	r := newRatio()
	for i := range items {
		it := &items[i]
		for class, w := range it.Item.Classes {
			r.add(class, it.Time*it.Score*w, it.Score)
		}
	}
	return r.result()
}

// TimeGenre is TGD: per class, sum(time*w) / sum(time).
func TimeGenre(items []catalog.ScoredItem) Distribution {
	r := newRatio()
	for i := range items {
		it := &items[i]
		for class, w := range it.Item.Classes {
			r.add(class, it.Time*w, it.Time)
		}
	}
	return r.result()
}

// globalRatios returns each class's share of all class occurrences across
// the item set.
func globalRatios(items []catalog.ScoredItem) map[string]float64 {
	counts := make(map[string]int)
	total := 0
	for i := range items {
		for class := range items[i].Item.Classes {
			counts[class]++
			total++
		}
	}
	out := make(map[string]float64, len(counts))
	for class, c := range counts {
		out[class] = float64(c) / float64(total)
	}
	return out
}

func entropyTerm(g, w float64) float64 {
	x := g * w
	if x <= 0 {
		return 0
	}
	return -x * math.Log2(x)
}

// GlobalLocalEntropy is GLEB: per class, sum(score*ent) / sum(score) with
// ent = -(g*w)*log2(g*w) and g the class's global frequency ratio.
func GlobalLocalEntropy(items []catalog.ScoredItem) Distribution {
	global := globalRatios(items)
	r := newRatio()
	for i := range items {
		it := &items[i]
		for class, w := range it.Item.Classes {
			r.add(class, it.Score*entropyTerm(global[class], w), it.Score)
		}
	}
	return r.result()
}

// TimeWeightedEntropy is TWB_GLEB: GLEB with the numerator also weighted by
// recency.
func TimeWeightedEntropy(items []catalog.ScoredItem) Distribution {
	global := globalRatios(items)
	r := newRatio()
	for i := range items {
		it := &items[i]
		for class, w := range it.Item.Classes {
			r.add(class, it.Score*it.Time*entropyTerm(global[class], w), it.Score)
		}
	}
	return r.result()
}

// Probability wraps an estimator so its output sums to 1.
func Probability(base EstimatorFunc) EstimatorFunc {
	return func(items []catalog.ScoredItem) Distribution {
		return Normalize(base(items))
	}
}
