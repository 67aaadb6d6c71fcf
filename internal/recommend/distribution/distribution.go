// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package distribution estimates class distributions over user-scoped item
// sets and prepares pairs of distributions for comparison.
//
// A strategy maps an ordered list of scored items to class weights. Target
// distributions come from a user's preferences; realized distributions come
// from a (tentative) recommendation list. Both sides are aligned on the
// sorted union of their classes before a fairness measure is applied.
//
// All sums run in a fixed order (item order, then sorted class labels) so
// results are reproducible bit for bit.
package distribution

import (
	"sort"

	"github.com/tomtom215/calibrec/internal/recommend/catalog"
)

// Floor is the value given to a class whose weighted numerator or
// denominator is not positive.
const Floor = 0.00001

// Distribution maps a class label to a non-negative weight.
type Distribution map[string]float64

// Labels returns the sorted class labels.
func (d Distribution) Labels() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Sum returns the total weight, summed in label order.
func (d Distribution) Sum() float64 {
	var total float64
	for _, k := range d.Labels() {
		total += d[k]
	}
	return total
}

// Clone returns a copy of d.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Estimator computes a distribution from an ordered item list.
type Estimator interface {
	Estimate(items []catalog.ScoredItem) Distribution
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(items []catalog.ScoredItem) Distribution

// Estimate calls f(items).
func (f EstimatorFunc) Estimate(items []catalog.ScoredItem) Distribution {
	return f(items)
}

// Normalize returns d scaled to sum to 1. A distribution with a
// non-positive total is returned unchanged.
func Normalize(d Distribution) Distribution {
	total := d.Sum()
	if total <= 0 {
		return d.Clone()
	}
	out := make(Distribution, len(d))
	for k, v := range d {
		out[k] = v / total
	}
	return out
}

// Align returns target and realized as vectors over the sorted union of
// their classes. A class missing on one side takes the fill value.
func Align(target, realized Distribution, fill float64) (p, q []float64, labels []string) {
	union := make(map[string]struct{}, len(target)+len(realized))
	for k := range target {
		union[k] = struct{}{}
	}
	for k := range realized {
		union[k] = struct{}{}
	}
	labels = make([]string, 0, len(union))
	for k := range union {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	p = make([]float64, len(labels))
	q = make([]float64, len(labels))
	for i, k := range labels {
		if v, ok := target[k]; ok {
			p[i] = v
		} else {
			p[i] = fill
		}
		if v, ok := realized[k]; ok {
			q[i] = v
		} else {
			q[i] = fill
		}
	}
	return p, q, labels
}

// TildeQ smooths the realized vector toward the target:
// (1-alpha)*q + alpha*p, element-wise.
func TildeQ(p, q []float64, alpha float64) []float64 {
	n := len(p)
	if len(q) < n {
		n = len(q)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = (1-alpha)*q[i] + alpha*p[i]
	}
	return out
}
