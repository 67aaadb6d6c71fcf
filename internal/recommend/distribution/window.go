// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package distribution

import (
	"sort"

	"github.com/tomtom215/calibrec/internal/recommend/catalog"
)

// WindowMajor controls the temporal slide window: item sets longer than
// 2*WindowMajor are split into windows of 2*b items sliding by b, where
// b = floor(n / (2*WindowMajor)).
const WindowMajor = 10

// SlideWindow is TSW over the given base estimator. Short item sets fall back
// to the base estimator; longer ones average each class over the windows in
// which it appears, including a wrap-around window joining the first batch
// with the tail.
func SlideWindow(base EstimatorFunc) EstimatorFunc {
	return func(items []catalog.ScoredItem) Distribution {
		minor := 2 * WindowMajor
		n := len(items)
		if n <= minor {
			return base(items)
		}

		b := n / minor
		windows := make([]Distribution, 0, minor)
		floor := 0
		for i := 2; i <= minor; i++ {
			top := i * b
			if i == minor {
				windows = append(windows, base(items[floor:]))
			} else {
				windows = append(windows, base(items[floor:top]))
			}
			floor = (i - 1) * b
		}

		wrap := make([]catalog.ScoredItem, 0, b+n-floor)
		wrap = append(wrap, items[:b]...)
		wrap = append(wrap, items[floor:]...)
		windows = append(windows, base(wrap))

		return meanByClass(windows)
	}
}

func meanByClass(windows []Distribution) Distribution {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, w := range windows {
		labels := w.Labels()
		for _, k := range labels {
			sums[k] += w[k]
			counts[k]++
		}
	}
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Distribution, len(keys))
	for _, k := range keys {
		out[k] = sums[k] / float64(counts[k])
	}
	return out
}
