// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package tradeoff

import (
	"context"
	"math"
	"sort"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/catalog"
	"github.com/tomtom215/calibrec/internal/recommend/distribution"
)

// Distributions is a per-user table of target distributions, the in-memory
// form of the wide USER_ID x class table.
type Distributions map[int]distribution.Distribution

// Users returns the user ids in ascending order.
func (d Distributions) Users() []int {
	out := make([]int, 0, len(d))
	for uid := range d {
		out = append(out, uid)
	}
	sort.Ints(out)
	return out
}

// Labels returns the union of class labels, sorted.
func (d Distributions) Labels() []string {
	seen := make(map[string]struct{})
	for _, dist := range d {
		for label := range dist {
			seen[label] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for label := range seen {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Clean returns a copy with NaN cells replaced by zero.
func (d Distributions) Clean() Distributions {
	out := make(Distributions, len(d))
	for uid, dist := range d {
		c := make(distribution.Distribution, len(dist))
		for label, v := range dist {
			if math.IsNaN(v) {
				v = 0
			}
			c[label] = v
		}
		out[uid] = c
	}
	return out
}

// ComputeUserDistributions estimates the target distribution of every user
// in prefs with the given strategy code.
func ComputeUserDistributions(ctx context.Context, store *catalog.Store, prefs recommend.Frame, code string) (Distributions, error) {
	estimator, err := distribution.New(code)
	if err != nil {
		return nil, err
	}
	if missing := store.Missing(prefs.ItemIDs()); len(missing) > 0 {
		return nil, &recommend.UnknownItemError{ItemIDs: missing}
	}

	groups := prefs.GroupByUser()
	out := make(Distributions, len(groups))
	for _, uid := range prefs.Users() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		history, err := store.Select(groups[uid])
		if err != nil {
			return nil, err
		}
		out[uid] = estimator.Estimate(history)
	}
	return out, nil
}
