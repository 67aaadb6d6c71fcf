// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package recommend holds the shared data model of the calibrated re-ranking
// engine: input rows, output rows, the calibration configuration record and
// the error taxonomy used by every subpackage.
//
// # Architecture
//
// The engine re-ranks an upstream recommender's candidate list per user so
// the class (genre) composition of the final list matches the composition of
// the user's history while keeping as much predicted relevance as possible.
// Components, leaf first:
//
//   - classes: turns a delimited label into a class -> weight mapping
//   - catalog: immutable item store plus per-user scored views
//   - distribution: registry of class-distribution strategies (CWS, TWB, ...)
//   - measures: registry of divergence/similarity functions (KL, COSINE, ...)
//   - relevance: registry of list relevance aggregators (SUM, NDCG, ...)
//   - weight: registry of tradeoff-weight strategies (C@v, VAR, MIT, ...)
//   - reranking: the greedy position-by-position surrogate selector
//   - tradeoff: the orchestrator binding everything for a multi-user run
//
// # Determinism
//
// Every registry is a closed enum resolved once per run. Candidates are
// evaluated in ascending item id order and the first strictly greater utility
// wins, so identical inputs always produce identical lists regardless of
// worker scheduling.
//
// # Usage
//
//	store, _ := classes.Expand(items, classes.SourceGenres, prefs.Rows)
//	engine, err := tradeoff.New(store, prefs, candidates, logger)
//	if err != nil { ... }
//	if err := engine.Configure(recommend.DefaultConfig()); err != nil { ... }
//	recs, err := engine.Fit(ctx, nil)
//
// # References
//
//   - Steck (2018). Calibrated Recommendations. https://doi.org/10.1145/3240323.3240372
//   - Silva et al. (2021). https://doi.org/10.1016/j.eswa.2021.115112
//   - Kaya and Bridge (2019). https://doi.org/10.1145/3298689.3347045
package recommend
