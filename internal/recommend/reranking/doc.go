// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package reranking implements the greedy selectors that build a calibrated
// list from a user's candidates.
//
// # Overview
//
// A selector receives the user's target distribution p, the user's scored
// candidates and the tradeoff weight lambda. It fills the list one position
// at a time:
//
//	for k := 1 .. list_size:
//	    for each unplaced candidate c (ascending item id):
//	        tentative = placed + c, with c.time = 1/k
//	        q         = distribution(tentative)
//	        fair      = measure(p, tildeQ(p, q, alpha))
//	        rel       = relevance(scores(tentative))
//	        u         = balance(lambda, rel, fair)
//	    commit the candidate with the strictly greatest u
//
// The first candidate evaluated at a position seeds the running best, so a
// NaN utility never leaves a position empty while candidates remain.
//
// # Balances
//
// Linear:
//
//	u = (1-lambda)*rel + lambda*fair   (similarity measures)
//	u = (1-lambda)*rel - lambda*fair   (divergence measures)
//
// LogBias applies sign(u)*ln(|u|+1) to the linear utility and adds a user
// bias computed over the tentative list from item biases learned on the
// preference table.
//
// # Thread Safety
//
// Selectors hold only read-only bound components and are safe for
// concurrent use across users.
//
// # See Also
//
//   - Steck (2018): "Calibrated Recommendations", RecSys
//   - Silva et al. (2021): "Exploiting personalized calibration and metrics
//     for fairness recommendation", Expert Systems with Applications
package reranking
