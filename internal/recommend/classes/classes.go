// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package classes expands item class labels into per-item class weights.
//
// A class label such as "Action|Comedy" is split into tokens that share one
// unit of weight uniformly: {"Action": 0.5, "Comedy": 0.5}. Popularity
// classes are single-token labels ("G01" .. "G10") with weight 1.0, either
// read from a POPULARITY column or derived from interaction counts.
package classes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/calibrec/internal/recommend"
)

// Delimiter separates class tokens inside a GENRES label.
const Delimiter = "|"

// Buckets is the number of popularity bands.
const Buckets = 10

// Classes maps a class label to the item's weight for that class.
type Classes map[string]float64

// Split turns a delimited label into uniform class weights. Blank tokens
// are dropped and the remaining N tokens get weight 1/N each. A label with
// no tokens yields an empty map.
func Split(label, delimiter string) Classes {
	tokens := make([]string, 0, strings.Count(label, delimiter)+1)
	for _, tok := range strings.Split(label, delimiter) {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return Classes{}
	}
	ratio := 1.0 / float64(len(tokens))
	out := make(Classes, len(tokens))
	for _, tok := range tokens {
		out[tok] += ratio
	}
	return out
}

// BucketLabel returns the label of a 1-based popularity band.
func BucketLabel(bucket int) string {
	return fmt.Sprintf("G%02d", bucket)
}

// PopularityBuckets ranks itemIDs by interaction count (highest first, ties
// by ascending id) and assigns each item to one of ten evenly spaced bands.
// Items without interactions count as zero.
func PopularityBuckets(interactions []recommend.Interaction, itemIDs []int) map[int]Classes {
	counts := make(map[int]int, len(itemIDs))
	for i := range interactions {
		counts[interactions[i].ItemID]++
	}

	ranked := make([]int, len(itemIDs))
	copy(ranked, itemIDs)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := counts[ranked[i]], counts[ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return ranked[i] < ranked[j]
	})

	n := len(ranked)
	out := make(map[int]Classes, n)
	for i, id := range ranked {
		bucket := i*Buckets/n + 1
		out[id] = Classes{BucketLabel(bucket): 1.0}
	}
	return out
}

// Expand builds per-item classes from an item table using the given source.
// POPULARITY_RANK derives bands from prefs; the other sources read a column
// that must be present in the table.
func Expand(table recommend.ItemTable, source string, prefs recommend.Frame) (map[int]Classes, error) {
	out := make(map[int]Classes, len(table.Rows))

	switch source {
	case recommend.ClassSourceGenres:
		if !table.HasGenres {
			return nil, &recommend.MissingColumnError{Table: "items", Column: recommend.ColumnGenres}
		}
		for _, row := range table.Rows {
			out[row.ItemID] = Split(row.Genres, Delimiter)
		}

	case recommend.ClassSourcePopularity:
		if !table.HasPopularity {
			return nil, &recommend.MissingColumnError{Table: "items", Column: recommend.ColumnPopularity}
		}
		for _, row := range table.Rows {
			label := strings.TrimSpace(row.Popularity)
			if label == "" {
				out[row.ItemID] = Classes{}
				continue
			}
			out[row.ItemID] = Classes{label: 1.0}
		}

	case recommend.ClassSourcePopularityRank:
		ids := make([]int, 0, len(table.Rows))
		for _, row := range table.Rows {
			ids = append(ids, row.ItemID)
		}
		return PopularityBuckets(prefs.Rows, ids), nil

	default:
		return nil, &recommend.UnknownCodeError{Registry: recommend.RegistryClassSource, Code: source}
	}

	return out, nil
}
