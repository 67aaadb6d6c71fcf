// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package catalog holds the immutable item catalog and derives the per-user
// scored views that distribution strategies and selectors work on.
//
// The Store is built once and never mutated: per-user values (score, recency
// weight, list position) live in ScoredItem values that point back at the
// shared catalog entry. A Store is safe for concurrent use.
package catalog

import (
	"sort"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/classes"
)

// Item is a catalog entry.
type Item struct {
	ID      int
	Classes classes.Classes

	// Bias is the learned item bias used by the logarithmic-bias tradeoff.
	Bias float64
}

// ScoredItem is a user-scoped view of a catalog item.
type ScoredItem struct {
	Item *Item

	// Score is the user's feedback or the candidate's predicted value.
	Score float64

	// Time is the recency weight in (0, 1].
	Time float64

	// Position is the 1-based list position, zero when not placed.
	Position int
}

// ID returns the catalog item id.
func (s ScoredItem) ID() int {
	return s.Item.ID
}

// Store is an immutable keyed collection of expanded items.
type Store struct {
	items map[int]*Item
	ids   []int
}

// NewStore builds a store from per-item classes.
func NewStore(itemClasses map[int]classes.Classes) *Store {
	s := &Store{
		items: make(map[int]*Item, len(itemClasses)),
		ids:   make([]int, 0, len(itemClasses)),
	}
	for id, c := range itemClasses {
		s.items[id] = &Item{ID: id, Classes: c}
		s.ids = append(s.ids, id)
	}
	sort.Ints(s.ids)
	return s
}

// FromTable expands an item table with the given class source and builds a
// store from it.
func FromTable(table recommend.ItemTable, source string, prefs recommend.Frame) (*Store, error) {
	expanded, err := classes.Expand(table, source, prefs)
	if err != nil {
		return nil, err
	}
	return NewStore(expanded), nil
}

// Get returns the item with the given id.
func (s *Store) Get(id int) (*Item, bool) {
	it, ok := s.items[id]
	return it, ok
}

// Contains reports whether id is in the catalog.
func (s *Store) Contains(id int) bool {
	_, ok := s.items[id]
	return ok
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// IDs returns the catalog item ids in ascending order.
func (s *Store) IDs() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

// Labels returns every class label used by the catalog, sorted.
func (s *Store) Labels() []string {
	seen := make(map[string]struct{})
	for _, it := range s.items {
		for label := range it.Classes {
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

// Missing returns the ids not present in the catalog, sorted and distinct.
func (s *Store) Missing(ids []int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, id := range ids {
		if s.Contains(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// WithBias returns a new store whose items carry the given biases. Items
// without an entry get a zero bias.
func (s *Store) WithBias(bias map[int]float64) *Store {
	out := &Store{
		items: make(map[int]*Item, len(s.items)),
		ids:   s.IDs(),
	}
	for id, it := range s.items {
		out.items[id] = &Item{ID: id, Classes: it.Classes, Bias: bias[id]}
	}
	return out
}

// Select derives the ordered user-scoped view of the frame's rows.
//
// Recency comes from the ORDER column (1/order) when present, otherwise
// from the TIMESTAMP column normalised to [0, 1], otherwise from the rank
// surrogate (i+1)/n over distinct items. Repeated item rows keep their first
// position and take the last row's values.
func (s *Store) Select(f recommend.Frame) ([]ScoredItem, error) {
	if missing := s.Missing(itemIDs(f.Rows)); len(missing) > 0 {
		return nil, &recommend.UnknownItemError{ItemIDs: missing}
	}

	var minTS, maxTS int64
	if f.HasTimestamp && len(f.Rows) > 0 {
		minTS, maxTS = f.Rows[0].Timestamp, f.Rows[0].Timestamp
		for i := range f.Rows {
			ts := f.Rows[i].Timestamp
			if ts < minTS {
				minTS = ts
			}
			if ts > maxTS {
				maxTS = ts
			}
		}
	}

	index := make(map[int]int, len(f.Rows))
	out := make([]ScoredItem, 0, len(f.Rows))
	for i := range f.Rows {
		row := &f.Rows[i]
		si := ScoredItem{Item: s.items[row.ItemID], Score: row.Value}

		switch {
		case f.HasOrder:
			order := row.Order
			if order < 1 {
				order = 1
			}
			si.Time = 1 / float64(order)
		case f.HasTimestamp:
			if divisor := maxTS - minTS; divisor != 0 {
				si.Time = float64(row.Timestamp-minTS) / float64(divisor)
			} else {
				si.Time = 1
			}
		}

		if at, ok := index[row.ItemID]; ok {
			out[at] = si
			continue
		}
		index[row.ItemID] = len(out)
		out = append(out, si)
	}

	if !f.HasOrder && !f.HasTimestamp {
		n := float64(len(out))
		for i := range out {
			out[i].Time = float64(i+1) / n
		}
	}
	return out, nil
}

// Scores returns the scores of items in list order.
func Scores(items []ScoredItem) []float64 {
	out := make([]float64, len(items))
	for i := range items {
		out[i] = items[i].Score
	}
	return out
}

func itemIDs(rows []recommend.Interaction) []int {
	ids := make([]int, len(rows))
	for i := range rows {
		ids[i] = rows[i].ItemID
	}
	return ids
}
