// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package recommend

import "sort"

// Column names recognized in input and output tables.
const (
	ColumnUserID           = "USER_ID"
	ColumnItemID           = "ITEM_ID"
	ColumnTransactionValue = "TRANSACTION_VALUE"
	ColumnPredictedValue   = "PREDICTED_VALUE"
	ColumnTimestamp        = "TIMESTAMP"
	ColumnOrder            = "ORDER"
	ColumnGenres           = "GENRES"
	ColumnPopularity       = "POPULARITY"
)

// Interaction is one row of a preference or candidate table.
//
// For preference tables Value is the user's feedback (TRANSACTION_VALUE).
// For candidate tables it is the upstream predicted score (TRANSACTION_VALUE
// or PREDICTED_VALUE, whichever the table carries).
type Interaction struct {
	// UserID identifies the user.
	UserID int `json:"user_id"`

	// ItemID identifies the item; it must exist in the item catalog.
	ItemID int `json:"item_id"`

	// Value is the feedback or predicted score.
	Value float64 `json:"transaction_value"`

	// Timestamp is the interaction time in epoch seconds.
	// Only meaningful when the owning Frame has HasTimestamp set.
	Timestamp int64 `json:"timestamp,omitempty"`

	// Order is the 1-based rank assigned by a previous re-ranking stage.
	// Only meaningful when the owning Frame has HasOrder set.
	Order int `json:"order,omitempty"`
}

// Frame is a table of interactions together with the optional columns that
// were present when it was loaded. Column presence, not per-row values,
// drives how recency weights are derived.
type Frame struct {
	Rows         []Interaction
	HasTimestamp bool
	HasOrder     bool
}

// Users returns the distinct user ids in first-seen order.
func (f Frame) Users() []int {
	seen := make(map[int]struct{}, len(f.Rows))
	users := make([]int, 0)
	for i := range f.Rows {
		uid := f.Rows[i].UserID
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		users = append(users, uid)
	}
	return users
}

// ItemIDs returns the distinct item ids in ascending order.
func (f Frame) ItemIDs() []int {
	seen := make(map[int]struct{}, len(f.Rows))
	for i := range f.Rows {
		seen[f.Rows[i].ItemID] = struct{}{}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GroupByUser splits the frame into per-user frames sharing the same column
// flags. Row order inside each user frame is preserved.
func (f Frame) GroupByUser() map[int]Frame {
	groups := make(map[int]Frame)
	for i := range f.Rows {
		row := f.Rows[i]
		g := groups[row.UserID]
		g.Rows = append(g.Rows, row)
		g.HasTimestamp = f.HasTimestamp
		g.HasOrder = f.HasOrder
		groups[row.UserID] = g
	}
	return groups
}

// ItemRecord is one row of the item table.
type ItemRecord struct {
	// ItemID identifies the item.
	ItemID int `json:"item_id"`

	// Genres is the delimited class label, e.g. "Action|Comedy".
	Genres string `json:"genres,omitempty"`

	// Popularity is a precomputed popularity class label, e.g. "G03".
	Popularity string `json:"popularity,omitempty"`
}

// ItemTable is the item catalog input with column presence flags.
type ItemTable struct {
	Rows          []ItemRecord
	HasGenres     bool
	HasPopularity bool
}

// Recommendation is one row of the output table: an item placed at a 1-based
// position for a user, joined with the user's candidate value.
type Recommendation struct {
	// UserID identifies the user the list belongs to.
	UserID int `json:"user_id"`

	// ItemID identifies the placed item.
	ItemID int `json:"item_id"`

	// Order is the 1-based position in the user's calibrated list.
	Order int `json:"order"`

	// Value is the candidate's predicted score carried over by the left join.
	Value float64 `json:"transaction_value"`
}
