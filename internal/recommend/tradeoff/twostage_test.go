// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package tradeoff

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/calibrec/internal/recommend"
)

func testItems() recommend.ItemTable {
	return recommend.ItemTable{
		HasGenres: true,
		Rows: []recommend.ItemRecord{
			{ItemID: 1, Genres: "Drama"},
			{ItemID: 2, Genres: "Drama"},
			{ItemID: 3, Genres: "Comedy"},
			{ItemID: 4, Genres: "Comedy"},
			{ItemID: 5, Genres: "Action"},
			{ItemID: 6, Genres: "Action|Drama"},
		},
	}
}

func TestFirstStageSize(t *testing.T) {
	tests := []struct {
		name  string
		prefs recommend.Frame
		want  int
	}{
		{"four rows per user", testPrefs(), 2},
		{"empty", recommend.Frame{}, 1},
		{"one row", recommend.Frame{Rows: []recommend.Interaction{{UserID: 1, ItemID: 1}}}, 1},
		{"rounds up", recommend.Frame{Rows: []recommend.Interaction{
			{UserID: 1, ItemID: 1}, {UserID: 1, ItemID: 2}, {UserID: 1, ItemID: 3},
		}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstStageSize(tt.prefs); got != tt.want {
				t.Errorf("FirstStageSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewTwoStage_MissingColumns(t *testing.T) {
	items := testItems()
	items.HasGenres = false

	_, err := NewTwoStage(items, testPrefs(), testCandidates(1, 2), StageDistributions{}, zerolog.Nop())
	var missing *recommend.MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("NewTwoStage() error = %v, want MissingColumnError", err)
	}
	if !errors.Is(err, recommend.ErrSchema) {
		t.Errorf("MissingColumnError does not wrap ErrSchema")
	}
}

func TestTwoStage_Sources(t *testing.T) {
	tests := []struct {
		name                  string
		genres, popularity    bool
		wantFirst, wantSecond string
	}{
		{"both", true, true, recommend.ClassSourcePopularity, recommend.ClassSourceGenres},
		{"genres only", true, false, recommend.ClassSourcePopularityRank, recommend.ClassSourceGenres},
		{"popularity only", false, true, recommend.ClassSourcePopularity, recommend.ClassSourcePopularity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := testItems()
			items.HasGenres = tt.genres
			items.HasPopularity = tt.popularity
			ts, err := NewTwoStage(items, testPrefs(), testCandidates(1, 2), StageDistributions{}, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewTwoStage() error = %v", err)
			}
			first, second := ts.Sources()
			if first != tt.wantFirst || second != tt.wantSecond {
				t.Errorf("Sources() = %s, %s, want %s, %s", first, second, tt.wantFirst, tt.wantSecond)
			}
		})
	}
}

func TestTwoStage_Fit(t *testing.T) {
	ts, err := NewTwoStage(testItems(), testPrefs(), testCandidates(1, 2), StageDistributions{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTwoStage() error = %v", err)
	}
	if _, err := ts.Fit(context.Background(), nil); !errors.Is(err, recommend.ErrNotConfigured) {
		t.Fatalf("Fit() before Configure error = %v, want ErrNotConfigured", err)
	}

	if err := ts.Configure(testConfig("STD", 5)); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	recs, err := ts.Fit(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// The first stage keeps two items per user, bounding the second.
	for _, uid := range []int{1, 2} {
		items := itemsOf(recs, uid)
		if len(items) != 2 {
			t.Errorf("user %d got %v, want 2 items", uid, items)
		}
	}
	for i, r := range recs {
		if r.Order != i%2+1 {
			t.Errorf("row %d order = %d, want %d", i, r.Order, i%2+1)
		}
		if r.Value != candidateScores[r.ItemID] {
			t.Errorf("row %d value = %f, want %f", i, r.Value, candidateScores[r.ItemID])
		}
	}
}

func TestTwoStage_PrecomputedGenres(t *testing.T) {
	dists := StageDistributions{
		Genres: Distributions{1: {"Drama": 1}, 2: {"Comedy": 1}},
	}
	ts, err := NewTwoStage(testItems(), testPrefs(), testCandidates(1, 2), dists, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTwoStage() error = %v", err)
	}
	if err := ts.Configure(testConfig("C@0.5", 5)); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if _, err := ts.Fit(context.Background(), []int{1, 2}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// A user missing from the genre table fails in the second stage.
	dists.Genres = Distributions{1: {"Drama": 1}}
	ts, err = NewTwoStage(testItems(), testPrefs(), testCandidates(1, 2), dists, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTwoStage() error = %v", err)
	}
	if err := ts.Configure(testConfig("C@0.5", 5)); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	_, err = ts.Fit(context.Background(), []int{1, 2})
	var mismatch *recommend.UserMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("Fit() error = %v, want UserMismatchError", err)
	}
}

func TestRecommendationFrame(t *testing.T) {
	f := RecommendationFrame([]recommend.Recommendation{
		{UserID: 1, ItemID: 3, Order: 1, Value: 0.5},
		{UserID: 1, ItemID: 4, Order: 2, Value: 0.25},
	})
	if !f.HasOrder || f.HasTimestamp {
		t.Errorf("flags = order %v timestamp %v", f.HasOrder, f.HasTimestamp)
	}
	if f.Rows[1].Order != 2 || f.Rows[1].Value != 0.25 || f.Rows[1].ItemID != 4 {
		t.Errorf("row = %+v", f.Rows[1])
	}
}
