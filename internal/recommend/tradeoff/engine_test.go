// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package tradeoff

import (
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/catalog"
	"github.com/tomtom215/calibrec/internal/recommend/classes"
	"github.com/tomtom215/calibrec/internal/recommend/distribution"
	"github.com/tomtom215/calibrec/internal/recommend/measures"
)

func testStore() *catalog.Store {
	return catalog.NewStore(map[int]classes.Classes{
		1: {"Drama": 1},
		2: {"Drama": 1},
		3: {"Comedy": 1},
		4: {"Comedy": 1},
		5: {"Action": 1},
		6: {"Action": 0.5, "Drama": 0.5},
	})
}

func testPrefs() recommend.Frame {
	return recommend.Frame{Rows: []recommend.Interaction{
		{UserID: 1, ItemID: 1, Value: 5},
		{UserID: 1, ItemID: 2, Value: 4},
		{UserID: 1, ItemID: 6, Value: 4},
		{UserID: 1, ItemID: 5, Value: 2},
		{UserID: 2, ItemID: 3, Value: 5},
		{UserID: 2, ItemID: 4, Value: 5},
		{UserID: 2, ItemID: 5, Value: 3},
		{UserID: 2, ItemID: 1, Value: 1},
	}}
}

var candidateScores = map[int]float64{1: 0.9, 2: 0.8, 3: 0.95, 4: 0.7, 5: 0.99, 6: 0.6}

func testCandidates(users ...int) recommend.Frame {
	var rows []recommend.Interaction
	for _, uid := range users {
		for id := 1; id <= 6; id++ {
			rows = append(rows, recommend.Interaction{UserID: uid, ItemID: id, Value: candidateScores[id]})
		}
	}
	return recommend.Frame{Rows: rows}
}

func testConfig(weightCode string, listSize int) *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Weight = weightCode
	cfg.ListSize = listSize
	cfg.Workers = 2
	return cfg
}

func newEngine(t *testing.T, cfg *recommend.Config, opts ...Option) *Engine {
	t.Helper()
	e, err := New(testStore(), testPrefs(), testCandidates(1, 2), zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Configure(cfg); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	return e
}

func itemsOf(recs []recommend.Recommendation, uid int) []int {
	var out []int
	for _, r := range recs {
		if r.UserID == uid {
			out = append(out, r.ItemID)
		}
	}
	return out
}

func TestEngine_FitBeforeConfigure(t *testing.T) {
	e, err := New(testStore(), testPrefs(), testCandidates(1, 2), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = e.Fit(context.Background(), nil)
	if !errors.Is(err, recommend.ErrNotConfigured) {
		t.Fatalf("Fit() error = %v, want ErrNotConfigured", err)
	}
	if !errors.Is(err, recommend.ErrConfiguration) {
		t.Errorf("ErrNotConfigured does not wrap ErrConfiguration")
	}
	if e.Config() != nil {
		t.Errorf("Config() before Configure = %+v, want nil", e.Config())
	}
}

func TestNew_UnknownItems(t *testing.T) {
	cands := testCandidates(1)
	cands.Rows = append(cands.Rows,
		recommend.Interaction{UserID: 1, ItemID: 99},
		recommend.Interaction{UserID: 1, ItemID: 42},
		recommend.Interaction{UserID: 1, ItemID: 99},
	)

	_, err := New(testStore(), testPrefs(), cands, zerolog.Nop())
	var unknown *recommend.UnknownItemError
	if !errors.As(err, &unknown) {
		t.Fatalf("New() error = %v, want UnknownItemError", err)
	}
	if !reflect.DeepEqual(unknown.ItemIDs, []int{42, 99}) {
		t.Errorf("ItemIDs = %v, want [42 99]", unknown.ItemIDs)
	}
	if !errors.Is(err, recommend.ErrConsistency) {
		t.Errorf("UnknownItemError does not wrap ErrConsistency")
	}
}

func TestEngine_Configure_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*recommend.Config)
	}{
		{"unknown distribution", func(c *recommend.Config) { c.Distribution = "NOPE" }},
		{"unknown fairness", func(c *recommend.Config) { c.Fairness = "CHI" }},
		{"unknown relevance", func(c *recommend.Config) { c.Relevance = "MAP" }},
		{"unknown weight", func(c *recommend.Config) { c.Weight = "RANDOM" }},
		{"unknown selector", func(c *recommend.Config) { c.Selector = "MMR" }},
		{"bad list size", func(c *recommend.Config) { c.ListSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(testStore(), testPrefs(), testCandidates(1, 2), zerolog.Nop())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			cfg := recommend.DefaultConfig()
			tt.mutate(cfg)
			if err := e.Configure(cfg); !errors.Is(err, recommend.ErrConfiguration) {
				t.Errorf("Configure() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestEngine_UserMismatch(t *testing.T) {
	t.Run("user without candidates", func(t *testing.T) {
		e, err := New(testStore(), testPrefs(), testCandidates(1), zerolog.Nop())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := e.Configure(testConfig("C@0.5", 2)); err != nil {
			t.Fatalf("Configure() error = %v", err)
		}
		_, err = e.Fit(context.Background(), nil)
		var mismatch *recommend.UserMismatchError
		if !errors.As(err, &mismatch) || mismatch.Table != "candidates" {
			t.Fatalf("Fit() error = %v, want candidates UserMismatchError", err)
		}
		if !reflect.DeepEqual(mismatch.UserIDs, []int{2}) {
			t.Errorf("UserIDs = %v, want [2]", mismatch.UserIDs)
		}
	})

	t.Run("user missing from precomputed table", func(t *testing.T) {
		dists := Distributions{1: {"Drama": 1}}
		e := newEngine(t, testConfig("C@0.5", 2), WithDistributions(dists))
		_, err := e.Fit(context.Background(), []int{1, 2})
		var mismatch *recommend.UserMismatchError
		if !errors.As(err, &mismatch) || mismatch.Table != "distributions" {
			t.Fatalf("Fit() error = %v, want distributions UserMismatchError", err)
		}
		if !errors.Is(err, recommend.ErrConsistency) {
			t.Errorf("UserMismatchError does not wrap ErrConsistency")
		}
	})
}

func TestEngine_FairnessOnly(t *testing.T) {
	// Items 1 and 2 both match the target exactly; the smaller id wins.
	dists := Distributions{1: {"Drama": 1}, 2: {"Drama": 1}}
	e := newEngine(t, testConfig("C@1", 1), WithDistributions(dists))

	recs, err := e.Fit(context.Background(), []int{1})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if got := itemsOf(recs, 1); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("items = %v, want [1]", got)
	}
}

func TestEngine_RelevanceOnly(t *testing.T) {
	e := newEngine(t, testConfig("C@0", 3))

	recs, err := e.Fit(context.Background(), []int{1})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	want := []recommend.Recommendation{
		{UserID: 1, ItemID: 5, Order: 1, Value: 0.99},
		{UserID: 1, ItemID: 3, Order: 2, Value: 0.95},
		{UserID: 1, ItemID: 1, Order: 3, Value: 0.9},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("Fit() = %+v, want %+v", recs, want)
	}
}

func TestEngine_RoundTrip(t *testing.T) {
	target := distribution.Distribution{"Drama": 0.5, "Comedy": 0.5}
	cfg := testConfig("C@1", 2)
	cfg.Distribution = string(distribution.PGDP)

	e := newEngine(t, cfg, WithDistributions(Distributions{1: target}))
	recs, err := e.Fit(context.Background(), []int{1})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	store := testStore()
	var rows []recommend.Interaction
	for _, r := range recs {
		rows = append(rows, recommend.Interaction{UserID: 1, ItemID: r.ItemID, Value: r.Value, Order: r.Order})
	}
	list, err := store.Select(recommend.Frame{Rows: rows, HasOrder: true})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	realized := distribution.PGDP.Estimator().Estimate(list)

	p, q, _ := distribution.Align(target, realized, 0)
	if cos := measures.Cosine.Func(0)(p, q); math.Abs(cos-1) > 1e-9 {
		t.Errorf("cosine(target, realized) = %f, want 1 (realized %v)", cos, realized)
	}
}

func TestEngine_OutputOrder(t *testing.T) {
	users := []int{2, 1}

	var outputs [][]recommend.Recommendation
	for _, workers := range []int{1, 4} {
		cfg := testConfig("STD", 3)
		cfg.Workers = workers
		cfg.BatchSize = 1
		e := newEngine(t, cfg)

		recs, err := e.Fit(context.Background(), users)
		if err != nil {
			t.Fatalf("Fit(workers=%d) error = %v", workers, err)
		}
		outputs = append(outputs, recs)
	}

	recs := outputs[0]
	if len(recs) != 6 {
		t.Fatalf("len(Fit()) = %d, want 6", len(recs))
	}
	for i, r := range recs {
		wantUser := users[i/3]
		if r.UserID != wantUser || r.Order != i%3+1 {
			t.Errorf("row %d = user %d order %d, want user %d order %d", i, r.UserID, r.Order, wantUser, i%3+1)
		}
	}
	if !reflect.DeepEqual(outputs[0], outputs[1]) {
		t.Errorf("output depends on worker count:\n%+v\n%+v", outputs[0], outputs[1])
	}
}

func TestEngine_ListSizeBound(t *testing.T) {
	for _, size := range []int{1, 4, 6, 20} {
		e := newEngine(t, testConfig("VAR", size))
		recs, err := e.Fit(context.Background(), nil)
		if err != nil {
			t.Fatalf("Fit(list_size=%d) error = %v", size, err)
		}
		want := size
		if want > 6 {
			want = 6
		}
		for _, uid := range []int{1, 2} {
			items := itemsOf(recs, uid)
			if len(items) != want {
				t.Errorf("list_size=%d user %d got %d items, want %d", size, uid, len(items), want)
			}
			seen := make(map[int]bool)
			for _, id := range items {
				if seen[id] {
					t.Errorf("list_size=%d user %d item %d placed twice", size, uid, id)
				}
				seen[id] = true
			}
		}
	}
}

func TestEngine_Strategies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*recommend.Config)
	}{
		{"log bias", func(c *recommend.Config) { c.Tradeoff = recommend.TradeoffLogBias }},
		{"mitigation weight", func(c *recommend.Config) { c.Weight = "MIT" }},
		{"similarity measure", func(c *recommend.Config) { c.Fairness = "COSINE" }},
		{"minkowski", func(c *recommend.Config) { c.Fairness = "MINKOWSKI"; c.D = 2 }},
		{"sliding window", func(c *recommend.Config) { c.Distribution = "TSW_TWB_GLEB_P" }},
		{"legacy fill", func(c *recommend.Config) { c.MissingClassFill = recommend.LegacyMissingClassFill }},
		{"ndcg relevance", func(c *recommend.Config) { c.Relevance = "NDCG" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("STD", 3)
			tt.mutate(cfg)
			e := newEngine(t, cfg)
			recs, err := e.Fit(context.Background(), nil)
			if err != nil {
				t.Fatalf("Fit() error = %v", err)
			}
			if len(recs) != 6 {
				t.Errorf("len(Fit()) = %d, want 6", len(recs))
			}
		})
	}
}

func TestEngine_ConfigureLogsStrategy(t *testing.T) {
	tests := []struct {
		code          string
		want          string
		probabilistic bool
	}{
		{"cws", "CWS", false},
		{"WPS", "WPS", true},
		{"pgd_p", "PGD_P", true},
		{"TSW_TWB", "TSW_TWB", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			var buf bytes.Buffer
			e, err := New(testStore(), testPrefs(), testCandidates(1, 2), zerolog.New(&buf))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			cfg := testConfig("STD", 2)
			cfg.Distribution = tt.code
			if err := e.Configure(cfg); err != nil {
				t.Fatalf("Configure() error = %v", err)
			}

			var entry struct {
				Distribution  string `json:"distribution"`
				Probabilistic bool   `json:"probabilistic"`
			}
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
				t.Fatalf("decode log %q: %v", buf.String(), err)
			}
			if entry.Distribution != tt.want || entry.Probabilistic != tt.probabilistic {
				t.Errorf("logged %+v, want %s probabilistic=%v", entry, tt.want, tt.probabilistic)
			}
		})
	}
}

func TestEngine_Cancelled(t *testing.T) {
	e := newEngine(t, testConfig("STD", 3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recs, err := e.Fit(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fit() error = %v, want context.Canceled", err)
	}
	if recs != nil {
		t.Errorf("Fit() returned partial output %+v", recs)
	}
}

// recordingProgress counts notifications.
type recordingProgress struct {
	mu      sync.Mutex
	users   []int
	batches [][2]int
}

func (r *recordingProgress) UserDone(userID, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func (r *recordingProgress) BatchDone(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, [2]int{done, total})
}

func TestEngine_Progress(t *testing.T) {
	rec := &recordingProgress{}
	cfg := testConfig("STD", 2)
	cfg.BatchSize = 1
	e := newEngine(t, cfg, WithProgress(MultiProgress(rec, LogProgress{Logger: zerolog.Nop()})))

	if _, err := e.Fit(context.Background(), nil); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if len(rec.users) != 2 {
		t.Errorf("UserDone called %d times, want 2", len(rec.users))
	}
	if want := [][2]int{{1, 2}, {2, 2}}; !reflect.DeepEqual(rec.batches, want) {
		t.Errorf("BatchDone calls = %v, want %v", rec.batches, want)
	}
}

func TestComputeUserDistributions(t *testing.T) {
	store := testStore()
	dists, err := ComputeUserDistributions(context.Background(), store, testPrefs(), "cws")
	if err != nil {
		t.Fatalf("ComputeUserDistributions() error = %v", err)
	}
	if got := dists.Users(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("Users() = %v, want [1 2]", got)
	}

	history, err := store.Select(testPrefs().GroupByUser()[2])
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	want := distribution.ClassWeighted(history)
	if !reflect.DeepEqual(dists[2], want) {
		t.Errorf("user 2 = %v, want %v", dists[2], want)
	}
	if got := dists.Labels(); !reflect.DeepEqual(got, []string{"Action", "Comedy", "Drama"}) {
		t.Errorf("Labels() = %v", got)
	}

	if _, err := ComputeUserDistributions(context.Background(), store, testPrefs(), "NOPE"); !errors.Is(err, recommend.ErrConfiguration) {
		t.Errorf("unknown strategy error = %v, want ErrConfiguration", err)
	}
}

func TestDistributions_Clean(t *testing.T) {
	d := Distributions{1: {"Drama": math.NaN(), "Comedy": 0.5}}
	clean := d.Clean()
	if clean[1]["Drama"] != 0 || clean[1]["Comedy"] != 0.5 {
		t.Errorf("Clean() = %v", clean)
	}
	if !math.IsNaN(d[1]["Drama"]) {
		t.Errorf("Clean() mutated its receiver")
	}
}
