// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package distribution

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/catalog"
	"github.com/tomtom215/calibrec/internal/recommend/classes"
)

const tolerance = 1e-4

// userHistory is a three-film history: a comedy-adventure rated 5, a
// four-genre western rated 4 and a pure drama rated 4.
func userHistory() []catalog.ScoredItem {
	compadecida := &catalog.Item{ID: 1, Classes: classes.Classes{"Adventure": 0.5, "Comedy": 0.5}}
	sol := &catalog.Item{ID: 2, Classes: classes.Classes{"Adventure": 0.25, "Crime": 0.25, "Drama": 0.25, "Western": 0.25}}
	amor := &catalog.Item{ID: 3, Classes: classes.Classes{"Drama": 1}}
	return []catalog.ScoredItem{
		{Item: compadecida, Score: 5, Time: 1.0 / 3},
		{Item: sol, Score: 4, Time: 2.0 / 3},
		{Item: amor, Score: 4, Time: 1},
	}
}

func longHistory(n int) []catalog.ScoredItem {
	labels := []classes.Classes{
		{"Action": 1},
		{"Comedy": 0.5, "Drama": 0.5},
		{"Drama": 1},
	}
	out := make([]catalog.ScoredItem, n)
	for i := 0; i < n; i++ {
		out[i] = catalog.ScoredItem{
			Item:  &catalog.Item{ID: i + 1, Classes: labels[i%len(labels)]},
			Score: float64(i%5 + 1),
			Time:  float64(i+1) / float64(n),
		}
	}
	return out
}

func assertDistribution(t *testing.T, got, want Distribution) {
	t.Helper()
	if !reflect.DeepEqual(got.Labels(), want.Labels()) {
		t.Fatalf("labels = %v, want %v", got.Labels(), want.Labels())
	}
	for k, v := range want {
		if math.Abs(got[k]-v) > tolerance {
			t.Errorf("%s = %.5f, want %.5f", k, got[k], v)
		}
	}
}

func TestClassWeighted(t *testing.T) {
	got := ClassWeighted(userHistory())
	assertDistribution(t, got, Distribution{
		"Adventure": 0.3889,
		"Comedy":    0.5,
		"Crime":     0.25,
		"Drama":     0.625,
		"Western":   0.25,
	})
}

func TestPureGenre(t *testing.T) {
	got := PureGenre(userHistory())
	assertDistribution(t, got, Distribution{
		"Adventure": 0.75,
		"Comedy":    0.5,
		"Crime":     0.25,
		"Drama":     1.25,
		"Western":   0.25,
	})

	p := Probability(PureGenre)(userHistory())
	if math.Abs(p["Drama"]-1.25/3) > 1e-12 {
		t.Errorf("PGD_P Drama = %f, want %f", p["Drama"], 1.25/3)
	}
}

func TestClassWeighted_Floor(t *testing.T) {
	items := []catalog.ScoredItem{
		{Item: &catalog.Item{ID: 1, Classes: classes.Classes{"Horror": 1}}, Score: 0},
	}
	got := ClassWeighted(items)
	if got["Horror"] != Floor {
		t.Errorf("zero-score class = %g, want %g", got["Horror"], Floor)
	}
}

func TestTimeGenre_ZeroTime(t *testing.T) {
	items := []catalog.ScoredItem{
		{Item: &catalog.Item{ID: 1, Classes: classes.Classes{"Horror": 1}}, Score: 3, Time: 0},
	}
	got := TimeGenre(items)
	if got["Horror"] != Floor {
		t.Errorf("zero-time class = %g, want %g", got["Horror"], Floor)
	}
}

func TestGlobalLocalEntropy(t *testing.T) {
	// Single pure-drama item: g = 1, w = 1, entropy term 0, so the class is
	// floored.
	items := []catalog.ScoredItem{
		{Item: &catalog.Item{ID: 1, Classes: classes.Classes{"Drama": 1}}, Score: 4, Time: 1},
	}
	if got := GlobalLocalEntropy(items)["Drama"]; got != Floor {
		t.Errorf("GLEB Drama = %g, want floor", got)
	}

	// Two single-class items of different classes: g = 0.5, w = 1,
	// ent = -0.5*log2(0.5) = 0.5.
	items = append(items, catalog.ScoredItem{
		Item: &catalog.Item{ID: 2, Classes: classes.Classes{"Comedy": 1}}, Score: 2, Time: 0.5,
	})
	got := GlobalLocalEntropy(items)
	if math.Abs(got["Drama"]-0.5) > 1e-12 || math.Abs(got["Comedy"]-0.5) > 1e-12 {
		t.Errorf("GLEB = %v, want 0.5 for both", got)
	}

	tw := TimeWeightedEntropy(items)
	if math.Abs(tw["Comedy"]-0.25) > 1e-12 {
		t.Errorf("TWB_GLEB Comedy = %g, want 0.25", tw["Comedy"])
	}
}

func TestSlideWindow(t *testing.T) {
	t.Run("short list falls back to base", func(t *testing.T) {
		items := longHistory(20)
		got := SlideWindow(ClassWeighted)(items)
		assertDistribution(t, got, ClassWeighted(items))
	})

	t.Run("single class stays at one", func(t *testing.T) {
		items := make([]catalog.ScoredItem, 45)
		for i := range items {
			items[i] = catalog.ScoredItem{
				Item:  &catalog.Item{ID: i, Classes: classes.Classes{"Drama": 1}},
				Score: float64(i%3 + 1),
			}
		}
		got := SlideWindow(ClassWeighted)(items)
		if math.Abs(got["Drama"]-1) > 1e-12 {
			t.Errorf("TSW Drama = %g, want 1", got["Drama"])
		}
	})

	t.Run("class missing from some windows", func(t *testing.T) {
		// 42 items: b = 2. Only the last item carries Horror, so it appears
		// in the final window and the wrap-around window only.
		items := make([]catalog.ScoredItem, 42)
		for i := range items {
			items[i] = catalog.ScoredItem{
				Item:  &catalog.Item{ID: i, Classes: classes.Classes{"Drama": 1}},
				Score: 1,
			}
		}
		items[41].Item = &catalog.Item{ID: 41, Classes: classes.Classes{"Horror": 1}}
		got := SlideWindow(ClassWeighted)(items)
		if math.Abs(got["Horror"]-1) > 1e-12 {
			t.Errorf("TSW Horror = %g, want 1", got["Horror"])
		}
	})
}

func TestProbabilityStrategiesSumToOne(t *testing.T) {
	histories := map[string][]catalog.ScoredItem{
		"short": userHistory(),
		"long":  longHistory(63),
	}
	for _, s := range Codes() {
		if !s.Probabilistic() {
			continue
		}
		for name, items := range histories {
			t.Run(string(s)+"/"+name, func(t *testing.T) {
				got := s.Estimator().Estimate(items)
				if sum := got.Sum(); math.Abs(sum-1) > 1e-9 {
					t.Errorf("sum = %.12f, want 1", sum)
				}
			})
		}
	}
}

func TestProbabilityStrategiesUnclassified(t *testing.T) {
	items := []catalog.ScoredItem{
		{Item: &catalog.Item{ID: 1, Classes: classes.Split("", classes.Delimiter)}, Score: 4, Time: 0.5},
		{Item: &catalog.Item{ID: 2, Classes: classes.Split("|", classes.Delimiter)}, Score: 2, Time: 1},
	}
	for _, s := range Codes() {
		if !s.Probabilistic() {
			continue
		}
		t.Run(string(s), func(t *testing.T) {
			got := s.Estimator().Estimate(items)
			if len(got) != 0 {
				t.Errorf("Estimate() = %v, want empty", got)
			}
			if sum := got.Sum(); sum != 0 {
				t.Errorf("sum = %g, want 0", sum)
			}
		})
	}
}

func TestAllStrategiesFinite(t *testing.T) {
	items := longHistory(50)
	for _, s := range Codes() {
		t.Run(string(s), func(t *testing.T) {
			for k, v := range s.Estimator().Estimate(items) {
				if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
					t.Errorf("%s = %g", k, v)
				}
			}
		})
	}
}

func TestParse(t *testing.T) {
	if len(Codes()) != 20 {
		t.Fatalf("len(Codes()) = %d, want 20", len(Codes()))
	}
	for _, c := range Codes() {
		if _, err := New(string(c)); err != nil {
			t.Errorf("New(%s) error = %v", c, err)
		}
	}
	if s, err := Parse("tsw_twb_p"); err != nil || s != TSWTWBP {
		t.Errorf("Parse(lowercase) = %v, %v", s, err)
	}

	_, err := New("XYZ")
	var uce *recommend.UnknownCodeError
	if !errors.As(err, &uce) || uce.Registry != recommend.RegistryDistribution {
		t.Fatalf("New(XYZ) error = %v, want UnknownCodeError", err)
	}
	if !errors.Is(err, recommend.ErrConfiguration) {
		t.Error("error does not wrap ErrConfiguration")
	}
}

func TestAlign(t *testing.T) {
	target := Distribution{"Drama": 0.6, "Comedy": 0.4}
	realized := Distribution{"Drama": 1, "Action": 0.2}

	tests := []struct {
		name  string
		fill  float64
		wantP []float64
		wantQ []float64
	}{
		{"zero fill", 0, []float64{0, 0.4, 0.6}, []float64{0.2, 0, 1}},
		{"legacy fill", recommend.LegacyMissingClassFill, []float64{1e-5, 0.4, 0.6}, []float64{0.2, 1e-5, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, q, labels := Align(target, realized, tt.fill)
			if !reflect.DeepEqual(labels, []string{"Action", "Comedy", "Drama"}) {
				t.Errorf("labels = %v", labels)
			}
			if !reflect.DeepEqual(p, tt.wantP) || !reflect.DeepEqual(q, tt.wantQ) {
				t.Errorf("Align() = %v, %v, want %v, %v", p, q, tt.wantP, tt.wantQ)
			}
		})
	}
}

func TestTildeQ(t *testing.T) {
	p := []float64{0.2, 0.8}
	q := []float64{0.6, 0.4}

	if got := TildeQ(p, q, 0); !reflect.DeepEqual(got, q) {
		t.Errorf("alpha 0 = %v, want q", got)
	}
	if got := TildeQ(p, q, 1); !reflect.DeepEqual(got, p) {
		t.Errorf("alpha 1 = %v, want p", got)
	}
	got := TildeQ(p, q, 0.5)
	if math.Abs(got[0]-0.4) > 1e-12 || math.Abs(got[1]-0.6) > 1e-12 {
		t.Errorf("alpha 0.5 = %v, want [0.4 0.6]", got)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(Distribution{"a": 1, "b": 3})
	if got["a"] != 0.25 || got["b"] != 0.75 {
		t.Errorf("Normalize() = %v", got)
	}
	zero := Normalize(Distribution{"a": 0})
	if zero["a"] != 0 {
		t.Errorf("Normalize(zero) = %v", zero)
	}
}
