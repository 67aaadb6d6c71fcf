// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package weight

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/distribution"
)

func TestVectorStrategies(t *testing.T) {
	x := []float64{0.5, 0.25, 0.25, 0}

	// mean 0.25, population variance 0.03125
	tests := []struct {
		name string
		fn   VectorFunc
		want float64
	}{
		{"CGR", GenreCount, 0.75},
		{"VAR", NormVariance, 1 - 0.03125},
		{"STD", NormStd, 1 - math.Sqrt(0.03125)},
		{"TRT", Trust, 0.25},
		{"AMP", Amplitude, 1 - 3.0/16},
		{"EFF", Efficiency, 0.03125 / 0.0625},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(x); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s = %.15f, want %.15f", tt.name, got, tt.want)
			}
			if got := tt.fn(nil); got != 0 {
				t.Errorf("%s(empty) = %f, want 0", tt.name, got)
			}
		})
	}
}

func TestEfficiencyZeroMean(t *testing.T) {
	got := Efficiency([]float64{0, 0})
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("Efficiency(zeros) = %g, want finite", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		code      string
		wantConst bool
		value     float64
		wantErr   error
	}{
		{"C@0.5", true, 0.5, nil},
		{"c@1", true, 1, nil},
		{"C@abc", false, 0, recommend.ErrConfiguration},
		{"C@-1", false, 0, recommend.ErrConfiguration},
		{"STD", false, 0, nil},
		{"mit", false, 0, nil},
		{"RANDOM", false, 0, recommend.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			s, err := Parse(tt.code)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.code, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.code, err)
			}
			v, isConst := s.Constant()
			if isConst != tt.wantConst || v != tt.value {
				t.Errorf("Constant() = %v, %v, want %v, %v", v, isConst, tt.value, tt.wantConst)
			}
		})
	}

	for _, c := range Codes() {
		if _, err := Parse(c); err != nil {
			t.Errorf("Parse(%s) error = %v", c, err)
		}
	}
}

func TestSelector_Lambda(t *testing.T) {
	target := distribution.Distribution{"Drama": 0.5, "Comedy": 0.25, "Action": 0.25, "Horror": 0}

	constant, _ := Parse("C@0.3")
	if got := constant.Lambda(Input{Target: target}); got != 0.3 {
		t.Errorf("C@0.3 lambda = %f", got)
	}

	cgr, _ := Parse("CGR")
	if got := cgr.Lambda(Input{Target: target}); got != 0.75 {
		t.Errorf("CGR lambda = %f, want 0.75", got)
	}
	if cgr.NeedsCandidates() {
		t.Error("CGR should not need candidates")
	}
}

func TestMitigation(t *testing.T) {
	target := distribution.Distribution{"Drama": 1}

	// Identical distributions: jsf = 1; ideal-ordered scores: ndcg = 1.
	got := Mitigation([]float64{3, 2, 1}, target, distribution.Distribution{"Drama": 1}, 0)
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Mitigation(identical) = %f, want 0.5", got)
	}

	// Different class sets are aligned on the union before comparing.
	got = Mitigation([]float64{3, 2, 1}, target, distribution.Distribution{"Comedy": 1}, 0)
	if math.IsNaN(got) || got >= 0.5 {
		t.Errorf("Mitigation(disjoint) = %f, want below 0.5", got)
	}

	mit, _ := Parse("MIT")
	if !mit.NeedsCandidates() {
		t.Error("MIT should need candidates")
	}
	in := Input{
		Target:          target,
		Candidate:       distribution.Distribution{"Drama": 1},
		CandidateScores: []float64{3, 2, 1},
	}
	if l := mit.Lambda(in); math.Abs(l-0.5) > 1e-12 {
		t.Errorf("MIT lambda = %f, want 0.5", l)
	}
}
