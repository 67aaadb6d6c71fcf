// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/calibrec/internal/recommend"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestKnownValues(t *testing.T) {
	p := []float64{0.5, 0.5}
	q := []float64{0.25, 0.75}

	tests := []struct {
		m    Measure
		want float64
	}{
		{KL, 0.5*math.Log(2) + 0.5*math.Log(2.0/3)},
		{Euclidean, math.Sqrt(0.125)},
		{CityBlock, 0.5},
		{Chebyshev, 0.25},
		{Gower, 0.25},
		{IntersectionSim, 0.75},
		{IntersectionDiv, 0.25},
		{Sorensen, 0.25},
		{Inner, 0.5},
		{SquaredEuclidean, 0.125},
		{ChiSquare, 0.0625/0.25 + 0.0625/0.75},
		{Neyman, 0.0625/0.5 + 0.0625/0.5},
		{Fidelity, math.Sqrt(0.125) + math.Sqrt(0.375)},
		{SquaredChordSim, 2*(math.Sqrt(0.125)+math.Sqrt(0.375)) - 1},
		{WTV, (1.5*0.25 + 1.5*0.25) / 2},
		{Avg, (0.25 + 0.25 + 2*0.25) / 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.m), func(t *testing.T) {
			got := tt.m.Func(3)(p, q)
			if !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("%s = %.15f, want %.15f", tt.m, got, tt.want)
			}
		})
	}
}

func TestMinkowskiOrders(t *testing.T) {
	p := []float64{0.1, 0.6, 0.3}
	q := []float64{0.3, 0.3, 0.4}

	if got, want := Minkowski(1)(p, q), cityBlock(p, q); !almostEqual(got, want, 1e-12) {
		t.Errorf("Minkowski(1) = %f, want city block %f", got, want)
	}
	if got, want := Minkowski(2)(p, q), euclidean(p, q); !almostEqual(got, want, 1e-12) {
		t.Errorf("Minkowski(2) = %f, want euclidean %f", got, want)
	}
	if got := MinkowskiCode.Func(2)(p, q); !almostEqual(got, euclidean(p, q), 1e-12) {
		t.Errorf("MINKOWSKI with d=2 = %f", got)
	}
}

func TestIdenticalDistributions(t *testing.T) {
	p := []float64{0.2, 0.3, 0.5}

	zero := []Measure{
		Euclidean, CityBlock, Chebyshev, Sorensen, Gower, Soergel, KulczynskiD,
		Canberra, Lorentzian, IntersectionDiv, Wave, CzekanowskiDiv, Tanimoto,
		Jaccard, DiceDiv, Hellinger, Matusita, SquaredChordDiv, SquaredEuclidean,
		ChiSquare, Neyman, SquaredChi, ProbabilisticChi, Divergence, Clark, AdditiveChi,
		KL, Jeffreys, KDiv, Topsoe, JensenShannonCode, Taneja, KumarJohnson, Avg, WTV,
		VicisWave, VicisEmanon2, VicisEmanon3, VicisEmanon4, VicisEmanon5, VicisEmanon6,
	}
	for _, m := range zero {
		t.Run(string(m), func(t *testing.T) {
			if got := m.Func(3)(p, p); !almostEqual(got, 0, 1e-12) {
				t.Errorf("%s(p, p) = %g, want 0", m, got)
			}
		})
	}

	one := []Measure{IntersectionSim, CzekanowskiSim, Ruzicka, Cosine, KumarHassebrook, DiceSim, Fidelity, SquaredChordSim}
	for _, m := range one {
		t.Run(string(m), func(t *testing.T) {
			if got := m.Func(3)(p, p); !almostEqual(got, 1, 1e-12) {
				t.Errorf("%s(p, p) = %g, want 1", m, got)
			}
		})
	}
}

func TestEpsilonGuard(t *testing.T) {
	cases := []struct {
		name string
		p, q []float64
	}{
		{"both zero", []float64{0, 0}, []float64{0, 0}},
		{"disjoint", []float64{1, 0}, []float64{0, 1}},
		{"target zero", []float64{0, 0}, []float64{0.5, 0.5}},
		{"realized zero", []float64{0.5, 0.5}, []float64{0, 0}},
	}

	for _, m := range Codes() {
		fn := m.Func(3)
		for _, c := range cases {
			t.Run(string(m)+"/"+c.name, func(t *testing.T) {
				got := fn(c.p, c.q)
				if math.IsNaN(got) || math.IsInf(got, 0) {
					t.Errorf("%s = %g, want finite", m, got)
				}
			})
		}
	}
}

func TestParse(t *testing.T) {
	if len(Codes()) != 57 {
		t.Errorf("len(Codes()) = %d, want 57", len(Codes()))
	}
	for _, c := range Codes() {
		if got, err := Parse(string(c)); err != nil || got != c {
			t.Errorf("Parse(%s) = %v, %v", c, got, err)
		}
	}

	aliasCases := map[string]Measure{
		"SORESEN":  Sorensen,
		"tonimoto": Tanimoto,
		"KUMAR":    KumarHassebrook,
	}
	for code, want := range aliasCases {
		got, err := Parse(code)
		if err != nil || got != want {
			t.Errorf("Parse(%s) = %v, %v, want %v", code, got, err, want)
		}
	}

	_, err := Parse("CHI")
	var uce *recommend.UnknownCodeError
	if !errors.As(err, &uce) || uce.Registry != recommend.RegistryMeasure {
		t.Fatalf("Parse(CHI) error = %v, want UnknownCodeError", err)
	}
	if !errors.Is(err, recommend.ErrConfiguration) {
		t.Errorf("Parse(CHI) error = %v, want configuration error", err)
	}
}

func TestSimilaritySet(t *testing.T) {
	want := map[Measure]bool{
		IntersectionSim: true, CzekanowskiSim: true, MotykaSim: true, KulczynskiS: true,
		Ruzicka: true, Inner: true, Harmonic: true, Cosine: true, KumarHassebrook: true,
		DiceSim: true, Fidelity: true, SquaredChordSim: true,
	}
	count := 0
	for _, m := range Codes() {
		if m.Similarity() != want[m] {
			t.Errorf("%s.Similarity() = %v, want %v", m, m.Similarity(), want[m])
		}
		if m.Similarity() {
			count++
		}
	}
	if count != 12 {
		t.Errorf("similarity count = %d, want 12", count)
	}
}
