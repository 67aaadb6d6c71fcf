// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package measures

import (
	"strings"

	"github.com/tomtom215/calibrec/internal/recommend"
)

// Measure is a fairness measure code.
type Measure string

// Measure codes.
const (
	MinkowskiCode     Measure = "MINKOWSKI"
	Euclidean         Measure = "EUCLIDEAN"
	CityBlock         Measure = "CITY_BLOCK"
	Chebyshev         Measure = "CHEBYSHEV"
	Sorensen          Measure = "SORENSEN"
	Gower             Measure = "GOWER"
	Soergel           Measure = "SOERGEL"
	KulczynskiD       Measure = "KULCZYNSKI_D"
	Canberra          Measure = "CANBERRA"
	Lorentzian        Measure = "LORENTZIAN"
	IntersectionSim   Measure = "INTERSECTION_SIM"
	IntersectionDiv   Measure = "INTERSECTION_DIV"
	Wave              Measure = "WAVE"
	CzekanowskiSim    Measure = "CZEKANOWSKI_SIM"
	CzekanowskiDiv    Measure = "CZEKANOWSKI_DIV"
	MotykaSim         Measure = "MOTYKA_SIM"
	MotykaDiv         Measure = "MOTYKA_DIV"
	KulczynskiS       Measure = "KULCZYNSKI_S"
	Ruzicka           Measure = "RUZICKA"
	Tanimoto          Measure = "TANIMOTO"
	Inner             Measure = "INNER"
	Harmonic          Measure = "HARMONIC"
	Cosine            Measure = "COSINE"
	KumarHassebrook   Measure = "KUMAR_HASSEBROOK"
	Jaccard           Measure = "JACCARD"
	DiceSim           Measure = "DICE_SIM"
	DiceDiv           Measure = "DICE_DIV"
	Fidelity          Measure = "FIDELITY"
	Bhattacharyya     Measure = "BHATTACHARYYA"
	Hellinger         Measure = "HELLINGER"
	Matusita          Measure = "MATUSITA"
	SquaredChordSim   Measure = "SQUARED_CHORD_SIM"
	SquaredChordDiv   Measure = "SQUARED_CHORD_DIV"
	SquaredEuclidean  Measure = "SQUARED_EUCLIDEAN"
	ChiSquare         Measure = "CHI_SQUARE"
	Neyman            Measure = "NEYMAN"
	SquaredChi        Measure = "SQUARED_CHI"
	ProbabilisticChi  Measure = "PROBABILISTIC_CHI"
	Divergence        Measure = "DIVERGENCE"
	Clark             Measure = "CLARK"
	AdditiveChi       Measure = "ADDITIVE_CHI"
	KL                Measure = "KL"
	Jeffreys          Measure = "JEFFREYS"
	KDiv              Measure = "K_DIV"
	Topsoe            Measure = "TOPSOE"
	JensenShannonCode Measure = "JENSEN_SHANNON"
	JensenDiff        Measure = "JENSEN_DIFF"
	Taneja            Measure = "TANEJA"
	KumarJohnson      Measure = "KUMAR_JOHNSON"
	Avg               Measure = "AVG"
	WTV               Measure = "WTV"
	VicisWave         Measure = "VICIS_WAVE"
	VicisEmanon2      Measure = "VICIS_EMANON2"
	VicisEmanon3      Measure = "VICIS_EMANON3"
	VicisEmanon4      Measure = "VICIS_EMANON4"
	VicisEmanon5      Measure = "VICIS_EMANON5"
	VicisEmanon6      Measure = "VICIS_EMANON6"
)

type entry struct {
	fn         Func
	build      func(d int) Func
	similarity bool
}

func fixed(fn Func) entry {
	return entry{fn: fn}
}

func sim(fn Func) entry {
	return entry{fn: fn, similarity: true}
}

var registry = map[Measure]entry{
	MinkowskiCode:     {build: Minkowski},
	Euclidean:         fixed(euclidean),
	CityBlock:         fixed(cityBlock),
	Chebyshev:         fixed(chebyshev),
	Sorensen:          fixed(sorensen),
	Gower:             fixed(gower),
	Soergel:           fixed(soergel),
	KulczynskiD:       fixed(kulczynskiD),
	Canberra:          fixed(canberra),
	Lorentzian:        fixed(lorentzian),
	IntersectionSim:   sim(intersectionSim),
	IntersectionDiv:   fixed(intersectionDiv),
	Wave:              fixed(waveHedges),
	CzekanowskiSim:    sim(czekanowskiSim),
	CzekanowskiDiv:    fixed(czekanowskiDiv),
	MotykaSim:         sim(motykaSim),
	MotykaDiv:         fixed(motykaDiv),
	KulczynskiS:       sim(kulczynskiS),
	Ruzicka:           sim(ruzicka),
	Tanimoto:          fixed(tanimoto),
	Inner:             sim(inner),
	Harmonic:          sim(harmonic),
	Cosine:            sim(cosine),
	KumarHassebrook:   sim(kumarHassebrook),
	Jaccard:           fixed(jaccard),
	DiceSim:           sim(diceSim),
	DiceDiv:           fixed(diceDiv),
	Fidelity:          sim(fidelity),
	Bhattacharyya:     fixed(bhattacharyya),
	Hellinger:         fixed(hellinger),
	Matusita:          fixed(matusita),
	SquaredChordSim:   sim(squaredChordSim),
	SquaredChordDiv:   fixed(squaredChordDiv),
	SquaredEuclidean:  fixed(squaredEuclidean),
	ChiSquare:         fixed(pearsonChi),
	Neyman:            fixed(neyman),
	SquaredChi:        fixed(squaredChi),
	ProbabilisticChi:  fixed(probabilisticChi),
	Divergence:        fixed(divergence),
	Clark:             fixed(clark),
	AdditiveChi:       fixed(additiveChi),
	KL:                fixed(KullbackLeibler),
	Jeffreys:          fixed(jeffreys),
	KDiv:              fixed(kDivergence),
	Topsoe:            fixed(topsoe),
	JensenShannonCode: fixed(JensenShannon),
	JensenDiff:        fixed(jensenDifference),
	Taneja:            fixed(taneja),
	KumarJohnson:      fixed(kumarJohnson),
	Avg:               fixed(avg),
	WTV:               fixed(weightedTotalVariation),
	VicisWave:         fixed(vicisWave),
	VicisEmanon2:      fixed(vicisEmanon2),
	VicisEmanon3:      fixed(vicisEmanon3),
	VicisEmanon4:      fixed(vicisEmanon4),
	VicisEmanon5:      fixed(vicisEmanon5),
	VicisEmanon6:      fixed(vicisEmanon6),
}

var aliases = map[string]Measure{
	"SORESEN":  Sorensen,
	"TONIMOTO": Tanimoto,
	"KUMAR":    KumarHassebrook,
}

// Codes returns every canonical measure code, in family order.
func Codes() []Measure {
	return []Measure{
		MinkowskiCode, Euclidean, CityBlock, Chebyshev,
		Sorensen, Gower, Soergel, KulczynskiD, Canberra, Lorentzian,
		IntersectionSim, IntersectionDiv, Wave, CzekanowskiSim, CzekanowskiDiv,
		MotykaSim, MotykaDiv, KulczynskiS, Ruzicka, Tanimoto,
		Inner, Harmonic, Cosine, KumarHassebrook, Jaccard, DiceSim, DiceDiv,
		Fidelity, Bhattacharyya, Hellinger, Matusita, SquaredChordSim, SquaredChordDiv,
		SquaredEuclidean, ChiSquare, Neyman, SquaredChi, ProbabilisticChi, Divergence, Clark, AdditiveChi,
		KL, Jeffreys, KDiv, Topsoe, JensenShannonCode, JensenDiff,
		Taneja, KumarJohnson, Avg, WTV,
		VicisWave, VicisEmanon2, VicisEmanon3, VicisEmanon4, VicisEmanon5, VicisEmanon6,
	}
}

// Aliases returns the accepted alternative spellings and their canonical code.
func Aliases() map[string]Measure {
	out := make(map[string]Measure, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}

// Parse resolves a measure code or alias, case-insensitively.
func Parse(code string) (Measure, error) {
	norm := strings.ToUpper(strings.TrimSpace(code))
	if m, ok := aliases[norm]; ok {
		return m, nil
	}
	if _, ok := registry[Measure(norm)]; ok {
		return Measure(norm), nil
	}
	return "", &recommend.UnknownCodeError{Registry: recommend.RegistryMeasure, Code: code}
}

// Similarity reports whether larger values mean closer distributions.
func (m Measure) Similarity() bool {
	return registry[m].similarity
}

// Func returns the measure, using d as the Minkowski order.
func (m Measure) Func(d int) Func {
	e, ok := registry[m]
	if !ok {
		return nil
	}
	if e.build != nil {
		return e.build(d)
	}
	return e.fn
}
