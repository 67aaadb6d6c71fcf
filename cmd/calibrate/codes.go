// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/calibrec/internal/recommend"
	"github.com/tomtom215/calibrec/internal/recommend/distribution"
	"github.com/tomtom215/calibrec/internal/recommend/measures"
	"github.com/tomtom215/calibrec/internal/recommend/relevance"
	"github.com/tomtom215/calibrec/internal/recommend/reranking"
	"github.com/tomtom215/calibrec/internal/recommend/weight"
)

// registryCodes lists every code accepted by the calibration settings.
type registryCodes struct {
	Distributions  []string          `json:"distributions"`
	Measures       []string          `json:"measures"`
	MeasureAliases map[string]string `json:"measure_aliases"`
	Relevance      []string          `json:"relevance"`
	Weights        []string          `json:"weights"`
	ConstantWeight string            `json:"constant_weight"`
	Selectors      []string          `json:"selectors"`
	Tradeoffs      []string          `json:"tradeoffs"`
	ClassSources   []string          `json:"class_sources"`
}

func collectCodes() registryCodes {
	aliases := make(map[string]string)
	for alias, m := range measures.Aliases() {
		aliases[alias] = string(m)
	}
	return registryCodes{
		Distributions:  toStrings(distribution.Codes()),
		Measures:       toStrings(measures.Codes()),
		MeasureAliases: aliases,
		Relevance:      toStrings(relevance.Codes()),
		Weights:        weight.Codes(),
		ConstantWeight: weight.ConstantPrefix + "<value>",
		Selectors:      []string{reranking.SelectorSurrogate},
		Tradeoffs:      []string{string(recommend.TradeoffLinear), string(recommend.TradeoffLogBias)},
		ClassSources: []string{
			recommend.ClassSourceGenres,
			recommend.ClassSourcePopularity,
			recommend.ClassSourcePopularityRank,
		},
	}
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func newCodesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List the accepted strategy, measure and weight codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codes := collectCodes()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(codes)
			}
			return printCodes(cmd, codes)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printCodes(cmd *cobra.Command, codes registryCodes) error {
	aliases := make([]string, 0, len(codes.MeasureAliases))
	for alias, target := range codes.MeasureAliases {
		aliases = append(aliases, alias+"="+target)
	}
	sort.Strings(aliases)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	rows := []struct {
		name  string
		codes []string
	}{
		{"distribution", codes.Distributions},
		{"fairness", codes.Measures},
		{"fairness aliases", aliases},
		{"relevance", codes.Relevance},
		{"weight", append(append([]string{}, codes.Weights...), codes.ConstantWeight)},
		{"selector", codes.Selectors},
		{"tradeoff", codes.Tradeoffs},
		{"classes", codes.ClassSources},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r.name, strings.Join(r.codes, ", "))
	}
	return w.Flush()
}
