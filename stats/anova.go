// Package stats implements the significance tests of the analysis: one-way
// ANOVA, Pearson correlation and simple linear regression, each with a
// p-value from gonum's distributions.
//
// Degenerate input never panics. The result carries NaN fields and the error
// is a DegenerateInputError, so callers can report "n/a" and continue.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ezoic/coffeestats/dataset"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// DefaultAlpha is the significance level used when none is configured.
const DefaultAlpha = 0.05

// relTol is the relative size below which a sum of squares counts as zero.
const relTol = 1e-13

// ANOVAResult is the outcome of a one-way analysis of variance.
type ANOVAResult struct {
	F         float64
	P         float64
	DFBetween int
	DFWithin  int
	SSBetween float64
	SSWithin  float64
}

// OneWayANOVA tests whether the groups share a common mean.
//
// NaN observations are ignored. Fewer than two groups, an empty group, no
// within-group degrees of freedom, or zero total variance yield F = P = NaN
// and a DegenerateInputError. Zero within-group variance with distinct group
// means yields F = +Inf and P = 0.
func OneWayANOVA(groups ...[]float64) (ANOVAResult, error) {
	res := ANOVAResult{F: math.NaN(), P: math.NaN()}
	if len(groups) < 2 {
		return res, csErrors.NewDegenerateInputError("OneWayANOVA", "at least two groups are required")
	}

	clean := make([][]float64, len(groups))
	var n int
	var scale float64
	for i, g := range groups {
		for _, v := range g {
			if !math.IsNaN(v) {
				clean[i] = append(clean[i], v)
				scale += v * v
			}
		}
		if len(clean[i]) == 0 {
			return res, csErrors.NewDegenerateInputError("OneWayANOVA", "empty group")
		}
		n += len(clean[i])
	}

	k := len(clean)
	res.DFBetween = k - 1
	res.DFWithin = n - k
	if res.DFWithin <= 0 {
		return res, csErrors.NewDegenerateInputError("OneWayANOVA", "no within-group degrees of freedom")
	}

	var grand float64
	for _, g := range clean {
		grand += floats.Sum(g)
	}
	grand /= float64(n)

	for _, g := range clean {
		mean := stat.Mean(g, nil)
		res.SSBetween += float64(len(g)) * (mean - grand) * (mean - grand)
		for _, v := range g {
			res.SSWithin += (v - mean) * (v - mean)
		}
	}

	total := res.SSBetween + res.SSWithin
	if total <= relTol*scale {
		return res, csErrors.NewDegenerateInputError("OneWayANOVA", "zero total variance")
	}
	if res.SSWithin <= relTol*scale {
		res.F, res.P = math.Inf(1), 0
		return res, nil
	}

	dfb, dfw := float64(res.DFBetween), float64(res.DFWithin)
	res.F = (res.SSBetween / dfb) / (res.SSWithin / dfw)
	res.P = distuv.F{D1: dfb, D2: dfw}.Survival(res.F)
	return res, nil
}

// GroupedANOVA runs OneWayANOVA on column value split by the groups of key,
// in first-appearance order. It returns the group keys alongside the result.
func GroupedANOVA(t *dataset.Table, value, key string) (ANOVAResult, []string, error) {
	values, err := t.Float(value)
	if err != nil {
		return ANOVAResult{F: math.NaN(), P: math.NaN()}, nil, err
	}
	groups, err := t.GroupIndices(key)
	if err != nil {
		return ANOVAResult{F: math.NaN(), P: math.NaN()}, nil, err
	}

	keys := make([]string, len(groups))
	samples := make([][]float64, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
		samples[i] = dataset.Values(values, g.Rows)
	}
	res, err := OneWayANOVA(samples...)
	return res, keys, err
}

// Significant reports whether p is below alpha. NaN is never significant.
func Significant(p, alpha float64) bool {
	return !math.IsNaN(p) && p < alpha
}
