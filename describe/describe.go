// Package describe computes descriptive statistics over an observation table.
package describe

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/coffeestats/dataset"
)

// Summary describes one numeric column. Std is the sample standard deviation
// (n-1 denominator) and is NaN when Count < 2. Quartiles use linear
// interpolation of the empirical CDF. Missing values are skipped.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Q25    float64
	Median float64
	Q75    float64
}

// GroupSummary holds the summaries of one group of rows.
type GroupSummary struct {
	Key     string
	Size    int
	Columns map[string]Summary
}

// SummarizeValues computes a Summary over v. The result does not depend on the
// order of v.
func SummarizeValues(v []float64) Summary {
	x := make([]float64, 0, len(v))
	for _, f := range v {
		if !math.IsNaN(f) {
			x = append(x, f)
		}
	}
	s := Summary{Count: len(x)}
	if len(x) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Max, s.Q25, s.Median, s.Q75 = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sort.Float64s(x)

	s.Mean, s.Std = stat.MeanStdDev(x, nil)
	if len(x) < 2 {
		s.Std = math.NaN()
	}
	s.Min = x[0]
	s.Max = x[len(x)-1]
	s.Q25 = stat.Quantile(0.25, stat.LinInterp, x, nil)
	s.Median = stat.Quantile(0.5, stat.LinInterp, x, nil)
	s.Q75 = stat.Quantile(0.75, stat.LinInterp, x, nil)
	return s
}

// Summarize computes a Summary for each named column.
func Summarize(t *dataset.Table, columns []string) (map[string]Summary, error) {
	out := make(map[string]Summary, len(columns))
	for _, name := range columns {
		v, err := t.Float(name)
		if err != nil {
			return nil, err
		}
		out[name] = SummarizeValues(v)
	}
	return out, nil
}

// SummarizeGrouped computes per-column summaries for every value of groupKey.
// Groups are returned in order of first appearance; groupKey may be numeric,
// such as a cluster id column.
func SummarizeGrouped(t *dataset.Table, columns []string, groupKey string) ([]GroupSummary, error) {
	groups, err := t.GroupIndices(groupKey)
	if err != nil {
		return nil, err
	}
	values := make(map[string][]float64, len(columns))
	for _, name := range columns {
		v, err := t.Float(name)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}

	out := make([]GroupSummary, len(groups))
	for i, g := range groups {
		gs := GroupSummary{Key: g.Key, Size: len(g.Rows), Columns: make(map[string]Summary, len(columns))}
		for _, name := range columns {
			gs.Columns[name] = SummarizeValues(dataset.Values(values[name], g.Rows))
		}
		out[i] = gs
	}
	return out, nil
}

// Means returns the per-column means of a group, in columns order.
func (g GroupSummary) Means(columns []string) []float64 {
	out := make([]float64, len(columns))
	for i, c := range columns {
		out[i] = g.Columns[c].Mean
	}
	return out
}

// PercentChange returns 100*(to-from)/from, NaN when from is zero.
func PercentChange(from, to float64) float64 {
	if from == 0 {
		return math.NaN()
	}
	return (to - from) / from * 100
}

// Share returns 100*part[i]/whole[i] for each i.
func Share(part, whole []float64) []float64 {
	out := make([]float64, len(part))
	floats.DivTo(out, part, whole)
	floats.Scale(100, out)
	return out
}
