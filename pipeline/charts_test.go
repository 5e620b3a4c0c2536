package pipeline

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/coffeestats/config"
	"github.com/ezoic/coffeestats/dataset"
	"github.com/ezoic/coffeestats/describe"
	"github.com/ezoic/coffeestats/report"
	"github.com/ezoic/coffeestats/stats"
)

func TestComparisonChart(t *testing.T) {
	levels := []Level{
		{Name: "Low", Summary: map[string]describe.Summary{"a": {Mean: 1, Std: 0.5}, "b": {Mean: 10, Std: math.NaN()}}},
		{Name: "High", Summary: map[string]describe.Summary{"a": {Mean: 3, Std: 0.2}, "b": {Mean: 30, Std: 1}}},
	}
	spec := comparisonChart(levels, []string{"a", "b", "c"})

	require.NoError(t, spec.Validate())
	assert.Equal(t, 2, spec.Rows)
	assert.Equal(t, 2, spec.Cols)
	require.Len(t, spec.Panels, 3)
	assert.Equal(t, "(B) b", spec.Panels[1].Title)
	assert.Equal(t, []string{"Low", "High"}, spec.Panels[0].Categories)
	assert.Equal(t, []float64{1, 3}, spec.Panels[0].Values)
	assert.Equal(t, []float64{0.5, 0.2}, spec.Panels[0].Errors)
}

func TestRegressionChart(t *testing.T) {
	yc := config.Default().Yearly
	cols := map[string][]float64{
		yc.YearColumn:      {2010, 2011, 2012},
		yc.ReferenceColumn: {1, 2, 3},
		yc.ProductivityCol: {10, 20, 30},
	}
	lr := stats.LinRegressResult{Slope: 10, Intercept: 0, R: 1}
	spec := regressionChart(yc, cols, &lr, stats.CorrelationResult{R: 1, P: 0})

	require.NoError(t, spec.Validate())
	require.NotNil(t, spec.Fit)
	assert.Equal(t, "Linear regression (R² = 1.0000)", spec.Fit.Label)
	assert.Contains(t, spec.Annotation, "y = 10.00x + 0.00")

	spec = regressionChart(yc, cols, nil, stats.CorrelationResult{})
	assert.Nil(t, spec.Fit)
	assert.Empty(t, spec.Annotation)
}

func TestMultivariateChart_Validates(t *testing.T) {
	yc := config.Default().Yearly
	cols := map[string][]float64{}
	for _, name := range yearlyColumns(yc) {
		cols[name] = []float64{1, 2, 3}
	}
	spec := multivariateChart(yc, cols)
	require.NoError(t, spec.Validate())
	assert.Len(t, spec.Panels, 4)
	assert.True(t, spec.Panels[2].Series[1].Secondary)
	assert.Equal(t, []float64{100, 100, 100}, spec.Panels[2].Series[1].Y)
}

func TestBoxChart(t *testing.T) {
	rc := config.Default().Regional
	groups := []dataset.Group{{Key: "North", Rows: []int{0, 2}}, {Key: "South", Rows: []int{1}}}
	spec := boxChart(rc, groups, []float64{1, 2, 3})
	require.NoError(t, spec.Validate())
	assert.Equal(t, [][]float64{{1, 3}, {2}}, spec.Groups)
	assert.Equal(t, []string{"North", "South"}, spec.Categories)
}

func TestEvolutionSeries_LastRegionByDefault(t *testing.T) {
	groups := []dataset.Group{{Key: "A", Rows: []int{0, 2}}, {Key: "B", Rows: []int{1, 3}}}
	years := []float64{2020, 2020, 2021, 2021}
	target := []float64{1, 2, 3, 4}

	cfg := config.Default()
	p := New(cfg, &bytes.Buffer{})
	got := p.evolutionSeries(groups, years, target)
	require.Len(t, got, 1)
	assert.Equal(t, regionSeries{Region: "B", Years: []float64{2020, 2021}, Values: []float64{2, 4}}, got[0])

	cfg.Chart.EvolutionAllRegions = true
	got = New(cfg, &bytes.Buffer{}).evolutionSeries(groups, years, target)
	assert.Len(t, got, 2)

	spec := evolutionChart(cfg.Regional, got)
	require.NoError(t, spec.Validate())
	assert.Equal(t, report.KindLine, spec.Kind)
	assert.Equal(t, "A", spec.Series[0].Name)
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, unique("a", "", "b", "a", "c", "b"))
	assert.Empty(t, unique())
}
