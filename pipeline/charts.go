package pipeline

import (
	"fmt"

	"github.com/ezoic/coffeestats/config"
	"github.com/ezoic/coffeestats/dataset"
	"github.com/ezoic/coffeestats/describe"
	"github.com/ezoic/coffeestats/report"
	"github.com/ezoic/coffeestats/stats"
)

// Chart file names, without extension.
const (
	ChartTemporal          = "temporal_evolution"
	ChartRegression        = "correlation_regression"
	ChartMultivariate      = "multivariate_analysis"
	ChartCorrelation       = "correlation_matrix"
	ChartClusters          = "kmeans_clusters"
	ChartClusterComparison = "cluster_comparison"

	ChartRegionalEvolution   = "regional_productivity_evolution"
	ChartRegionalTechnology  = "regional_technology_productivity"
	ChartRegionalCorrelation = "regional_correlation_matrix"
	ChartRegionalBoxplot     = "regional_productivity_boxplot"
)

func temporalChart(yc config.YearlyConfig, cols map[string][]float64) report.ChartSpec {
	years := cols[yc.YearColumn]
	return report.ChartSpec{
		Kind:    report.KindLine,
		Title:   "Productivity and technology index over time",
		XLabel:  yc.YearColumn,
		YLabel:  yc.ProductivityCol,
		Y2Label: yc.ReferenceColumn,
		Series: []report.Series{
			{Name: yc.ProductivityCol, X: years, Y: cols[yc.ProductivityCol], Points: true},
			{Name: yc.ReferenceColumn, X: years, Y: cols[yc.ReferenceColumn], Points: true, Secondary: true},
		},
	}
}

// regressionChart plots y against x colored by year. lr is nil when the line
// is undefined.
func regressionChart(yc config.YearlyConfig, cols map[string][]float64, lr *stats.LinRegressResult, corr stats.CorrelationResult) report.ChartSpec {
	spec := report.ChartSpec{
		Kind:   report.KindScatter,
		Title:  "Technology index and productivity",
		XLabel: yc.ReferenceColumn,
		YLabel: yc.ProductivityCol,
		Series: []report.Series{{
			X:       cols[yc.ReferenceColumn],
			Y:       cols[yc.ProductivityCol],
			ColorBy: cols[yc.YearColumn],
		}},
	}
	if lr != nil {
		spec.Fit = &report.FitLine{
			Slope:     lr.Slope,
			Intercept: lr.Intercept,
			Label:     "Linear regression (R² = " + report.FormatStat(lr.RSquared()) + ")",
		}
		spec.Annotation = fmt.Sprintf("y = %sx + %s\nPearson r = %s\np = %s",
			report.FormatMean(lr.Slope), report.FormatMean(lr.Intercept),
			report.FormatStat(corr.R), report.FormatPValue(corr.P))
	}
	return spec
}

func multivariateChart(yc config.YearlyConfig, cols map[string][]float64) report.ChartSpec {
	years := cols[yc.YearColumn]
	share := describe.Share(cols[yc.SpecialtyColumn], cols[yc.TotalColumn])
	panel := func(title, ylabel, y2label string, series ...report.Series) report.ChartSpec {
		for i := range series {
			series[i].X = years
		}
		return report.ChartSpec{
			Kind: report.KindLine, Title: title,
			XLabel: yc.YearColumn, YLabel: ylabel, Y2Label: y2label,
			Series: series,
		}
	}
	return report.ChartSpec{
		Kind:  report.KindGrid,
		Title: "Multivariate view of coffee production",
		Rows:  2, Cols: 2,
		Panels: []report.ChartSpec{
			panel("(A) Total production and harvested area", yc.TotalColumn, yc.AreaColumn,
				report.Series{Name: yc.TotalColumn, Y: cols[yc.TotalColumn], Bars: true},
				report.Series{Name: yc.AreaColumn, Y: cols[yc.AreaColumn], Points: true, Secondary: true}),
			panel("(B) Technology investment", yc.InvestmentColumn, "",
				report.Series{Name: yc.InvestmentColumn, Y: cols[yc.InvestmentColumn], Points: true}),
			panel("(C) Specialty coffee production", yc.SpecialtyColumn, "share of total (%)",
				report.Series{Name: yc.SpecialtyColumn, Y: cols[yc.SpecialtyColumn], Bars: true},
				report.Series{Name: "share", Y: share, Points: true, Secondary: true}),
			panel("(D) Climate", yc.PrecipitationCol, yc.TemperatureColumn,
				report.Series{Name: yc.PrecipitationCol, Y: cols[yc.PrecipitationCol], Bars: true},
				report.Series{Name: yc.TemperatureColumn, Y: cols[yc.TemperatureColumn], Points: true, Secondary: true}),
		},
	}
}

func heatmapChart(title string, cm *describe.CorrMatrix) report.ChartSpec {
	return report.ChartSpec{
		Kind:       report.KindHeatmap,
		Title:      title,
		Categories: cm.Columns,
		Matrix:     cm.Values,
	}
}

// clusterChart scatters every year by level with the centroids marked.
func clusterChart(res *TechnificationResult, yc config.YearlyConfig, cols map[string][]float64, style report.Style) report.ChartSpec {
	x, y := yc.ReferenceColumn, yc.ProductivityCol
	spec := report.ChartSpec{
		Kind:   report.KindScatter,
		Title:  fmt.Sprintf("K-means clusters (K=%d) by technification level", len(res.Levels)),
		XLabel: x,
		YLabel: y,
	}
	for i, l := range res.Levels {
		labels := make([]string, len(l.Rows))
		for j, r := range l.Rows {
			labels[j] = dataset.FormatValue(cols[yc.YearColumn][r])
		}
		spec.Series = append(spec.Series, report.Series{
			Name:   l.Name,
			X:      dataset.Values(cols[x], l.Rows),
			Y:      dataset.Values(cols[y], l.Rows),
			Labels: labels,
			Color:  style.Level(i),
		})
	}

	xi, yi := indexOf(yc.Features, x), indexOf(yc.Features, y)
	if xi >= 0 && yi >= 0 && res.Centroids != nil {
		m := report.Series{Name: "Centroids"}
		for _, l := range res.Levels {
			m.X = append(m.X, res.Centroids.At(l.ClusterID, xi))
			m.Y = append(m.Y, res.Centroids.At(l.ClusterID, yi))
		}
		spec.Markers = []report.Series{m}
	}
	return spec
}

// comparisonChart draws one bar panel per column with level means and
// standard deviations.
func comparisonChart(levels []Level, columns []string) report.ChartSpec {
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = l.Name
	}
	spec := report.ChartSpec{
		Kind:  report.KindGrid,
		Title: "Variables by technification level",
		Cols:  2,
		Rows:  (len(columns) + 1) / 2,
	}
	for i, col := range columns {
		panel := report.ChartSpec{
			Kind:        report.KindBar,
			Title:       fmt.Sprintf("(%c) %s", 'A'+i, col),
			YLabel:      col,
			Categories:  names,
			ValueFormat: 1,
		}
		for _, l := range levels {
			panel.Values = append(panel.Values, l.Summary[col].Mean)
			panel.Errors = append(panel.Errors, l.Summary[col].Std)
		}
		spec.Panels = append(spec.Panels, panel)
	}
	return spec
}

// evolutionChart plots the target over time for each region in series.
func evolutionChart(rc config.RegionalConfig, series []regionSeries) report.ChartSpec {
	spec := report.ChartSpec{
		Kind:   report.KindLine,
		Title:  "Productivity over time by region",
		XLabel: rc.YearColumn,
		YLabel: rc.Target,
	}
	for _, s := range series {
		spec.Series = append(spec.Series, report.Series{Name: s.Region, X: s.Years, Y: s.Values, Points: true})
	}
	return spec
}

func technologyChart(rc config.RegionalConfig, cols map[string][]float64) report.ChartSpec {
	spec := report.ChartSpec{
		Kind:  report.KindGrid,
		Title: "Technology adoption and productivity",
		Rows:  1,
		Cols:  len(rc.Predictors),
	}
	for _, pred := range rc.Predictors {
		spec.Panels = append(spec.Panels, report.ChartSpec{
			Kind:   report.KindScatter,
			Title:  pred + " vs " + rc.Target,
			XLabel: pred,
			YLabel: rc.Target,
			Series: []report.Series{{X: cols[pred], Y: cols[rc.Target], ColorBy: cols[rc.YearColumn]}},
		})
	}
	return spec
}

func boxChart(rc config.RegionalConfig, groups []dataset.Group, target []float64) report.ChartSpec {
	spec := report.ChartSpec{
		Kind:   report.KindBox,
		Title:  "Productivity distribution by region",
		XLabel: rc.RegionColumn,
		YLabel: rc.Target,
	}
	for _, g := range groups {
		spec.Categories = append(spec.Categories, g.Key)
		spec.Groups = append(spec.Groups, dataset.Values(target, g.Rows))
	}
	return spec
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
