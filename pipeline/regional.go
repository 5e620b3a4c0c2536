package pipeline

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ezoic/coffeestats/config"
	"github.com/ezoic/coffeestats/dataset"
	"github.com/ezoic/coffeestats/describe"
	"github.com/ezoic/coffeestats/linear"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
	"github.com/ezoic/coffeestats/report"
	"github.com/ezoic/coffeestats/stats"
)

// RegionalResult is everything the regional analysis computed.
type RegionalResult struct {
	Table   *dataset.Table
	Summary map[string]describe.Summary
	// Regions are in order of first appearance.
	Regions      []describe.GroupSummary
	Correlations *describe.CorrMatrix
	Ranked       []describe.Ranked
	OLS          *linear.OLSResult
	ANOVA        stats.ANOVAResult
	// EvolutionRegions are the regions drawn on the evolution chart.
	EvolutionRegions []string
}

type regionSeries struct {
	Region string
	Years  []float64
	Values []float64
}

// Regional describes the year by region dataset, regresses the target on the
// technology predictors and compares regions.
func (p *Pipeline) Regional(ctx context.Context) (*RegionalResult, error) {
	defer p.rec.Stage("regional")()
	rc := p.cfg.Regional
	c := p.console

	t, err := p.load(ctx, "regional", rc.Path, regionalColumns(rc))
	if err != nil {
		return nil, err
	}
	if !t.Has(rc.RegionColumn) {
		return nil, csErrors.NewDataLoadError(rc.Path, rc.RegionColumn, "required column missing", nil)
	}
	cols, err := numericColumns(t, regionalColumns(rc)...)
	if err != nil {
		return nil, err
	}
	groups, err := t.GroupIndices(rc.RegionColumn)
	if err != nil {
		return nil, err
	}

	res := &RegionalResult{Table: t}
	c.Banner("COFFEE PRODUCTION EFFICIENCY: REGIONAL ANALYSIS")

	c.Section("1. OVERVIEW")
	c.KV("Dimensions", fmt.Sprintf("%d rows x %d columns", t.NRows(), len(t.Columns())))
	years := describe.SummarizeValues(cols[rc.YearColumn])
	c.KV("Period", dataset.FormatValue(years.Min)+" - "+dataset.FormatValue(years.Max))
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	c.KV("Regions", strings.Join(keys, ", "))

	if res.Summary, res.Regions, err = p.describeRegional(t); err != nil {
		return nil, err
	}

	c.Section("3. CORRELATION ANALYSIS")
	corrCols := unique(append(append([]string(nil), rc.DescribeColumns...), rc.Target)...)
	if res.Correlations, err = describe.CorrelationMatrix(t, corrCols); err != nil {
		return nil, err
	}
	if res.Ranked, err = res.Correlations.Ranked(rc.Target); err != nil {
		return nil, err
	}
	c.Linef("Correlations with %s:", rc.Target)
	for _, r := range res.Ranked {
		c.KV(r.Column, report.FormatStat(r.R))
	}

	c.Section("4. MULTIPLE LINEAR REGRESSION")
	c.KV("Dependent variable", rc.Target)
	c.KV("Independent variables", strings.Join(rc.Predictors, ", "))
	stop := p.rec.Stage("regression")
	res.OLS, err = linear.FitOLS(t, rc.Predictors, rc.Target)
	stop()
	if err != nil {
		return nil, err
	}
	p.printOLS(res.OLS)

	c.Section("5. ANALYSIS OF VARIANCE")
	c.Linef("Test: difference in %s between regions", rc.Target)
	res.ANOVA, _, err = stats.GroupedANOVA(t, rc.Target, rc.RegionColumn)
	if err != nil {
		if !csErrors.Is(err, csErrors.ErrDegenerateInput) {
			return nil, err
		}
		p.degenerate("anova", rc.Target, err)
	}
	c.KV("F statistic", report.FormatStat(res.ANOVA.F))
	c.KV("p-value", report.FormatPValue(res.ANOVA.P))
	c.Conclusion(stats.Significant(res.ANOVA.P, p.cfg.Alpha), p.cfg.Alpha, "between regions")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	evolution := p.evolutionSeries(groups, cols[rc.YearColumn], cols[rc.Target])
	for _, s := range evolution {
		res.EvolutionRegions = append(res.EvolutionRegions, s.Region)
	}
	if p.cfg.Output.Charts {
		defer p.rec.Stage("charts_regional")()
		c.Section("6. CHARTS")
		charts := []struct {
			name string
			spec report.ChartSpec
		}{
			{ChartRegionalEvolution, evolutionChart(rc, evolution)},
			{ChartRegionalTechnology, technologyChart(rc, cols)},
			{ChartRegionalCorrelation, heatmapChart("Correlation matrix of production and technology", res.Correlations)},
			{ChartRegionalBoxplot, boxChart(rc, groups, cols[rc.Target])},
		}
		for _, ch := range charts {
			if err := p.chart(ch.spec, ch.name); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// evolutionSeries returns the per-region series of the evolution chart. Unless
// chart.evolution_all_regions is set only the last region is kept, which is
// what the published chart shows.
func (p *Pipeline) evolutionSeries(groups []dataset.Group, years, target []float64) []regionSeries {
	series := make([]regionSeries, len(groups))
	for i, g := range groups {
		series[i] = regionSeries{Region: g.Key, Years: dataset.Values(years, g.Rows), Values: dataset.Values(target, g.Rows)}
	}
	if p.cfg.Chart.EvolutionAllRegions || len(series) <= 1 {
		return series
	}
	last := series[len(series)-1]
	p.logger.Warn("Evolution chart plots only the last region",
		"region", last.Region,
		"skipped", len(series)-1,
		"hint", "set chart.evolution_all_regions to plot every region",
	)
	return series[len(series)-1:]
}

// describeRegional prints the overall and per-region descriptive tables.
func (p *Pipeline) describeRegional(t *dataset.Table) (map[string]describe.Summary, []describe.GroupSummary, error) {
	rc := p.cfg.Regional
	c := p.console

	c.Section("2. DESCRIPTIVE STATISTICS")
	sum, err := describe.Summarize(t, rc.DescribeColumns)
	if err != nil {
		return nil, nil, err
	}
	p.summaryTable(sum, rc.DescribeColumns)

	c.Section("2.1 MEANS BY REGION")
	meanCols := unique(append([]string{rc.Target}, rc.Predictors...)...)
	regions, err := describe.SummarizeGrouped(t, meanCols, rc.RegionColumn)
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]string, len(regions))
	for i, g := range regions {
		row := []string{g.Key}
		for _, m := range g.Means(meanCols) {
			row = append(row, report.FormatMean(m))
		}
		rows[i] = row
	}
	c.Table(append([]string{rc.RegionColumn}, meanCols...), rows)
	return sum, regions, nil
}

func (p *Pipeline) summaryTable(sum map[string]describe.Summary, columns []string) {
	rows := make([][]string, 0, len(columns))
	for _, col := range columns {
		s := sum[col]
		rows = append(rows, []string{
			col, strconv.Itoa(s.Count),
			report.FormatMean(s.Mean), report.FormatMean(s.Std),
			report.FormatMean(s.Min), report.FormatMean(s.Q25), report.FormatMean(s.Median),
			report.FormatMean(s.Q75), report.FormatMean(s.Max),
		})
	}
	p.console.Table([]string{"variable", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}, rows)
}

func (p *Pipeline) printOLS(m *linear.OLSResult) {
	c := p.console
	c.Blank()
	c.Linef("Coefficients:")
	rows := [][]string{{"intercept", report.FormatStat(m.Intercept)}}
	for i, name := range m.Predictors {
		rows = append(rows, []string{name, report.FormatStat(m.Coefficients[i])})
	}
	c.Table([]string{"term", "coefficient"}, rows)

	c.Linef("Fit:")
	c.KV("R²", report.FormatStat(m.R2))
	c.KV("Adjusted R²", report.FormatStat(m.AdjR2))
	c.KV("RMSE", report.FormatStat(m.RMSE))

	c.Blank()
	c.Linef("Interpretation:")
	if !math.IsNaN(m.R2) {
		c.Linef("The model explains %s of the variation in %s.", report.FormatFloat(m.R2*100, 2)+"%", m.Target)
	}
	for i, name := range m.Predictors {
		verb := "increases"
		if m.Coefficients[i] < 0 {
			verb = "decreases"
		}
		c.Linef("Each unit increase in %s %s %s by %s.", name, verb, m.Target, report.FormatStat(math.Abs(m.Coefficients[i])))
	}
}

// Describe prints the descriptive tables of every configured dataset.
func (p *Pipeline) Describe(ctx context.Context) error {
	if rc := p.cfg.Regional; rc.Path != "" {
		t, err := p.load(ctx, "regional", rc.Path, rc.DescribeColumns)
		if err != nil {
			return err
		}
		p.console.Banner("REGIONAL DATASET")
		if _, _, err := p.describeRegional(t); err != nil {
			return err
		}
	}
	if yc := p.cfg.Yearly; yc.Path != "" {
		columns := unique(append(append([]string(nil), yc.Features...), yc.CorrelationCols...)...)
		t, err := p.load(ctx, "yearly", yc.Path, columns)
		if err != nil {
			return err
		}
		sum, err := describe.Summarize(t, columns)
		if err != nil {
			return err
		}
		p.console.Banner("YEARLY DATASET")
		p.summaryTable(sum, columns)
	}
	return nil
}

func regionalColumns(rc config.RegionalConfig) []string {
	names := []string{rc.YearColumn, rc.Target}
	names = append(names, rc.Predictors...)
	names = append(names, rc.DescribeColumns...)
	return unique(names...)
}
