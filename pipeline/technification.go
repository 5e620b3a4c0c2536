package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/cluster"
	"github.com/ezoic/coffeestats/config"
	"github.com/ezoic/coffeestats/dataset"
	"github.com/ezoic/coffeestats/describe"
	"github.com/ezoic/coffeestats/metrics"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
	"github.com/ezoic/coffeestats/pkg/log"
	"github.com/ezoic/coffeestats/preprocessing"
	"github.com/ezoic/coffeestats/report"
	"github.com/ezoic/coffeestats/stats"
)

// Level is one ordinal technification level and the rows assigned to it.
type Level struct {
	Name      string
	ClusterID int
	Rows      []int
	// Years are ascending.
	Years   []float64
	Summary map[string]describe.Summary
}

// Mean returns the level mean of column col.
func (l Level) Mean(col string) float64 {
	s, ok := l.Summary[col]
	if !ok {
		return math.NaN()
	}
	return s.Mean
}

// NamedANOVA is an ANOVA of one column across levels or regions.
type NamedANOVA struct {
	Column string
	stats.ANOVAResult
}

// TechnificationResult is everything the technification analysis computed.
type TechnificationResult struct {
	Table      *dataset.Table
	Assignment *cluster.Assignment
	Names      map[int]string
	// Centroids are in original units, one row per cluster id.
	Centroids *mat.Dense
	Scores    []cluster.KScore
	// Levels are ordered by ascending reference mean.
	Levels []Level
	ANOVA  []NamedANOVA

	Silhouette       float64
	ProductivityGain float64
	SpecialtyGrowth  float64

	Regression   stats.LinRegressResult
	Correlation  stats.CorrelationResult
	Correlations *describe.CorrMatrix
}

// Technification clusters the yearly dataset into technification levels and
// reports on them.
func (p *Pipeline) Technification(ctx context.Context) (*TechnificationResult, error) {
	defer p.rec.Stage("technification")()
	yc, cc := p.cfg.Yearly, p.cfg.Cluster
	c := p.console

	t, err := p.load(ctx, "yearly", yc.Path, yearlyColumns(yc))
	if err != nil {
		return nil, err
	}
	cols, err := numericColumns(t, yearlyColumns(yc)...)
	if err != nil {
		return nil, err
	}

	c.Banner("K-MEANS CLUSTER ANALYSIS: YEARS BY TECHNIFICATION LEVEL")
	c.Section("1. DATA PREPARATION")
	c.KV("Variables", strconv.Itoa(len(yc.Features)))
	c.KV("Observations", strconv.Itoa(t.NRows()))
	for _, f := range yc.Features {
		c.Linef("- %s", f)
	}

	fm, params, err := preprocessing.Standardize(t, yc.Features)
	if err != nil {
		return nil, err
	}
	res := &TechnificationResult{Table: t}

	c.Section("2. NUMBER OF CLUSTERS")
	if cc.SelectKSweep {
		if res.Scores, err = p.selectK(ctx, fm.Data, t.NRows()); err != nil {
			return nil, err
		}
	} else {
		c.Linef("Sweep disabled (cluster.select_k_sweep is false)")
	}
	c.Linef("Selected number of clusters: K = %d", cc.K)

	c.Section(fmt.Sprintf("3. K-MEANS (K=%d)", cc.K))
	stop := p.rec.Stage("cluster")
	km := cluster.NewKMeans(append(p.kmeansOptions(), cluster.WithNClusters(cc.K))...)
	a, err := km.FitContext(ctx, fm.Data)
	stop()
	if err != nil {
		return nil, err
	}
	res.Assignment = a
	p.logger.Info("Clusters fitted",
		log.ClustersKey, cc.K,
		log.InertiaKey, a.Inertia,
		log.IterKey, a.NIter,
		log.RestartKey, a.Restart,
	)

	if res.Names, err = cluster.LabelClusters(a.Labels, t, yc.ReferenceColumn, cc.Labels); err != nil {
		return nil, err
	}
	if err := cluster.Annotate(t, a.Labels, res.Names, cc.IDColumn, cc.LabelColumn); err != nil {
		return nil, err
	}
	if res.Centroids, err = params.InverseTransform(a.Centroids); err != nil {
		return nil, err
	}
	if res.Levels, err = buildLevels(t, cols[yc.YearColumn], res.Names, cc, characterized(yc)); err != nil {
		return nil, err
	}

	c.KV("Inertia", report.FormatStat(a.Inertia))
	c.KV("Iterations", strconv.Itoa(a.NIter))
	for _, l := range res.Levels {
		c.Blank()
		c.Linef("%s:", l.Name)
		c.Linef("  Years: %s", joinYears(l.Years))
		c.Linef("  Count: %d", len(l.Years))
	}

	c.Section("4. CLUSTER CHARACTERIZATION")
	for _, l := range res.Levels {
		c.Blank()
		c.Linef("%s", strings.ToUpper(l.Name))
		if len(l.Years) > 0 {
			c.KV("Period", dataset.FormatValue(l.Years[0])+" - "+dataset.FormatValue(l.Years[len(l.Years)-1]))
		}
		rows := make([][]string, 0, len(l.Summary))
		for _, col := range characterized(yc) {
			s := l.Summary[col]
			rows = append(rows, []string{col, report.FormatMean(s.Mean), report.FormatMean(s.Std)})
		}
		c.Table([]string{"variable", "mean", "std"}, rows)
	}

	c.Section("5. ANOVA BETWEEN CLUSTERS")
	for _, col := range yc.Features {
		groups := make([][]float64, len(res.Levels))
		for i, l := range res.Levels {
			groups[i] = dataset.Values(cols[col], l.Rows)
		}
		r, err := stats.OneWayANOVA(groups...)
		if err != nil {
			if !csErrors.Is(err, csErrors.ErrDegenerateInput) {
				return nil, err
			}
			p.degenerate("anova", col, err)
		}
		res.ANOVA = append(res.ANOVA, NamedANOVA{Column: col, ANOVAResult: r})

		c.Blank()
		c.Linef("%s:", col)
		c.KV("F statistic", report.FormatStat(r.F))
		c.KV("p-value", report.FormatPValue(r.P))
		c.Conclusion(stats.Significant(r.P, p.cfg.Alpha), p.cfg.Alpha, "between clusters")
	}

	if err := p.technologyProductivity(res, yc, cols); err != nil {
		return nil, err
	}

	res.Silhouette, err = metrics.SilhouetteScore(fm.Data, a.Labels)
	if err != nil {
		if !csErrors.Is(err, csErrors.ErrDegenerateInput) {
			return nil, err
		}
		p.degenerate("silhouette", cc.LabelColumn, err)
		res.Silhouette = math.NaN()
	}
	if n := len(res.Levels); n > 0 {
		low, high := res.Levels[0], res.Levels[n-1]
		res.ProductivityGain = describe.PercentChange(low.Mean(yc.ProductivityCol), high.Mean(yc.ProductivityCol))
		res.SpecialtyGrowth = describe.PercentChange(low.Mean(yc.SpecialtyColumn), high.Mean(yc.SpecialtyColumn))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.technificationCharts(res, yc, cols); err != nil {
		return nil, err
	}

	p.executiveSummary(res, yc)

	if yc.ResultsTable != "" {
		path := p.cfg.OutputPath(yc.ResultsTable)
		columns := unique(yc.YearColumn, cc.IDColumn, cc.LabelColumn, yc.ReferenceColumn, yc.ProductivityCol, yc.SpecialtyColumn)
		if err := report.WriteResultsTable(path, t, columns); err != nil {
			return nil, err
		}
		c.Good("Results saved: %s", path)
	}
	return res, nil
}

// technologyProductivity fits the simple regression of productivity on the
// reference column and the correlation matrix of the yearly variables.
func (p *Pipeline) technologyProductivity(res *TechnificationResult, yc config.YearlyConfig, cols map[string][]float64) error {
	c := p.console
	c.Section("6. TECHNOLOGY AND PRODUCTIVITY")

	x, y := cols[yc.ReferenceColumn], cols[yc.ProductivityCol]
	var err error
	if res.Correlation, err = stats.PearsonCorrelation(x, y); err != nil {
		return err
	}
	res.Regression, err = stats.LinRegress(x, y)
	if err != nil {
		if !csErrors.Is(err, csErrors.ErrDegenerateInput) {
			return err
		}
		p.degenerate("linregress", yc.ReferenceColumn, err)
	}
	c.KV("Pearson r", report.FormatStat(res.Correlation.R))
	c.KV("p-value", report.FormatPValue(res.Correlation.P))
	c.KV("Slope", report.FormatStat(res.Regression.Slope)+" ± "+report.FormatStat(res.Regression.StdErr))
	c.KV("Intercept", report.FormatStat(res.Regression.Intercept))
	c.KV("R²", report.FormatStat(res.Regression.RSquared()))

	if len(yc.CorrelationCols) >= 2 {
		if res.Correlations, err = describe.CorrelationMatrix(res.Table, yc.CorrelationCols); err != nil {
			return err
		}
		if indexOf(yc.CorrelationCols, yc.ProductivityCol) >= 0 {
			ranked, err := res.Correlations.Ranked(yc.ProductivityCol)
			if err != nil {
				return err
			}
			c.Blank()
			c.Linef("Correlations with %s:", yc.ProductivityCol)
			for _, r := range ranked {
				c.KV(r.Column, report.FormatStat(r.R))
			}
		}
	}
	return nil
}

func (p *Pipeline) technificationCharts(res *TechnificationResult, yc config.YearlyConfig, cols map[string][]float64) error {
	if !p.cfg.Output.Charts {
		return nil
	}
	defer p.rec.Stage("charts_yearly")()
	p.console.Section("7. CHARTS")

	var lr *stats.LinRegressResult
	if !math.IsNaN(res.Regression.Slope) {
		lr = &res.Regression
	}
	charts := []struct {
		name string
		spec report.ChartSpec
	}{
		{ChartTemporal, temporalChart(yc, cols)},
		{ChartRegression, regressionChart(yc, cols, lr, res.Correlation)},
		{ChartMultivariate, multivariateChart(yc, cols)},
		{ChartClusters, clusterChart(res, yc, cols, p.style)},
		{ChartClusterComparison, comparisonChart(res.Levels, comparedColumns(yc))},
	}
	if res.Correlations != nil {
		charts = append(charts, struct {
			name string
			spec report.ChartSpec
		}{ChartCorrelation, heatmapChart("Pearson correlation matrix", res.Correlations)})
	}
	for _, ch := range charts {
		if err := p.chart(ch.spec, ch.name); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) executiveSummary(res *TechnificationResult, yc config.YearlyConfig) {
	c := p.console
	c.Blank()
	c.Banner("8. EXECUTIVE SUMMARY")
	for i, l := range res.Levels {
		c.Blank()
		period := ""
		if len(l.Years) > 0 {
			period = dataset.FormatValue(l.Years[0]) + "-" + dataset.FormatValue(l.Years[len(l.Years)-1])
		}
		c.Linef("%d. %s: %s", i+1, l.Name, period)
		c.Linef("   - mean %s: %s", yc.ProductivityCol, report.FormatFloat(l.Mean(yc.ProductivityCol), 0))
		c.Linef("   - mean %s: %s", yc.ReferenceColumn, report.FormatFloat(l.Mean(yc.ReferenceColumn), 1))
	}
	c.Blank()
	if n := len(res.Levels); n > 1 {
		from, to := res.Levels[0].Name, res.Levels[n-1].Name
		c.Good("Productivity gain (%s to %s): %s", from, to, report.FormatPercent(res.ProductivityGain))
		c.Good("Specialty coffee growth (%s to %s): %s", from, to, report.FormatPercent(res.SpecialtyGrowth))
	}
	c.KV("Silhouette coefficient", report.FormatStat(res.Silhouette))
	c.Linef("(values close to 1 indicate well separated clusters)")
}

// SelectK prints inertia and silhouette for every candidate k on the yearly
// dataset without fitting the final model.
func (p *Pipeline) SelectK(ctx context.Context) ([]cluster.KScore, error) {
	yc := p.cfg.Yearly
	t, err := p.load(ctx, "yearly", yc.Path, yc.Features)
	if err != nil {
		return nil, err
	}
	fm, _, err := preprocessing.Standardize(t, yc.Features)
	if err != nil {
		return nil, err
	}
	p.console.Banner("NUMBER OF CLUSTERS")
	return p.selectK(ctx, fm.Data, t.NRows())
}

func (p *Pipeline) selectK(ctx context.Context, X mat.Matrix, n int) ([]cluster.KScore, error) {
	var ks []int
	for _, k := range p.cfg.Cluster.KRange() {
		if k <= n {
			ks = append(ks, k)
			continue
		}
		p.console.Warn("k=%d skipped: more clusters than the %d observations", k, n)
		p.logger.Warn("Candidate k skipped", log.ClustersKey, k, log.SamplesKey, n)
	}
	if len(ks) == 0 {
		p.console.Warn("No candidate k fits %d observations", n)
		return nil, nil
	}

	defer p.rec.Stage("select_k")()
	scores, err := cluster.SelectKContext(ctx, X, ks, p.kmeansOptions()...)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(scores))
	for i, s := range scores {
		rows[i] = []string{strconv.Itoa(s.K), report.FormatMean(s.Inertia), report.FormatStat(s.Silhouette)}
	}
	p.console.Table([]string{"k", "inertia", "silhouette"}, rows)
	if best, ok := cluster.BestSilhouette(scores); ok {
		p.console.Linef("Highest silhouette: k = %d (%s)", best.K, report.FormatStat(best.Silhouette))
	}
	return scores, nil
}

func (p *Pipeline) kmeansOptions() []cluster.Option {
	cc := p.cfg.Cluster
	return []cluster.Option{
		cluster.WithNInit(cc.NInit),
		cluster.WithMaxIter(cc.MaxIter),
		cluster.WithTol(cc.Tol),
		cluster.WithRandomState(cc.Seed),
		cluster.WithInit(cc.Init),
		cluster.WithWorkers(cc.Workers),
	}
}

// buildLevels groups the annotated rows by level, in cc.Labels order.
func buildLevels(t *dataset.Table, years []float64, names map[int]string, cc config.ClusterConfig, columns []string) ([]Level, error) {
	groups, err := t.GroupIndices(cc.LabelColumn)
	if err != nil {
		return nil, err
	}
	summaries, err := describe.SummarizeGrouped(t, columns, cc.LabelColumn)
	if err != nil {
		return nil, err
	}

	rows := make(map[string][]int, len(groups))
	for _, g := range groups {
		rows[g.Key] = g.Rows
	}
	sums := make(map[string]map[string]describe.Summary, len(summaries))
	for _, s := range summaries {
		sums[s.Key] = s.Columns
	}
	ids := make(map[string]int, len(names))
	for id, name := range names {
		ids[name] = id
	}

	levels := make([]Level, 0, len(cc.Labels))
	for _, name := range cc.Labels {
		l := Level{Name: name, ClusterID: ids[name], Rows: rows[name], Summary: sums[name]}
		l.Years = dataset.Values(years, l.Rows)
		sort.Float64s(l.Years)
		levels = append(levels, l)
	}
	return levels, nil
}

// yearlyColumns lists every numeric column the technification analysis reads.
func yearlyColumns(yc config.YearlyConfig) []string {
	names := []string{yc.YearColumn}
	names = append(names, yc.Features...)
	names = append(names, yc.ReferenceColumn, yc.ProductivityCol, yc.SpecialtyColumn, yc.TotalColumn,
		yc.AreaColumn, yc.InvestmentColumn, yc.PrecipitationCol, yc.TemperatureColumn)
	names = append(names, yc.CorrelationCols...)
	return unique(names...)
}

func characterized(yc config.YearlyConfig) []string {
	return unique(append(append([]string(nil), yc.Features...), yc.TotalColumn)...)
}

func comparedColumns(yc config.YearlyConfig) []string {
	return unique(yc.ReferenceColumn, yc.ProductivityCol, yc.InvestmentColumn, yc.SpecialtyColumn)
}

func joinYears(years []float64) string {
	s := make([]string, len(years))
	for i, y := range years {
		s[i] = dataset.FormatValue(y)
	}
	return strings.Join(s, ", ")
}
