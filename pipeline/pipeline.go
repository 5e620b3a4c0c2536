// Package pipeline runs the coffee production analyses end to end: it loads the
// configured datasets, hands them to the statistics packages and writes the
// console report, the charts and the results table.
//
// Two analyses share the engine:
//
//   - Technification clusters the yearly dataset into ordinal technification
//     levels and characterizes them.
//   - Regional describes the year by region dataset, regresses productivity on
//     the technology adoption rates and compares regions.
//
// Either one runs when its dataset path is configured.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/coffeestats/config"
	"github.com/ezoic/coffeestats/dataset"
	"github.com/ezoic/coffeestats/pkg/log"
	"github.com/ezoic/coffeestats/report"
	"github.com/ezoic/coffeestats/telemetry"
)

// Pipeline holds everything one run needs. It is not safe for concurrent use.
type Pipeline struct {
	cfg      *config.Config
	runID    string
	console  *report.Console
	style    report.Style
	renderer *report.Renderer
	rec      *telemetry.Recorder
	logger   log.Logger
}

// New returns a Pipeline writing its report to out. Every run gets a fresh id.
func New(cfg *config.Config, out io.Writer) *Pipeline {
	runID := uuid.NewString()
	style := report.DefaultStyle().WithFontSize(cfg.Chart.FontSize)
	return &Pipeline{
		cfg:      cfg,
		runID:    runID,
		console:  report.NewConsole(out, cfg.Output.Color),
		style:    style,
		renderer: report.NewRenderer(style, cfg.Chart.Width, cfg.Chart.Height, cfg.Chart.DPI, cfg.Chart.Format),
		rec:      telemetry.NewRecorder(runID),
		logger:   log.GetLoggerWithName("pipeline").With(log.RunIDKey, runID),
	}
}

// RunID identifies this run in logs, metrics and the report header.
func (p *Pipeline) RunID() string { return p.runID }

// Recorder exposes the run metrics.
func (p *Pipeline) Recorder() *telemetry.Recorder { return p.rec }

// Run executes every configured analysis and writes the metrics textfile.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	start := time.Now()
	p.logger.Info("Run started", log.PathKey, p.cfg.Output.Dir)
	p.console.KV("Run", p.runID)

	if p.cfg.Regional.Path != "" {
		if _, err := p.Regional(ctx); err != nil {
			return err
		}
	}
	if p.cfg.Yearly.Path != "" {
		if _, err := p.Technification(ctx); err != nil {
			return err
		}
	}

	if err := p.rec.WriteTextfile(p.cfg.Metrics.Textfile); err != nil {
		return err
	}
	p.logger.Info("Run completed", log.DurationMsKey, time.Since(start).Milliseconds())
	return nil
}

// load reads a dataset, requiring the given columns to be numeric.
func (p *Pipeline) load(ctx context.Context, name, path string, numeric []string) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer p.rec.Stage("load_" + name)()

	t, err := dataset.LoadWithOptions(path, dataset.LoadOptions{Numeric: numeric})
	if err != nil {
		return nil, err
	}
	p.rec.RowsLoaded(name, t.NRows())
	return t, nil
}

// chart renders spec as name under the output directory. Disabled charts are
// skipped.
func (p *Pipeline) chart(spec report.ChartSpec, name string) error {
	if !p.cfg.Output.Charts {
		return nil
	}
	path := p.cfg.OutputPath(name + "." + p.cfg.Chart.Format)
	if err := p.renderer.Render(spec, path); err != nil {
		return err
	}
	p.rec.ChartWritten()
	p.console.Good("Chart saved: %s", path)
	return nil
}

// degenerate logs a statistic that came out undefined and counts it.
func (p *Pipeline) degenerate(test, subject string, err error) {
	p.rec.Degenerate(test)
	p.logger.Warn("Statistic undefined",
		log.OperationKey, log.OperationTest,
		"test", test,
		log.ColumnKey, subject,
		"reason", err.Error(),
	)
}

// numericColumns returns the named columns, which must already be known numeric.
func numericColumns(t *dataset.Table, names ...string) (map[string][]float64, error) {
	out := make(map[string][]float64, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		v, err := t.Float(name)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// unique drops empty and repeated names, keeping the first occurrence.
func unique(names ...string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
