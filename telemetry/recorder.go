// Package telemetry records run-level Prometheus metrics. A run is a batch job,
// so the registry is written once to a node-exporter textfile instead of being
// served over HTTP.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

const namespace = "coffeestats"

// Recorder owns a private registry with the run metrics.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	rowsLoaded    *prometheus.GaugeVec
	charts        prometheus.Counter
	degenerate    *prometheus.CounterVec
}

// NewRecorder returns a Recorder whose series carry the run id as a constant label.
func NewRecorder(runID string) *Recorder {
	constLabels := prometheus.Labels{"run_id": runID}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "stage_duration_seconds",
			Help:        "Wall time of each pipeline stage.",
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
			ConstLabels: constLabels,
		}, []string{"stage"}),
		rowsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "rows_loaded",
			Help:        "Rows read from each dataset.",
			ConstLabels: constLabels,
		}, []string{"dataset"}),
		charts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "charts_written_total",
			Help:        "Chart images written.",
			ConstLabels: constLabels,
		}),
		degenerate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "degenerate_results_total",
			Help:        "Statistics reported as undefined because of degenerate input.",
			ConstLabels: constLabels,
		}, []string{"test"}),
	}
	r.registry.MustRegister(r.stageDuration, r.rowsLoaded, r.charts, r.degenerate)
	return r
}

// Stage starts timing stage and returns the function that stops it.
//
//	defer rec.Stage("cluster")()
func (r *Recorder) Stage(stage string) func() {
	start := time.Now()
	return func() {
		r.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

// RowsLoaded records the size of a loaded dataset.
func (r *Recorder) RowsLoaded(dataset string, n int) {
	r.rowsLoaded.WithLabelValues(dataset).Set(float64(n))
}

// ChartWritten counts one chart image.
func (r *Recorder) ChartWritten() {
	r.charts.Inc()
}

// Degenerate counts one undefined statistic of kind test.
func (r *Recorder) Degenerate(test string) {
	r.degenerate.WithLabelValues(test).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the registry in text exposition format to path.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return csErrors.Wrapf(err, "write metrics textfile %s", path)
	}
	return nil
}
