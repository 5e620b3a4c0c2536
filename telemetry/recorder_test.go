package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_WriteTextfile(t *testing.T) {
	rec := NewRecorder("run-1")
	stop := rec.Stage("load")
	stop()
	rec.RowsLoaded("yearly", 15)
	rec.ChartWritten()
	rec.ChartWritten()
	rec.Degenerate("anova")

	path := filepath.Join(t.TempDir(), "coffeestats.prom")
	require.NoError(t, rec.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, `coffeestats_rows_loaded{dataset="yearly",run_id="run-1"} 15`)
	assert.Contains(t, text, `coffeestats_charts_written_total{run_id="run-1"} 2`)
	assert.Contains(t, text, `coffeestats_degenerate_results_total{run_id="run-1",test="anova"} 1`)
	assert.Contains(t, text, `coffeestats_stage_duration_seconds_count{run_id="run-1",stage="load"} 1`)
}

func TestRecorder_EmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, NewRecorder("x").WriteTextfile(""))
}

func TestRecorder_Gather(t *testing.T) {
	rec := NewRecorder("run-2")
	rec.RowsLoaded("regional", 40)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "coffeestats_rows_loaded")
}
