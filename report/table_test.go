package report

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/coffeestats/dataset"
)

func resultsTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl := dataset.NewTable("results")
	require.NoError(t, tbl.AppendNumeric("year", []float64{2015, 2016, 2017}))
	require.NoError(t, tbl.AppendNumeric("productivity", []float64{21.5, math.NaN(), 30.25}))
	require.NoError(t, tbl.AppendCategorical("technification_level", []string{"Low", "Medium", "High"}))
	require.NoError(t, tbl.AppendNumeric("unused", []float64{1, 2, 3}))
	return tbl
}

func TestWriteResultsTable_RoundTrip(t *testing.T) {
	columns := []string{"year", "productivity", "technification_level"}

	for _, ext := range []string{".csv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "cluster_results"+ext)
			require.NoError(t, WriteResultsTable(path, resultsTable(t), columns))

			got, err := dataset.Load(path, columns...)
			require.NoError(t, err)
			assert.Equal(t, columns, got.Columns())

			years, err := got.Float("year")
			require.NoError(t, err)
			assert.Equal(t, []float64{2015, 2016, 2017}, years)

			prod, err := got.Float("productivity")
			require.NoError(t, err)
			assert.Equal(t, 21.5, prod[0])
			assert.True(t, math.IsNaN(prod[1]))
			assert.Equal(t, 30.25, prod[2])

			levels, err := got.Strings("technification_level")
			require.NoError(t, err)
			assert.Equal(t, []string{"Low", "Medium", "High"}, levels)
		})
	}
}

func TestWriteResultsTable_Errors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, WriteResultsTable(filepath.Join(dir, "r.json"), resultsTable(t), nil))
	assert.Error(t, WriteResultsTable(filepath.Join(dir, "r.csv"), resultsTable(t), []string{"missing"}))
}
