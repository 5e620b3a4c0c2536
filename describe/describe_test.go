package describe

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/coffeestats/dataset"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

func TestSummarizeValues(t *testing.T) {
	s := SummarizeValues([]float64{1, 2, 3, 4, 5})

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.True(t, s.Min <= s.Q25 && s.Q25 <= s.Median && s.Median <= s.Q75 && s.Q75 <= s.Max)
}

func TestSummarizeValuesEdgeCases(t *testing.T) {
	single := SummarizeValues([]float64{7})
	assert.Equal(t, 1, single.Count)
	assert.Equal(t, 7.0, single.Mean)
	assert.True(t, math.IsNaN(single.Std), "std of one observation is undefined")

	empty := SummarizeValues(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.True(t, math.IsNaN(empty.Max))

	withNaN := SummarizeValues([]float64{2, math.NaN(), 4})
	assert.Equal(t, 2, withNaN.Count)
	assert.Equal(t, 3.0, withNaN.Mean)
}

func TestSummarizeIsOrderInvariant(t *testing.T) {
	base := []float64{1350, 1365, 1380, 1390, 1410, 1440, 1465, 1490, 1510, 1535, 1560, 1585, 1605, 1630, 1650}
	want := SummarizeValues(base)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		shuffled := append([]float64(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := SummarizeValues(shuffled)
		assert.Equal(t, want.Count, got.Count)
		assert.InDelta(t, want.Mean, got.Mean, 1e-9)
		assert.InDelta(t, want.Std, got.Std, 1e-9)
		assert.Equal(t, want.Min, got.Min)
		assert.Equal(t, want.Max, got.Max)
		assert.InDelta(t, want.Q25, got.Q25, 1e-9)
		assert.InDelta(t, want.Median, got.Median, 1e-9)
		assert.InDelta(t, want.Q75, got.Q75, 1e-9)
	}
}

func groupedTable(t *testing.T) *dataset.Table {
	t.Helper()
	tb := dataset.NewTable("regional")
	require.NoError(t, tb.AppendCategorical("region", []string{"B", "A", "B", "A", "C"}))
	require.NoError(t, tb.AppendNumeric("productivity", []float64{30, 20, 32, 22, 25}))
	require.NoError(t, tb.AppendNumeric("mechanization", []float64{60, 40, 64, 44, 50}))
	return tb
}

func TestSummarize(t *testing.T) {
	tb := groupedTable(t)

	out, err := Summarize(tb, []string{"productivity"})
	require.NoError(t, err)
	assert.Equal(t, 5, out["productivity"].Count)
	assert.InDelta(t, 25.8, out["productivity"].Mean, 1e-12)

	_, err = Summarize(tb, []string{"region"})
	assert.ErrorIs(t, err, csErrors.ErrInvalidValue)
	_, err = Summarize(tb, []string{"unknown"})
	assert.ErrorIs(t, err, csErrors.ErrInvalidValue)
}

func TestSummarizeGrouped(t *testing.T) {
	tb := groupedTable(t)

	groups, err := SummarizeGrouped(tb, []string{"productivity", "mechanization"}, "region")
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "B", groups[0].Key)
	assert.Equal(t, 2, groups[0].Size)
	assert.Equal(t, 31.0, groups[0].Columns["productivity"].Mean)
	assert.InDelta(t, math.Sqrt(2), groups[0].Columns["productivity"].Std, 1e-12)

	assert.Equal(t, "A", groups[1].Key)
	assert.Equal(t, []float64{21, 42}, groups[1].Means([]string{"productivity", "mechanization"}))

	assert.Equal(t, "C", groups[2].Key)
	assert.True(t, math.IsNaN(groups[2].Columns["productivity"].Std), "single-row group std is NaN")
}

func TestPercentChangeAndShare(t *testing.T) {
	assert.InDelta(t, 22.2222, PercentChange(1350, 1650), 1e-4)
	assert.True(t, math.IsNaN(PercentChange(0, 10)))
	assert.Equal(t, []float64{25, 50}, Share([]float64{1, 5}, []float64{4, 10}))
}
