package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

func regionalTable(t *testing.T) *Table {
	t.Helper()
	tb := NewTable("regional")
	require.NoError(t, tb.AppendNumeric("year", []float64{2020, 2020, 2021, 2021, 2022}))
	require.NoError(t, tb.AppendCategorical("region", []string{"Varginha", "Tres Pontas", "Varginha", "Tres Pontas", "Varginha"}))
	require.NoError(t, tb.AppendNumeric("productivity", []float64{28.1, 30.2, 29.4, 31.0, 30.5}))
	return tb
}

func TestTableBasics(t *testing.T) {
	tb := regionalTable(t)

	assert.Equal(t, 5, tb.NRows())
	assert.Equal(t, []string{"year", "region", "productivity"}, tb.Columns())
	assert.Equal(t, []string{"year", "productivity"}, tb.NumericColumns())
	assert.True(t, tb.Has("region"))
	assert.False(t, tb.Has("area"))

	k, err := tb.Kind("region")
	require.NoError(t, err)
	assert.Equal(t, Categorical, k)
}

func TestAppendValidation(t *testing.T) {
	tb := regionalTable(t)

	err := tb.AppendNumeric("cluster", []float64{0, 1})
	assert.ErrorIs(t, err, csErrors.ErrLengthMismatch)

	err = tb.AppendCategorical("region", make([]string, 5))
	assert.ErrorIs(t, err, csErrors.ErrInvalidValue)

	err = tb.AppendNumeric("", make([]float64, 5))
	assert.ErrorIs(t, err, csErrors.ErrInvalidValue)
}

func TestFloatReturnsCopy(t *testing.T) {
	tb := regionalTable(t)

	v, err := tb.Float("productivity")
	require.NoError(t, err)
	v[0] = -1

	again, err := tb.Float("productivity")
	require.NoError(t, err)
	assert.Equal(t, 28.1, again[0])

	_, err = tb.Float("region")
	assert.ErrorIs(t, err, csErrors.ErrInvalidValue)
	_, err = tb.Float("missing")
	assert.ErrorIs(t, err, csErrors.ErrInvalidValue)
}

func TestStringsFormatsNumbers(t *testing.T) {
	tb := regionalTable(t)

	years, err := tb.Strings("year")
	require.NoError(t, err)
	assert.Equal(t, []string{"2020", "2020", "2021", "2021", "2022"}, years)

	assert.Equal(t, "", FormatValue(math.NaN()))
	assert.Equal(t, "28.1", FormatValue(28.1))
}

func TestMatrix(t *testing.T) {
	tb := regionalTable(t)

	m, err := tb.Matrix("productivity", "year")
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 30.2, m.At(1, 0))
	assert.Equal(t, 2022.0, m.At(4, 1))

	_, err = tb.Matrix("region")
	assert.Error(t, err)
	_, err = tb.Matrix()
	assert.Error(t, err)
}

func TestGroupIndicesFirstAppearanceOrder(t *testing.T) {
	tb := regionalTable(t)

	groups, err := tb.GroupIndices("region")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, Group{Key: "Varginha", Rows: []int{0, 2, 4}}, groups[0])
	assert.Equal(t, Group{Key: "Tres Pontas", Rows: []int{1, 3}}, groups[1])

	unique, err := tb.Unique("region")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tres Pontas", "Varginha"}, unique)
}

func TestSubsetAndSelect(t *testing.T) {
	tb := regionalTable(t)

	sub, err := tb.Subset([]int{4, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.NRows())
	p, _ := sub.Float("productivity")
	assert.Equal(t, []float64{30.5, 30.2}, p)

	_, err = tb.Subset([]int{5})
	assert.Error(t, err)

	sel, err := tb.Select("productivity", "region")
	require.NoError(t, err)
	assert.Equal(t, []string{"productivity", "region"}, sel.Columns())
	assert.Equal(t, 5, sel.NRows())

	require.NoError(t, sel.AppendNumeric("cluster", []float64{0, 1, 0, 1, 2}))
	assert.False(t, tb.Has("cluster"), "appending to a projection must not touch the source")
}

func TestValues(t *testing.T) {
	assert.Equal(t, []float64{3, 1}, Values([]float64{1, 2, 3}, []int{2, 0}))
}
