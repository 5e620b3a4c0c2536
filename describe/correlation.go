package describe

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/coffeestats/dataset"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// CorrMatrix is a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Ranked is one entry of a correlation ranking.
type Ranked struct {
	Column string
	R      float64
}

// CorrelationMatrix computes pairwise Pearson correlations between columns.
// Entries involving a zero-variance column are NaN.
func CorrelationMatrix(t *dataset.Table, columns []string) (_ *CorrMatrix, err error) {
	defer csErrors.Recover(&err, "CorrelationMatrix")

	if len(columns) < 2 {
		return nil, csErrors.NewValueError("CorrelationMatrix", "at least two columns are required")
	}
	if t.NRows() < 2 {
		return nil, csErrors.NewInsufficientDataError("CorrelationMatrix", "rows", 2, t.NRows())
	}
	X, err := t.Matrix(columns...)
	if err != nil {
		return nil, err
	}

	var sym mat.SymDense
	stat.CorrelationMatrix(&sym, X, nil)

	n := len(columns)
	cm := &CorrMatrix{Columns: append([]string(nil), columns...), Values: make([][]float64, n)}
	for i := 0; i < n; i++ {
		cm.Values[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			cm.Values[i][j] = sym.At(i, j)
		}
	}
	return cm, nil
}

// Get returns the correlation between columns a and b.
func (c *CorrMatrix) Get(a, b string) (float64, bool) {
	i, j := c.indexOf(a), c.indexOf(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return c.Values[i][j], true
}

func (c *CorrMatrix) indexOf(name string) int {
	for i, col := range c.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Ranked returns the correlation of every other column with target, strongest
// positive first. NaN entries sort last.
func (c *CorrMatrix) Ranked(target string) ([]Ranked, error) {
	ti := c.indexOf(target)
	if ti < 0 {
		return nil, csErrors.NewValueError("CorrMatrix.Ranked", "unknown column "+target)
	}
	out := make([]Ranked, 0, len(c.Columns)-1)
	for j, col := range c.Columns {
		if j == ti {
			continue
		}
		out = append(out, Ranked{Column: col, R: c.Values[ti][j]})
	}
	sort.SliceStable(out, func(a, b int) bool {
		ra, rb := out[a].R, out[b].R
		if math.IsNaN(rb) {
			return !math.IsNaN(ra)
		}
		return ra > rb
	})
	return out, nil
}
