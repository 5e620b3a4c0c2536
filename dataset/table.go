// Package dataset loads tabular input into an in-memory observation table.
//
// A Table is an ordered set of named columns of equal length. Columns are either
// numeric (float64, NaN for missing cells) or categorical (string). Tables are
// append-only: analyses derive new columns such as cluster ids and labels with
// AppendNumeric and AppendCategorical and never mutate loaded values.
package dataset

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

var nan = math.NaN()

// Kind is the storage type of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

type column struct {
	name string
	kind Kind
	num  []float64
	str  []string
}

// Table is an ordered, column-oriented observation table.
type Table struct {
	name  string
	cols  []*column
	index map[string]int
	nrows int
}

// Group is the set of row indices sharing one key value.
type Group struct {
	Key  string
	Rows []int
}

// NewTable returns an empty table. name is used in log and error messages.
func NewTable(name string) *Table {
	return &Table{name: name, index: make(map[string]int), nrows: -1}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// NRows returns the number of observations.
func (t *Table) NRows() int {
	if t.nrows < 0 {
		return 0
	}
	return t.nrows
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether the table has a column named name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Kind returns the kind of the named column.
func (t *Table) Kind(name string) (Kind, error) {
	c, err := t.col("Kind", name)
	if err != nil {
		return 0, err
	}
	return c.kind, nil
}

// NumericColumns returns the names of numeric columns in order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.cols {
		if c.kind == Numeric {
			names = append(names, c.name)
		}
	}
	return names
}

// AppendNumeric adds a numeric column. The values are copied.
func (t *Table) AppendNumeric(name string, values []float64) error {
	if err := t.checkAppend("AppendNumeric", name, len(values)); err != nil {
		return err
	}
	t.add(&column{name: name, kind: Numeric, num: append([]float64(nil), values...)})
	return nil
}

// AppendCategorical adds a categorical column. The values are copied.
func (t *Table) AppendCategorical(name string, values []string) error {
	if err := t.checkAppend("AppendCategorical", name, len(values)); err != nil {
		return err
	}
	t.add(&column{name: name, kind: Categorical, str: append([]string(nil), values...)})
	return nil
}

func (t *Table) checkAppend(op, name string, n int) error {
	if name == "" {
		return csErrors.NewValueError("Table."+op, "column name must not be empty")
	}
	if t.Has(name) {
		return csErrors.NewValueError("Table."+op, "duplicate column "+strconv.Quote(name))
	}
	if t.nrows >= 0 && n != t.nrows {
		return csErrors.NewLengthMismatchError("Table."+op, t.nrows, n)
	}
	return nil
}

func (t *Table) add(c *column) {
	if t.nrows < 0 {
		t.nrows = len(c.num) + len(c.str)
	}
	t.index[c.name] = len(t.cols)
	t.cols = append(t.cols, c)
}

func (t *Table) col(op, name string) (*column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, csErrors.NewValueError("Table."+op, "unknown column "+strconv.Quote(name))
	}
	return t.cols[i], nil
}

// Float returns a copy of a numeric column.
func (t *Table) Float(name string) ([]float64, error) {
	c, err := t.col("Float", name)
	if err != nil {
		return nil, err
	}
	if c.kind != Numeric {
		return nil, csErrors.NewValueError("Table.Float", "column "+strconv.Quote(name)+" is categorical")
	}
	return append([]float64(nil), c.num...), nil
}

// Strings returns a column as strings. Numeric values are formatted with the
// shortest representation, so a year column yields "2015" rather than "2015.0".
func (t *Table) Strings(name string) ([]string, error) {
	c, err := t.col("Strings", name)
	if err != nil {
		return nil, err
	}
	if c.kind == Categorical {
		return append([]string(nil), c.str...), nil
	}
	out := make([]string, len(c.num))
	for i, v := range c.num {
		out[i] = FormatValue(v)
	}
	return out, nil
}

// FormatValue renders a numeric cell the way Strings does.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Matrix returns the named numeric columns as an n x len(cols) matrix.
func (t *Table) Matrix(cols ...string) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, csErrors.NewValueError("Table.Matrix", "no columns requested")
	}
	n := t.NRows()
	if n == 0 {
		return nil, csErrors.NewModelError("Table.Matrix", "empty table", csErrors.ErrEmptyData)
	}
	data := make([]float64, n*len(cols))
	for j, name := range cols {
		v, err := t.Float(name)
		if err != nil {
			return nil, err
		}
		for i := range v {
			data[i*len(cols)+j] = v[i]
		}
	}
	return mat.NewDense(n, len(cols), data), nil
}

// Select returns a new table with only the named columns, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	out := NewTable(t.name)
	for _, name := range cols {
		c, err := t.col("Select", name)
		if err != nil {
			return nil, err
		}
		out.add(&column{name: c.name, kind: c.kind, num: c.num, str: c.str})
	}
	if len(cols) > 0 {
		out.nrows = t.nrows
	}
	return out, nil
}

// Subset returns a new table with the given rows, in the given order.
func (t *Table) Subset(rows []int) (*Table, error) {
	n := t.NRows()
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, csErrors.NewValueError("Table.Subset", "row index "+strconv.Itoa(r)+" out of range")
		}
	}
	out := NewTable(t.name)
	out.nrows = len(rows)
	for _, c := range t.cols {
		nc := &column{name: c.name, kind: c.kind}
		if c.kind == Numeric {
			nc.num = make([]float64, len(rows))
			for i, r := range rows {
				nc.num[i] = c.num[r]
			}
		} else {
			nc.str = make([]string, len(rows))
			for i, r := range rows {
				nc.str[i] = c.str[r]
			}
		}
		out.index[nc.name] = len(out.cols)
		out.cols = append(out.cols, nc)
	}
	return out, nil
}

// GroupIndices partitions the rows by the value of column key. Groups appear in
// order of first appearance.
func (t *Table) GroupIndices(key string) ([]Group, error) {
	values, err := t.Strings(key)
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int)
	var groups []Group
	for i, v := range values {
		g, ok := pos[v]
		if !ok {
			g = len(groups)
			pos[v] = g
			groups = append(groups, Group{Key: v})
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}
	return groups, nil
}

// Unique returns the distinct values of column key, sorted.
func (t *Table) Unique(key string) ([]string, error) {
	groups, err := t.GroupIndices(key)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	sort.Strings(out)
	return out, nil
}

// Values selects the entries of v at rows.
func Values(v []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = v[r]
	}
	return out
}
