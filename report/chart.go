package report

import (
	"image/color"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// Kind selects how a ChartSpec is drawn.
type Kind string

// Chart kinds.
const (
	KindScatter Kind = "scatter"
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindHeatmap Kind = "heatmap"
	KindBox     Kind = "box"
	KindGrid    Kind = "grid"
)

// Series is one named set of points.
type Series struct {
	Name string
	X, Y []float64
	// Labels annotate scatter points.
	Labels []string
	// ColorBy colors scatter points along a continuous scale, e.g. by year.
	ColorBy []float64
	// Color overrides the palette; nil picks the next palette color.
	Color color.Color
	// Secondary plots a line against a secondary scale, rescaled onto the
	// primary Y range.
	Secondary bool
	Dashed    bool
	Points    bool
	// Bars draws a line series as bars centred on X.
	Bars bool
}

// FitLine is a straight line y = Intercept + Slope*x drawn over the X range of a scatter.
type FitLine struct {
	Slope     float64
	Intercept float64
	Label     string
}

// ChartSpec is a complete, renderer-independent description of one chart.
//
// Which fields are read depends on Kind:
//   - scatter: Series, Markers, Fit, Annotation
//   - line: Series (Secondary series are rescaled), Annotation
//   - bar: Categories, Values, Errors, BarColors, ValueFormat
//   - heatmap: Categories, Matrix
//   - box: Categories, Groups
//   - grid: Panels laid out in Rows x Cols
type ChartSpec struct {
	Kind    Kind
	Title   string
	XLabel  string
	YLabel  string
	Y2Label string

	Series     []Series
	Markers    []Series
	Fit        *FitLine
	Annotation string

	Categories  []string
	Values      []float64
	Errors      []float64
	BarColors   []color.Color
	ValueFormat int

	Matrix [][]float64
	Groups [][]float64

	Panels []ChartSpec
	Rows   int
	Cols   int
}

// Validate checks that the fields Kind needs are present and consistent.
func (s *ChartSpec) Validate() error {
	op := "ChartSpec(" + string(s.Kind) + ")"
	switch s.Kind {
	case KindScatter, KindLine:
		if len(s.Series) == 0 {
			return csErrors.NewValueError(op, "no series")
		}
		for _, ser := range append(append([]Series(nil), s.Series...), s.Markers...) {
			if len(ser.X) != len(ser.Y) {
				return csErrors.NewLengthMismatchError(op, len(ser.X), len(ser.Y))
			}
			if len(ser.Labels) > 0 && len(ser.Labels) != len(ser.X) {
				return csErrors.NewLengthMismatchError(op, len(ser.X), len(ser.Labels))
			}
			if len(ser.ColorBy) > 0 && len(ser.ColorBy) != len(ser.X) {
				return csErrors.NewLengthMismatchError(op, len(ser.X), len(ser.ColorBy))
			}
		}
	case KindBar:
		if len(s.Values) == 0 {
			return csErrors.NewValueError(op, "no values")
		}
		if len(s.Categories) != len(s.Values) {
			return csErrors.NewLengthMismatchError(op, len(s.Categories), len(s.Values))
		}
		if len(s.Errors) > 0 && len(s.Errors) != len(s.Values) {
			return csErrors.NewLengthMismatchError(op, len(s.Values), len(s.Errors))
		}
	case KindHeatmap:
		n := len(s.Categories)
		if n == 0 || len(s.Matrix) != n {
			return csErrors.NewLengthMismatchError(op, n, len(s.Matrix))
		}
		for _, row := range s.Matrix {
			if len(row) != n {
				return csErrors.NewLengthMismatchError(op, n, len(row))
			}
		}
	case KindBox:
		if len(s.Groups) == 0 {
			return csErrors.NewValueError(op, "no groups")
		}
		if len(s.Categories) != len(s.Groups) {
			return csErrors.NewLengthMismatchError(op, len(s.Categories), len(s.Groups))
		}
	case KindGrid:
		if len(s.Panels) == 0 || s.Rows < 1 || s.Cols < 1 || len(s.Panels) > s.Rows*s.Cols {
			return csErrors.NewValueError(op, "panels do not fit the grid")
		}
		for i := range s.Panels {
			if s.Panels[i].Kind == KindGrid {
				return csErrors.NewValueError(op, "nested grids are not supported")
			}
			if err := s.Panels[i].Validate(); err != nil {
				return err
			}
		}
	default:
		return csErrors.NewValueError("ChartSpec", "unknown chart kind "+string(s.Kind))
	}
	return nil
}
