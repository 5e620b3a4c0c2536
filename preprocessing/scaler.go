// Package preprocessing rescales table columns into the feature matrices the
// clusterer works on.
package preprocessing

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/coffeestats/core/model"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// zeroScale is the standard deviation below which a column is treated as constant.
const zeroScale = 1e-8

// StandardScaler z-scores each column with its mean and population standard
// deviation. Constant columns get a scale of 1 so they map to zero.
type StandardScaler struct {
	state *model.StateManager

	// Mean of each feature seen during Fit.
	Mean []float64
	// Scale is the population standard deviation of each feature, or 1 for constant features.
	Scale []float64
}

// NewStandardScaler creates an unfitted StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{state: model.NewStateManager()}
}

// IsFitted reports whether Fit has succeeded.
func (s *StandardScaler) IsFitted() bool { return s.state.IsFitted() }

// NFeatures returns the number of features seen during Fit.
func (s *StandardScaler) NFeatures() int { return s.state.NFeatures() }

// Fit computes per-column mean and scale.
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer csErrors.Recover(&err, "StandardScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return csErrors.NewModelError("StandardScaler.Fit", "empty data", csErrors.ErrEmptyData)
	}

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		s.Scale[j] = 1
		if std >= zeroScale {
			s.Scale[j] = std
		}
	}

	s.state.SetDimensions(c, r)
	s.state.SetFitted()
	return nil
}

// Transform applies (x - mean) / scale.
func (s *StandardScaler) Transform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer csErrors.Recover(&err, "StandardScaler.Transform")
	if err := s.check("Transform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

// FitTransform fits on X and returns X transformed.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized values back to original units.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer csErrors.Recover(&err, "StandardScaler.InverseTransform")
	if err := s.check("InverseTransform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return v*s.Scale[j] + s.Mean[j]
	}, X)
	return result, nil
}

func (s *StandardScaler) check(method string, X mat.Matrix) error {
	if !s.state.IsFitted() {
		return csErrors.NewNotFittedError("StandardScaler", method)
	}
	if _, c := X.Dims(); c != s.state.NFeatures() {
		return csErrors.NewDimensionError("StandardScaler."+method, s.state.NFeatures(), c, 1)
	}
	return nil
}
