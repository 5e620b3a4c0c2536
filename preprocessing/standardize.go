package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/dataset"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// FeatureMatrix is a standardized projection of table columns.
type FeatureMatrix struct {
	Data    *mat.Dense
	Columns []string
}

// ScalingParams are the per-column statistics used to standardize a FeatureMatrix.
type ScalingParams struct {
	Columns []string
	Mean    []float64
	Scale   []float64
}

// Standardize z-scores the named columns of t using statistics computed from
// those same columns.
func Standardize(t *dataset.Table, columns []string) (*FeatureMatrix, ScalingParams, error) {
	if len(columns) == 0 {
		return nil, ScalingParams{}, csErrors.NewValueError("Standardize", "no columns to standardize")
	}
	X, err := t.Matrix(columns...)
	if err != nil {
		return nil, ScalingParams{}, err
	}

	scaler := NewStandardScaler()
	Z, err := scaler.FitTransform(X)
	if err != nil {
		return nil, ScalingParams{}, err
	}

	cols := append([]string(nil), columns...)
	params := ScalingParams{
		Columns: cols,
		Mean:    append([]float64(nil), scaler.Mean...),
		Scale:   append([]float64(nil), scaler.Scale...),
	}
	return &FeatureMatrix{Data: Z, Columns: cols}, params, nil
}

// InverseTransform maps rows in standardized units, such as cluster centroids,
// back to original units.
func (p ScalingParams) InverseTransform(Z mat.Matrix) (*mat.Dense, error) {
	r, c := Z.Dims()
	if c != len(p.Mean) {
		return nil, csErrors.NewDimensionError("ScalingParams.InverseTransform", len(p.Mean), c, 1)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return v*p.Scale[j] + p.Mean[j]
	}, Z)
	return out, nil
}
