package preprocessing_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/dataset"
	"github.com/ezoic/coffeestats/preprocessing"
)

// ExampleStandardScaler z-scores two columns
func ExampleStandardScaler() {
	X := mat.NewDense(4, 2, []float64{
		1.0, 2.0,
		3.0, 4.0,
		5.0, 6.0,
		7.0, 8.0,
	})

	scaler := preprocessing.NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return
	}

	fmt.Printf("Scaled first row: [%.2f, %.2f]\n", scaled.At(0, 0), scaled.At(0, 1))

	// Output: Scaled first row: [-1.34, -1.34]
}

// ExampleStandardize standardizes table columns and maps a centroid back to original units
func ExampleStandardize() {
	t := dataset.NewTable("yearly")
	_ = t.AppendNumeric("technology_index", []float64{1.2, 4.5, 7.8})
	_ = t.AppendNumeric("productivity", []float64{1350, 1500, 1650})

	fm, params, err := preprocessing.Standardize(t, []string{"technology_index", "productivity"})
	if err != nil {
		return
	}
	fmt.Printf("Standardized last row: [%.4f, %.4f]\n", fm.Data.At(2, 0), fm.Data.At(2, 1))

	centroid := mat.NewDense(1, 2, []float64{0, 0})
	orig, err := params.InverseTransform(centroid)
	if err != nil {
		return
	}
	fmt.Printf("Centroid in original units: [%.2f, %.2f]\n", orig.At(0, 0), orig.At(0, 1))

	// Output: Standardized last row: [1.2247, 1.2247]
	// Centroid in original units: [4.50, 1500.00]
}
