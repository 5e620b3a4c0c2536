package metrics_test

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/metrics"
)

// ExampleMSE demonstrates Mean Squared Error calculation
func ExampleMSE() {
	// Create true and predicted values
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{1.1, 1.9, 3.2, 3.8})

	// Calculate MSE
	mse, err := metrics.MSE(yTrue, yPred)
	if err != nil {
		slog.Error("Test failed", "error", err)
		return
	}

	fmt.Printf("MSE: %.3f\n", mse)

	// Output: MSE: 0.025
}

// ExampleRMSE demonstrates Root Mean Squared Error calculation
func ExampleRMSE() {
	// Create sample data with some prediction errors
	yTrue := mat.NewVecDense(3, []float64{10.0, 20.0, 30.0})
	yPred := mat.NewVecDense(3, []float64{12.0, 18.0, 32.0})

	// Calculate RMSE
	rmse, err := metrics.RMSE(yTrue, yPred)
	if err != nil {
		slog.Error("Test failed", "error", err)
		return
	}

	fmt.Printf("RMSE: %.2f\n", rmse)

	// Output: RMSE: 2.00
}

// ExampleMAE demonstrates Mean Absolute Error calculation
func ExampleMAE() {
	// Create true and predicted values
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{0.8, 2.2, 2.9, 4.3})

	// Calculate MAE
	mae, err := metrics.MAE(yTrue, yPred)
	if err != nil {
		slog.Error("Test failed", "error", err)
		return
	}

	fmt.Printf("MAE: %.2f\n", mae)

	// Output: MAE: 0.20
}

// ExampleR2Score demonstrates R-squared (coefficient of determination) calculation
func ExampleR2Score() {
	// Create perfect predictions (R² should be 1.0)
	yTrue := mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0})
	yPred := mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0})

	// Calculate R² score
	r2, err := metrics.R2Score(yTrue, yPred)
	if err != nil {
		slog.Error("Test failed", "error", err)
		return
	}

	fmt.Printf("R² Score: %.1f\n", r2)

	// Output: R² Score: 1.0
}

// ExampleR2Score_imperfectPredictions demonstrates R² with prediction errors
func ExampleR2Score_imperfectPredictions() {
	// Create data with some prediction errors
	yTrue := mat.NewVecDense(4, []float64{1.0, 3.0, 2.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{1.2, 2.8, 2.1, 3.9})

	// Calculate R² score
	r2, err := metrics.R2Score(yTrue, yPred)
	if err != nil {
		slog.Error("Test failed", "error", err)
		return
	}

	fmt.Printf("R² Score: %.3f\n", r2)

	// Output: R² Score: 0.980
}

// ExampleAdjustedR2 shows the small-sample guard
func ExampleAdjustedR2() {
	fmt.Printf("n=40, p=3: %.4f\n", metrics.AdjustedR2(0.9, 40, 3))
	fmt.Printf("n=4, p=3: %v\n", metrics.AdjustedR2(0.9, 4, 3))

	// Output: n=40, p=3: 0.8917
	// n=4, p=3: NaN
}

// ExampleSilhouetteScore scores two well separated pairs
func ExampleSilhouetteScore() {
	X := mat.NewDense(4, 1, []float64{0, 1, 10, 11})
	labels := []int{0, 0, 1, 1}

	s, err := metrics.SilhouetteScore(X, labels)
	if err != nil {
		slog.Error("Test failed", "error", err)
		return
	}
	inertia, _ := metrics.Inertia(X, labels, mat.NewDense(2, 1, []float64{0.5, 10.5}))

	fmt.Printf("Silhouette: %.4f\n", s)
	fmt.Printf("Inertia: %.1f\n", inertia)

	// Output: Silhouette: 0.8997
	// Inertia: 1.0
}
