// Package metrics provides goodness-of-fit measures for the regressor and the
// clusterer.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, csErrors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, csErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE is the mean squared error.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var diff mat.VecDense
	diff.SubVec(yTrue, yPred)
	return mat.Dot(&diff, &diff) / float64(n), nil
}

// RMSE is the square root of MSE.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score is the coefficient of determination 1 - SS_res/SS_tot. When yTrue
// has no variance the score is undefined: it returns NaN and a
// DegenerateInputError.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := mat.Sum(yTrue) / float64(n)
	var tss, rss float64
	for i := 0; i < n; i++ {
		t, p := yTrue.AtVec(i), yPred.AtVec(i)
		tss += (t - yMean) * (t - yMean)
		rss += (t - p) * (t - p)
	}

	if tss == 0 {
		return math.NaN(), csErrors.NewDegenerateInputError("R2Score", "total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// AdjustedR2 penalizes r2 for the number of predictors p over n observations:
// 1 - (1-r2)(n-1)/(n-p-1). It is NaN when n-p-1 <= 0 or r2 is NaN.
func AdjustedR2(r2 float64, n, p int) float64 {
	dof := n - p - 1
	if dof <= 0 || math.IsNaN(r2) {
		return math.NaN()
	}
	return 1 - (1-r2)*float64(n-1)/float64(dof)
}
