// Package linear provides ordinary least squares regression.
//
// LinearRegression is the estimator: it solves the least-squares problem for
// an intercept plus one coefficient per feature with a QR factorization of the
// design matrix, which is numerically safer than inverting X^T X.
//
// FitOLS wraps it for the analytical pipeline: it takes an observation table,
// predictor and target column names, and returns every quantity the report
// needs (coefficients, R², adjusted R², RMSE, fitted values, residuals).
//
// Example usage:
//
//	res, err := linear.FitOLS(table,
//		[]string{"mechanization_pct", "irrigation_pct", "precision_tech_pct"},
//		"productivity_bags_ha")
//	if err != nil {
//		return err
//	}
//	fmt.Printf("R² = %.4f\n", res.R2)
package linear

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/core/model"
	"github.com/ezoic/coffeestats/core/parallel"
	"github.com/ezoic/coffeestats/metrics"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
	"github.com/ezoic/coffeestats/pkg/log"
)

// LinearRegression is an ordinary least squares model with intercept.
type LinearRegression struct {
	State     *model.StateManager // State manager (composition instead of embedding)
	Weights   *mat.VecDense       // Model weights (coefficients)
	Intercept float64             // Model intercept
	NFeatures int                 // Number of features
	logger    log.Logger
}

// NewLinearRegression creates an untrained linear regression model.
//
// Returns:
//   - *LinearRegression: A new untrained model; call Fit before Predict
//
// Example:
//
//	lr := linear.NewLinearRegression()
//	err := lr.Fit(X, y)
//	predictions, err := lr.Predict(XNew)
func NewLinearRegression() *LinearRegression {
	lr := &LinearRegression{
		State: model.NewStateManager(),
	}

	lr.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, "LinearRegression",
		log.ComponentKey, "linear",
	)

	return lr
}

// Fit trains the model on X and y.
//
// The design matrix [1 | X] is factorized with QR and the least-squares system
// is solved directly, so no explicit inverse of X^T X is formed.
//
// Parameters:
//   - X: Feature matrix of shape (n_samples, n_features)
//   - y: Target column of shape (n_samples, 1)
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - ErrDimensionMismatch: if X and y have a different number of rows
//   - ErrSingularMatrix: if the design matrix is rank deficient
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer csErrors.Recover(&err, "LinearRegression.Fit")

	startTime := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	lr.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	if r == 0 || c == 0 {
		return csErrors.NewModelError("LinearRegression.Fit", "empty data", csErrors.ErrEmptyData)
	}
	if ry != r {
		return csErrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return csErrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}
	if r < c+1 {
		return csErrors.NewInsufficientDataError("LinearRegression.Fit", "intercept plus one coefficient per feature", c+1, r)
	}

	design := mat.NewDense(r, c+1, nil)

	const parallelThreshold = 1000
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			design.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				design.Set(i, j+1, X.At(i, j))
			}
		}
	})

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var qr mat.QR
	qr.Factorize(design)
	if cond := qr.Cond(); cond > maxCondition {
		return csErrors.NewModelError("LinearRegression.Fit", "rank deficient design", csErrors.ErrSingularMatrix)
	}

	var weights mat.VecDense
	if err := qr.SolveVecTo(&weights, false, yVec); err != nil {
		return csErrors.NewModelError("LinearRegression.Fit", "least squares", csErrors.ErrSingularMatrix)
	}

	lr.NFeatures = c
	lr.Intercept = weights.AtVec(0)
	lr.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		lr.Weights.SetVec(i, weights.AtVec(i+1))
	}

	lr.State.SetFitted()
	lr.State.SetDimensions(c, r)

	lr.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	return nil
}

// maxCondition is the largest design condition number accepted by Fit.
const maxCondition = 1e12

// Predict returns X * weights + intercept as an (n_samples, 1) matrix.
//
// Errors:
//   - NotFittedError: if Fit has not been called
//   - ErrDimensionMismatch: if X has a different number of features than the training data
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer csErrors.Recover(&err, "LinearRegression.Predict")
	if !lr.State.IsFitted() {
		return nil, csErrors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, csErrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	var pred mat.VecDense
	pred.MulVec(X, lr.Weights)
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		predictions.Set(i, 0, pred.AtVec(i)+lr.Intercept)
	}

	lr.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.PredsKey, r,
	)

	return predictions, nil
}

// GetWeights returns a copy of the coefficients, or nil before Fit.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.Weights)
}

// GetIntercept returns the intercept, or 0 before Fit.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.State.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score returns the R² of the model on X and y.
func (lr *LinearRegression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer csErrors.Recover(&err, "LinearRegression.Score")
	if !lr.State.IsFitted() {
		return 0, csErrors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	return metrics.R2Score(mat.NewVecDense(r, mat.Col(nil, 0, y)), mat.NewVecDense(r, mat.Col(nil, 0, yPred)))
}

// IsFitted reports whether Fit has succeeded.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State.IsFitted()
}
