package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/dataset"
	"github.com/ezoic/coffeestats/metrics"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
	"github.com/ezoic/coffeestats/pkg/log"
)

// OLSResult is a fitted ordinary least squares model over a whole table.
// R2 is NaN when the target has no variance and AdjR2 is NaN when n-p-1 <= 0.
type OLSResult struct {
	Predictors   []string
	Target       string
	Intercept    float64
	Coefficients []float64
	R2           float64
	AdjR2        float64
	RMSE         float64
	MAE          float64
	Fitted       []float64
	Residuals    []float64
	N            int
	P            int
}

// Coefficient returns the coefficient of the named predictor.
func (r *OLSResult) Coefficient(name string) (float64, bool) {
	for i, p := range r.Predictors {
		if p == name {
			return r.Coefficients[i], true
		}
	}
	return math.NaN(), false
}

// FitOLS regresses target on predictors over every row of t.
func FitOLS(t *dataset.Table, predictors []string, target string) (*OLSResult, error) {
	if len(predictors) == 0 {
		return nil, csErrors.NewValueError("FitOLS", "at least one predictor is required")
	}
	X, err := t.Matrix(predictors...)
	if err != nil {
		return nil, err
	}
	yv, err := t.Float(target)
	if err != nil {
		return nil, err
	}
	n, p := len(yv), len(predictors)
	y := mat.NewVecDense(n, yv)

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		return nil, err
	}
	pred, err := lr.Predict(X)
	if err != nil {
		return nil, err
	}
	fitted := mat.NewVecDense(n, mat.Col(nil, 0, pred))

	res := &OLSResult{
		Predictors:   append([]string(nil), predictors...),
		Target:       target,
		Intercept:    lr.GetIntercept(),
		Coefficients: lr.GetWeights(),
		Fitted:       mat.Col(nil, 0, fitted),
		Residuals:    make([]float64, n),
		N:            n,
		P:            p,
	}
	for i := range res.Residuals {
		res.Residuals[i] = yv[i] - res.Fitted[i]
	}

	res.R2, err = metrics.R2Score(y, fitted)
	if err != nil {
		if !csErrors.Is(err, csErrors.ErrDegenerateInput) {
			return nil, err
		}
		log.GetLoggerWithName("linear").Warn("R² undefined",
			log.ColumnKey, target,
			"reason", err.Error(),
		)
	}
	res.AdjR2 = metrics.AdjustedR2(res.R2, n, p)
	if res.RMSE, err = metrics.RMSE(y, fitted); err != nil {
		return nil, err
	}
	if res.MAE, err = metrics.MAE(y, fitted); err != nil {
		return nil, err
	}
	return res, nil
}
