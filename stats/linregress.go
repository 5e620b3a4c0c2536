package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// LinRegressResult is a least-squares line y = Intercept + Slope*x.
type LinRegressResult struct {
	Slope          float64
	Intercept      float64
	R              float64
	P              float64
	StdErr         float64
	InterceptError float64
	N              int
}

// RSquared returns R².
func (r LinRegressResult) RSquared() float64 { return r.R * r.R }

// At evaluates the fitted line at x.
func (r LinRegressResult) At(x float64) float64 { return r.Intercept + r.Slope*x }

// LinRegress fits a simple linear regression of y on x. P is the two-sided
// p-value of a zero slope and StdErr the standard error of the slope.
// A constant y gives a flat line with R = 0 and P = 1; a constant x has no
// slope and yields a DegenerateInputError.
func LinRegress(x, y []float64) (LinRegressResult, error) {
	nan := math.NaN()
	res := LinRegressResult{Slope: nan, Intercept: nan, R: nan, P: nan, StdErr: nan, InterceptError: nan, N: len(x)}
	if len(x) != len(y) {
		return res, csErrors.NewLengthMismatchError("LinRegress", len(x), len(y))
	}
	n := len(x)
	if n < 2 {
		return res, csErrors.NewInsufficientDataError("LinRegress", "regression line", 2, n)
	}

	xMean, yMean := stat.Mean(x, nil), stat.Mean(y, nil)
	var sxx, syy float64
	for i := range x {
		sxx += (x[i] - xMean) * (x[i] - xMean)
		syy += (y[i] - yMean) * (y[i] - yMean)
	}
	if sxx == 0 {
		return res, csErrors.NewDegenerateInputError("LinRegress", "x has zero variance")
	}

	res.Intercept, res.Slope = stat.LinearRegression(x, y, nil, false)
	if syy == 0 {
		res.R = 0
	} else {
		res.R = math.Max(-1, math.Min(1, stat.Correlation(x, y, nil)))
	}
	res.P = correlationPValue(res.R, n)

	if n == 2 {
		res.StdErr, res.InterceptError = 0, 0
		return res, nil
	}
	var ssRes float64
	for i := range x {
		e := y[i] - res.At(x[i])
		ssRes += e * e
	}
	res.StdErr = math.Sqrt(ssRes / float64(n-2) / sxx)
	res.InterceptError = res.StdErr * math.Sqrt(sxx/float64(n)+xMean*xMean)
	return res, nil
}
