package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// CorrelationResult is a Pearson coefficient with its two-sided p-value.
type CorrelationResult struct {
	R float64
	P float64
	N int
}

// PearsonCorrelation returns the Pearson coefficient of x and y and the
// two-sided p-value of the hypothesis r = 0 under a Student t with n-2 degrees
// of freedom. A zero-variance input gives R = P = NaN and a nil error.
func PearsonCorrelation(x, y []float64) (CorrelationResult, error) {
	res := CorrelationResult{R: math.NaN(), P: math.NaN(), N: len(x)}
	if len(x) != len(y) {
		return res, csErrors.NewLengthMismatchError("PearsonCorrelation", len(x), len(y))
	}
	if len(x) < 2 {
		return res, csErrors.NewInsufficientDataError("PearsonCorrelation", "correlation", 2, len(x))
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return res, nil
	}

	r := stat.Correlation(x, y, nil)
	res.R = math.Max(-1, math.Min(1, r))
	res.P = correlationPValue(res.R, len(x))
	return res, nil
}

func correlationPValue(r float64, n int) float64 {
	switch {
	case math.IsNaN(r):
		return math.NaN()
	case n == 2:
		return 1
	case math.Abs(r) == 1:
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	return 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))
}
