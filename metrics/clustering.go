package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// Inertia is the sum of squared Euclidean distances from each row of X to the
// centroid of its cluster.
func Inertia(X mat.Matrix, labels []int, centroids mat.Matrix) (float64, error) {
	n, d := X.Dims()
	if len(labels) != n {
		return 0, csErrors.NewLengthMismatchError("Inertia", n, len(labels))
	}
	k, cd := centroids.Dims()
	if cd != d {
		return 0, csErrors.NewDimensionError("Inertia", d, cd, 1)
	}

	var total float64
	row := make([]float64, d)
	center := make([]float64, d)
	for i, l := range labels {
		if l < 0 || l >= k {
			return 0, csErrors.NewValueError("Inertia", "label out of range")
		}
		mat.Row(row, i, X)
		mat.Row(center, l, centroids)
		dist := floats.Distance(row, center, 2)
		total += dist * dist
	}
	return total, nil
}

// SilhouetteScore is the mean silhouette coefficient over all rows of X.
//
// For row i with mean intra-cluster distance a and smallest mean distance to
// another cluster b, s(i) = (b-a)/max(a, b). Rows in singleton clusters score 0.
// The score needs between 2 and n-1 distinct labels; otherwise it returns NaN and
// a DegenerateInputError.
func SilhouetteScore(X mat.Matrix, labels []int) (float64, error) {
	n, _ := X.Dims()
	if len(labels) != n {
		return math.NaN(), csErrors.NewLengthMismatchError("SilhouetteScore", n, len(labels))
	}

	ids := make(map[int]int)
	for _, l := range labels {
		if _, ok := ids[l]; !ok {
			ids[l] = len(ids)
		}
	}
	k := len(ids)
	if k < 2 || k > n-1 {
		return math.NaN(), csErrors.NewDegenerateInputError("SilhouetteScore",
			"number of labels must be between 2 and n_samples-1")
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}

	sizes := make([]int, k)
	for _, l := range labels {
		sizes[ids[l]]++
	}

	var total float64
	sums := make([]float64, k)
	for i := 0; i < n; i++ {
		own := ids[labels[i]]
		if sizes[own] == 1 {
			continue
		}
		for c := range sums {
			sums[c] = 0
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			sums[ids[labels[j]]] += floats.Distance(rows[i], rows[j], 2)
		}

		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own {
				continue
			}
			b = math.Min(b, sums[c]/float64(sizes[c]))
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n), nil
}
