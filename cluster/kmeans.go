// Package cluster implements Lloyd's k-means, an advisory k selection sweep
// and ordinal labelling of the resulting clusters.
package cluster

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/core/model"
	"github.com/ezoic/coffeestats/core/parallel"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
	"github.com/ezoic/coffeestats/pkg/log"
)

// Initialization methods accepted by WithInit.
const (
	InitKMeansPlusPlus = "k-means++"
	InitRandom         = "random"
)

// Assignment is the outcome of one KMeans fit.
// Centroids holds one row per cluster and every centroid is the mean of the
// rows labelled with it.
type Assignment struct {
	Labels    []int
	Centroids *mat.Dense
	Inertia   float64
	NIter     int
	Restart   int
	Converged bool
}

// Sizes returns the number of rows in each cluster.
func (a *Assignment) Sizes() []int {
	k, _ := a.Centroids.Dims()
	sizes := make([]int, k)
	for _, l := range a.Labels {
		sizes[l]++
	}
	return sizes
}

// KMeans clusters rows of a matrix with Lloyd iterations.
//
// Each of the nInit restarts draws its own generator from (seed, restart), so
// the selected solution depends only on the seed and never on the number of
// workers used to run the restarts.
type KMeans struct {
	state  *model.StateManager
	logger log.Logger

	// Hyperparameters
	nClusters   int
	init        string
	nInit       int
	maxIter     int
	tol         float64
	randomState uint64
	workers     int

	// Learned parameters
	centroids *mat.Dense
	labels    []int
	inertia   float64
	nIter     int

	mu sync.RWMutex
}

// Option configures a KMeans.
type Option func(*KMeans)

// WithNClusters sets the number of clusters.
func WithNClusters(k int) Option {
	return func(km *KMeans) { km.nClusters = k }
}

// WithInit sets the initialization method, InitKMeansPlusPlus or InitRandom.
func WithInit(init string) Option {
	return func(km *KMeans) { km.init = init }
}

// WithNInit sets the number of restarts.
func WithNInit(n int) Option {
	return func(km *KMeans) { km.nInit = n }
}

// WithMaxIter sets the maximum number of Lloyd iterations per restart.
func WithMaxIter(n int) Option {
	return func(km *KMeans) { km.maxIter = n }
}

// WithTol sets the convergence tolerance, relative to the mean feature variance.
func WithTol(tol float64) Option {
	return func(km *KMeans) { km.tol = tol }
}

// WithRandomState sets the seed.
func WithRandomState(seed int64) Option {
	return func(km *KMeans) { km.randomState = uint64(seed) }
}

// WithWorkers bounds the number of restarts running at once. 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(km *KMeans) { km.workers = n }
}

// NewKMeans returns an unfitted KMeans with sklearn defaults
// (8 clusters, k-means++, 10 restarts, 300 iterations, tol 1e-4, seed 0).
func NewKMeans(options ...Option) *KMeans {
	km := &KMeans{
		nClusters: 8,
		init:      InitKMeansPlusPlus,
		nInit:     10,
		maxIter:   300,
		tol:       1e-4,
	}
	for _, opt := range options {
		opt(km)
	}

	km.state = model.NewStateManager()
	km.logger = log.GetLoggerWithName("cluster").With(
		log.ModelNameKey, "KMeans",
		log.ComponentKey, "cluster",
	)
	return km
}

// Fit clusters the rows of X.
func (km *KMeans) Fit(X mat.Matrix) (*Assignment, error) {
	return km.FitContext(context.Background(), X)
}

// FitContext is Fit with cancellation between iterations.
//
// Errors:
//   - InsufficientDataError: k < 1, k > rows, or fewer distinct rows than k
//   - ValueError: invalid nInit, maxIter, tol or init
func (km *KMeans) FitContext(ctx context.Context, X mat.Matrix) (_ *Assignment, err error) {
	defer csErrors.Recover(&err, "KMeans.Fit")

	km.mu.Lock()
	defer km.mu.Unlock()

	startTime := time.Now()
	n, d := X.Dims()
	k := km.nClusters

	if err := km.validate(n, d); err != nil {
		return nil, err
	}

	pts := make([][]float64, n)
	for i := range pts {
		pts[i] = mat.Row(nil, i, X)
	}
	if distinct := countDistinct(pts); distinct < k {
		return nil, csErrors.NewInsufficientDataError("KMeans.Fit", fmt.Sprintf("%d clusters over distinct rows", k), k, distinct)
	}

	km.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, d,
		log.ClustersKey, k,
	)

	tol := km.tol * meanVariance(pts)
	runs := make([]*Assignment, km.nInit)
	err = parallel.Do(ctx, km.nInit, km.workers, func(ctx context.Context, restart int) error {
		a, err := km.lloyd(ctx, pts, restart, tol)
		if err != nil {
			return err
		}
		runs[restart] = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	best := runs[0]
	for _, a := range runs[1:] {
		if a.Inertia < best.Inertia {
			best = a
		}
	}

	km.centroids = mat.DenseCopyOf(best.Centroids)
	km.labels = append([]int(nil), best.Labels...)
	km.inertia = best.Inertia
	km.nIter = best.NIter
	km.state.SetDimensions(d, n)
	km.state.SetFitted()

	if !best.Converged {
		km.logger.Warn("Best restart did not converge",
			log.RestartKey, best.Restart,
			log.IterKey, best.NIter,
		)
	}
	km.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.RestartKey, best.Restart,
		log.IterKey, best.NIter,
		log.InertiaKey, best.Inertia,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)
	return best, nil
}

func (km *KMeans) validate(n, d int) error {
	k := km.nClusters
	switch {
	case n == 0 || d == 0:
		return csErrors.NewModelError("KMeans.Fit", "empty data", csErrors.ErrEmptyData)
	case k < 1:
		return csErrors.NewInsufficientDataError("KMeans.Fit", "clustering", 1, k)
	case k > n:
		return csErrors.NewInsufficientDataError("KMeans.Fit", fmt.Sprintf("%d clusters", k), k, n)
	case km.nInit < 1:
		return csErrors.NewValidationError("n_init", "must be at least 1", km.nInit)
	case km.maxIter < 1:
		return csErrors.NewValidationError("max_iter", "must be at least 1", km.maxIter)
	case km.tol < 0 || math.IsNaN(km.tol):
		return csErrors.NewValidationError("tol", "must be non-negative", km.tol)
	case km.init != InitKMeansPlusPlus && km.init != InitRandom:
		return csErrors.NewValidationError("init", "must be k-means++ or random", km.init)
	}
	return nil
}

// lloyd runs one restart. Each iteration assigns every row to its nearest
// centroid (ties to the lowest index), refills empty clusters, and moves each
// centroid to the mean of its rows. It stops when no label changes, when the
// total squared centroid shift is at most tol, or after maxIter iterations.
func (km *KMeans) lloyd(ctx context.Context, pts [][]float64, restart int, tol float64) (*Assignment, error) {
	k, d := km.nClusters, len(pts[0])
	rng := rand.New(rand.NewPCG(km.randomState, uint64(restart)))

	var centers [][]float64
	if km.init == InitRandom {
		centers = initRandom(pts, k, rng)
	} else {
		centers = initPlusPlus(pts, k, rng)
	}

	labels := make([]int, len(pts))
	for i := range labels {
		labels[i] = -1
	}

	a := &Assignment{Restart: restart}
	for iter := 1; iter <= km.maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.NIter = iter

		changed := assign(pts, centers, labels)
		moved, err := fillEmpty(pts, centers, labels, k)
		if err != nil {
			return nil, err
		}
		changed += moved
		if iter > 1 && changed == 0 {
			a.Converged = true
			break
		}

		next := means(pts, labels, k, d)
		var shift float64
		for c := range next {
			dist := floats.Distance(next[c], centers[c], 2)
			shift += dist * dist
		}
		centers = next
		if shift <= tol {
			a.Converged = true
			break
		}
	}

	a.Labels = labels
	a.Centroids = mat.NewDense(k, d, nil)
	for c, center := range centers {
		a.Centroids.SetRow(c, center)
	}
	for i, p := range pts {
		dist := floats.Distance(p, centers[labels[i]], 2)
		a.Inertia += dist * dist
	}
	return a, nil
}

// assign labels every row with its nearest center and returns how many labels changed.
func assign(pts, centers [][]float64, labels []int) int {
	changed := 0
	for i, p := range pts {
		if l := nearest(p, centers); l != labels[i] {
			labels[i] = l
			changed++
		}
	}
	return changed
}

// fillEmpty moves, for every empty cluster, the row farthest from its own center
// into it. Only rows whose cluster keeps at least one other member are eligible.
func fillEmpty(pts, centers [][]float64, labels []int, k int) (int, error) {
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}

	moved := 0
	for c := 0; c < k; c++ {
		if sizes[c] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, p := range pts {
			if sizes[labels[i]] < 2 {
				continue
			}
			if dist := floats.Distance(p, centers[labels[i]], 2); dist > farDist {
				far, farDist = i, dist
			}
		}
		if far < 0 {
			return moved, csErrors.NewInsufficientDataError("KMeans.Fit", "refilling an empty cluster", k+1, len(pts))
		}
		sizes[labels[far]]--
		sizes[c]++
		labels[far] = c
		centers[c] = append([]float64(nil), pts[far]...)
		moved++
	}
	return moved, nil
}

func means(pts [][]float64, labels []int, k, d int) [][]float64 {
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, d)
	}
	counts := make([]float64, k)
	for i, p := range pts {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}
	for c := range sums {
		floats.Scale(1/counts[c], sums[c])
	}
	return sums
}

func nearest(p []float64, centers [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if dist := floats.Distance(p, center, 2); dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}

// initRandom picks k distinct rows.
func initRandom(pts [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, k)
	for c, idx := range rng.Perm(len(pts))[:k] {
		centers[c] = append([]float64(nil), pts[idx]...)
	}
	return centers
}

// initPlusPlus performs k-means++ seeding: the first center is a uniform row,
// each next one a row drawn with probability proportional to its squared
// distance from the nearest chosen center.
func initPlusPlus(pts [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(pts)
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), pts[rng.IntN(n)]...))

	d2 := make([]float64, n)
	for i, p := range pts {
		dist := floats.Distance(p, centers[0], 2)
		d2[i] = dist * dist
	}

	for len(centers) < k {
		total := floats.Sum(d2)
		target := rng.Float64() * total
		selected, cum := -1, 0.0
		for i, w := range d2 {
			if w == 0 {
				continue
			}
			selected = i
			cum += w
			if cum > target {
				break
			}
		}
		if selected < 0 {
			// every row coincides with a center; countDistinct rules this out
			selected = rng.IntN(n)
		}

		center := append([]float64(nil), pts[selected]...)
		centers = append(centers, center)
		for i, p := range pts {
			dist := floats.Distance(p, center, 2)
			d2[i] = math.Min(d2[i], dist*dist)
		}
	}
	return centers
}

func countDistinct(pts [][]float64) int {
	seen := make(map[string]struct{}, len(pts))
	for _, p := range pts {
		key := make([]byte, 0, 8*len(p))
		for _, v := range p {
			bits := math.Float64bits(v + 0) // fold -0 into 0
			for s := 0; s < 64; s += 8 {
				key = append(key, byte(bits>>s))
			}
		}
		seen[string(key)] = struct{}{}
	}
	return len(seen)
}

// meanVariance is the mean population variance of the columns.
func meanVariance(pts [][]float64) float64 {
	n, d := float64(len(pts)), len(pts[0])
	var total float64
	col := make([]float64, len(pts))
	for j := 0; j < d; j++ {
		for i, p := range pts {
			col[i] = p[j]
		}
		mean := floats.Sum(col) / n
		for _, v := range col {
			total += (v - mean) * (v - mean)
		}
	}
	return total / n / float64(d)
}

// Predict returns the nearest centroid for each row of X.
func (km *KMeans) Predict(X mat.Matrix) ([]int, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if err := km.checkFitted(X, "Predict"); err != nil {
		return nil, err
	}
	centers := km.centerRows()
	rows, _ := X.Dims()
	labels := make([]int, rows)
	for i := range labels {
		labels[i] = nearest(mat.Row(nil, i, X), centers)
	}
	return labels, nil
}

// Transform returns the Euclidean distance from each row of X to every centroid.
func (km *KMeans) Transform(X mat.Matrix) (*mat.Dense, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if err := km.checkFitted(X, "Transform"); err != nil {
		return nil, err
	}
	centers := km.centerRows()
	rows, _ := X.Dims()
	distances := mat.NewDense(rows, len(centers), nil)
	for i := 0; i < rows; i++ {
		row := mat.Row(nil, i, X)
		for c, center := range centers {
			distances.Set(i, c, floats.Distance(row, center, 2))
		}
	}
	return distances, nil
}

func (km *KMeans) checkFitted(X mat.Matrix, method string) error {
	if !km.state.IsFitted() {
		return csErrors.NewNotFittedError("KMeans", method)
	}
	if _, cols := X.Dims(); cols != km.state.NFeatures() {
		return csErrors.NewDimensionError("KMeans."+method, km.state.NFeatures(), cols, 1)
	}
	return nil
}

func (km *KMeans) centerRows() [][]float64 {
	k, _ := km.centroids.Dims()
	centers := make([][]float64, k)
	for c := range centers {
		centers[c] = mat.Row(nil, c, km.centroids)
	}
	return centers
}

// Centroids returns a copy of the learned centroids, or nil before Fit.
func (km *KMeans) Centroids() *mat.Dense {
	km.mu.RLock()
	defer km.mu.RUnlock()
	if km.centroids == nil {
		return nil
	}
	return mat.DenseCopyOf(km.centroids)
}

// Labels returns the training labels, or nil before Fit.
func (km *KMeans) Labels() []int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	if km.labels == nil {
		return nil
	}
	return append([]int(nil), km.labels...)
}

// Inertia returns the within-cluster sum of squared distances of the fit.
func (km *KMeans) Inertia() float64 {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.inertia
}

// NIterations returns the number of iterations of the selected restart.
func (km *KMeans) NIterations() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.nIter
}

// IsFitted reports whether Fit has succeeded.
func (km *KMeans) IsFitted() bool {
	return km.state.IsFitted()
}
