package cluster

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/metrics"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
	"github.com/ezoic/coffeestats/pkg/log"
)

// KScore is the fit quality of one candidate number of clusters.
type KScore struct {
	K          int
	Inertia    float64
	Silhouette float64
}

// SelectK fits one KMeans per candidate k with the given options and reports
// inertia and silhouette for each. It is a diagnostic for picking k by the
// elbow or the silhouette peak; the chosen k is passed to NewKMeans explicitly.
func SelectK(X mat.Matrix, kRange []int, opts ...Option) ([]KScore, error) {
	return SelectKContext(context.Background(), X, kRange, opts...)
}

// SelectKContext is SelectK with cancellation.
func SelectKContext(ctx context.Context, X mat.Matrix, kRange []int, opts ...Option) ([]KScore, error) {
	if len(kRange) == 0 {
		return nil, csErrors.NewValueError("SelectK", "empty k range")
	}
	logger := log.GetLoggerWithName("cluster")

	scores := make([]KScore, 0, len(kRange))
	for _, k := range kRange {
		km := NewKMeans(append(append([]Option(nil), opts...), WithNClusters(k))...)
		a, err := km.FitContext(ctx, X)
		if err != nil {
			return nil, err
		}
		sil, err := metrics.SilhouetteScore(X, a.Labels)
		if err != nil {
			if !csErrors.Is(err, csErrors.ErrDegenerateInput) {
				return nil, err
			}
			sil = math.NaN()
		}
		scores = append(scores, KScore{K: k, Inertia: a.Inertia, Silhouette: sil})
		logger.Debug("Candidate scored",
			log.ClustersKey, k,
			log.InertiaKey, a.Inertia,
			"silhouette", sil,
		)
	}
	return scores, nil
}

// BestSilhouette returns the score with the highest silhouette, ignoring NaN.
// ok is false when every silhouette is NaN.
func BestSilhouette(scores []KScore) (best KScore, ok bool) {
	for _, s := range scores {
		if math.IsNaN(s.Silhouette) {
			continue
		}
		if !ok || s.Silhouette > best.Silhouette {
			best, ok = s, true
		}
	}
	return best, ok
}
