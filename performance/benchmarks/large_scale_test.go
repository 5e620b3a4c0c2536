package benchmarks

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/cluster"
	"github.com/ezoic/coffeestats/dataset"
	"github.com/ezoic/coffeestats/linear"
	"github.com/ezoic/coffeestats/metrics"
	"github.com/ezoic/coffeestats/stats"
)

// blobs returns n rows spread around k well separated centres.
func blobs(n, features, k int) *mat.Dense {
	rng := rand.New(rand.NewPCG(42, 42))
	data := make([]float64, n*features)
	for i := 0; i < n; i++ {
		centre := float64(i%k) * 10
		for j := 0; j < features; j++ {
			data[i*features+j] = centre + rng.NormFloat64()
		}
	}
	return mat.NewDense(n, features, data)
}

func regressionTable(b *testing.B, n, p int) (*dataset.Table, []string) {
	b.Helper()
	rng := rand.New(rand.NewPCG(7, 7))
	t := dataset.NewTable("bench")
	y := make([]float64, n)
	names := make([]string, p)
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		for i := range col {
			col[i] = rng.Float64() * 100
			y[i] += float64(j+1) * col[i]
		}
		names[j] = fmt.Sprintf("x%d", j)
		if err := t.AppendNumeric(names[j], col); err != nil {
			b.Fatal(err)
		}
	}
	for i := range y {
		y[i] += rng.NormFloat64()
	}
	if err := t.AppendNumeric("y", y); err != nil {
		b.Fatal(err)
	}
	return t, names
}

// BenchmarkKMeansWorkers compares sequential and parallel restarts.
func BenchmarkKMeansWorkers(b *testing.B) {
	sizes := []struct {
		name     string
		samples  int
		features int
	}{
		{"1K_2", 1_000, 2},
		{"10K_4", 10_000, 4},
	}

	for _, size := range sizes {
		X := blobs(size.samples, size.features, 3)
		for _, workers := range []int{1, runtime.NumCPU()} {
			b.Run(fmt.Sprintf("%s/workers=%d", size.name, workers), func(b *testing.B) {
				b.ReportAllocs()
				km := cluster.NewKMeans(
					cluster.WithNClusters(3),
					cluster.WithNInit(10),
					cluster.WithRandomState(42),
					cluster.WithWorkers(workers),
				)
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := km.Fit(X); err != nil {
						b.Fatal(err)
					}
				}
				b.SetBytes(int64(size.samples * size.features * 8))
			})
		}
	}
}

func BenchmarkSelectK(b *testing.B) {
	X := blobs(500, 2, 3)
	kRange := []int{2, 3, 4, 5, 6, 7}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cluster.SelectK(X, kRange, cluster.WithNInit(5), cluster.WithRandomState(42)); err != nil {
			b.Fatal(err)
		}
	}
}

// Silhouette is quadratic in the number of rows.
func BenchmarkSilhouette(b *testing.B) {
	for _, n := range []int{100, 1_000, 5_000} {
		X := blobs(n, 2, 3)
		labels := make([]int, n)
		for i := range labels {
			labels[i] = i % 3
		}
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := metrics.SilhouetteScore(X, labels); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFitOLS(b *testing.B) {
	for _, size := range []struct{ n, p int }{{100, 2}, {10_000, 5}, {100_000, 10}} {
		t, names := regressionTable(b, size.n, size.p)
		b.Run(fmt.Sprintf("%d_%d", size.n, size.p), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := linear.FitOLS(t, names, "y"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkOneWayANOVA(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	groups := make([][]float64, 4)
	for g := range groups {
		groups[g] = make([]float64, 25_000)
		for i := range groups[g] {
			groups[g][i] = float64(g) + rng.NormFloat64()
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := stats.OneWayANOVA(groups...); err != nil {
			b.Fatal(err)
		}
	}
}
