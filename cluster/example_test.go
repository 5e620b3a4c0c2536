package cluster_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/coffeestats/cluster"
	"github.com/ezoic/coffeestats/dataset"
)

func ExampleKMeans() {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		10, 10,
		10, 11,
		11, 10,
	})

	km := cluster.NewKMeans(cluster.WithNClusters(2), cluster.WithRandomState(42))
	a, err := km.Fit(X)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("same cluster: %t\n", a.Labels[0] == a.Labels[2])
	fmt.Printf("split: %t\n", a.Labels[0] != a.Labels[3])
	fmt.Printf("inertia: %.4f\n", a.Inertia)

	// Output:
	// same cluster: true
	// split: true
	// inertia: 2.6667
}

func ExampleLabelClusters() {
	t := dataset.NewTable("years")
	_ = t.AppendNumeric("technology_index", []float64{1.2, 1.5, 7.4, 7.8, 4.4, 4.9})

	names, err := cluster.LabelClusters([]int{2, 2, 0, 0, 1, 1}, t, "technology_index",
		[]string{"Low", "Medium", "High"})
	if err != nil {
		fmt.Println(err)
		return
	}
	for id := 0; id < 3; id++ {
		fmt.Printf("cluster %d: %s\n", id, names[id])
	}

	// Output:
	// cluster 0: High
	// cluster 1: Medium
	// cluster 2: Low
}
