package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/ezoic/coffeestats/dataset"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// LabelClusters names clusters by the ordering of a reference column.
//
// Cluster ids are sorted by the mean of referenceColumn over their rows,
// ascending, ties kept in id order, and zipped with ordinalLabels. Labels are
// ids 0..k-1 with k = len(ordinalLabels); every id must be used. The result is
// a bijection from ids to names.
func LabelClusters(labels []int, t *dataset.Table, referenceColumn string, ordinalLabels []string) (map[int]string, error) {
	if len(labels) != t.NRows() {
		return nil, csErrors.NewLengthMismatchError("LabelClusters", len(labels), t.NRows())
	}
	ref, err := t.Float(referenceColumn)
	if err != nil {
		return nil, err
	}

	k := len(ordinalLabels)
	if k == 0 {
		return nil, csErrors.NewValueError("LabelClusters", "no ordinal labels")
	}
	seen := make(map[string]bool, k)
	for _, name := range ordinalLabels {
		if seen[name] {
			return nil, csErrors.NewValueError("LabelClusters", fmt.Sprintf("duplicate ordinal label %q", name))
		}
		seen[name] = true
	}

	sums := make([]float64, k)
	counts := make([]int, k)
	valid := make([]int, k)
	maxID := -1
	for i, l := range labels {
		if l < 0 {
			return nil, csErrors.NewValueError("LabelClusters", fmt.Sprintf("negative cluster id %d", l))
		}
		maxID = max(maxID, l)
		if l >= k {
			continue
		}
		counts[l]++
		if !math.IsNaN(ref[i]) {
			sums[l] += ref[i]
			valid[l]++
		}
	}
	if maxID+1 != k {
		return nil, csErrors.NewValueError("LabelClusters",
			fmt.Sprintf("%d ordinal labels for %d clusters", k, maxID+1))
	}
	means := make([]float64, k)
	for c := range counts {
		if counts[c] == 0 {
			return nil, csErrors.NewValueError("LabelClusters", fmt.Sprintf("cluster %d has no rows", c))
		}
		if valid[c] == 0 {
			return nil, csErrors.NewValueError("LabelClusters",
				fmt.Sprintf("cluster %d has no %s values", c, referenceColumn))
		}
		means[c] = sums[c] / float64(valid[c])
	}

	ids := make([]int, k)
	for c := range ids {
		ids[c] = c
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return means[ids[a]] < means[ids[b]]
	})

	names := make(map[int]string, k)
	for rank, id := range ids {
		names[id] = ordinalLabels[rank]
	}
	return names, nil
}

// Annotate appends the cluster id as a numeric column and its name as a
// categorical column to t.
func Annotate(t *dataset.Table, labels []int, names map[int]string, idColumn, labelColumn string) error {
	ids := make([]float64, len(labels))
	text := make([]string, len(labels))
	for i, l := range labels {
		ids[i] = float64(l)
		text[i] = names[l]
	}
	if err := t.AppendNumeric(idColumn, ids); err != nil {
		return err
	}
	return t.AppendCategorical(labelColumn, text)
}
