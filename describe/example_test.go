package describe_test

import (
	"fmt"

	"github.com/ezoic/coffeestats/describe"
)

func ExampleSummarizeValues() {
	productivity := []float64{1350, 1410, 1490, 1560, 1650}

	s := describe.SummarizeValues(productivity)
	fmt.Printf("count=%d mean=%.2f std=%.2f min=%.0f max=%.0f\n", s.Count, s.Mean, s.Std, s.Min, s.Max)

	// Output: count=5 mean=1492.00 std=118.83 min=1350 max=1650
}
