// sim/metrics_utils.go
package sim

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"
)

// Number is any integer or floating-point type the metric helpers accept.
type Number interface {
	constraints.Integer | constraints.Float
}

// CalculatePercentile is a util function that calculates the p-th percentile of a data list
// using linear interpolation between the two closest ranks. data need not be sorted.
// Returns 0 for an empty list.
func CalculatePercentile[T Number](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	for i, v := range data {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))

	if lowerIdx == upperIdx {
		return sorted[lowerIdx]
	}
	if upperIdx >= n {
		return sorted[n-1]
	}
	lowerVal := sorted[lowerIdx]
	upperVal := sorted[upperIdx]
	return lowerVal + (upperVal-lowerVal)*(rank-float64(lowerIdx))
}

// CalculateMean is a util function that calculates the mean of a data list
func CalculateMean[T Number](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	return stat.Mean(toFloat64s(numbers), nil)
}

// CalculateStdDev returns the sample standard deviation, 0 for fewer than two values.
func CalculateStdDev[T Number](numbers []T) float64 {
	if len(numbers) < 2 {
		return 0.0
	}
	return stat.StdDev(toFloat64s(numbers), nil)
}

func toFloat64s[T Number](numbers []T) []float64 {
	out := make([]float64, len(numbers))
	for i, v := range numbers {
		out[i] = float64(v)
	}
	return out
}
