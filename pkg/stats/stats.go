// Package stats provides the column statistics the preprocessing steps are
// built on. The heavy lifting is delegated to gonum; the wrappers exist so
// callers get the empty-slice behavior the pipeline relies on.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Std computes the population standard deviation of a slice.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// Variance computes the population variance of a slice. gonum reports the
// unbiased (n-1) estimator; the scalers need the population form so a
// constant column is detected exactly.
func Variance(x []float64) float64 {
	n := float64(len(x))
	if n < 2 {
		return 0
	}
	_, unbiased := stat.MeanVariance(x, nil)
	return unbiased * (n - 1) / n
}

// Median returns the median value of the slice (allocates a copy).
func Median(x []float64) float64 {
	return Quantile(x, 0.5)
}

// Quantile returns the p-th quantile (0 <= p <= 1), interpolating linearly
// between order statistics at rank p*(n-1).
func Quantile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 1 {
		return cp[n-1]
	}
	rank := p * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= n {
		return cp[lower]
	}
	weight := rank - float64(lower)
	return cp[lower]*(1-weight) + cp[upper]*weight
}

// Mode returns the most frequent value in the slice, breaking ties toward
// the value seen first.
func Mode(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	counts := make(map[float64]int)
	maxCount := 0
	mode := x[0]
	for _, v := range x {
		counts[v]++
		if counts[v] > maxCount {
			maxCount = counts[v]
			mode = v
		}
	}
	return mode
}

// Skewness returns the sample skewness of the slice, or 0 when it is
// undefined (fewer than three values or zero spread).
func Skewness(x []float64) float64 {
	if len(x) < 3 {
		return 0
	}
	s := stat.Skew(x, nil)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// MinMax returns the minimum and maximum values in the slice.
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	min, max := x[0], x[0]
	for _, v := range x[1:] {
		if v < min {
			min = v
		} else if v > max {
			max = v
		}
	}
	return min, max
}

// Correlation computes the Pearson correlation coefficient between two
// slices.
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
