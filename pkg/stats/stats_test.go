package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanStd(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(xs), 1e-12)
	assert.InDelta(t, 2.0, Std(xs), 1e-12)
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Std([]float64{3}))
}

func TestMedianQuantile(t *testing.T) {
	assert.InDelta(t, 2.5, Median([]float64{1, 2, 3, 4}), 1e-12)
	assert.InDelta(t, 3.0, Median([]float64{1, 2, 3, 4, 5}), 1e-12)
	assert.InDelta(t, 1.0, Quantile([]float64{3, 1, 2}, 0), 1e-12)
	assert.InDelta(t, 3.0, Quantile([]float64{3, 1, 2}, 1), 1e-12)
}

func TestSkewness(t *testing.T) {
	assert.Equal(t, 0.0, Skewness([]float64{1, 2}))
	assert.InDelta(t, 0.0, Skewness([]float64{-2, -1, 0, 1, 2}), 1e-12)
	assert.Greater(t, Skewness([]float64{1, 1, 1, 2, 2, 3, 50}), 1.0)
}

func TestIQRBounds(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	low, high := IQRBounds(xs)
	require.Less(t, low, 1.0)
	require.Greater(t, high, 11.0)
	// Fences are symmetric for a symmetric sample.
	assert.InDelta(t, 12.0, low+high, 1e-9)
}

func TestClip_Idempotent(t *testing.T) {
	xs := []float64{-10, 0, 5, 10, 100}
	once := Clip(xs, 0, 10)
	twice := Clip(once, 0, 10)
	assert.Equal(t, once, twice)
	assert.Equal(t, []float64{0, 0, 5, 10, 10}, once)
	// Original untouched.
	assert.Equal(t, []float64{-10, 0, 5, 10, 100}, xs)
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	assert.InDelta(t, 1.0, Correlation(x, y), 1e-12)
	assert.Equal(t, 0.0, Correlation(x, []float64{1, 2}))
}
