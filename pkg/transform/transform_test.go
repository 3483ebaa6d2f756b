package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cat-Zav/Music-Models/pkg/stats"
)

// rightSkewed is a fixed heavy-tailed sample, roughly exp(normal).
var rightSkewed = []float64{
	1.2, 0.8, 1.5, 2.1, 0.9, 1.1, 3.4, 0.7, 1.8, 2.6,
	5.2, 0.6, 1.3, 8.9, 1.0, 2.2, 14.7, 1.6, 0.9, 4.1,
	22.3, 1.4, 0.8, 2.9, 6.6,
}

func TestSelect_ReducesSkew(t *testing.T) {
	d, err := Select(rightSkewed, []Kind{Identity, Log, BoxCox, YeoJohnson})
	require.NoError(t, err)
	assert.NotEqual(t, Identity, d.Kind)

	before := math.Abs(stats.Skewness(rightSkewed))
	after := math.Abs(stats.Skewness(d.Apply(rightSkewed)))
	assert.Less(t, after, before)
}

func TestSelect_Deterministic(t *testing.T) {
	candidates := []Kind{Log, BoxCox, YeoJohnson}
	a, err := Select(rightSkewed, candidates)
	require.NoError(t, err)
	b, err := Select(rightSkewed, candidates)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSelect_NoCandidatesIsIdentity(t *testing.T) {
	d, err := Select(rightSkewed, nil)
	require.NoError(t, err)
	assert.Equal(t, Identity, d.Kind)
	assert.Equal(t, rightSkewed, d.Apply(rightSkewed))
}

func TestFit_LogShiftsNonpositive(t *testing.T) {
	xs := []float64{-3, 0, 1, 5}
	d, err := Fit(xs, Log)
	require.NoError(t, err)
	assert.Equal(t, 4.0, d.Shift)
	for _, v := range d.Apply(xs) {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
}

func TestApply_BelowFittedMinimumStaysFinite(t *testing.T) {
	train := []float64{0, 1, 2, 3, 4, 5}
	for _, kind := range []Kind{Log, BoxCox} {
		d, err := Fit(train, kind)
		require.NoError(t, err)
		// Values under the fitted minimum push the shifted argument out of
		// the positive domain; they must still map to a finite number.
		out := d.Apply([]float64{-2, -50, train[0]})
		for _, v := range out {
			require.False(t, math.IsNaN(v), "kind %s", kind)
			require.False(t, math.IsInf(v, 0), "kind %s", kind)
		}
		assert.LessOrEqual(t, out[0], out[2])
		assert.LessOrEqual(t, out[1], out[0])
	}
}

func TestFit_BoxCoxLambdaZeroIsLog(t *testing.T) {
	d := Descriptor{Kind: BoxCox, Lambda: 0, Shift: 0}
	xs := []float64{1, math.E, math.E * math.E}
	out := d.Apply(xs)
	assert.InDelta(t, 0, out[0], 1e-12)
	assert.InDelta(t, 1, out[1], 1e-12)
	assert.InDelta(t, 2, out[2], 1e-12)
}

func TestYeoJohnson_HandlesNegatives(t *testing.T) {
	xs := []float64{-10, -1, 0, 1, 10}
	d, err := Fit(xs, YeoJohnson)
	require.NoError(t, err)
	out := d.Apply(xs)
	for _, v := range out {
		require.False(t, math.IsNaN(v))
	}
	// Monotonicity is what makes the transform safe to reuse.
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i], out[i-1])
	}
}

func TestYeoJohnson_SpecialLambdas(t *testing.T) {
	// lambda=0 on the positive branch is log1p.
	assert.InDelta(t, math.Log1p(3), yeoJohnson(3, 0), 1e-12)
	// lambda=2 on the negative branch is -log1p(-x).
	assert.InDelta(t, -math.Log1p(2), yeoJohnson(-2, 2), 1e-12)
	// lambda=1 is a pure shift by zero: identity on x>=0.
	assert.InDelta(t, 5, yeoJohnson(5, 1), 1e-12)
}

func TestFit_EmptyColumn(t *testing.T) {
	_, err := Fit(nil, Log)
	assert.Error(t, err)
}

func TestFit_UnknownKind(t *testing.T) {
	_, err := Fit([]float64{1, 2}, Kind("sqrt"))
	assert.Error(t, err)
}
