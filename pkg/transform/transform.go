// Package transform implements the monotonic column transforms used to
// reduce skew before modeling: log, Box-Cox, and Yeo-Johnson, plus identity.
// A Descriptor captures the chosen family and its parameters so the same
// function can be reapplied to unseen data.
package transform

import (
	"math"

	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/stats"
)

// Kind names a transform family.
type Kind string

const (
	Identity   Kind = "identity"
	Log        Kind = "log"
	BoxCox     Kind = "boxcox"
	YeoJohnson Kind = "yeojohnson"
)

// lambdaGrid is the deterministic search grid for Box-Cox and Yeo-Johnson.
var lambdaGrid = func() []float64 {
	var g []float64
	for l := -2.0; l <= 2.0+1e-9; l += 0.1 {
		g = append(g, math.Round(l*10)/10)
	}
	return g
}()

// Descriptor is a fitted transform: kind plus the parameters that make it a
// well-defined, reapplicable function.
type Descriptor struct {
	Kind   Kind    `yaml:"kind"`
	Lambda float64 `yaml:"lambda"`
	Shift  float64 `yaml:"shift"`
}

// Apply transforms xs and returns a new slice.
func (d Descriptor) Apply(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = d.applyOne(v)
	}
	return out
}

// minDomain floors the shifted argument of log and Box-Cox. The shift is
// estimated on one sample, so reapplying the descriptor to unseen data can
// push the argument to zero or below; flooring keeps the function total,
// compressing the far-left tail instead of producing NaN.
const minDomain = 1e-8

func (d Descriptor) applyOne(v float64) float64 {
	switch d.Kind {
	case Log:
		return math.Log(math.Max(v+d.Shift, minDomain))
	case BoxCox:
		x := math.Max(v+d.Shift, minDomain)
		if d.Lambda == 0 {
			return math.Log(x)
		}
		return (math.Pow(x, d.Lambda) - 1) / d.Lambda
	case YeoJohnson:
		return yeoJohnson(v, d.Lambda)
	default:
		return v
	}
}

func yeoJohnson(x, lambda float64) float64 {
	if x >= 0 {
		if lambda == 0 {
			return math.Log1p(x)
		}
		return (math.Pow(x+1, lambda) - 1) / lambda
	}
	if lambda == 2 {
		return -math.Log1p(-x)
	}
	return -(math.Pow(1-x, 2-lambda) - 1) / (2 - lambda)
}

// positiveShift returns the offset that makes every value strictly positive,
// required by log and Box-Cox.
func positiveShift(xs []float64) float64 {
	min, _ := stats.MinMax(xs)
	if min > 0 {
		return 0
	}
	return 1 - min
}

// Fit estimates the parameters of a single family on xs. For Box-Cox and
// Yeo-Johnson the lambda grid is scanned for the transform whose output has
// the smallest absolute skewness; ties break toward the smaller lambda, so
// the result depends only on xs and the family.
func Fit(xs []float64, kind Kind) (Descriptor, error) {
	if len(xs) == 0 {
		return Descriptor{}, errors.New("transform: empty column")
	}
	switch kind {
	case Identity:
		return Descriptor{Kind: Identity}, nil
	case Log:
		return Descriptor{Kind: Log, Shift: positiveShift(xs)}, nil
	case BoxCox:
		shift := positiveShift(xs)
		best, bestScore := 1.0, math.Inf(1)
		for _, l := range lambdaGrid {
			d := Descriptor{Kind: BoxCox, Lambda: l, Shift: shift}
			score := math.Abs(stats.Skewness(d.Apply(xs)))
			if score < bestScore {
				best, bestScore = l, score
			}
		}
		return Descriptor{Kind: BoxCox, Lambda: best, Shift: shift}, nil
	case YeoJohnson:
		best, bestScore := 1.0, math.Inf(1)
		for _, l := range lambdaGrid {
			d := Descriptor{Kind: YeoJohnson, Lambda: l}
			score := math.Abs(stats.Skewness(d.Apply(xs)))
			if score < bestScore {
				best, bestScore = l, score
			}
		}
		return Descriptor{Kind: YeoJohnson, Lambda: best}, nil
	default:
		return Descriptor{}, errors.Errorf("transform: unknown kind %q", kind)
	}
}

// Select fits every candidate family on xs and returns the descriptor whose
// output is closest to symmetric (smallest absolute skewness). With no
// candidates the identity is returned. The choice depends only on xs and the
// candidate list, never on other columns or row order beyond the sample
// itself.
func Select(xs []float64, candidates []Kind) (Descriptor, error) {
	if len(candidates) == 0 {
		return Descriptor{Kind: Identity}, nil
	}
	best := Descriptor{Kind: Identity}
	bestScore := math.Inf(1)
	for _, kind := range candidates {
		d, err := Fit(xs, kind)
		if err != nil {
			return Descriptor{}, err
		}
		out := d.Apply(xs)
		if !finite(out) {
			continue
		}
		score := math.Abs(stats.Skewness(out))
		if score < bestScore {
			best, bestScore = d, score
		}
	}
	if math.IsInf(bestScore, 1) {
		return Descriptor{}, errors.New("transform: no candidate produced finite output")
	}
	return best, nil
}

func finite(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
