package model

import (
	"math"

	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/split"
)

// Lasso is L1-regularized linear regression fitted by cyclic coordinate
// descent with soft thresholding. Features are expected to be standardized;
// the intercept is the target mean and is never penalized.
type Lasso struct {
	Alpha float64
	Iters int
	Tol   float64

	W []float64
	B float64
}

// NewLasso returns an untrained Lasso with regularization strength alpha.
func NewLasso(alpha float64) *Lasso {
	return &Lasso{Alpha: alpha, Iters: 1000, Tol: 1e-6}
}

// Fit runs coordinate descent until the largest coefficient update falls
// below Tol or Iters sweeps complete.
func (m *Lasso) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("lasso: empty training set")
	}
	if len(X) != len(y) {
		return errors.New("lasso: feature and label counts differ")
	}
	n := len(X)
	p := len(X[0])
	m.W = make([]float64, p)
	m.B = 0
	for _, v := range y {
		m.B += v
	}
	m.B /= float64(n)

	// Residuals start at y centered on the intercept.
	resid := make([]float64, n)
	for i := range y {
		resid[i] = y[i] - m.B
	}
	colSq := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			colSq[j] += X[i][j] * X[i][j]
		}
	}
	for it := 0; it < m.Iters; it++ {
		maxDelta := 0.0
		for j := 0; j < p; j++ {
			if colSq[j] == 0 {
				continue
			}
			// rho is the correlation of feature j with the residual plus
			// its own current contribution.
			rho := 0.0
			for i := 0; i < n; i++ {
				rho += X[i][j] * (resid[i] + X[i][j]*m.W[j])
			}
			wNew := softThreshold(rho, m.Alpha*float64(n)) / colSq[j]
			delta := wNew - m.W[j]
			if delta != 0 {
				for i := 0; i < n; i++ {
					resid[i] -= delta * X[i][j]
				}
				m.W[j] = wNew
			}
			if math.Abs(delta) > maxDelta {
				maxDelta = math.Abs(delta)
			}
		}
		if maxDelta < m.Tol {
			break
		}
	}
	return nil
}

func softThreshold(z, gamma float64) float64 {
	switch {
	case z > gamma:
		return z - gamma
	case z < -gamma:
		return z + gamma
	default:
		return 0
	}
}

// Predict returns the linear predictions for rows in X.
func (m *Lasso) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		s := m.B
		for j, v := range row {
			s += m.W[j] * v
		}
		out[i] = s
	}
	return out
}

// LassoCV selects the regularization strength by k-fold cross-validation
// over an explicit alpha grid, then refits on the full training set. Folds
// is an exact fold count: Folds == n degenerates to leave-one-out, Folds < 2
// is rejected.
type LassoCV struct {
	Alphas []float64
	Folds  int
	Seed   int64

	Best  float64
	Inner *Lasso
}

// NewLassoCV returns an untrained cross-validated Lasso.
func NewLassoCV(alphas []float64, folds int, seed int64) *LassoCV {
	return &LassoCV{Alphas: alphas, Folds: folds, Seed: seed}
}

// Fit scores every alpha by mean validation MSE across the folds, picks the
// best (ties toward the larger alpha, i.e. the sparser model), and refits.
func (m *LassoCV) Fit(X [][]float64, y []float64) error {
	if len(m.Alphas) == 0 {
		return errors.New("lasso cv: empty alpha grid")
	}
	folds, err := split.KFold(len(X), m.Folds, m.Seed)
	if err != nil {
		return errors.Wrap(err, "lasso cv")
	}
	bestAlpha, bestScore := 0.0, math.Inf(1)
	for _, alpha := range m.Alphas {
		score := 0.0
		for _, holdout := range folds {
			trX, trY, vaX, vaY := partition(X, y, holdout)
			l := NewLasso(alpha)
			if err := l.Fit(trX, trY); err != nil {
				return err
			}
			score += MSE(vaY, l.Predict(vaX))
		}
		score /= float64(len(folds))
		if score < bestScore || (score == bestScore && alpha > bestAlpha) {
			bestAlpha, bestScore = alpha, score
		}
	}
	m.Best = bestAlpha
	m.Inner = NewLasso(bestAlpha)
	return m.Inner.Fit(X, y)
}

// Predict delegates to the refitted inner model.
func (m *LassoCV) Predict(X [][]float64) []float64 {
	if m.Inner == nil {
		return make([]float64, len(X))
	}
	return m.Inner.Predict(X)
}

func partition(X [][]float64, y []float64, holdout []int) (trX [][]float64, trY []float64, vaX [][]float64, vaY []float64) {
	hold := make(map[int]struct{}, len(holdout))
	for _, i := range holdout {
		hold[i] = struct{}{}
	}
	for i := range X {
		if _, out := hold[i]; out {
			vaX = append(vaX, X[i])
			vaY = append(vaY, y[i])
		} else {
			trX = append(trX, X[i])
			trY = append(trY, y[i])
		}
	}
	return
}
