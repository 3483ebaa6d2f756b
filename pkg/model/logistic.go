package model

import (
	"math"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// LogisticRegression is a binary classifier trained by full-batch gradient
// descent on the cross-entropy loss. Labels must be 0/1. Weights start at
// zero, so for a fixed input the fit is deterministic.
type LogisticRegression struct {
	W []float64
	B float64

	Lr        float64
	Epochs    int
	Threshold float64
}

// NewLogisticRegression returns an untrained model with the given
// hyperparameters. A non-positive threshold defaults to 0.5.
func NewLogisticRegression(lr float64, epochs int, threshold float64) *LogisticRegression {
	if threshold <= 0 {
		threshold = 0.5
	}
	return &LogisticRegression{Lr: lr, Epochs: epochs, Threshold: threshold}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Fit trains the model on (X, y).
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("logistic: empty training set")
	}
	if len(X) != len(y) {
		return errors.New("logistic: feature and label counts differ")
	}
	nFeatures := len(X[0])
	m.W = make([]float64, nFeatures)
	m.B = 0
	n := float64(len(X))
	for ep := 0; ep < m.Epochs; ep++ {
		gW := make([]float64, nFeatures)
		gB := 0.0
		for i, row := range X {
			if len(row) != nFeatures {
				return errors.Errorf("logistic: row %d has %d features, want %d", i, len(row), nFeatures)
			}
			z := m.B
			for j, v := range row {
				z += m.W[j] * v
			}
			d := sigmoid(z) - y[i]
			for j, v := range row {
				gW[j] += d * v
			}
			gB += d
		}
		for j := range m.W {
			m.W[j] -= m.Lr * gW[j] / n
		}
		m.B -= m.Lr * gB / n
	}
	return nil
}

// PredictProba returns p(y=1) for each row, computed in parallel across CPU
// cores.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	out := make([]float64, len(X))
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	chunk := (len(X) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		s, e := w*chunk, (w+1)*chunk
		if e > len(X) {
			e = len(X)
		}
		if s >= e {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				z := m.B
				for j, v := range X[i] {
					z += m.W[j] * v
				}
				out[i] = sigmoid(z)
			}
		}(s, e)
	}
	wg.Wait()
	return out
}

// Predict thresholds PredictProba into 0/1 labels.
func (m *LogisticRegression) Predict(X [][]float64) []float64 {
	proba := m.PredictProba(X)
	out := make([]float64, len(proba))
	for i, p := range proba {
		if p >= m.Threshold {
			out[i] = 1
		}
	}
	return out
}
