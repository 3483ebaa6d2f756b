package model

import (
	"runtime"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// KNN is a k-nearest-neighbors model. In classification mode it majority
// votes over 0/1 labels; in regression mode it averages neighbor targets.
// Fitting just stores the training data.
type KNN struct {
	K          int
	Regression bool

	x [][]float64
	y []float64
}

// NewKNN creates a KNN classifier with k neighbors.
func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

// Fit stores the training data.
func (m *KNN) Fit(X [][]float64, y []float64) error {
	if len(X) != len(y) {
		return errors.New("knn: feature and label counts differ")
	}
	if len(X) == 0 {
		return errors.New("knn: empty training set")
	}
	if m.K < 1 {
		return errors.Errorf("knn: k must be positive, got %d", m.K)
	}
	m.x = X
	m.y = y
	return nil
}

// Predict scores each row against the stored training set, parallelized
// across CPU cores.
func (m *KNN) Predict(X [][]float64) []float64 {
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
				if m.Regression {
					out[i] = m.neighborMean(X[i])
				} else if m.neighborMean(X[i]) >= 0.5 {
					out[i] = 1
				}
			}
		}(s, e)
	}
	wg.Wait()
	return out
}

// PredictProba returns the fraction of positive neighbors for each row.
func (m *KNN) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, xi := range X {
		out[i] = m.neighborMean(xi)
	}
	return out
}

// neighborMean averages the targets of the K nearest training rows, keeping
// a small sorted window instead of sorting all distances.
func (m *KNN) neighborMean(xi []float64) float64 {
	type pair struct {
		d float64
		v float64
	}
	nbrs := make([]pair, 0, m.K+1)
	for j, xj := range m.x {
		d := sqDist(xi, xj)
		if len(nbrs) < m.K {
			nbrs = append(nbrs, pair{d, m.y[j]})
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		} else if d < nbrs[len(nbrs)-1].d {
			nbrs[len(nbrs)-1] = pair{d, m.y[j]}
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		}
	}
	sum := 0.0
	for _, p := range nbrs {
		sum += p.v
	}
	return sum / float64(len(nbrs))
}

// sqDist is the squared Euclidean distance; the square root is skipped since
// only the ordering matters.
func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
