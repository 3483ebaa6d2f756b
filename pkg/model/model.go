// Package model contains the supervised models the pipeline delegates
// fitting to, plus the held-out evaluation metrics. Models consume row-major
// feature matrices; the pipeline standardizes features before fitting.
package model

// Model is a generic supervised learning interface.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Classifier additionally exposes probabilities. PredictProba returns p(y=1)
// for binary classifiers.
type Classifier interface {
	Model
	PredictProba(X [][]float64) []float64
}
