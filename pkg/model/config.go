package model

import "github.com/pkg/errors"

// Kind names a model family.
type Kind string

const (
	KindLogistic Kind = "logistic"
	KindKNN      Kind = "knn"
	KindLasso    Kind = "lasso"
)

// Config is the explicit, enumerated model configuration. Every knob a fit
// depends on lives here; nothing is read from globals.
type Config struct {
	Kind Kind `yaml:"kind" mapstructure:"kind"`

	// KNN. Regression switches it from majority vote to neighbor-mean
	// prediction over a continuous target; lasso is always regression and
	// logistic never is.
	K          int  `yaml:"k" mapstructure:"k"`
	Regression bool `yaml:"regression" mapstructure:"regression"`

	// Logistic regression
	LearningRate float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	Epochs       int     `yaml:"epochs" mapstructure:"epochs"`
	Threshold    float64 `yaml:"threshold" mapstructure:"threshold"`

	// Lasso: a single alpha, or a grid searched by k-fold CV.
	Alpha  float64   `yaml:"alpha" mapstructure:"alpha"`
	Alphas []float64 `yaml:"alphas" mapstructure:"alphas"`
	Folds  int       `yaml:"folds" mapstructure:"folds"`
	Seed   int64     `yaml:"seed" mapstructure:"seed"`
}

// IsRegression reports whether the configured model predicts a continuous
// target.
func (c Config) IsRegression() bool {
	return c.Kind == KindLasso || (c.Kind == KindKNN && c.Regression)
}

// Build constructs the configured model.
func (c Config) Build() (Model, error) {
	switch c.Kind {
	case KindLogistic:
		if c.Regression {
			return nil, errors.New("model: logistic is a classifier; regression needs knn or lasso")
		}
		lr := c.LearningRate
		if lr <= 0 {
			lr = 0.1
		}
		epochs := c.Epochs
		if epochs <= 0 {
			epochs = 500
		}
		return NewLogisticRegression(lr, epochs, c.Threshold), nil
	case KindKNN:
		k := c.K
		if k <= 0 {
			k = 5
		}
		m := NewKNN(k)
		m.Regression = c.Regression
		return m, nil
	case KindLasso:
		if len(c.Alphas) > 0 {
			if c.Folds < 2 {
				return nil, errors.Errorf("model: lasso alpha grid needs folds >= 2, got %d", c.Folds)
			}
			return NewLassoCV(c.Alphas, c.Folds, c.Seed), nil
		}
		if c.Alpha <= 0 {
			return nil, errors.New("model: lasso needs alpha > 0 or an alpha grid")
		}
		return NewLasso(c.Alpha), nil
	default:
		return nil, errors.Errorf("model: unknown kind %q", c.Kind)
	}
}
