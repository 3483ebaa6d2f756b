package dataprep

import (
	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/dataset"
	"github.com/Cat-Zav/Music-Models/pkg/stats"
)

// DegenerateColumnError reports a zero-variance column fed to the
// standardizer. Standardizing it would divide by zero; the caller recovers by
// excluding the column.
type DegenerateColumnError struct {
	Column string
}

func (e *DegenerateColumnError) Error() string {
	return "standardize: column " + e.Column + " has zero variance"
}

// Scaler standardizes numeric columns to zero mean and unit variance using
// parameters fitted from the training partition only. Applying the same
// fitted Scaler to both partitions is the leakage-prevention contract of the
// pipeline: the test set must never influence Mean or Std.
type Scaler struct {
	Columns []string
	Mean    map[string]float64
	Std     map[string]float64
}

// NewScaler returns an unfitted Scaler for the named columns.
func NewScaler(columns []string) *Scaler {
	return &Scaler{Columns: append([]string(nil), columns...)}
}

// Fit computes per-column mean and standard deviation from train. It fails
// with DegenerateColumnError on a constant column and leaves the Scaler
// unfitted in that case.
func (s *Scaler) Fit(train *dataset.Dataset) error {
	mean := make(map[string]float64, len(s.Columns))
	std := make(map[string]float64, len(s.Columns))
	for _, name := range s.Columns {
		col, err := train.Numeric(name)
		if err != nil {
			return errors.Wrap(err, "standardize")
		}
		vals := col.Values()
		sd := stats.Std(vals)
		if sd == 0 {
			return &DegenerateColumnError{Column: name}
		}
		mean[name] = stats.Mean(vals)
		std[name] = sd
	}
	s.Mean, s.Std = mean, std
	return nil
}

// Transform returns a copy of ds with each fitted column replaced by
// (v - mean) / std. Missing cells stay missing.
func (s *Scaler) Transform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if s.Mean == nil {
		return nil, errors.New("standardize: scaler not fitted")
	}
	out := ds.Clone()
	for _, name := range s.Columns {
		col, err := out.Numeric(name)
		if err != nil {
			return nil, errors.Wrap(err, "standardize")
		}
		m, sd := s.Mean[name], s.Std[name]
		for i := range col.Float {
			if col.Missing[i] {
				continue
			}
			col.Float[i] = (col.Float[i] - m) / sd
		}
	}
	return out, nil
}

// Inverse reconstructs original values via v*std + mean, undoing Transform
// within floating-point tolerance.
func (s *Scaler) Inverse(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if s.Mean == nil {
		return nil, errors.New("standardize: scaler not fitted")
	}
	out := ds.Clone()
	for _, name := range s.Columns {
		col, err := out.Numeric(name)
		if err != nil {
			return nil, errors.Wrap(err, "standardize")
		}
		m, sd := s.Mean[name], s.Std[name]
		for i := range col.Float {
			if col.Missing[i] {
				continue
			}
			col.Float[i] = col.Float[i]*sd + m
		}
	}
	return out, nil
}
