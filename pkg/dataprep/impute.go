package dataprep

import (
	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/dataset"
	"github.com/Cat-Zav/Music-Models/pkg/stats"
)

// ImputeMean replaces missing cells of a numeric column with the column mean
// of the non-missing cells, in place.
func ImputeMean(ds *dataset.Dataset, column string) error {
	return imputeNumeric(ds, column, stats.Mean)
}

// ImputeMedian replaces missing cells of a numeric column with the column
// median, in place. Preferred over the mean for skewed columns.
func ImputeMedian(ds *dataset.Dataset, column string) error {
	return imputeNumeric(ds, column, stats.Median)
}

// ImputeConstant replaces missing cells of a numeric column with a fixed
// value, in place.
func ImputeConstant(ds *dataset.Dataset, column string, value float64) error {
	return imputeNumeric(ds, column, func([]float64) float64 { return value })
}

func imputeNumeric(ds *dataset.Dataset, column string, fill func([]float64) float64) error {
	col, err := ds.Numeric(column)
	if err != nil {
		return errors.Wrap(err, "impute")
	}
	v := fill(col.Values())
	for i := range col.Float {
		if col.Missing[i] {
			col.Float[i] = v
			col.Missing[i] = false
		}
	}
	return nil
}

// ImputeMode replaces missing cells of a categorical column with its most
// frequent value, in place. Ties break toward the value seen first.
func ImputeMode(ds *dataset.Dataset, column string) error {
	col, err := ds.Column(column)
	if err != nil {
		return errors.Wrap(err, "impute")
	}
	if col.Type != dataset.Categorical {
		return errors.Errorf("impute: column %q is numeric, mode imputation is categorical", column)
	}
	counts := make(map[string]int)
	best, bestN := "", 0
	for i, s := range col.Str {
		if col.Missing[i] {
			continue
		}
		counts[s]++
		if counts[s] > bestN {
			best, bestN = s, counts[s]
		}
	}
	for i := range col.Str {
		if col.Missing[i] {
			col.Str[i] = best
			col.Missing[i] = false
		}
	}
	return nil
}
