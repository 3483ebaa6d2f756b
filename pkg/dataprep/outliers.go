package dataprep

import (
	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/dataset"
	"github.com/Cat-Zav/Music-Models/pkg/stats"
)

// Bounds is an explicit Winsorizing interval for a column. A nil side means
// derive it from the IQR fences.
type Bounds struct {
	Low  *float64 `yaml:"low" mapstructure:"low"`
	High *float64 `yaml:"high" mapstructure:"high"`
}

// CapOutliers clips a numeric column into [low, high], in place, skipping
// missing cells. Unset bounds default to the Tukey fences of the non-missing
// values. The applied bounds are returned; reapplying them is a no-op.
func CapOutliers(ds *dataset.Dataset, column string, b Bounds) (low, high float64, err error) {
	col, err := ds.Numeric(column)
	if err != nil {
		return 0, 0, errors.Wrap(err, "cap outliers")
	}
	fenceLow, fenceHigh := stats.IQRBounds(col.Values())
	low, high = fenceLow, fenceHigh
	if b.Low != nil {
		low = *b.Low
	}
	if b.High != nil {
		high = *b.High
	}
	if low > high {
		return 0, 0, errors.Errorf("cap outliers: column %q bounds inverted (%g > %g)", column, low, high)
	}
	for i, v := range col.Float {
		if col.Missing[i] {
			continue
		}
		if v < low {
			col.Float[i] = low
		} else if v > high {
			col.Float[i] = high
		}
	}
	return low, high, nil
}
