// Package dataprep implements the cleaning steps that run between ingestion
// and the train/test split: sentinel sanitizing, missingness reporting and
// handling, outlier capping, encoding, and standardization.
package dataprep

import (
	"math"

	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/dataset"
	"github.com/Cat-Zav/Music-Models/pkg/stats"
)

// SentinelRule declares the out-of-domain values of a column. A cell equal to
// one of Values, below Min, or above Max is converted to an explicit missing
// marker.
type SentinelRule struct {
	Values []float64 `yaml:"values" mapstructure:"values"`
	Min    *float64  `yaml:"min" mapstructure:"min"`
	Max    *float64  `yaml:"max" mapstructure:"max"`
}

func (r SentinelRule) matches(v float64) bool {
	for _, s := range r.Values {
		if v == s {
			return true
		}
	}
	if r.Min != nil && v < *r.Min {
		return true
	}
	if r.Max != nil && v > *r.Max {
		return true
	}
	return false
}

// SanitizeSentinels converts out-of-domain sentinel values to missing, in
// place. It returns the number of cells converted per column. Run this
// before ReportMissingness, or the report undercounts.
func SanitizeSentinels(ds *dataset.Dataset, rules map[string]SentinelRule) (map[string]int, error) {
	converted := make(map[string]int, len(rules))
	for name, rule := range rules {
		col, err := ds.Numeric(name)
		if err != nil {
			return nil, errors.Wrap(err, "sanitize sentinels")
		}
		n := 0
		for i, v := range col.Float {
			if col.Missing[i] {
				continue
			}
			if rule.matches(v) {
				col.SetMissing(i)
				n++
			}
		}
		converted[name] = n
	}
	return converted, nil
}

// labelAssociationTolerance bounds how far the label distribution of rows
// with missing features may drift from the complete rows before dropping
// them counts as hidden bias.
const labelAssociationTolerance = 0.10

// MissingReport summarizes missingness over the feature columns.
type MissingReport struct {
	ByColumn map[string]int
	RowCount []int // per-row count of missing feature cells

	AllMissingRows []int // rows missing every feature: always dropped
	PartialRows    []int // rows missing some but not all features
	CompleteRows   []int

	// Association is the divergence between the label distribution of rows
	// with missing features and that of complete rows. For a categorical
	// label it is the total variation distance; for a numeric label it is
	// the standardized mean difference.
	Association float64
	Associated  bool
}

// ReportMissingness counts missing cells per feature column and per row and
// checks whether missingness is associated with the label. Rows missing all
// features carry no signal and are marked for unconditional drop; whether
// partial rows may be dropped depends on the association check.
func ReportMissingness(ds *dataset.Dataset, features []string, label string) (*MissingReport, error) {
	cols := make([]*dataset.Column, len(features))
	for i, name := range features {
		c, err := ds.Column(name)
		if err != nil {
			return nil, errors.Wrap(err, "missingness report")
		}
		cols[i] = c
	}
	rep := &MissingReport{
		ByColumn: make(map[string]int, len(features)),
		RowCount: make([]int, ds.Len()),
	}
	for r := 0; r < ds.Len(); r++ {
		miss := 0
		for _, c := range cols {
			if c.Missing[r] {
				miss++
				rep.ByColumn[c.Name]++
			}
		}
		rep.RowCount[r] = miss
		switch {
		case miss == len(cols) && len(cols) > 0:
			rep.AllMissingRows = append(rep.AllMissingRows, r)
		case miss > 0:
			rep.PartialRows = append(rep.PartialRows, r)
		default:
			rep.CompleteRows = append(rep.CompleteRows, r)
		}
	}
	if label != "" && ds.Has(label) {
		missing := append(append([]int(nil), rep.AllMissingRows...), rep.PartialRows...)
		assoc, err := labelAssociation(ds, label, missing, rep.CompleteRows)
		if err != nil {
			return nil, err
		}
		rep.Association = assoc
		rep.Associated = assoc > labelAssociationTolerance
	}
	return rep, nil
}

func labelAssociation(ds *dataset.Dataset, label string, missing, complete []int) (float64, error) {
	if len(missing) == 0 || len(complete) == 0 {
		return 0, nil
	}
	col, err := ds.Column(label)
	if err != nil {
		return 0, err
	}
	if col.Type == dataset.Categorical {
		return totalVariation(col, missing, complete), nil
	}
	// Numeric label: standardized mean difference.
	a := values(col, missing)
	b := values(col, complete)
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	pooled := math.Sqrt((stats.Variance(a) + stats.Variance(b)) / 2)
	if pooled == 0 {
		return 0, nil
	}
	return math.Abs(stats.Mean(a)-stats.Mean(b)) / pooled, nil
}

func values(col *dataset.Column, rows []int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if !col.Missing[r] {
			out = append(out, col.Float[r])
		}
	}
	return out
}

func totalVariation(col *dataset.Column, a, b []int) float64 {
	dist := func(rows []int) map[string]float64 {
		counts := make(map[string]float64)
		n := 0.0
		for _, r := range rows {
			if col.Missing[r] {
				continue
			}
			counts[col.Str[r]]++
			n++
		}
		if n > 0 {
			for k := range counts {
				counts[k] /= n
			}
		}
		return counts
	}
	pa, pb := dist(a), dist(b)
	seen := make(map[string]struct{})
	tv := 0.0
	for k := range pa {
		seen[k] = struct{}{}
	}
	for k := range pb {
		seen[k] = struct{}{}
	}
	for k := range seen {
		tv += math.Abs(pa[k] - pb[k])
	}
	return tv / 2
}

// DropAllMissing removes the rows the report marked as missing on every
// feature and returns the reduced dataset plus the dropped count.
func DropAllMissing(ds *dataset.Dataset, rep *MissingReport) (*dataset.Dataset, int) {
	if len(rep.AllMissingRows) == 0 {
		return ds, 0
	}
	drop := make(map[int]struct{}, len(rep.AllMissingRows))
	for _, r := range rep.AllMissingRows {
		drop[r] = struct{}{}
	}
	keep := make([]int, 0, ds.Len()-len(drop))
	for r := 0; r < ds.Len(); r++ {
		if _, gone := drop[r]; !gone {
			keep = append(keep, r)
		}
	}
	return ds.Select(keep), len(drop)
}

// DropPartialMissing removes the rows with any missing feature cell. Callers
// must consult rep.Associated first: dropping rows whose missingness tracks
// the label biases the sample.
func DropPartialMissing(ds *dataset.Dataset, rep *MissingReport) (*dataset.Dataset, int) {
	if len(rep.PartialRows)+len(rep.AllMissingRows) == 0 {
		return ds, 0
	}
	keep := append([]int(nil), rep.CompleteRows...)
	return ds.Select(keep), ds.Len() - len(keep)
}
