package dataprep

import (
	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/dataset"
)

// LabelEncode encodes categories as integers in first-seen order.
func LabelEncode(data []string) ([]int, map[string]int) {
	unique := map[string]int{}
	out := make([]int, len(data))
	for i, v := range data {
		if _, ok := unique[v]; !ok {
			unique[v] = len(unique)
		}
		out[i] = unique[v]
	}
	return out, unique
}

// OneHotEncode one-hot encodes a slice of string categories.
func OneHotEncode(data []string) ([][]float64, map[string]int) {
	unique := map[string]int{}
	for _, v := range data {
		if _, ok := unique[v]; !ok {
			unique[v] = len(unique)
		}
	}
	out := make([][]float64, len(data))
	for i, v := range data {
		vec := make([]float64, len(unique))
		vec[unique[v]] = 1
		out[i] = vec
	}
	return out, unique
}

// FrequencyEncode encodes categories by their relative frequency.
func FrequencyEncode(data []string) ([]float64, map[string]float64) {
	counts := map[string]float64{}
	for _, v := range data {
		counts[v]++
	}
	freqs := make(map[string]float64, len(counts))
	out := make([]float64, len(data))
	for k, c := range counts {
		freqs[k] = c / float64(len(data))
	}
	for i, v := range data {
		out[i] = freqs[v]
	}
	return out, freqs
}

// Bucketize maps raw category values to coarser buckets through a declarative
// table, in place. Unmapped values land in fallback. This replaces chained
// string comparisons with a single lookup.
func Bucketize(ds *dataset.Dataset, column string, mapping map[string]string, fallback string) error {
	col, err := ds.Column(column)
	if err != nil {
		return errors.Wrap(err, "bucketize")
	}
	if col.Type != dataset.Categorical {
		return errors.Errorf("bucketize: column %q is numeric", column)
	}
	for i, v := range col.Str {
		if col.Missing[i] {
			continue
		}
		if b, ok := mapping[v]; ok {
			col.Str[i] = b
		} else {
			col.Str[i] = fallback
		}
	}
	return nil
}

// EncodeColumn replaces a categorical column with a numeric one in a copy of
// the dataset, using the given method ("label" or "freq"; empty defaults to
// label). The encoder mapping is returned so unseen data can be encoded
// identically. One-hot expansion changes the column set and is left to
// callers via OneHotEncode.
func EncodeColumn(ds *dataset.Dataset, column, method string) (*dataset.Dataset, map[string]int, error) {
	col, err := ds.Column(column)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode")
	}
	if col.Type != dataset.Categorical {
		return nil, nil, errors.Errorf("encode: column %q is already numeric", column)
	}
	switch method {
	case "label", "":
		codes, mapping := LabelEncode(col.Str)
		vals := make([]float64, len(codes))
		for i, c := range codes {
			vals[i] = float64(c)
		}
		out, err := replaceWithNumeric(ds, column, vals, col.Missing)
		return out, mapping, err
	case "freq":
		vals, freqs := FrequencyEncode(col.Str)
		mapping := make(map[string]int, len(freqs))
		for k := range freqs {
			mapping[k] = len(mapping)
		}
		out, err := replaceWithNumeric(ds, column, vals, col.Missing)
		return out, mapping, err
	default:
		return nil, nil, errors.Errorf("encode: unknown method %q", method)
	}
}

func replaceWithNumeric(ds *dataset.Dataset, column string, vals []float64, missing []bool) (*dataset.Dataset, error) {
	cols := make([]*dataset.Column, 0)
	for _, name := range ds.Names() {
		if name == column {
			cols = append(cols, &dataset.Column{
				Name:    name,
				Type:    dataset.Numeric,
				Float:   append([]float64(nil), vals...),
				Missing: append([]bool(nil), missing...),
			})
			continue
		}
		c, _ := ds.Column(name)
		cols = append(cols, &dataset.Column{
			Name:    c.Name,
			Type:    c.Type,
			Float:   append([]float64(nil), c.Float...),
			Str:     append([]string(nil), c.Str...),
			Missing: append([]bool(nil), c.Missing...),
		})
	}
	return dataset.New(cols...)
}
