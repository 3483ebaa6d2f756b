package pipeline

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/dataset"
)

func numericTarget(ds *dataset.Dataset, name string) ([]float64, error) {
	col, err := ds.Numeric(name)
	if err != nil {
		return nil, errors.Wrap(err, "target")
	}
	out := make([]float64, len(col.Float))
	for i, v := range col.Float {
		if col.Missing[i] {
			return nil, errors.Errorf("target: row %d has no %s value", i, name)
		}
		out[i] = v
	}
	return out, nil
}

// binaryMapping derives a deterministic {label: 0|1} encoding from the
// distinct values seen across both partitions, sorted lexicographically.
// The models are binary, so more than two values is a configuration error:
// bucketize the label first.
func binaryMapping(train, test *dataset.Dataset, name string) (map[string]float64, error) {
	seen := make(map[string]struct{})
	for _, ds := range []*dataset.Dataset{train, test} {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		for i, s := range col.Str {
			if col.Missing[i] {
				continue
			}
			seen[s] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for s := range seen {
		labels = append(labels, s)
	}
	sort.Strings(labels)
	if len(labels) != 2 {
		return nil, errors.Errorf("target: %d distinct labels in %q, binary models need exactly 2 (bucketize first)", len(labels), name)
	}
	return map[string]float64{labels[0]: 0, labels[1]: 1}, nil
}

func encodedTarget(ds *dataset.Dataset, name string, mapping map[string]float64) ([]float64, error) {
	col, err := ds.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col.Str))
	for i, s := range col.Str {
		if col.Missing[i] {
			return nil, errors.Errorf("target: row %d has no %s label", i, name)
		}
		out[i] = mapping[s]
	}
	return out, nil
}
