// Package split partitions a dataset into train and test sets. All splits
// are seeded and deterministic: the same dataset and seed always produce the
// same partition.
package split

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/dataset"
)

// Warning reports a stratification group too small to split at the requested
// fraction. The split degrades to best effort; the caller decides whether
// that matters.
type Warning struct {
	Label string
	Size  int
}

func (w Warning) String() string {
	return fmt.Sprintf("label %q has only %d rows, split is best-effort", w.Label, w.Size)
}

// Result of a split: disjoint, exhaustive partitions plus any per-group
// warnings.
type Result struct {
	Train    *dataset.Dataset
	Test     *dataset.Dataset
	Warnings []Warning
}

// Random partitions rows uniformly at random. trainFraction must be in
// (0, 1).
func Random(ds *dataset.Dataset, trainFraction float64, seed int64) (*Result, error) {
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, errors.Errorf("split: train fraction %g outside (0, 1)", trainFraction)
	}
	rng := rand.New(rand.NewSource(seed))
	idx := rng.Perm(ds.Len())
	nTrain := int(float64(ds.Len())*trainFraction + 0.5)
	if nTrain < 1 {
		nTrain = 1
	}
	if nTrain >= ds.Len() {
		nTrain = ds.Len() - 1
	}
	train := append([]int(nil), idx[:nTrain]...)
	test := append([]int(nil), idx[nTrain:]...)
	sort.Ints(train)
	sort.Ints(test)
	return &Result{Train: ds.Select(train), Test: ds.Select(test)}, nil
}

// Stratified partitions rows so that each distinct value of labelColumn is
// split as close as possible to trainFraction within its own subgroup.
// Groups too small to honor the fraction are split best-effort and surfaced
// as warnings. Rows with a missing label always land in train.
func Stratified(ds *dataset.Dataset, labelColumn string, trainFraction float64, seed int64) (*Result, error) {
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, errors.Errorf("split: train fraction %g outside (0, 1)", trainFraction)
	}
	col, err := ds.Column(labelColumn)
	if err != nil {
		return nil, errors.Wrap(err, "split")
	}
	groups := make(map[string][]int)
	var missing []int
	for r := 0; r < ds.Len(); r++ {
		if col.Missing[r] {
			missing = append(missing, r)
			continue
		}
		groups[labelKey(col, r)] = append(groups[labelKey(col, r)], r)
	}
	// Iterate groups in sorted key order so the partition depends only on
	// the data and the seed, not on map order.
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rng := rand.New(rand.NewSource(seed))
	res := &Result{}
	var train, test []int
	train = append(train, missing...)
	for _, k := range keys {
		rows := groups[k]
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		nTrain := int(float64(len(rows))*trainFraction + 0.5)
		if len(rows) < 2 || nTrain == 0 || nTrain == len(rows) {
			res.Warnings = append(res.Warnings, Warning{Label: k, Size: len(rows)})
			if nTrain == 0 && len(rows) > 1 {
				nTrain = 1
			}
			if nTrain == len(rows) && len(rows) > 1 {
				nTrain = len(rows) - 1
			}
		}
		train = append(train, rows[:nTrain]...)
		test = append(test, rows[nTrain:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	res.Train = ds.Select(train)
	res.Test = ds.Select(test)
	return res, nil
}

func labelKey(col *dataset.Column, r int) string {
	if col.Type == dataset.Categorical {
		return col.Str[r]
	}
	return strconv.FormatFloat(col.Float[r], 'g', -1, 64)
}

// KFold returns k disjoint, exhaustive folds of row indices over n rows,
// shuffled by seed. Fold sizes differ by at most one.
func KFold(n, k int, seed int64) ([][]int, error) {
	if k < 2 || k > n {
		return nil, errors.Errorf("split: fold count %d outside [2, %d]", k, n)
	}
	rng := rand.New(rand.NewSource(seed))
	idx := rng.Perm(n)
	folds := make([][]int, k)
	for i, r := range idx {
		folds[i%k] = append(folds[i%k], r)
	}
	return folds, nil
}
