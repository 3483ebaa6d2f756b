package model

import (
	"math"
	"sort"
)

// Regression metrics. All return NaN on an empty or degenerate input rather
// than panicking; the pipeline flags NaN metrics as undefined.

func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return math.NaN()
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue))
}

func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return math.NaN()
	}
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / float64(len(yTrue))
}

func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

// R2 is the self-contained coefficient of determination: SST uses the mean
// of yTrue itself, so a constant predictor equal to that mean scores exactly
// 0. NaN when yTrue has zero spread.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	m := 0.0
	for _, v := range yTrue {
		m += v
	}
	m /= float64(len(yTrue))
	return R2Against(yTrue, yPred, m)
}

// R2Against computes 1 - SSE/SST with SST taken around an externally chosen
// baseline mean. Passing the training-set mean gives the "beat the training
// mean predictor" reading.
func R2Against(yTrue, yPred []float64, baselineMean float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return math.NaN()
	}
	ssTot, ssRes := 0.0, 0.0
	for i := range yTrue {
		d := yTrue[i] - baselineMean
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

// Classification metrics (binary, labels 0/1).

// Confusion holds the binary confusion counts.
type Confusion struct {
	TP, FP, TN, FN int
}

// Confusions tallies the confusion counts of 0/1 predictions.
func Confusions(yTrue, yPred []float64) Confusion {
	var c Confusion
	for i := range yTrue {
		switch {
		case yPred[i] >= 0.5 && yTrue[i] >= 0.5:
			c.TP++
		case yPred[i] >= 0.5:
			c.FP++
		case yTrue[i] >= 0.5:
			c.FN++
		default:
			c.TN++
		}
	}
	return c
}

func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	n := 0
	for i := range yTrue {
		if (yTrue[i] >= 0.5) == (yPred[i] >= 0.5) {
			n++
		}
	}
	return float64(n) / float64(len(yTrue))
}

// PrecisionRecallF1 derives precision, recall, and F1 from the confusion
// counts. Each is NaN when its denominator is zero.
func PrecisionRecallF1(c Confusion) (prec, rec, f1 float64) {
	prec, rec, f1 = math.NaN(), math.NaN(), math.NaN()
	if c.TP+c.FP > 0 {
		prec = float64(c.TP) / float64(c.TP+c.FP)
	}
	if c.TP+c.FN > 0 {
		rec = float64(c.TP) / float64(c.TP+c.FN)
	}
	if !math.IsNaN(prec) && !math.IsNaN(rec) && prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

// AUPRC is the area under the precision-recall curve, computed as average
// precision: the sum of precision-at-k over each positive, stepping through
// scores in descending order with ties broken by index for determinism. NaN
// when there are no positives.
func AUPRC(yTrue []float64, scores []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(scores) {
		return math.NaN()
	}
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	positives := 0
	for _, v := range yTrue {
		if v >= 0.5 {
			positives++
		}
	}
	if positives == 0 {
		return math.NaN()
	}
	tp := 0
	ap := 0.0
	for rank, i := range idx {
		if yTrue[i] >= 0.5 {
			tp++
			ap += float64(tp) / float64(rank+1)
		}
	}
	return ap / float64(positives)
}
