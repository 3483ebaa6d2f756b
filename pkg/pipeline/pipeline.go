// Package pipeline orchestrates a single preprocessing-and-evaluation run:
// clean, transform, split, standardize, fit, evaluate. Each stage consumes
// the previous stage's output through an explicit state value; there is no
// shared mutable workspace and no backward transition. Changing an upstream
// step means a fresh run.
package pipeline

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Cat-Zav/Music-Models/pkg/dataprep"
	"github.com/Cat-Zav/Music-Models/pkg/dataset"
	"github.com/Cat-Zav/Music-Models/pkg/model"
	"github.com/Cat-Zav/Music-Models/pkg/split"
	"github.com/Cat-Zav/Music-Models/pkg/stats"
	"github.com/Cat-Zav/Music-Models/pkg/transform"
)

// Stage identifies how far a run has progressed.
type Stage int

const (
	StageIngested Stage = iota
	StageCleaned
	StageTransformed
	StageSplit
	StageStandardized
	StageFitted
	StageEvaluated
)

func (s Stage) String() string {
	switch s {
	case StageIngested:
		return "ingested"
	case StageCleaned:
		return "cleaned"
	case StageTransformed:
		return "transformed"
	case StageSplit:
		return "split"
	case StageStandardized:
		return "standardized"
	case StageFitted:
		return "fitted"
	case StageEvaluated:
		return "evaluated"
	}
	return "unknown"
}

// Runner executes pipeline runs for one configuration.
type Runner struct {
	cfg Config
	log *zap.Logger
}

// New returns a Runner. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log}
}

// state threads the run through the stages.
type state struct {
	stage Stage

	data  *dataset.Dataset
	train *dataset.Dataset
	test  *dataset.Dataset

	// chosen transform per column; lambda and shift are refit on the train
	// partition after the split, so test data never shapes them.
	transforms map[string]transform.Descriptor

	scaler *dataprep.Scaler

	res *Result
}

// Run executes the full stage sequence on ds and reports held-out metrics.
// The input dataset is not mutated.
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := r.checkSchema(ds); err != nil {
		return nil, err
	}
	st := &state{data: ds.Clone(), res: newResult()}
	steps := []func(*state) error{
		r.clean,
		r.selectTransforms,
		r.partition,
		r.standardize,
		r.fit,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step(st); err != nil {
			st.res.Stage = st.stage
			return nil, err
		}
	}
	st.res.Stage = st.stage
	return st.res, nil
}

func (r *Runner) checkSchema(ds *dataset.Dataset) error {
	if !ds.Has(r.cfg.Target) {
		return &dataset.FormatError{Reason: "target column " + r.cfg.Target + " not in schema"}
	}
	for _, f := range r.cfg.Features {
		if !ds.Has(f) {
			return &dataset.FormatError{Reason: "feature column " + f + " not in schema"}
		}
	}
	return nil
}

// clean runs sentinel sanitizing, bucket remapping, the missingness report,
// and the drop/impute policy, then encodes categorical features.
func (r *Runner) clean(st *state) error {
	ds := st.data
	if _, err := dataprep.SanitizeSentinels(ds, r.cfg.Sentinels); err != nil {
		return err
	}
	for col, spec := range r.cfg.Buckets {
		if err := dataprep.Bucketize(ds, col, spec.Mapping, spec.Fallback); err != nil {
			return err
		}
	}
	rep, err := dataprep.ReportMissingness(ds, r.cfg.Features, r.cfg.Target)
	if err != nil {
		return err
	}
	st.res.Missing = rep
	if rep.Associated {
		st.res.warnf("missingness is associated with the label (divergence %.3f); partial-missing rows imputed instead of dropped", rep.Association)
	}
	dropped := 0
	switch {
	case r.cfg.MissingnessPolicy == PolicyDrop && !rep.Associated:
		ds, dropped = dataprep.DropPartialMissing(ds, rep)
	default:
		ds, dropped = dataprep.DropAllMissing(ds, rep)
		if err := r.impute(ds); err != nil {
			return err
		}
	}
	if dropped > 0 {
		r.log.Info("dropped rows with missing features", zap.Int("rows", dropped))
	}
	st.res.RowsDropped = dropped

	// Rows without a target carry no supervision signal either way.
	tcol, err := ds.Column(r.cfg.Target)
	if err != nil {
		return err
	}
	keep := make([]int, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		if !tcol.Missing[i] {
			keep = append(keep, i)
		}
	}
	if len(keep) < ds.Len() {
		st.res.RowsDropped += ds.Len() - len(keep)
		ds = ds.Select(keep)
	}

	for _, f := range r.cfg.Features {
		col, err := ds.Column(f)
		if err != nil {
			return err
		}
		if col.Type != dataset.Categorical {
			continue
		}
		encoded, _, err := dataprep.EncodeColumn(ds, f, r.cfg.Encoding)
		if err != nil {
			return err
		}
		ds = encoded
	}

	for col, bounds := range r.cfg.Outliers {
		low, high, err := dataprep.CapOutliers(ds, col, bounds)
		if err != nil {
			return err
		}
		r.log.Debug("capped outliers", zap.String("column", col),
			zap.Float64("low", low), zap.Float64("high", high))
	}

	st.data = ds
	st.stage = StageCleaned
	return nil
}

func (r *Runner) impute(ds *dataset.Dataset) error {
	for _, f := range r.cfg.Features {
		col, err := ds.Column(f)
		if err != nil {
			return err
		}
		if col.Type == dataset.Categorical {
			if err := dataprep.ImputeMode(ds, f); err != nil {
				return err
			}
			continue
		}
		// Skewed columns take the median, others the mean, so the fill
		// value stays representative of the bulk of the distribution.
		if math.Abs(stats.Skewness(col.Values())) > 1 {
			err = dataprep.ImputeMedian(ds, f)
		} else {
			err = dataprep.ImputeMean(ds, f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// selectTransforms screens each configured column's candidate family and
// fixes the chosen kind. Parameters are refit on the train partition in the
// standardize stage, so the full-data pass decides the shape only.
func (r *Runner) selectTransforms(st *state) error {
	st.transforms = make(map[string]transform.Descriptor, len(r.cfg.Transforms))
	for col, candidates := range r.cfg.Transforms {
		c, err := st.data.Numeric(col)
		if err != nil {
			return errors.Wrap(err, "select transform")
		}
		d, err := transform.Select(c.Values(), candidates)
		if err != nil {
			return errors.Wrapf(err, "select transform for %q", col)
		}
		st.transforms[col] = d
		r.log.Debug("selected transform", zap.String("column", col),
			zap.String("kind", string(d.Kind)))
	}
	st.stage = StageTransformed
	return nil
}

func (r *Runner) partition(st *state) error {
	target, err := st.data.Column(r.cfg.Target)
	if err != nil {
		return err
	}
	var res *split.Result
	if target.Type == dataset.Categorical && !r.cfg.Model.IsRegression() {
		res, err = split.Stratified(st.data, r.cfg.Target, r.cfg.TrainFraction, r.cfg.Seed)
	} else {
		res, err = split.Random(st.data, r.cfg.TrainFraction, r.cfg.Seed)
	}
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		st.res.warnf("%s", w.String())
		r.log.Warn("stratification degraded", zap.String("label", w.Label), zap.Int("size", w.Size))
	}
	st.train, st.test = res.Train, res.Test
	st.res.TrainRows, st.res.TestRows = st.train.Len(), st.test.Len()
	st.stage = StageSplit
	return nil
}

// standardize refits the chosen transforms on the train partition, applies
// them to both partitions, then fits the scaler on train and applies it the
// same way. Only train-derived parameters ever touch the test set.
func (r *Runner) standardize(st *state) error {
	for col, chosen := range st.transforms {
		trainCol, err := st.train.Numeric(col)
		if err != nil {
			return err
		}
		d, err := transform.Fit(trainCol.Values(), chosen.Kind)
		if err != nil {
			return errors.Wrapf(err, "refit transform for %q", col)
		}
		st.transforms[col] = d
		if err := applyTransform(st.train, col, d); err != nil {
			return err
		}
		if err := applyTransform(st.test, col, d); err != nil {
			return err
		}
	}
	st.res.Transforms = st.transforms

	st.scaler = dataprep.NewScaler(r.cfg.Features)
	if err := st.scaler.Fit(st.train); err != nil {
		return err
	}
	train, err := st.scaler.Transform(st.train)
	if err != nil {
		return err
	}
	test, err := st.scaler.Transform(st.test)
	if err != nil {
		return err
	}
	st.train, st.test = train, test
	st.stage = StageStandardized
	return nil
}

func applyTransform(ds *dataset.Dataset, col string, d transform.Descriptor) error {
	c, err := ds.Numeric(col)
	if err != nil {
		return err
	}
	out := d.Apply(c.Float)
	for i := range c.Float {
		if c.Missing[i] {
			continue
		}
		c.Float[i] = out[i]
	}
	return nil
}

// fit builds the model from config, trains it on the train partition only,
// and evaluates on the held-out partition.
func (r *Runner) fit(st *state) error {
	trainX, err := st.train.NumericMatrix(r.cfg.Features)
	if err != nil {
		return err
	}
	testX, err := st.test.NumericMatrix(r.cfg.Features)
	if err != nil {
		return err
	}
	trainY, testY, err := r.targets(st)
	if err != nil {
		return err
	}
	m, err := r.cfg.Model.Build()
	if err != nil {
		return err
	}
	if err := m.Fit(trainX, trainY); err != nil {
		return err
	}
	st.stage = StageFitted

	r.evaluate(st, m, testX, trainY, testY)
	st.stage = StageEvaluated
	return nil
}

func (r *Runner) targets(st *state) (trainY, testY []float64, err error) {
	col, err := st.data.Column(r.cfg.Target)
	if err != nil {
		return nil, nil, err
	}
	if r.cfg.Model.IsRegression() || col.Type == dataset.Numeric {
		trainY, err = numericTarget(st.train, r.cfg.Target)
		if err != nil {
			return nil, nil, err
		}
		testY, err = numericTarget(st.test, r.cfg.Target)
		return trainY, testY, err
	}
	// Classification over a categorical target. The models are binary, so
	// the label must have exactly two values after bucketing; the encoder
	// maps them to 0/1 in sorted order for determinism.
	mapping, err := binaryMapping(st.train, st.test, r.cfg.Target)
	if err != nil {
		return nil, nil, err
	}
	trainY, err = encodedTarget(st.train, r.cfg.Target, mapping)
	if err != nil {
		return nil, nil, err
	}
	testY, err = encodedTarget(st.test, r.cfg.Target, mapping)
	return trainY, testY, err
}

func (r *Runner) evaluate(st *state, m model.Model, testX [][]float64, trainY, testY []float64) {
	pred := m.Predict(testX)
	if r.cfg.Model.IsRegression() {
		st.res.record("mse", model.MSE(testY, pred))
		st.res.record("rmse", model.RMSE(testY, pred))
		st.res.record("mae", model.MAE(testY, pred))
		st.res.record("r2", model.R2(testY, pred))
		st.res.record("r2_vs_train_mean", model.R2Against(testY, pred, stats.Mean(trainY)))
		if cv, ok := m.(*model.LassoCV); ok {
			st.res.record("best_alpha", cv.Best)
		}
		return
	}
	st.res.record("accuracy", model.Accuracy(testY, pred))
	prec, rec, f1 := model.PrecisionRecallF1(model.Confusions(testY, pred))
	st.res.record("precision", prec)
	st.res.record("recall", rec)
	st.res.record("f1", f1)
	if c, ok := m.(model.Classifier); ok {
		st.res.record("auprc", model.AUPRC(testY, c.PredictProba(testX)))
	}
}
