package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cat-Zav/Music-Models/pkg/dataprep"
	"github.com/Cat-Zav/Music-Models/pkg/dataset"
	"github.com/Cat-Zav/Music-Models/pkg/model"
	"github.com/Cat-Zav/Music-Models/pkg/transform"
)

// genreDataset builds a separable two-genre dataset: rock rows cluster at
// low tempo/energy, electronic rows at high. Values are deterministic.
func genreDataset(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		jitter := float64(i%7) * 0.3
		if i%2 == 0 {
			rows = append(rows, []string{
				fmt.Sprintf("%.2f", 90+jitter),
				fmt.Sprintf("%.2f", 0.2+jitter/100),
				"rock",
			})
		} else {
			rows = append(rows, []string{
				fmt.Sprintf("%.2f", 150+jitter),
				fmt.Sprintf("%.2f", 0.8+jitter/100),
				"electronic",
			})
		}
	}
	ds, err := dataset.FromRecords([]string{"tempo", "energy", "genre"}, rows)
	require.NoError(t, err)
	return ds
}

func classificationConfig() Config {
	cfg := Default()
	cfg.Target = "genre"
	cfg.Features = []string{"tempo", "energy"}
	cfg.Model = model.Config{Kind: model.KindLogistic, LearningRate: 0.5, Epochs: 500, Threshold: 0.5}
	return cfg
}

func TestRun_ClassificationEndToEnd(t *testing.T) {
	ds := genreDataset(t, 100)
	res, err := New(classificationConfig(), nil).Run(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, StageEvaluated, res.Stage)
	assert.Equal(t, 100, res.TrainRows+res.TestRows)
	assert.Equal(t, 0, res.RowsDropped)
	require.Contains(t, res.Metrics, "accuracy")
	assert.Greater(t, res.Metrics["accuracy"], 0.9)
	require.Contains(t, res.Metrics, "auprc")
	assert.Greater(t, res.Metrics["auprc"], 0.9)
	assert.NotEmpty(t, res.RunID)
}

func TestRun_DeterministicPartitionBySeed(t *testing.T) {
	ds := genreDataset(t, 100)
	cfg := classificationConfig()
	a, err := New(cfg, nil).Run(context.Background(), ds)
	require.NoError(t, err)
	b, err := New(cfg, nil).Run(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, a.Metrics, b.Metrics)
}

func TestRun_RegressionEndToEnd(t *testing.T) {
	rows := make([][]string, 0, 60)
	for i := 0; i < 60; i++ {
		x := float64(i%20) - 10
		y := 2*x + 3
		rows = append(rows, []string{
			strconv.FormatFloat(x, 'f', 2, 64),
			strconv.FormatFloat(y, 'f', 2, 64),
		})
	}
	ds, err := dataset.FromRecords([]string{"loudness", "popularity"}, rows)
	require.NoError(t, err)

	cfg := Default()
	cfg.Target = "popularity"
	cfg.Features = []string{"loudness"}
	cfg.Model = model.Config{Kind: model.KindLasso, Alpha: 0.001}
	res, err := New(cfg, nil).Run(context.Background(), ds)
	require.NoError(t, err)

	require.Contains(t, res.Metrics, "r2")
	assert.Greater(t, res.Metrics["r2"], 0.95)
	require.Contains(t, res.Metrics, "r2_vs_train_mean")
	require.Contains(t, res.Metrics, "mse")
	assert.False(t, res.Undefined["r2"])
}

func TestRun_KNNRegressionEndToEnd(t *testing.T) {
	rows := make([][]string, 0, 60)
	for i := 0; i < 60; i++ {
		x := float64(i%20) - 10
		y := 2*x + 3
		rows = append(rows, []string{
			strconv.FormatFloat(x, 'f', 2, 64),
			strconv.FormatFloat(y, 'f', 2, 64),
		})
	}
	ds, err := dataset.FromRecords([]string{"loudness", "popularity"}, rows)
	require.NoError(t, err)

	cfg := Default()
	cfg.Target = "popularity"
	cfg.Features = []string{"loudness"}
	cfg.Model = model.Config{Kind: model.KindKNN, K: 3, Regression: true}
	res, err := New(cfg, nil).Run(context.Background(), ds)
	require.NoError(t, err)

	// Regression metrics, not classification ones.
	require.Contains(t, res.Metrics, "r2")
	assert.NotContains(t, res.Metrics, "accuracy")
	assert.Greater(t, res.Metrics["r2"], 0.9)
}

func TestRun_OutOfDomainTestValueKeepsMetricsDefined(t *testing.T) {
	// One extreme negative value that may land in the test partition.
	// The log transform's shift is refit on train only, so that value can
	// fall below the fitted domain; metrics must still come out defined.
	rows := make([][]string, 0, 40)
	for i := 0; i < 40; i++ {
		x := float64(i % 20)
		y := 2*x + 3
		rows = append(rows, []string{
			strconv.FormatFloat(x, 'f', 2, 64),
			strconv.FormatFloat(y, 'f', 2, 64),
		})
	}
	rows[0][0] = "-50"
	ds, err := dataset.FromRecords([]string{"loudness", "popularity"}, rows)
	require.NoError(t, err)

	cfg := Default()
	cfg.Target = "popularity"
	cfg.Features = []string{"loudness"}
	cfg.Transforms = map[string][]transform.Kind{"loudness": {transform.Log}}
	cfg.Model = model.Config{Kind: model.KindLasso, Alpha: 0.001}
	res, err := New(cfg, nil).Run(context.Background(), ds)
	require.NoError(t, err)

	assert.Empty(t, res.Undefined)
	for _, name := range []string{"mse", "rmse", "mae", "r2", "r2_vs_train_mean"} {
		require.Contains(t, res.Metrics, name)
		assert.False(t, math.IsNaN(res.Metrics[name]), name)
	}
}

func TestRun_AllMissingRowDropped(t *testing.T) {
	ds := genreDataset(t, 40)
	// Rebuild with one extra row missing every feature.
	col := func(name string) *dataset.Column {
		c, err := ds.Column(name)
		require.NoError(t, err)
		return c
	}
	tempo := append(append([]float64(nil), col("tempo").Float...), 0)
	energy := append(append([]float64(nil), col("energy").Float...), 0)
	genre := append(append([]string(nil), col("genre").Str...), "rock")
	missing := make([]bool, 41)
	missing[40] = true
	withMissing, err := dataset.New(
		&dataset.Column{Name: "tempo", Type: dataset.Numeric, Float: tempo, Missing: append([]bool(nil), missing...)},
		&dataset.Column{Name: "energy", Type: dataset.Numeric, Float: energy, Missing: append([]bool(nil), missing...)},
		&dataset.Column{Name: "genre", Type: dataset.Categorical, Str: genre},
	)
	require.NoError(t, err)

	res, err := New(classificationConfig(), nil).Run(context.Background(), withMissing)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowsDropped)
	assert.Equal(t, 40, res.TrainRows+res.TestRows)
}

func TestRun_DegenerateFeatureFails(t *testing.T) {
	ds := genreDataset(t, 40)
	constant := make([]float64, 40)
	for i := range constant {
		constant[i] = 7
	}
	cols := []*dataset.Column{
		{Name: "flat", Type: dataset.Numeric, Float: constant},
	}
	for _, name := range ds.Names() {
		c, err := ds.Column(name)
		require.NoError(t, err)
		cols = append(cols, c)
	}
	withFlat, err := dataset.New(cols...)
	require.NoError(t, err)

	cfg := classificationConfig()
	cfg.Features = append(cfg.Features, "flat")
	_, err = New(cfg, nil).Run(context.Background(), withFlat)
	require.Error(t, err)
	var de *dataprep.DegenerateColumnError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "flat", de.Column)
}

func TestRun_MissingColumnIsFormatError(t *testing.T) {
	ds := genreDataset(t, 10)
	cfg := classificationConfig()
	cfg.Target = "absent"
	_, err := New(cfg, nil).Run(context.Background(), ds)
	require.Error(t, err)
	var fe *dataset.FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestRun_BucketizeCollapsesLabels(t *testing.T) {
	ds := genreDataset(t, 60)
	// Sprinkle a third raw label that the bucket table folds into "rock".
	genre, err := ds.Column("genre")
	require.NoError(t, err)
	for i := 0; i < 60; i += 10 {
		if genre.Str[i] == "rock" {
			genre.Str[i] = "hard rock"
		}
	}
	cfg := classificationConfig()
	cfg.Buckets = map[string]BucketSpec{
		"genre": {
			Mapping:  map[string]string{"hard rock": "rock", "rock": "rock"},
			Fallback: "electronic",
		},
	}
	res, err := New(cfg, nil).Run(context.Background(), ds)
	require.NoError(t, err)
	assert.Greater(t, res.Metrics["accuracy"], 0.9)
}

func TestRun_TransformsRefitOnTrain(t *testing.T) {
	ds := genreDataset(t, 80)
	cfg := classificationConfig()
	cfg.Transforms = map[string][]transform.Kind{
		"tempo": {transform.Identity, transform.Log, transform.YeoJohnson},
	}
	res, err := New(cfg, nil).Run(context.Background(), ds)
	require.NoError(t, err)
	require.Contains(t, res.Transforms, "tempo")
	assert.Greater(t, res.Metrics["accuracy"], 0.9)
}

func TestRun_SentinelThenImpute(t *testing.T) {
	ds := genreDataset(t, 60)
	tempo, err := ds.Numeric("tempo")
	require.NoError(t, err)
	tempo.Float[3] = -1 // sentinel for "unknown tempo"
	tempo.Float[9] = -1

	cfg := classificationConfig()
	cfg.MissingnessPolicy = PolicyImpute
	cfg.Sentinels = map[string]dataprep.SentinelRule{
		"tempo": {Min: ptr(0.0)},
	}
	res, err := New(cfg, nil).Run(context.Background(), ds)
	require.NoError(t, err)
	// Imputation keeps every row.
	assert.Equal(t, 60, res.TrainRows+res.TestRows)
	assert.Equal(t, 2, res.Missing.ByColumn["tempo"])
}

func ptr(v float64) *float64 { return &v }

func TestRun_ContextCancelled(t *testing.T) {
	ds := genreDataset(t, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(classificationConfig(), nil).Run(ctx, ds)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_WriteReport(t *testing.T) {
	ds := genreDataset(t, 60)
	res, err := New(classificationConfig(), nil).Run(context.Background(), ds)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteReport(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "run_id,metric,value,undefined"))
	assert.Contains(t, out, "accuracy")
	assert.Contains(t, out, res.RunID)
}
