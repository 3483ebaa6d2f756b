package pipeline

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Cat-Zav/Music-Models/pkg/dataprep"
	"github.com/Cat-Zav/Music-Models/pkg/transform"
)

// Result is the boundary artifact of a run: held-out metrics keyed by name,
// plus everything a caller needs to audit how they were produced.
type Result struct {
	RunID string
	Stage Stage

	Metrics   map[string]float64
	Undefined map[string]bool

	Warnings    []string
	RowsDropped int
	TrainRows   int
	TestRows    int

	Missing    *dataprep.MissingReport
	Transforms map[string]transform.Descriptor
}

func newResult() *Result {
	return &Result{
		RunID:     uuid.NewString(),
		Metrics:   make(map[string]float64),
		Undefined: make(map[string]bool),
	}
}

// record stores a metric, flagging NaN values as undefined instead of
// dropping them.
func (r *Result) record(name string, v float64) {
	r.Metrics[name] = v
	if math.IsNaN(v) {
		r.Undefined[name] = true
	}
}

func (r *Result) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// MetricNames returns the metric names in sorted order.
func (r *Result) MetricNames() []string {
	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type metricRow struct {
	RunID     string  `csv:"run_id"`
	Metric    string  `csv:"metric"`
	Value     float64 `csv:"value"`
	Undefined bool    `csv:"undefined"`
}

// WriteReport serializes the metric map as CSV, one row per metric in sorted
// order.
func (r *Result) WriteReport(w io.Writer) error {
	rows := make([]metricRow, 0, len(r.Metrics))
	for _, name := range r.MetricNames() {
		rows = append(rows, metricRow{
			RunID:     r.RunID,
			Metric:    name,
			Value:     r.Metrics[name],
			Undefined: r.Undefined[name],
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}
