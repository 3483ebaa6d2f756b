package dataset

import (
	"io"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// FormatError reports a malformed or inconsistent input schema. It is fatal:
// no later pipeline stage runs on a dataset that failed ingestion.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "dataset: format error: " + e.Reason
}

// missing markers accepted in raw cells.
func isMissingToken(s string) bool {
	switch s {
	case "", "NA", "NaN", "nan", "null", "NULL":
		return true
	}
	return false
}

// ReadCSV ingests a delimited source with a header row. Column types are
// inferred: a column whose every non-missing cell parses as a float is
// numeric, anything else is categorical. Inconsistent column counts yield a
// FormatError.
func ReadCSV(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		return nil, &FormatError{Reason: df.Error().Error()}
	}
	records := df.Records()
	if len(records) < 2 {
		return nil, &FormatError{Reason: "no data rows"}
	}
	header := records[0]
	rows := records[1:]
	return fromRecords(header, rows)
}

// FromRecords builds a Dataset from a header and raw string rows. Exposed for
// tests and for callers that already hold parsed records.
func FromRecords(header []string, rows [][]string) (*Dataset, error) {
	return fromRecords(header, rows)
}

func fromRecords(header []string, rows [][]string) (*Dataset, error) {
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, &FormatError{
				Reason: "row " + strconv.Itoa(i+1) + " has " + strconv.Itoa(len(row)) +
					" fields, header has " + strconv.Itoa(len(header)),
			}
		}
	}
	cols := make([]*Column, 0, len(header))
	for j, name := range header {
		raw := make([]string, len(rows))
		for i := range rows {
			raw[i] = rows[i][j]
		}
		cols = append(cols, inferColumn(name, raw))
	}
	ds, err := New(cols...)
	if err != nil {
		return nil, errors.Wrap(err, "ingest")
	}
	return ds, nil
}

func inferColumn(name string, raw []string) *Column {
	numeric := true
	for _, s := range raw {
		if isMissingToken(s) {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			numeric = false
			break
		}
	}
	c := &Column{Name: name, Missing: make([]bool, len(raw))}
	if numeric {
		c.Type = Numeric
		c.Float = make([]float64, len(raw))
		for i, s := range raw {
			if isMissingToken(s) {
				c.SetMissing(i)
				continue
			}
			v, _ := strconv.ParseFloat(s, 64)
			c.Float[i] = v
		}
		return c
	}
	c.Type = Categorical
	c.Str = make([]string, len(raw))
	for i, s := range raw {
		if isMissingToken(s) {
			c.SetMissing(i)
			continue
		}
		c.Str[i] = s
	}
	return c
}
