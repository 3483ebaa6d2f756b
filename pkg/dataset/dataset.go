// Package dataset holds the in-memory table the pipeline operates on.
// Columns are accessed by name only; positional indexing is deliberately
// not part of the API.
package dataset

import (
	"math"

	"github.com/pkg/errors"
)

// Type is the declared type of a column.
type Type int

const (
	Numeric Type = iota
	Categorical
)

func (t Type) String() string {
	if t == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Column is a single named column. Numeric columns carry Float, categorical
// columns carry Str. Missing marks cells with no usable value; the backing
// slot of a missing numeric cell is NaN.
type Column struct {
	Name    string
	Type    Type
	Float   []float64
	Str     []string
	Missing []bool
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Type == Numeric {
		return len(c.Float)
	}
	return len(c.Str)
}

// Values returns the non-missing numeric values of the column.
func (c *Column) Values() []float64 {
	out := make([]float64, 0, len(c.Float))
	for i, v := range c.Float {
		if c.Missing[i] {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SetMissing clears cell i to the missing state.
func (c *Column) SetMissing(i int) {
	c.Missing[i] = true
	if c.Type == Numeric {
		c.Float[i] = math.NaN()
	} else {
		c.Str[i] = ""
	}
}

// Dataset is a rectangular table: every column has the same length and a
// unique name.
type Dataset struct {
	cols  []*Column
	index map[string]int
}

// New builds a Dataset from columns, validating rectangularity and name
// uniqueness.
func New(cols ...*Column) (*Dataset, error) {
	ds := &Dataset{index: make(map[string]int, len(cols))}
	n := -1
	for _, c := range cols {
		if c.Name == "" {
			return nil, &FormatError{Reason: "column with empty name"}
		}
		if _, dup := ds.index[c.Name]; dup {
			return nil, &FormatError{Reason: "duplicate column " + c.Name}
		}
		if c.Missing == nil {
			c.Missing = make([]bool, c.Len())
		}
		if len(c.Missing) != c.Len() {
			return nil, &FormatError{Reason: "missing mask length mismatch on " + c.Name}
		}
		if n == -1 {
			n = c.Len()
		} else if c.Len() != n {
			return nil, &FormatError{Reason: "ragged column " + c.Name}
		}
		ds.index[c.Name] = len(ds.cols)
		ds.cols = append(ds.cols, c)
	}
	return ds, nil
}

// Len returns the number of rows.
func (ds *Dataset) Len() int {
	if len(ds.cols) == 0 {
		return 0
	}
	return ds.cols[0].Len()
}

// Names returns the column names in declaration order.
func (ds *Dataset) Names() []string {
	out := make([]string, len(ds.cols))
	for i, c := range ds.cols {
		out[i] = c.Name
	}
	return out
}

// Column returns the named column, or an error if the schema has no such
// column.
func (ds *Dataset) Column(name string) (*Column, error) {
	i, ok := ds.index[name]
	if !ok {
		return nil, errors.Errorf("dataset: no column %q", name)
	}
	return ds.cols[i], nil
}

// Has reports whether the schema declares the named column.
func (ds *Dataset) Has(name string) bool {
	_, ok := ds.index[name]
	return ok
}

// Numeric returns the named column and fails unless it is numeric.
func (ds *Dataset) Numeric(name string) (*Column, error) {
	c, err := ds.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Type != Numeric {
		return nil, errors.Errorf("dataset: column %q is %s, want numeric", name, c.Type)
	}
	return c, nil
}

// Clone deep-copies the dataset.
func (ds *Dataset) Clone() *Dataset {
	cols := make([]*Column, len(ds.cols))
	for i, c := range ds.cols {
		nc := &Column{Name: c.Name, Type: c.Type}
		nc.Float = append([]float64(nil), c.Float...)
		nc.Str = append([]string(nil), c.Str...)
		nc.Missing = append([]bool(nil), c.Missing...)
		cols[i] = nc
	}
	out, _ := New(cols...)
	return out
}

// Select returns a new dataset containing the given rows, in order.
func (ds *Dataset) Select(rows []int) *Dataset {
	cols := make([]*Column, len(ds.cols))
	for i, c := range ds.cols {
		nc := &Column{Name: c.Name, Type: c.Type}
		if c.Type == Numeric {
			nc.Float = make([]float64, len(rows))
		} else {
			nc.Str = make([]string, len(rows))
		}
		nc.Missing = make([]bool, len(rows))
		for j, r := range rows {
			if c.Type == Numeric {
				nc.Float[j] = c.Float[r]
			} else {
				nc.Str[j] = c.Str[r]
			}
			nc.Missing[j] = c.Missing[r]
		}
		cols[i] = nc
	}
	out, _ := New(cols...)
	return out
}

// NumericMatrix assembles a row-major feature matrix from the named numeric
// columns. Missing cells surface as NaN; callers are expected to have cleaned
// or imputed first.
func (ds *Dataset) NumericMatrix(names []string) ([][]float64, error) {
	cols := make([]*Column, len(names))
	for i, name := range names {
		c, err := ds.Numeric(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	out := make([][]float64, ds.Len())
	for r := range out {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = c.Float[r]
		}
		out[r] = row
	}
	return out, nil
}
