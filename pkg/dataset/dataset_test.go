package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_InfersTypes(t *testing.T) {
	csv := strings.Join([]string{
		"duration,genre,tempo",
		"215,rock,120.5",
		"NA,jazz,98.2",
		"180,,110.0",
	}, "\n")
	ds, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"duration", "genre", "tempo"}, ds.Names())

	dur, err := ds.Numeric("duration")
	require.NoError(t, err)
	assert.True(t, dur.Missing[1])
	assert.Equal(t, 215.0, dur.Float[0])

	genre, err := ds.Column("genre")
	require.NoError(t, err)
	assert.Equal(t, Categorical, genre.Type)
	assert.True(t, genre.Missing[2])
}

func TestFromRecords_RaggedRowIsFormatError(t *testing.T) {
	_, err := FromRecords(
		[]string{"a", "b"},
		[][]string{{"1", "2"}, {"3"}},
	)
	require.Error(t, err)
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestReadCSV_EmptyIsFormatError(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n"))
	require.Error(t, err)
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestColumn_UnknownName(t *testing.T) {
	ds, err := FromRecords([]string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)
	_, err = ds.Column("nope")
	assert.Error(t, err)
	_, err = ds.Numeric("a")
	assert.NoError(t, err)
}

func TestSelect_CopiesRows(t *testing.T) {
	ds, err := FromRecords(
		[]string{"x", "label"},
		[][]string{{"1", "a"}, {"2", "b"}, {"3", "c"}},
	)
	require.NoError(t, err)
	sub := ds.Select([]int{2, 0})
	require.Equal(t, 2, sub.Len())
	x, err := sub.Numeric("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, x.Float)

	// Mutating the selection must not touch the source.
	x.Float[0] = 99
	orig, _ := ds.Numeric("x")
	assert.Equal(t, 3.0, orig.Float[2])
}

func TestNumericMatrix(t *testing.T) {
	ds, err := FromRecords(
		[]string{"x", "y", "label"},
		[][]string{{"1", "4", "a"}, {"2", "5", "b"}},
	)
	require.NoError(t, err)
	m, err := ds.NumericMatrix([]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}}, m)

	_, err = ds.NumericMatrix([]string{"label"})
	assert.Error(t, err)
}
