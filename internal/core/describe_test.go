package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tbl, err := NewTable(
		NumericColumn("a", 1, 2, 3, 4, math.NaN()),
		TextColumn("label", "x", "y", "z", "w", "v"),
		NumericColumn("b", 10, math.NaN(), math.NaN(), math.NaN(), math.NaN()),
	)
	require.NoError(t, err)

	d, err := Describe(tbl)
	require.NoError(t, err)
	require.Len(t, d.Columns, 2)

	a := d.Columns[0]
	assert.Equal(t, "a", a.Column)
	assert.Equal(t, 4, a.Count)
	assert.InDelta(t, 2.5, a.Mean, 1e-12)
	assert.InDelta(t, 1.2909944487, a.Std, 1e-9)
	assert.Equal(t, 1.0, a.Min)
	assert.InDelta(t, 1.75, a.Q25, 1e-12)
	assert.InDelta(t, 2.5, a.Median, 1e-12)
	assert.InDelta(t, 3.25, a.Q75, 1e-12)
	assert.Equal(t, 4.0, a.Max)

	b := d.Columns[1]
	assert.Equal(t, 1, b.Count)
	assert.Equal(t, 10.0, b.Mean)
	assert.True(t, math.IsNaN(b.Std), "std of one value is undefined")
	assert.Equal(t, 10.0, b.Median)
}

func TestDescribe_AllMissing(t *testing.T) {
	tbl, err := NewTable(NumericColumn("n", math.NaN(), math.NaN()))
	require.NoError(t, err)

	d, err := Describe(tbl)
	require.NoError(t, err)
	s := d.Columns[0]
	assert.Equal(t, 0, s.Count)
	for _, v := range s.Values()[1:] {
		assert.True(t, math.IsNaN(v))
	}
}

func TestDescribe_NoNumericColumns(t *testing.T) {
	tbl, err := NewTable(TextColumn("a", "x"))
	require.NoError(t, err)

	d, err := Describe(tbl)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrNoNumericColumns)

	info, ok := AsInfo(err)
	require.True(t, ok)
	assert.Equal(t, "No numerical columns found for descriptive statistics.", info.Message)
}

func TestColumnStats_MarshalJSON(t *testing.T) {
	s := describeValues("v", []float64{5})
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "v", got["column"])
	assert.Equal(t, 5.0, got["mean"])
	assert.Nil(t, got["std"])
	assert.Contains(t, got, "50%")
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		data []float64
		p    float64
		want float64
	}{
		{data: []float64{1}, p: 0.25, want: 1},
		{data: []float64{1, 2}, p: 0.5, want: 1.5},
		{data: []float64{1, 2, 3, 4, 5}, p: 0.25, want: 2},
		{data: []float64{1, 2, 3, 4, 5}, p: 1, want: 5},
		{data: []float64{0, 10}, p: 0.75, want: 7.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, quantile(tt.data, tt.p), 1e-12, "%v p=%v", tt.data, tt.p)
	}
}
