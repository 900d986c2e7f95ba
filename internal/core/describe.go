package core

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StatNames are the summary rows produced for every numeric column, in order.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// ColumnStats summarizes one numeric column. Statistics that are undefined
// for the column (e.g. std of a single value) are NaN.
type ColumnStats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Values returns the statistics in StatNames order.
func (s ColumnStats) Values() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max}
}

// MarshalJSON encodes NaN statistics as null.
func (s ColumnStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column string   `json:"column"`
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		Std    *float64 `json:"std"`
		Min    *float64 `json:"min"`
		Q25    *float64 `json:"25%"`
		Median *float64 `json:"50%"`
		Q75    *float64 `json:"75%"`
		Max    *float64 `json:"max"`
	}{
		Column: s.Column,
		Count:  s.Count,
		Mean:   finite(s.Mean),
		Std:    finite(s.Std),
		Min:    finite(s.Min),
		Q25:    finite(s.Q25),
		Median: finite(s.Median),
		Q75:    finite(s.Q75),
		Max:    finite(s.Max),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Description holds summary statistics for the numeric columns of a table.
type Description struct {
	Columns []ColumnStats `json:"columns"`
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max for every numeric column. Missing values are excluded.
func Describe(t *Table) (*Description, error) {
	cols := t.NumericColumns()
	if len(cols) == 0 {
		return nil, newInfo(ErrNoNumericColumns, "No numerical columns found for descriptive statistics.")
	}

	d := &Description{Columns: make([]ColumnStats, len(cols))}
	for i, c := range cols {
		d.Columns[i] = describeValues(c.Name, c.Floats())
	}
	return d, nil
}

func describeValues(name string, x []float64) ColumnStats {
	s := ColumnStats{Column: name, Count: len(x)}
	nan := math.NaN()
	if len(x) == 0 {
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(x, nil)
	s.Std = nan
	if len(x) > 1 {
		s.Std = stat.StdDev(x, nil)
	}
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	s.Q25 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

// quantile interpolates linearly between the closest ranks of sorted data.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
