package core

// chart.go prepares the data behind each chart kind.
//
// PrepareChart resolves the requested columns, checks that they suit the
// chart, and computes the values to draw. Drawing itself happens elsewhere.
// Any unsuitable selection is reported as an *InfoError wrapping
// ErrChartUnavailable, never as a failure.

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChartKind is one of the supported chart types.
type ChartKind string

const (
	ChartBar       ChartKind = "bar"
	ChartLine      ChartKind = "line"
	ChartHistogram ChartKind = "histogram"
	ChartScatter   ChartKind = "scatter"
	ChartPie       ChartKind = "pie"
	ChartHeatmap   ChartKind = "heatmap"
)

// ChartKinds lists the chart kinds in display order.
var ChartKinds = []ChartKind{ChartBar, ChartLine, ChartHistogram, ChartScatter, ChartPie, ChartHeatmap}

// Label is the display name of the chart kind.
func (k ChartKind) Label() string {
	switch k {
	case ChartBar:
		return "Bar Plot"
	case ChartLine:
		return "Line Plot"
	case ChartHistogram:
		return "Histogram"
	case ChartScatter:
		return "Scatter Plot"
	case ChartPie:
		return "Pie Chart"
	case ChartHeatmap:
		return "Heatmap"
	default:
		return string(k)
	}
}

// ChartRequest selects a chart kind and its columns. Empty column names pick
// the first suitable column, except Y for bar charts and Hue, which stay unset.
type ChartRequest struct {
	Kind ChartKind `validate:"required,oneof=bar line histogram scatter pie heatmap"`
	X    string    `validate:"max=256"`
	Y    string    `validate:"max=256"`
	Hue  string    `validate:"max=256"`
}

// ScatterSeries is the points sharing one hue value.
type ScatterSeries struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// ChartData is a prepared chart. Only the fields for Kind are populated.
type ChartData struct {
	Kind    ChartKind    `json:"kind"`
	Request ChartRequest `json:"-"`
	Title   string       `json:"title"`
	XLabel  string       `json:"x_label,omitempty"`
	YLabel  string       `json:"y_label,omitempty"`

	// Bar and pie: one value per category.
	Categories []string  `json:"categories,omitempty"`
	Values     []float64 `json:"values,omitempty"`

	// Line: X holds numbers, or positions into XCategories, unless XTimes is set.
	Points      []Point     `json:"points,omitempty"`
	XTimes      []time.Time `json:"x_times,omitempty"`
	XCategories []string    `json:"x_categories,omitempty"`

	// Histogram.
	Bins    []HistogramBin `json:"bins,omitempty"`
	Density []Point        `json:"density,omitempty"`

	// Scatter.
	Series []ScatterSeries `json:"series,omitempty"`

	// Heatmap: Matrix[i][j] is the correlation of Labels[i] and Labels[j].
	Labels []string    `json:"labels,omitempty"`
	Matrix [][]float64 `json:"matrix,omitempty"`
}

func unavailable(format string, args ...any) error {
	return newInfo(ErrChartUnavailable, fmt.Sprintf(format, args...))
}

// ResolveChartRequest fills empty column selections with defaults and checks
// that every named column exists.
func ResolveChartRequest(t *Table, req ChartRequest) (ChartRequest, error) {
	if req.Kind == "" {
		req.Kind = ChartBar
	}
	numeric := t.NumericNames()
	firstNumeric := ""
	if len(numeric) > 0 {
		firstNumeric = numeric[0]
	}
	firstAny := ""
	if len(t.Columns) > 0 {
		firstAny = t.Columns[0].Name
	}

	switch req.Kind {
	case ChartBar, ChartPie:
		req.X = defaultTo(req.X, firstAny)
	case ChartLine:
		req.X = defaultTo(req.X, firstAny)
		req.Y = defaultTo(req.Y, firstNumeric)
	case ChartHistogram:
		req.X = defaultTo(req.X, firstNumeric)
	case ChartScatter:
		req.X = defaultTo(req.X, firstNumeric)
		req.Y = defaultTo(req.Y, firstNumeric)
	case ChartHeatmap:
		req.X, req.Y, req.Hue = "", "", ""
	default:
		return req, unavailable("Unknown chart type %q.", string(req.Kind))
	}
	if req.Kind != ChartScatter {
		req.Hue = ""
	}
	if req.Kind == ChartPie || req.Kind == ChartHistogram {
		req.Y = ""
	}

	for _, name := range []string{req.X, req.Y, req.Hue} {
		if name == "" {
			continue
		}
		if _, ok := t.Column(name); !ok {
			return req, unavailable("Column `%s` not found.", name)
		}
	}
	return req, nil
}

func defaultTo(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// PrepareChart computes the data for req over t.
func PrepareChart(t *Table, req ChartRequest) (*ChartData, error) {
	req, err := ResolveChartRequest(t, req)
	if err != nil {
		return nil, err
	}

	var data *ChartData
	switch req.Kind {
	case ChartBar:
		data, err = prepareBar(t, req)
	case ChartLine:
		data, err = prepareLine(t, req)
	case ChartHistogram:
		data, err = prepareHistogram(t, req)
	case ChartScatter:
		data, err = prepareScatter(t, req)
	case ChartPie:
		data, err = preparePie(t, req)
	case ChartHeatmap:
		data, err = prepareHeatmap(t)
	}
	if err != nil {
		return nil, err
	}
	data.Kind = req.Kind
	data.Request = req
	return data, nil
}

func requireColumn(t *Table, name, role string) (*Column, error) {
	if name == "" {
		return nil, unavailable("The file has no columns to use for the %s.", role)
	}
	c, _ := t.Column(name)
	return c, nil
}

func requireNumeric(t *Table, name, role string, kind ChartKind) (*Column, error) {
	if name == "" {
		return nil, unavailable("No numerical columns available to generate a %s.", kind.Label())
	}
	c, _ := t.Column(name)
	if c.Kind != KindNumeric {
		return nil, unavailable("The %s column `%s` must be numerical.", role, name)
	}
	return c, nil
}

// groupMeans averages y over the rows of each distinct x value, skipping
// rows where either is missing and groups left without values.
func groupMeans(x, y *Column) (groups []valueGroup, means []float64) {
	for _, g := range groupRows(x) {
		var sum float64
		n := 0
		for _, r := range g.Rows {
			if y.IsMissing(r) {
				continue
			}
			sum += y.Numbers[r].Float64
			n++
		}
		if n == 0 {
			continue
		}
		groups = append(groups, g)
		means = append(means, sum/float64(n))
	}
	return groups, means
}

func prepareBar(t *Table, req ChartRequest) (*ChartData, error) {
	x, err := requireColumn(t, req.X, "X-axis")
	if err != nil {
		return nil, err
	}

	data := &ChartData{XLabel: req.X}
	if req.Y == "" {
		for _, g := range groupRows(x) {
			data.Categories = append(data.Categories, g.Label)
			data.Values = append(data.Values, float64(len(g.Rows)))
		}
		data.YLabel = "Count"
		data.Title = fmt.Sprintf("Bar Plot of %s vs Count", req.X)
	} else {
		y, err := requireNumeric(t, req.Y, "Y-axis", ChartBar)
		if err != nil {
			return nil, err
		}
		groups, means := groupMeans(x, y)
		for _, g := range groups {
			data.Categories = append(data.Categories, g.Label)
		}
		data.Values = means
		data.YLabel = req.Y
		data.Title = fmt.Sprintf("Bar Plot of %s vs %s", req.X, req.Y)
	}

	if len(data.Values) == 0 {
		return nil, unavailable("No data to plot for the selected columns.")
	}
	return data, nil
}

func prepareLine(t *Table, req ChartRequest) (*ChartData, error) {
	x, err := requireColumn(t, req.X, "X-axis")
	if err != nil {
		return nil, err
	}
	y, err := requireNumeric(t, req.Y, "Y-axis", ChartLine)
	if err != nil {
		return nil, err
	}

	data := &ChartData{
		Title:  fmt.Sprintf("Line Plot of %s over %s", req.Y, req.X),
		XLabel: req.X,
		YLabel: req.Y,
	}
	groups, means := groupMeans(x, y)
	for i, g := range groups {
		r := g.Rows[0]
		p := Point{X: float64(i), Y: means[i]}
		switch x.Kind {
		case KindNumeric:
			p.X = x.Numbers[r].Float64
		case KindDatetime:
			data.XTimes = append(data.XTimes, x.Times[r].Time)
		default:
			data.XCategories = append(data.XCategories, g.Label)
		}
		data.Points = append(data.Points, p)
	}

	if len(data.Points) == 0 {
		return nil, unavailable("No data to plot for the selected columns.")
	}
	return data, nil
}

func prepareHistogram(t *Table, req ChartRequest) (*ChartData, error) {
	c, err := requireNumeric(t, req.X, "histogram", ChartHistogram)
	if err != nil {
		return nil, err
	}

	var values []float64
	for _, v := range c.Floats() {
		if !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, unavailable("Column `%s` has no values to plot.", req.X)
	}
	if lo, hi := floats.Min(values), floats.Max(values); math.IsInf(hi-lo, 0) {
		return nil, unavailable("The values of `%s` span too wide a range to plot as a histogram.", req.X)
	}

	bins := histogram(values)
	data := &ChartData{
		Title:  fmt.Sprintf("Histogram of %s", req.X),
		XLabel: req.X,
		YLabel: "Frequency",
		Bins:   bins,
	}
	data.Density = kdeCurve(values, bins[0].End-bins[0].Start)
	return data, nil
}

func prepareScatter(t *Table, req ChartRequest) (*ChartData, error) {
	x, err := requireNumeric(t, req.X, "X-axis", ChartScatter)
	if err != nil {
		return nil, err
	}
	y, err := requireNumeric(t, req.Y, "Y-axis", ChartScatter)
	if err != nil {
		return nil, err
	}

	data := &ChartData{
		Title:  fmt.Sprintf("Scatter Plot of %s vs %s", req.Y, req.X),
		XLabel: req.X,
		YLabel: req.Y,
	}

	complete := func(r int) bool { return !x.IsMissing(r) && !y.IsMissing(r) }
	add := func(s *ScatterSeries, r int) {
		s.X = append(s.X, x.Numbers[r].Float64)
		s.Y = append(s.Y, y.Numbers[r].Float64)
	}

	if req.Hue == "" {
		s := ScatterSeries{}
		for r := 0; r < t.Rows(); r++ {
			if complete(r) {
				add(&s, r)
			}
		}
		if len(s.X) > 0 {
			data.Series = []ScatterSeries{s}
		}
	} else {
		hue, _ := t.Column(req.Hue)
		for _, g := range groupRows(hue) {
			s := ScatterSeries{Name: g.Label}
			for _, r := range g.Rows {
				if complete(r) {
					add(&s, r)
				}
			}
			if len(s.X) > 0 {
				data.Series = append(data.Series, s)
			}
		}
	}

	if len(data.Series) == 0 {
		return nil, unavailable("No data to plot for the selected columns.")
	}
	return data, nil
}

func preparePie(t *Table, req ChartRequest) (*ChartData, error) {
	c, err := requireColumn(t, req.X, "pie chart")
	if err != nil {
		return nil, err
	}
	slices := PieSlices(ValueCounts(c))
	if len(slices) == 0 {
		return nil, unavailable("Column `%s` has no values to plot.", req.X)
	}

	data := &ChartData{Title: fmt.Sprintf("Pie Chart of %s", req.X)}
	for _, s := range slices {
		data.Categories = append(data.Categories, s.Label)
		data.Values = append(data.Values, s.Count)
	}
	return data, nil
}

func prepareHeatmap(t *Table) (*ChartData, error) {
	cols := t.NumericColumns()
	if len(cols) == 0 {
		return nil, unavailable("No numerical columns available to generate a Heatmap.")
	}
	return &ChartData{
		Title:  "Correlation Heatmap",
		Labels: t.NumericNames(),
		Matrix: CorrelationMatrix(cols),
	}, nil
}

// CorrelationMatrix computes Pearson correlations between every pair of
// columns using the rows where both values are present. Pairs with fewer
// than two such rows, or with no variance, are NaN.
func CorrelationMatrix(cols []*Column) [][]float64 {
	n := len(cols)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pairwiseCorrelation(cols[i], cols[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m[i][j], m[j][i] = r, r
		}
	}
	return m
}

func pairwiseCorrelation(a, b *Column) float64 {
	var xs, ys []float64
	for r := 0; r < a.Len(); r++ {
		if a.IsMissing(r) || b.IsMissing(r) {
			continue
		}
		xs = append(xs, a.Numbers[r].Float64)
		ys = append(ys, b.Numbers[r].Float64)
	}
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
