// Package plot draws prepared chart data as SVG.
//
// Every chart kind except the heatmap is drawn with go-chart. The heatmap is
// painted cell by cell on go-chart's SVG renderer since the library has no
// matrix chart.
package plot

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/datadash/internal/core"
)

// ContentType is the media type of rendered charts.
const ContentType = "image/svg+xml"

// Canvas sizes in pixels.
const (
	chartWidth    = 1000
	chartHeight   = 600
	pieSize       = 800
	heatmapWidth  = 1000
	heatmapHeight = 800
)

// maxTickLabel is the longest category tick label drawn before truncation.
const maxTickLabel = 18

// Render writes data as an SVG document to w.
func Render(w io.Writer, data *core.ChartData) error {
	if data == nil {
		return fmt.Errorf("render: no chart data")
	}
	switch data.Kind {
	case core.ChartBar:
		return renderBar(w, data)
	case core.ChartLine:
		return renderLine(w, data)
	case core.ChartHistogram:
		return renderHistogram(w, data)
	case core.ChartScatter:
		return renderScatter(w, data)
	case core.ChartPie:
		return renderPie(w, data)
	case core.ChartHeatmap:
		return renderHeatmap(w, data)
	default:
		return fmt.Errorf("render: unknown chart kind %q", data.Kind)
	}
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 30, Bottom: 20}}
}

// paddedRange returns a range covering values, widened when they are all equal.
func paddedRange(values []float64, includeZero bool) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if includeZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if hi == lo {
		pad := math.Max(math.Abs(lo)*0.05, 0.5)
		lo, hi = lo-pad, hi+pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxTickLabel {
		return s
	}
	return string(r[:maxTickLabel-1]) + "…"
}

func renderBar(w io.Writer, data *core.ChartData) error {
	n := len(data.Values)
	if n == 0 {
		return fmt.Errorf("render bar: no values")
	}

	// Fit every bar into the canvas instead of go-chart's fixed widths.
	plotWidth := chartWidth - 120
	slot := plotWidth / n
	if slot < 2 {
		slot = 2
	}
	barWidth := slot * 7 / 10
	if barWidth < 1 {
		barWidth = 1
	}

	bars := make([]chart.Value, n)
	for i, v := range data.Values {
		bars[i] = chart.Value{
			Label: truncate(data.Categories[i]),
			Value: v,
			Style: chart.Style{
				FillColor:   seriesColor(0),
				StrokeColor: seriesColor(0),
				StrokeWidth: 1,
			},
		}
	}

	rotation := 0.0
	if n > 8 {
		rotation = 45
	}
	bc := chart.BarChart{
		Title:      data.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 120}},
		BarWidth:   barWidth,
		BarSpacing: slot - barWidth,
		XAxis:      chart.Style{TextRotationDegrees: rotation},
		YAxis: chart.YAxis{
			Name:  data.YLabel,
			Range: paddedRange(data.Values, true),
		},
		Bars: bars,
	}
	return bc.Render(chart.SVG, w)
}

func renderLine(w io.Writer, data *core.ChartData) error {
	if len(data.Points) == 0 {
		return fmt.Errorf("render line: no points")
	}
	ys := make([]float64, len(data.Points))
	xs := make([]float64, len(data.Points))
	for i, p := range data.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	style := chart.Style{
		StrokeColor: seriesColor(0),
		StrokeWidth: 2,
		DotColor:    seriesColor(0),
		DotWidth:    3,
	}

	c := chart.Chart{
		Title:      data.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: background(),
		YAxis:      chart.YAxis{Name: data.YLabel, Range: paddedRange(ys, false)},
	}

	switch {
	case len(data.XTimes) > 0:
		tf := make([]float64, len(data.XTimes))
		for i, t := range data.XTimes {
			tf[i] = chart.TimeToFloat64(t)
		}
		c.XAxis = chart.XAxis{
			Name:           data.XLabel,
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Range:          paddedRange(tf, false),
		}
		c.Series = []chart.Series{chart.TimeSeries{
			Name:    data.YLabel,
			XValues: data.XTimes,
			YValues: ys,
			Style:   style,
		}}
	case len(data.XCategories) > 0:
		ticks := make([]chart.Tick, len(data.XCategories))
		for i, label := range data.XCategories {
			ticks[i] = chart.Tick{Value: float64(i), Label: truncate(label)}
		}
		c.XAxis = chart.XAxis{
			Name:  data.XLabel,
			Ticks: thinTicks(ticks, 20),
			Range: paddedRange(xs, false),
		}
		c.Series = []chart.Series{chart.ContinuousSeries{
			Name:    data.YLabel,
			XValues: xs,
			YValues: ys,
			Style:   style,
		}}
	default:
		c.XAxis = chart.XAxis{Name: data.XLabel, Range: paddedRange(xs, false)}
		c.Series = []chart.Series{chart.ContinuousSeries{
			Name:    data.YLabel,
			XValues: xs,
			YValues: ys,
			Style:   style,
		}}
	}
	return c.Render(chart.SVG, w)
}

// thinTicks keeps at most max evenly spaced ticks.
func thinTicks(ticks []chart.Tick, max int) []chart.Tick {
	if len(ticks) <= max {
		return ticks
	}
	step := int(math.Ceil(float64(len(ticks)) / float64(max)))
	out := make([]chart.Tick, 0, max)
	for i := 0; i < len(ticks); i += step {
		out = append(out, ticks[i])
	}
	return out
}

func renderHistogram(w io.Writer, data *core.ChartData) error {
	if len(data.Bins) == 0 {
		return fmt.Errorf("render histogram: no bins")
	}

	// Bars are drawn as one filled outline: up, across and down per bin.
	xs := make([]float64, 0, 4*len(data.Bins))
	ys := make([]float64, 0, 4*len(data.Bins))
	counts := make([]float64, 0, len(data.Bins)+len(data.Density))
	for _, b := range data.Bins {
		xs = append(xs, b.Start, b.Start, b.End, b.End)
		c := float64(b.Count)
		ys = append(ys, 0, c, c, 0)
		counts = append(counts, c)
	}
	for _, p := range data.Density {
		counts = append(counts, p.Y)
	}
	edges := []float64{data.Bins[0].Start, data.Bins[len(data.Bins)-1].End}

	fill := seriesColor(0)
	series := []chart.Series{chart.ContinuousSeries{
		Name:    "Frequency",
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			FillColor:   fill.WithAlpha(150),
			StrokeColor: drawing.ColorWhite,
			StrokeWidth: 1,
		},
	}}
	if len(data.Density) > 0 {
		dx := make([]float64, len(data.Density))
		dy := make([]float64, len(data.Density))
		for i, p := range data.Density {
			dx[i], dy[i] = p.X, p.Y
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "Density",
			XValues: dx,
			YValues: dy,
			Style: chart.Style{
				StrokeColor: seriesColor(3),
				StrokeWidth: 2,
			},
		})
	}

	c := chart.Chart{
		Title:      data.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: background(),
		XAxis:      chart.XAxis{Name: data.XLabel, Range: paddedRange(edges, false)},
		YAxis:      chart.YAxis{Name: data.YLabel, Range: paddedRange(counts, true)},
		Series:     series,
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return c.Render(chart.SVG, w)
}

func renderScatter(w io.Writer, data *core.ChartData) error {
	if len(data.Series) == 0 {
		return fmt.Errorf("render scatter: no points")
	}
	var allX, allY []float64
	series := make([]chart.Series, len(data.Series))
	for i, s := range data.Series {
		allX = append(allX, s.X...)
		allY = append(allY, s.Y...)
		name := s.Name
		if name == "" {
			name = data.YLabel
		}
		series[i] = chart.ContinuousSeries{
			Name:    name,
			XValues: s.X,
			YValues: s.Y,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
				DotColor:    seriesColor(i).WithAlpha(200),
			},
		}
	}

	c := chart.Chart{
		Title:      data.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: background(),
		XAxis:      chart.XAxis{Name: data.XLabel, Range: paddedRange(allX, false)},
		YAxis:      chart.YAxis{Name: data.YLabel, Range: paddedRange(allY, false)},
		Series:     series,
	}
	if len(data.Series) > 1 || data.Request.Hue != "" {
		c.Elements = []chart.Renderable{chart.Legend(&c)}
	}
	return c.Render(chart.SVG, w)
}

func renderPie(w io.Writer, data *core.ChartData) error {
	var total float64
	for _, v := range data.Values {
		total += v
	}
	if total <= 0 {
		return fmt.Errorf("render pie: no values")
	}

	values := make([]chart.Value, len(data.Values))
	for i, v := range data.Values {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", truncate(data.Categories[i]), 100*v/total),
			Value: v,
			Style: chart.Style{FillColor: seriesColor(i)},
		}
	}
	pc := chart.PieChart{
		Title:      data.Title,
		Width:      pieSize,
		Height:     pieSize,
		Background: background(),
		Values:     values,
	}
	return pc.Render(chart.SVG, w)
}
