package core

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	maxHistogramBins = 500
	kdeGridPoints    = 200
)

// HistogramBin counts the values in [Start, End). The last bin also
// includes End.
type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Point is one sample of a curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// autoBinCount picks the larger of the Sturges and Freedman-Diaconis bin
// counts, which is the narrower of the two bin widths.
func autoBinCount(sorted []float64) int {
	n := float64(len(sorted))
	span := sorted[len(sorted)-1] - sorted[0]
	if span == 0 || len(sorted) < 2 {
		return 1
	}

	sturges := math.Ceil(math.Log2(n) + 1)
	width := span / sturges

	iqr := quantile(sorted, 0.75) - quantile(sorted, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 && fd < width {
		width = fd
	}

	bins := int(math.Ceil(span / width))
	if bins < 1 {
		bins = 1
	}
	if bins > maxHistogramBins {
		bins = maxHistogramBins
	}
	return bins
}

// histogram bins finite values with automatically chosen equal-width bins.
func histogram(values []float64) []HistogramBin {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []HistogramBin{{Start: lo - 0.5, End: hi + 0.5, Count: len(values)}}
	}

	n := autoBinCount(sorted)
	width := (hi - lo) / float64(n)
	bins := make([]HistogramBin, n)
	for i := range bins {
		bins[i].Start = lo + float64(i)*width
		bins[i].End = lo + float64(i+1)*width
	}
	bins[n-1].End = hi

	for _, v := range sorted {
		pos := (v - lo) / width
		i := n - 1
		if pos < float64(n) {
			i = int(pos)
		}
		if i < 0 || math.IsNaN(pos) {
			i = 0
		}
		bins[i].Count++
	}
	return bins
}

// kdeCurve estimates a Gaussian kernel density over the data range with
// Scott's bandwidth, scaled by n*binWidth so it overlays bin counts.
// It returns nil when the data has no spread.
func kdeCurve(values []float64, binWidth float64) []Point {
	n := len(values)
	if n < 2 {
		return nil
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(float64(n), -1.0/5)

	lo, hi := floats.Min(values), floats.Max(values)
	grid := make([]float64, kdeGridPoints)
	floats.Span(grid, lo, hi)

	kernels := make([]distuv.Normal, n)
	for i, v := range values {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bw}
	}

	scale := binWidth
	curve := make([]Point, len(grid))
	for i, x := range grid {
		var sum float64
		for _, k := range kernels {
			sum += k.Prob(x)
		}
		curve[i] = Point{X: x, Y: sum * scale}
	}
	return curve
}
