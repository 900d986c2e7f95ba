package plot

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// seriesColors is the categorical palette for bars, slices and hue series.
var seriesColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// seriesColor returns the palette color for series i.
func seriesColor(i int) drawing.Color {
	return drawing.ColorFromHex(seriesColors[i%len(seriesColors)][1:])
}

// Anchors of the diverging coolwarm scale at -1, 0 and 1.
var (
	coolColor    = drawing.Color{R: 59, G: 76, B: 192, A: 255}
	neutralColor = drawing.Color{R: 221, G: 221, B: 221, A: 255}
	warmColor    = drawing.Color{R: 180, G: 4, B: 38, A: 255}
	missingColor = drawing.Color{R: 255, G: 255, B: 255, A: 255}
)

// coolwarm maps v in [-1, 1] onto the diverging scale. NaN is drawn white.
func coolwarm(v float64) drawing.Color {
	if math.IsNaN(v) {
		return missingColor
	}
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return lerpColor(neutralColor, coolColor, -v)
	}
	return lerpColor(neutralColor, warmColor, v)
}

func lerpColor(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// textColorOn picks black or white text for legibility on bg.
func textColorOn(bg drawing.Color) drawing.Color {
	luma := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if luma < 128 {
		return drawing.ColorWhite
	}
	return drawing.ColorBlack
}
