package plot

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/datadash/internal/core"
)

// Heatmap layout in pixels.
const (
	heatmapTop      = 70
	heatmapLeft     = 170
	heatmapBottom   = 150
	heatmapRight    = 130
	colorbarWidth   = 24
	colorbarSteps   = 40
)

// renderHeatmap paints the correlation matrix as a grid of colored cells with
// a colorbar on the right.
func renderHeatmap(w io.Writer, data *core.ChartData) error {
	n := len(data.Labels)
	if n == 0 || len(data.Matrix) != n {
		return fmt.Errorf("render heatmap: matrix has %d rows for %d labels", len(data.Matrix), n)
	}

	r, err := chart.SVG(heatmapWidth, heatmapHeight)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)

	gridW := heatmapWidth - heatmapLeft - heatmapRight
	gridH := heatmapHeight - heatmapTop - heatmapBottom
	size := min(gridW, gridH) / n
	if size < 1 {
		size = 1
	}

	// Title.
	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(16)
	tb := r.MeasureText(data.Title)
	r.Text(data.Title, (heatmapWidth-tb.Width())/2, heatmapTop/2+tb.Height()/2)

	// Annotations shrink with the cells so every value stays inside its cell.
	fontSize := math.Max(1, math.Min(12, float64(size)/4))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := heatmapLeft + j*size
			y := heatmapTop + i*size
			v := data.Matrix[i][j]
			fillRect(r, x, y, size, size, coolwarm(v))

			label := fmt.Sprintf("%.2f", v)
			if math.IsNaN(v) {
				label = ""
			}
			r.SetFontSize(fontSize)
			r.SetFontColor(textColorOn(coolwarm(v)))
			b := r.MeasureText(label)
			r.Text(label, x+(size-b.Width())/2, y+(size+b.Height())/2)
		}
	}

	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(math.Max(7, math.Min(11, float64(size)/3)))
	for i, name := range data.Labels {
		label := truncate(name)
		b := r.MeasureText(label)

		// Row labels right-aligned against the grid.
		r.Text(label, heatmapLeft-b.Width()-8, heatmapTop+i*size+(size+b.Height())/2)

		// Column labels below the grid, rotated.
		r.SetTextRotation(chart.DegreesToRadians(45))
		r.Text(label, heatmapLeft+i*size+size/2, heatmapTop+n*size+12)
		r.ClearTextRotation()
	}

	drawColorbar(r, heatmapLeft+n*size+30, heatmapTop, n*size)
	return r.Save(w)
}

func fillRect(r chart.Renderer, x, y, w, h int, c drawing.Color) {
	r.SetFillColor(c)
	r.SetStrokeColor(drawing.ColorWhite)
	r.SetStrokeWidth(1)
	r.MoveTo(x, y)
	r.LineTo(x+w, y)
	r.LineTo(x+w, y+h)
	r.LineTo(x, y+h)
	r.Close()
	r.FillStroke()
}

// drawColorbar draws the scale from 1 at the top to -1 at the bottom.
func drawColorbar(r chart.Renderer, x, y, height int) {
	step := float64(height) / colorbarSteps
	for i := 0; i < colorbarSteps; i++ {
		v := 1 - 2*(float64(i)+0.5)/colorbarSteps
		top := y + int(math.Round(float64(i)*step))
		bottom := y + int(math.Round(float64(i+1)*step))
		r.SetFillColor(coolwarm(v))
		r.SetStrokeColor(coolwarm(v))
		r.SetStrokeWidth(0.5)
		r.MoveTo(x, top)
		r.LineTo(x+colorbarWidth, top)
		r.LineTo(x+colorbarWidth, bottom)
		r.LineTo(x, bottom)
		r.Close()
		r.FillStroke()
	}

	r.SetFontSize(10)
	r.SetFontColor(drawing.ColorBlack)
	for _, tick := range []float64{1, 0.5, 0, -0.5, -1} {
		ty := y + int(math.Round((1-tick)/2*float64(height)))
		label := fmt.Sprintf("%.1f", tick)
		b := r.MeasureText(label)
		r.Text(label, x+colorbarWidth+6, ty+b.Height()/2)
	}
}
