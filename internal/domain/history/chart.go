package history

import (
	"errors"
	"io"

	"dosage-dashboard/internal/domain/dosages"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoChartData = errors.New("history: no dosages in range")

const maxChartTicks = 15

var (
	successColor = drawing.ColorFromHex("22c55e")
	failedColor  = drawing.ColorFromHex("ef4444")
)

// RenderChart dibuja exitosas vs. fallidas por día en PNG.
func RenderChart(w io.Writer, rng dosages.DateRange, buckets []dosages.DailyBucket) error {
	_, _, total := dosages.Totals(buckets)
	if total == 0 {
		return ErrNoChartData
	}

	xs := make([]float64, len(buckets))
	ok := make([]float64, len(buckets))
	ko := make([]float64, len(buckets))
	maxY := 1.0
	for i, b := range buckets {
		xs[i] = float64(i)
		ok[i] = float64(b.Successful)
		ko[i] = float64(b.Failed)
		if ok[i] > maxY {
			maxY = ok[i]
		}
		if ko[i] > maxY {
			maxY = ko[i]
		}
	}

	maxX := float64(len(buckets) - 1)
	if maxX < 1 {
		maxX = 1
	}

	graph := chart.Chart{
		Title:      "Dosages " + rng.String(),
		TitleStyle: chart.Style{FontSize: 16},
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Width:  1200,
		Height: 400,
		XAxis: chart.XAxis{
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{Min: 0, Max: maxX},
			Ticks: dayTicks(buckets),
		},
		YAxis: chart.YAxis{
			Name: "Doses",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range:          &chart.ContinuousRange{Min: 0, Max: maxY},
			ValueFormatter: chart.IntValueFormatter,
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Successful",
				XValues: xs,
				YValues: ok,
				Style:   chart.Style{StrokeColor: successColor, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "Failed",
				XValues: xs,
				YValues: ko,
				Style:   chart.Style{StrokeColor: failedColor, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// dayTicks etiqueta como mucho maxChartTicks días.
func dayTicks(buckets []dosages.DailyBucket) []chart.Tick {
	step := 1
	if len(buckets) > maxChartTicks {
		step = (len(buckets) + maxChartTicks - 1) / maxChartTicks
	}
	ticks := make([]chart.Tick, 0, maxChartTicks+1)
	for i := 0; i < len(buckets); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: buckets[i].Label})
	}
	return ticks
}
