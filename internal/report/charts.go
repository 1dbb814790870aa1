package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pandemica/internal/sim"
)

// ErrNotEnoughData is returned when there is nothing meaningful to plot.
var ErrNotEnoughData = errors.New("report: not enough data to plot")

const (
	panelWidth  = 480
	panelHeight = 360
)

var stateColors = map[sim.State]drawing.Color{
	sim.Susceptible: chart.ColorBlue,
	sim.Exposed:     {R: 255, G: 165, B: 0, A: 255},
	sim.Infectious:  chart.ColorRed,
	sim.Recovered:   chart.ColorGreen,
	sim.Deceased:    chart.ColorBlack,
}

// StateHistoryChart plots the count of every state over time as a PNG.
// history needs at least two steps.
func StateHistoryChart(w io.Writer, history []sim.Counts) error {
	if len(history) < 2 {
		return ErrNotEnoughData
	}
	steps := make([]float64, len(history))
	for i := range history {
		steps[i] = float64(i + 1)
	}
	series := make([]chart.Series, 0, len(sim.States()))
	for _, s := range sim.States() {
		values := make([]float64, len(history))
		for i, c := range history {
			values[i] = float64(c.Get(s))
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.String(),
			XValues: steps,
			YValues: values,
			Style: chart.Style{
				StrokeColor: stateColors[s],
				StrokeWidth: 2.0,
			},
		})
	}

	total := float64(history[0].Total())
	graph := chart.Chart{
		Title:  "State history",
		Width:  2 * panelWidth,
		Height: panelHeight,
		XAxis: chart.XAxis{
			Name:  "step",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 1, Max: float64(len(history))},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "agents",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: total},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// RatesChart draws one bar chart per rate side by side in a single PNG.
func RatesChart(w io.Writer, rates RateDistributions) error {
	if rates.Empty() {
		return ErrNotEnoughData
	}
	panels := []struct {
		title   string
		buckets []Bucket
		color   drawing.Color
	}{
		{"Infection rate (%)", rates.Infection, chart.ColorRed},
		{"Recovery rate (%)", rates.Recovery, chart.ColorGreen},
		{"Mortality rate (%)", rates.Mortality, chart.ColorBlack},
		{"Immunity loss rate (%)", rates.ImmunityLoss, chart.ColorBlue},
	}
	images := make([]image.Image, 0, len(panels))
	for _, p := range panels {
		img, err := renderPanel(barChart(p.title, p.buckets, p.color))
		if err != nil {
			return fmt.Errorf("%s: %w", p.title, err)
		}
		images = append(images, img)
	}
	return png.Encode(w, tile(images, len(images)))
}

// DistributionChart draws the age histogram and the gender, vaccination and
// mask shares in a two by two PNG.
func DistributionChart(w io.Writer, d Distributions) error {
	if d.Empty() {
		return ErrNotEnoughData
	}
	renderables := []renderable{
		barChart("Age", d.Age, chart.ColorAlternateBlue),
		pieChart("Gender", d.Gender),
		pieChart("Vaccinated", d.Vaccinated),
		pieChart("Mask wearing", d.Mask),
	}
	images := make([]image.Image, 0, len(renderables))
	for _, r := range renderables {
		img, err := renderPanel(r)
		if err != nil {
			return err
		}
		images = append(images, img)
	}
	return png.Encode(w, tile(images, 2))
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func barChart(title string, buckets []Bucket, color drawing.Color) *chart.BarChart {
	bars := make([]chart.Value, 0, len(buckets))
	maxCount := 0
	for _, b := range buckets {
		bars = append(bars, chart.Value{
			Value: float64(b.Count),
			Label: strconv.Itoa(b.Key),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		maxCount = max(maxCount, b.Count)
	}
	barWidth := 30
	if len(bars) > 12 {
		barWidth = 8
	}
	width := max(panelWidth, len(bars)*(barWidth+4)+120)
	return &chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   panelHeight,
		BarWidth: barWidth,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount + 1)},
		},
		Bars: bars,
	}
}

func pieChart(title string, categories []Category) *chart.PieChart {
	values := make([]chart.Value, 0, len(categories))
	for _, c := range categories {
		if c.Count == 0 {
			continue
		}
		values = append(values, chart.Value{Value: float64(c.Count), Label: c.Label})
	}
	return &chart.PieChart{
		Title:  title,
		Width:  panelWidth,
		Height: panelHeight,
		Values: values,
	}
}

func renderPanel(r renderable) (image.Image, error) {
	var buf bytes.Buffer
	if err := r.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	return img, nil
}

// tile lays images out left to right, wrapping after cols images.
func tile(images []image.Image, cols int) *image.RGBA {
	cellW, cellH := 0, 0
	for _, img := range images {
		cellW = max(cellW, img.Bounds().Dx())
		cellH = max(cellH, img.Bounds().Dy())
	}
	rows := (len(images) + cols - 1) / cols
	out := image.NewRGBA(image.Rect(0, 0, cellW*cols, cellH*rows))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	for i, img := range images {
		at := image.Pt((i%cols)*cellW, (i/cols)*cellH)
		draw.Draw(out, img.Bounds().Sub(img.Bounds().Min).Add(at), img, img.Bounds().Min, draw.Src)
	}
	return out
}
