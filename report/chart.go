package report

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartKind identifies one of the report charts.
type ChartKind string

const (
	ChartStudentCount ChartKind = "count"
	ChartPassRate     ChartKind = "passrate"
	ChartAverage      ChartKind = "average"
	ChartTrend        ChartKind = "trend"
)

// ChartType is the drawing style of a chart.
type ChartType int

const (
	BarChart ChartType = iota
	PieChart
	LineChart
)

const (
	titleFontSize = 18
	axisFontSize  = 14
	labelFontSize = 12

	// Colour factors: value × factor is the red channel, 255 − value × factor the green one.
	countColorFactor    = 20
	passRateColorFactor = 2.55
)

// ValueRange pins the value axis of a chart.
type ValueRange struct {
	Min, Max float64
}

// ChartSpec describes a chart independently of the rendering library.
type ChartSpec struct {
	Kind         ChartKind
	Type         ChartType
	Title        string
	CategoryAxis string
	ValueAxis    string
	NoData       string
	Series       Series
	ColorFactor  float64     // bars only; 0 keeps the default colour
	ValueRange   *ValueRange // nil lets the renderer pick
}

// Chart is a rendered chart.
type Chart struct {
	Kind  ChartKind `json:"kind"`
	Title string    `json:"title"`
	PNG   []byte    `json:"-"`
}

// ChartRenderer turns a chart spec into an image.
type ChartRenderer interface {
	Render(spec ChartSpec) ([]byte, error)
}

// HeatColor maps v to a colour running from green (low) to red (high).
func HeatColor(v, factor float64) drawing.Color {
	scaled := v * factor
	red := math.Min(255, math.Max(0, scaled))
	green := math.Max(0, math.Min(255, 255-scaled))
	return drawing.Color{R: uint8(red), G: uint8(green), B: 0, A: 255}
}

// LoadFont reads a TrueType font from path. An empty path returns the
// go-chart default font.
func LoadFont(path string) (*truetype.Font, error) {
	if path == "" {
		return chart.GetDefaultFont()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	font, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return font, nil
}

// GoChartRenderer renders PNG charts with go-chart. Every chart it draws
// uses the same font.
type GoChartRenderer struct {
	Font   *truetype.Font
	Width  int
	Height int
}

// NewGoChartRenderer returns a renderer drawing width×height images.
func NewGoChartRenderer(font *truetype.Font, width, height int) *GoChartRenderer {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 600
	}
	return &GoChartRenderer{Font: font, Width: width, Height: height}
}

// Render draws spec as a PNG image.
func (r *GoChartRenderer) Render(spec ChartSpec) ([]byte, error) {
	if spec.Series.Len() == 0 || (spec.Type == PieChart && spec.Series.Sum() == 0) {
		return r.placeholder(spec.Title, spec.NoData)
	}

	var buf bytes.Buffer
	var err error
	switch spec.Type {
	case BarChart:
		err = r.bar(spec).Render(chart.PNG, &buf)
	case PieChart:
		err = r.pie(spec).Render(chart.PNG, &buf)
	case LineChart:
		graph := r.line(spec)
		err = graph.Render(chart.PNG, &buf)
	default:
		return nil, fmt.Errorf("unknown chart type %d", spec.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s chart: %w", spec.Kind, err)
	}
	return buf.Bytes(), nil
}

func (r *GoChartRenderer) bar(spec ChartSpec) chart.BarChart {
	bars := make([]chart.Value, 0, spec.Series.Len())
	for _, p := range spec.Series.Points {
		style := chart.Style{FontSize: labelFontSize}
		if spec.ColorFactor > 0 {
			col := HeatColor(p.Value, spec.ColorFactor)
			style.FillColor = col
			style.StrokeColor = col
		}
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: style,
		})
	}

	yRange := spec.ValueRange
	if yRange == nil {
		yRange = &ValueRange{Min: 0, Max: headroom(spec.Series.Max())}
	}

	return chart.BarChart{
		Title:      spec.Title,
		TitleStyle: chart.Style{FontSize: titleFontSize},
		Font:       r.Font,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 120},
		},
		XAxis: chart.Style{FontSize: axisFontSize, TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:      spec.ValueAxis,
			NameStyle: chart.Style{FontSize: axisFontSize},
			Style:     chart.Style{FontSize: axisFontSize},
			Range:     &chart.ContinuousRange{Min: yRange.Min, Max: yRange.Max},
		},
		Bars:     bars,
		Elements: []chart.Renderable{barValueLabels(spec.Series, *yRange)},
	}
}

// barSlots mirrors go-chart's bar layout: the width and spacing of n bars
// drawn across a canvas canvasWidth pixels wide.
func barSlots(n, canvasWidth int) (width, spacing int) {
	if n == 0 {
		return 0, 0
	}
	width, spacing = chart.DefaultBarWidth, chart.DefaultBarSpacing
	if n*(width+spacing) > canvasWidth {
		spacing = 0
		if rest := canvasWidth - n*width; rest > 0 {
			spacing = int(math.Ceil(float64(rest) / float64(n)))
		}
	}
	if n*(width+spacing) > canvasWidth {
		width = 0
		if rest := canvasWidth - n*spacing; rest > 0 {
			width = int(math.Ceil(float64(rest) / float64(n)))
		}
	}
	return width, spacing
}

// barValueLabels writes each bar's value just above the bar.
func barValueLabels(series Series, yRange ValueRange) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		style := chart.Style{FontSize: labelFontSize, FontColor: drawing.ColorBlack}.InheritFrom(defaults)
		width, spacing := barSlots(series.Len(), cb.Width())
		delta := yRange.Max - yRange.Min
		if delta <= 0 {
			return
		}

		x := cb.Left + spacing/2
		for _, p := range series.Points {
			label := formatValue(p.Value)
			tb := chart.Draw.MeasureText(r, label, style)
			v := math.Min(math.Max(p.Value, yRange.Min), yRange.Max)
			top := cb.Bottom - int(math.Ceil((v-yRange.Min)/delta*float64(cb.Height())))
			chart.Draw.Text(r, label, x+(width-tb.Width())/2, top-4, style)
			x += width + spacing
		}
	}
}

func (r *GoChartRenderer) pie(spec ChartSpec) chart.PieChart {
	values := make([]chart.Value, 0, spec.Series.Len())
	for _, p := range spec.Series.Points {
		values = append(values, chart.Value{
			Label: p.Label + ": " + formatValue(p.Value),
			Value: p.Value,
			Style: chart.Style{FontSize: labelFontSize},
		})
	}
	return chart.PieChart{
		Title:      spec.Title,
		TitleStyle: chart.Style{FontSize: titleFontSize},
		Font:       r.Font,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: pieLegendWidth, Bottom: 20},
		},
		Values:   values,
		Elements: []chart.Renderable{pieLegend(spec.Series)},
	}
}

const pieLegendWidth = 240

// pieLegend lists the slice labels beside the pie in slice colour order.
func pieLegend(series Series) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		text := chart.Style{FontSize: labelFontSize, FontColor: drawing.ColorBlack}.InheritFrom(defaults)
		left := cb.Right + 24
		top := cb.Top
		for i, p := range series.Points {
			swatch := chart.Box{Top: top, Left: left, Right: left + 12, Bottom: top + 12}
			col := chart.AlternateColorPalette.GetSeriesColor(i)
			chart.Draw.Box(r, swatch, chart.Style{FillColor: col, StrokeColor: col})
			chart.Draw.Text(r, p.Label, left+18, top+11, text)
			top += 20
		}
	}
}

func (r *GoChartRenderer) line(spec ChartSpec) *chart.Chart {
	n := spec.Series.Len()
	xs := make([]float64, n)
	ys := make([]float64, n)
	annotations := make([]chart.Value2, n)
	ticks := lineTicks(spec.Series)
	for i, p := range spec.Series.Points {
		x := float64(i)
		xs[i] = x
		ys[i] = p.Value
		annotations[i] = chart.Value2{XValue: x, YValue: p.Value, Label: formatValue(p.Value)}
	}

	yRange := spec.ValueRange
	if yRange == nil {
		yRange = &ValueRange{Min: 0, Max: headroom(spec.Series.Max())}
	}

	graph := &chart.Chart{
		Title:      spec.Title,
		TitleStyle: chart.Style{FontSize: titleFontSize},
		Font:       r.Font,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:      spec.CategoryAxis,
			NameStyle: chart.Style{FontSize: axisFontSize},
			Style:     chart.Style{FontSize: axisFontSize},
			TickStyle: chart.Style{TextRotationDegrees: 45},
			Ticks:     ticks,
		},
		YAxis: chart.YAxis{
			Name:      spec.ValueAxis,
			NameStyle: chart.Style{FontSize: axisFontSize},
			Style:     chart.Style{FontSize: axisFontSize},
			Range:     &chart.ContinuousRange{Min: yRange.Min, Max: yRange.Max},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.Series.Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
			chart.AnnotationSeries{
				Annotations: annotations,
				Style:       chart.Style{FontSize: labelFontSize},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph, chart.Style{FontSize: labelFontSize})}
	return graph
}

// lineTicks labels one tick per point. go-chart takes the x range from the
// outermost ticks, so blank ticks half a slot outside keep the range open
// for a single point and pad the ends otherwise.
func lineTicks(series Series) []chart.Tick {
	n := series.Len()
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, p := range series.Points {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: p.Label})
	}
	return append(ticks, chart.Tick{Value: float64(n) - 0.5})
}

// placeholder draws an empty chart carrying only the title and a note.
func (r *GoChartRenderer) placeholder(title, note string) ([]byte, error) {
	canvas, err := chart.PNG(r.Width, r.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}

	canvas.SetFillColor(drawing.ColorWhite)
	canvas.MoveTo(0, 0)
	canvas.LineTo(r.Width, 0)
	canvas.LineTo(r.Width, r.Height)
	canvas.LineTo(0, r.Height)
	canvas.Close()
	canvas.Fill()

	canvas.SetFont(r.Font)
	canvas.SetFontColor(drawing.ColorBlack)
	canvas.SetFontSize(titleFontSize)
	tb := canvas.MeasureText(title)
	canvas.Text(title, (r.Width-tb.Width())/2, 40)

	if note != "" {
		canvas.SetFontSize(axisFontSize)
		nb := canvas.MeasureText(note)
		canvas.Text(note, (r.Width-nb.Width())/2, r.Height/2)
	}

	var buf bytes.Buffer
	if err := canvas.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// headroom returns an axis maximum a little above top, never zero.
func headroom(top float64) float64 {
	if top <= 0 {
		return 1
	}
	return math.Ceil(top * 1.1)
}
