// Package charts renders the client-count charts with go-chart.
//
// Chart A (RenderRunTimeChart) plots mean best value on the left axis and mean method run time on the
// right axis. Chart B (RenderStartTimeChart) plots mean client start time. Both return decoded images so
// the viewer can place them on a canvas and the CLI can write them as PNG.
package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MyfirstAcc/AntDist/src/types"
)

const (
	DefaultWidth  = 600
	DefaultHeight = 400

	RunTimeChartFile   = "run_time_best_value.png"
	StartTimeChartFile = "start_time_client.png"

	xAxisName = "Number of Clients"
)

var (
	// matplotlib tab:blue / tab:orange
	colorBest   = drawing.ColorFromHex("1f77b4")
	colorMethod = drawing.ColorFromHex("ff7f0e")
)

// Options control chart size and the title of Chart A.
type Options struct {
	Title  string
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// lineStyle is a solid line with circular markers.
func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
		DotWidth:    4,
		DotColor:    col,
	}
}

// squareMarkerSeries draws a continuous series with square markers instead of go-chart's dots.
type squareMarkerSeries struct {
	chart.ContinuousSeries
	MarkerSize int
}

func (s squareMarkerSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := s.Style.InheritFrom(defaults)
	line := style
	line.DotWidth = 0
	chart.Draw.LineSeries(r, canvasBox, xrange, yrange, line, s.ContinuousSeries)

	half := s.MarkerSize / 2
	if half < 1 {
		half = 1
	}
	markerColor := style.DotColor
	if markerColor.IsZero() {
		markerColor = style.StrokeColor
	}
	r.SetStrokeDashArray(nil)
	r.SetStrokeWidth(1)
	r.SetStrokeColor(markerColor)
	r.SetFillColor(markerColor)
	for i := 0; i < s.Len(); i++ {
		vx, vy := s.GetValues(i)
		x := canvasBox.Left + xrange.Translate(vx)
		y := canvasBox.Bottom - yrange.Translate(vy)
		r.MoveTo(x-half, y-half)
		r.LineTo(x+half, y-half)
		r.LineTo(x+half, y+half)
		r.LineTo(x-half, y+half)
		r.LineTo(x-half, y-half)
		r.Close()
		r.FillStroke()
	}
}

// points collects (client count, metric) pairs, dropping missing metrics.
func points(groups []types.GroupedAggregate, pick func(types.GroupedAggregate) float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(groups))
	ys := make([]float64, 0, len(groups))
	for _, g := range groups {
		v := pick(g)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, float64(g.ClientCount))
		ys = append(ys, v)
	}
	return xs, ys
}

func minMax(vs []float64) (float64, float64) {
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, v := range vs {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// buildXAxis puts a labelled tick on every client count when there are few of them.
// go-chart takes the x range from the tick span, so the padded bounds are carried as unlabelled ticks.
func buildXAxis(groups []types.GroupedAggregate) chart.XAxis {
	xs := make([]float64, 0, len(groups))
	for _, g := range groups {
		xs = append(xs, float64(g.ClientCount))
	}
	lo, hi := minMax(xs)
	span := hi - lo
	pad := math.Max(0.5, span*0.05)
	var ticks []chart.Tick
	if len(xs) <= 15 {
		for _, x := range xs {
			ticks = append(ticks, chart.Tick{Value: x, Label: fmt.Sprintf("%d", int(x))})
		}
	} else {
		ticks = niceTicks(lo, hi, 8)
		if len(ticks) > 0 {
			lo = math.Min(lo, ticks[0].Value)
			hi = math.Max(hi, ticks[len(ticks)-1].Value)
		}
	}
	if len(ticks) == 0 || ticks[0].Value > lo-pad {
		ticks = append([]chart.Tick{{Value: lo - pad}}, ticks...)
	}
	if ticks[len(ticks)-1].Value < hi+pad {
		ticks = append(ticks, chart.Tick{Value: hi + pad})
	}
	return chart.XAxis{
		Name:  xAxisName,
		Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		Ticks: ticks,
	}
}

func yAxis(name string, col drawing.Color, ys []float64) chart.YAxis {
	lo, hi := minMax(ys)
	rng, ticks := buildRangeAndTicks(lo, hi, 6, 0.04)
	return chart.YAxis{
		Name:      name,
		NameStyle: chart.Style{FontColor: col},
		Style:     chart.Style{FontColor: col},
		Range:     rng,
		Ticks:     ticks,
	}
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

// RenderRunTimeChart draws mean BestValue (left axis, circles) and mean MethodRunTime
// (right axis, dashed line, squares) against the number of clients.
func RenderRunTimeChart(groups []types.GroupedAggregate, opts Options) (image.Image, error) {
	opts = opts.withDefaults()
	bx, by := points(groups, func(g types.GroupedAggregate) float64 { return g.BestValue })
	mx, my := points(groups, func(g types.GroupedAggregate) float64 { return g.MethodRunTime })
	if len(bx) == 0 && len(mx) == 0 {
		return degenerate(opts, "No data: "+opts.Title), nil
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: background(),
		XAxis:      buildXAxis(groups),
	}
	if len(bx) > 0 {
		ch.YAxisSecondary = yAxis("Best Value", colorBest, by)
		ch.Series = append(ch.Series, chart.ContinuousSeries{
			Name:    "Best Value",
			YAxis:   chart.YAxisSecondary,
			Style:   lineStyle(colorBest),
			XValues: bx,
			YValues: by,
		})
	}
	if len(mx) > 0 {
		ch.YAxis = yAxis("Method Run Time (s)", colorMethod, my)
		st := lineStyle(colorMethod)
		st.DotWidth = 0
		st.StrokeDashArray = []float64{6, 4}
		ch.Series = append(ch.Series, squareMarkerSeries{
			ContinuousSeries: chart.ContinuousSeries{
				Name:    "Method Run Time",
				YAxis:   chart.YAxisPrimary,
				Style:   st,
				XValues: mx,
				YValues: my,
			},
			MarkerSize: 8,
		})
	} else {
		// the primary axis is always drawn; mirror the left axis so its range is valid
		ch.YAxis = ch.YAxisSecondary
		ch.YAxis.Style.Hidden = true
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return renderImage(ch, "run time")
}

// RenderStartTimeChart draws mean StartTimeClient against the number of clients.
func RenderStartTimeChart(groups []types.GroupedAggregate, opts Options) (image.Image, error) {
	opts = opts.withDefaults()
	sx, sy := points(groups, func(g types.GroupedAggregate) float64 { return g.StartTimeClient })
	if len(sx) == 0 {
		return degenerate(opts, "No data: start client process time"), nil
	}
	left := yAxis("Start Client Process (s)", colorBest, sy)
	hidden := left
	hidden.Style.Hidden = true
	ch := chart.Chart{
		Width:          opts.Width,
		Height:         opts.Height,
		Background:     background(),
		XAxis:          buildXAxis(groups),
		YAxis:          hidden,
		YAxisSecondary: left,
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Start Client Process (s)",
				YAxis:   chart.YAxisSecondary,
				Style:   lineStyle(colorBest),
				XValues: sx,
				YValues: sy,
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return renderImage(ch, "start time")
}

func renderImage(ch chart.Chart, label string) (image.Image, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s chart: %w", label, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode %s chart: %w", label, err)
	}
	return img, nil
}

// RenderAll renders both charts keyed by their default file names.
func RenderAll(groups []types.GroupedAggregate, opts Options) (map[string]image.Image, error) {
	a, err := RenderRunTimeChart(groups, opts)
	if err != nil {
		return nil, err
	}
	b, err := RenderStartTimeChart(groups, opts)
	if err != nil {
		return nil, err
	}
	return map[string]image.Image{RunTimeChartFile: a, StartTimeChartFile: b}, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteAll renders both charts into outDir and returns the written paths in a stable order.
func WriteAll(outDir string, groups []types.GroupedAggregate, opts Options) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create out dir: %w", err)
	}
	imgs, err := RenderAll(groups, opts)
	if err != nil {
		return nil, err
	}
	var written []string
	for _, name := range []string{RunTimeChartFile, StartTimeChartFile} {
		p := filepath.Join(outDir, name)
		if err := WritePNG(p, imgs[name]); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

// niceAxisBounds expands [min,max] by a small margin and rounds to "nice" numbers for readability.
func niceAxisBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	pad := span * 0.05
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// niceTicks generates up to n desired tick marks between [min, max] using nice increments.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	// Preferred tick steps: 1, 2, 2.5, 5, 10 ... scaled by power of 10
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil((max - min) / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	ticks := []chart.Tick{}
	for i := 0; ; i++ {
		v := start + float64(i)*bestStep
		if v > end+bestStep/2 {
			break
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

// buildRangeAndTicks returns nice ticks covering [min,max] and a range spanning them,
// widened by padPct of the tick span on both sides.
func buildRangeAndTicks(min, max float64, n int, padPct float64) (*chart.ContinuousRange, []chart.Tick) {
	if max <= min {
		d := math.Max(math.Abs(min)*0.1, 1)
		min, max = min-d, max+d
	}
	ticks := niceTicks(min, max, n)
	if len(ticks) < 2 {
		lo, hi := niceAxisBounds(min, max)
		return &chart.ContinuousRange{Min: lo, Max: hi}, ticks
	}
	lo, hi := ticks[0].Value, ticks[len(ticks)-1].Value
	pad := (hi - lo) * padPct
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}, ticks
}

func formatTick(v float64) string {
	if math.Abs(v) < 1e-12 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	case av >= 0.1:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

// blank returns a white image of the given size.
func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// degenerate is the chart shown for an empty aggregate table: a blank canvas with a caption.
func degenerate(opts Options, caption string) image.Image {
	return drawCaption(blank(opts.Width, opts.Height), strings.TrimSpace(caption))
}

// drawCaption draws text near the top-left corner on a light translucent box.
func drawCaption(img image.Image, text string) image.Image {
	if img == nil || text == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: rgba, Src: image.NewUniform(color.RGBA{R: 40, G: 40, B: 40, A: 255}), Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 12
	y := b.Min.Y + 12 + face.Metrics().Ascent.Ceil()
	bg := image.NewUniform(color.RGBA{R: 230, G: 230, B: 230, A: 220})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
