// Package chart renders comparative benchmark charts with gonum/plot.
//
// The package consumes aggregated series as plain structured data. Gap points
// arrive as nil estimates and break the plotted line; they are never coerced
// to numeric zeros.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/benchvis/breakeven/schema"
)

// Line is one plotted series with an optional annotated crossover.
type Line struct {
	Series    schema.Series
	Crossover *schema.CrossoverPoint
	ErrorBars bool // draw asymmetric CI error bars per point
}

// Input describes one chart to render.
type Input struct {
	Name      string // artifact base name, without extension
	Title     string
	XLabel    string
	YLabel    string
	Lines     []Line
	Baselines []schema.Baseline // horizontal reference lines with CI bands
	Log2X     bool
	XTicks    []float64
	XMin      float64
	XMax      float64
}

// Palette order matches the series order the analyses emit.
var seriesColors = []color.RGBA{
	{R: 0x2E, G: 0x86, B: 0xAB, A: 0xFF}, // blue
	{R: 0xF7, G: 0x7F, B: 0x00, A: 0xFF}, // orange
	{R: 0x48, G: 0xCA, B: 0xE4, A: 0xFF}, // cyan
	{R: 0xE8, G: 0x5D, B: 0x04, A: 0xFF}, // deep orange
}

var baselineColors = []color.RGBA{
	{R: 0xE9, G: 0x4F, B: 0x37, A: 0xFF}, // red
	{R: 0x06, G: 0xA7, B: 0x7D, A: 0xFF}, // green
	{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF}, // purple
}

var glyphs = []draw.GlyphDrawer{
	draw.CircleGlyph{},
	draw.BoxGlyph{},
	draw.TriangleGlyph{},
	draw.PyramidGlyph{},
}

// Render draws the chart and saves it under outDir as both a PNG raster and a
// PDF vector artifact.
func Render(in Input, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating chart directory %s: %w", outDir, err)
	}

	p := plot.New()
	p.Title.Text = in.Title
	p.X.Label.Text = in.XLabel
	p.Y.Label.Text = in.YLabel
	p.Legend.Top = false
	p.Legend.Left = false

	if in.Log2X {
		p.X.Scale = plot.LogScale{}
	}
	if len(in.XTicks) > 0 {
		ticks := make([]plot.Tick, len(in.XTicks))
		for i, x := range in.XTicks {
			ticks[i] = plot.Tick{Value: x, Label: trimFloat(x)}
		}
		p.X.Tick.Marker = plot.ConstantTicks(ticks)
	}
	if in.XMax > in.XMin {
		p.X.Min = in.XMin
		p.X.Max = in.XMax
	}

	xMin, xMax := dataXRange(in)

	for i, bl := range in.Baselines {
		if err := addBaseline(p, bl, xMin, xMax, baselineColors[i%len(baselineColors)]); err != nil {
			return err
		}
	}

	for i, ln := range in.Lines {
		if err := addLine(p, ln, seriesColors[i%len(seriesColors)], glyphs[i%len(glyphs)]); err != nil {
			return err
		}
	}

	base := filepath.Join(outDir, in.Name)
	if err := p.Save(10*vg.Inch, 6*vg.Inch, base+".png"); err != nil {
		return fmt.Errorf("saving %s.png: %w", in.Name, err)
	}
	if err := p.Save(10*vg.Inch, 6*vg.Inch, base+".pdf"); err != nil {
		return fmt.Errorf("saving %s.pdf: %w", in.Name, err)
	}
	return nil
}

// LineSegments converts a series into contiguous runs of present points. Each
// gap point ends the current segment, so the renderer breaks the line instead
// of bridging an unmeasured cell.
func LineSegments(s schema.Series) []plotter.XYs {
	var segments []plotter.XYs
	var current plotter.XYs
	for _, pt := range s.Points {
		if pt.Missing() {
			if len(current) > 0 {
				segments = append(segments, current)
				current = nil
			}
			continue
		}
		current = append(current, plotter.XY{X: pt.Control, Y: pt.Estimate.Mean})
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// errPoints adapts present series points for plotter.NewYErrorBars.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// addLine draws one series: line segments split at gaps, scatter markers,
// optional error bars and the crossover annotation.
func addLine(p *plot.Plot, ln Line, c color.RGBA, glyph draw.GlyphDrawer) error {
	segments := LineSegments(ln.Series)
	var legendDone bool
	for _, seg := range segments {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return fmt.Errorf("building line for %s: %w", ln.Series.Name, err)
		}
		line.Color = c
		line.Width = vg.Points(2)

		scatter, err := plotter.NewScatter(seg)
		if err != nil {
			return fmt.Errorf("building markers for %s: %w", ln.Series.Name, err)
		}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Shape = glyph
		scatter.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, scatter)
		if !legendDone {
			p.Legend.Add(ln.Series.Name, line, scatter)
			legendDone = true
		}
	}

	if ln.ErrorBars {
		if err := addErrorBars(p, ln.Series, c); err != nil {
			return err
		}
	}

	if ln.Crossover != nil {
		if err := addCrossover(p, ln.Series.Name, *ln.Crossover, c); err != nil {
			return err
		}
	}
	return nil
}

// addErrorBars draws asymmetric confidence-interval bars on present points.
func addErrorBars(p *plot.Plot, s schema.Series, c color.RGBA) error {
	present := s.Present()
	if len(present) == 0 {
		return nil
	}
	pts := errPoints{
		XYs:     make(plotter.XYs, len(present)),
		YErrors: make(plotter.YErrors, len(present)),
	}
	for i, pt := range present {
		pts.XYs[i] = plotter.XY{X: pt.Control, Y: pt.Estimate.Mean}
		pts.YErrors[i] = struct{ Low, High float64 }{
			Low:  pt.Estimate.ErrorLower(),
			High: pt.Estimate.ErrorUpper(),
		}
	}
	bars, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return fmt.Errorf("building error bars for %s: %w", s.Name, err)
	}
	bars.Color = c
	p.Add(bars)
	return nil
}

// addBaseline draws a dashed horizontal reference line plus a translucent
// uncertainty band when the baseline carries a half-width.
func addBaseline(p *plot.Plot, bl schema.Baseline, xMin, xMax float64, c color.RGBA) error {
	line, err := plotter.NewLine(plotter.XYs{
		{X: xMin, Y: bl.Level},
		{X: xMax, Y: bl.Level},
	})
	if err != nil {
		return fmt.Errorf("building baseline %s: %w", bl.Name, err)
	}
	line.Color = c
	line.Width = vg.Points(2)
	line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("%s: %.1f", bl.Name, bl.Level), line)

	if bl.HalfWidth > 0 {
		band, err := plotter.NewPolygon(plotter.XYs{
			{X: xMin, Y: bl.Level - bl.HalfWidth},
			{X: xMax, Y: bl.Level - bl.HalfWidth},
			{X: xMax, Y: bl.Level + bl.HalfWidth},
			{X: xMin, Y: bl.Level + bl.HalfWidth},
		})
		if err != nil {
			return fmt.Errorf("building baseline band %s: %w", bl.Name, err)
		}
		band.Color = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0x26}
		band.LineStyle.Width = 0
		p.Add(band)
	}
	return nil
}

// addCrossover marks the interpolated breakeven with a dash-dot vertical line
// and a label near the crossing.
func addCrossover(p *plot.Plot, seriesName string, cp schema.CrossoverPoint, c color.RGBA) error {
	vline, err := plotter.NewLine(plotter.XYs{
		{X: cp.Control, Y: 0},
		{X: cp.Control, Y: cp.Level},
	})
	if err != nil {
		return fmt.Errorf("building crossover line for %s: %w", seriesName, err)
	}
	vline.Color = c
	vline.Width = vg.Points(1.5)
	vline.Dashes = []vg.Length{vg.Points(4), vg.Points(2), vg.Points(1), vg.Points(2)}
	p.Add(vline)

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: cp.Control, Y: cp.Level * 1.05}},
		Labels: []string{fmt.Sprintf("breakeven ≈ %.0f", cp.Control)},
	})
	if err != nil {
		return fmt.Errorf("building crossover label for %s: %w", seriesName, err)
	}
	p.Add(labels)
	return nil
}

// dataXRange finds the horizontal extent of the chart so baselines span the
// full width.
func dataXRange(in Input) (float64, float64) {
	if in.XMax > in.XMin {
		return in.XMin, in.XMax
	}
	first := true
	var xMin, xMax float64
	grow := func(x float64) {
		if first {
			xMin, xMax = x, x
			first = false
			return
		}
		if x < xMin {
			xMin = x
		}
		if x > xMax {
			xMax = x
		}
	}
	for _, ln := range in.Lines {
		for _, pt := range ln.Series.Points {
			grow(pt.Control)
		}
	}
	for _, x := range in.XTicks {
		grow(x)
	}
	if first {
		return 0, 1
	}
	return xMin, xMax
}

// trimFloat formats tick labels without trailing zeros for integer values.
func trimFloat(x float64) string {
	if x == float64(int64(x)) {
		return fmt.Sprintf("%d", int64(x))
	}
	return fmt.Sprintf("%.2f", x)
}
