// Package viz builds the figures the posts embed. Every figure carries a
// caption and alt text; saving a figure without alt text is an error, since
// a chart a screen reader cannot describe is a chart half the audience
// cannot read.
package viz

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/statnotes/statnotes/metrics"
	"github.com/statnotes/statnotes/pkg/errors"
)

// Figure is a plot plus the text that accompanies it in a post.
type Figure struct {
	Plot    *plot.Plot
	Caption string
	AltText string
}

// palette is the fixed series palette, chosen to stay distinguishable for
// common colour-vision deficiencies.
var palette = []color.RGBA{
	{R: 0x1b, G: 0x9e, B: 0x77, A: 0xff},
	{R: 0xd9, G: 0x5f, B: 0x02, A: 0xff},
	{R: 0x75, G: 0x70, B: 0xb3, A: 0xff},
	{R: 0xe7, G: 0x29, B: 0x8a, A: 0xff},
	{R: 0x66, G: 0xa6, B: 0x1e, A: 0xff},
}

func seriesColor(i int) color.RGBA { return palette[i%len(palette)] }

// SavePNG writes the figure at the given size; zero width or height falls
// back to 6×4 inches.
func (f *Figure) SavePNG(path string, width, height vg.Length) error {
	if f.AltText == "" {
		return errors.NewValueError("viz.SavePNG", "figure has no alt text")
	}
	if width <= 0 {
		width = 6 * vg.Inch
	}
	if height <= 0 {
		height = 4 * vg.Inch
	}
	if err := f.Plot.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "saving figure to %s", path)
	}
	return nil
}

// ScatterGroup is one labelled series of points.
type ScatterGroup struct {
	Label string
	X     []float64
	Y     []float64
}

// GroupedScatter draws one scatter series per group with a shared legend.
func GroupedScatter(title, xLabel, yLabel, altText string, groups []ScatterGroup) (*Figure, error) {
	if len(groups) == 0 {
		return nil, errors.NewModelError("viz.GroupedScatter", "no groups", errors.ErrEmptyData)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true

	for gi, g := range groups {
		if len(g.X) != len(g.Y) {
			return nil, errors.NewDimensionError("viz.GroupedScatter", len(g.X), len(g.Y), 0)
		}
		pts := make(plotter.XYs, len(g.X))
		for i := range g.X {
			pts[i] = plotter.XY{X: g.X[i], Y: g.Y[i]}
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, errors.Wrap(err, "building scatter series")
		}
		s.GlyphStyle.Color = seriesColor(gi)
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		p.Legend.Add(g.Label, s)
	}
	return &Figure{Plot: p, Caption: title, AltText: altText}, nil
}

// Histogram draws a histogram of values with the given number of bins.
func Histogram(title, xLabel, altText string, values []float64, bins int) (*Figure, error) {
	if len(values) == 0 {
		return nil, errors.NewModelError("viz.Histogram", "no values", errors.ErrEmptyData)
	}
	if bins < 1 {
		bins = 10
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, errors.Wrap(err, "building histogram")
	}
	h.FillColor = seriesColor(0)
	p.Add(h)
	return &Figure{Plot: p, Caption: title, AltText: altText}, nil
}

// ROC draws a receiver operating characteristic curve with the chance
// diagonal for reference.
func ROC(title, altText string, curve []metrics.ROCPoint) (*Figure, error) {
	if len(curve) == 0 {
		return nil, errors.NewModelError("viz.ROC", "empty curve", errors.ErrEmptyData)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "false positive rate"
	p.Y.Label.Text = "true positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(curve))
	for i, c := range curve {
		pts[i] = plotter.XY{X: c.FPR, Y: c.TPR}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "building ROC line")
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = seriesColor(1)

	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return nil, errors.Wrap(err, "building reference line")
	}
	diag.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(line, diag)
	p.Legend.Add("model", line)
	p.Legend.Add("chance", diag)
	return &Figure{Plot: p, Caption: title, AltText: altText}, nil
}

// Calibration plots mean predicted probability against observed event rate
// per bin, with the ideal diagonal.
func Calibration(title, altText string, predicted, observed []float64) (*Figure, error) {
	if len(predicted) == 0 {
		return nil, errors.NewModelError("viz.Calibration", "no bins", errors.ErrEmptyData)
	}
	if len(predicted) != len(observed) {
		return nil, errors.NewDimensionError("viz.Calibration", len(predicted), len(observed), 0)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "mean predicted probability"
	p.Y.Label.Text = "observed event rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(predicted))
	for i := range predicted {
		pts[i] = plotter.XY{X: predicted[i], Y: observed[i]}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "building calibration points")
	}
	s.GlyphStyle.Color = seriesColor(2)
	s.GlyphStyle.Radius = vg.Points(3)

	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return nil, errors.Wrap(err, "building reference line")
	}
	diag.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(s, diag)
	return &Figure{Plot: p, Caption: title, AltText: altText}, nil
}

// Bar draws one bar per label.
func Bar(title, yLabel, altText string, labels []string, values []float64) (*Figure, error) {
	if len(labels) == 0 {
		return nil, errors.NewModelError("viz.Bar", "no bars", errors.ErrEmptyData)
	}
	if len(labels) != len(values) {
		return nil, errors.NewDimensionError("viz.Bar", len(labels), len(values), 0)
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(24))
	if err != nil {
		return nil, errors.Wrap(err, "building bar chart")
	}
	bars.Color = seriesColor(0)
	p.Add(bars)
	p.NominalX(labels...)
	return &Figure{Plot: p, Caption: title, AltText: altText}, nil
}
