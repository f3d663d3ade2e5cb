// Package report renders evaluation charts.
package report

import (
	"errors"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type Bar struct {
	Name  string
	Value float64
}

// PlotScores draws one bar per score on a [0, 1] axis and saves the chart as
// an image; the format follows the file extension.
func PlotScores(path, title string, bars []Bar) error {
	if len(bars) == 0 {
		return errors.New("report: nothing to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Valor"
	p.Y.Min = 0
	p.Y.Max = 1

	values := make(plotter.Values, len(bars))
	names := make([]string, len(bars))
	for i, b := range bars {
		values[i] = b.Value
		names[i] = b.Name
	}
	chart, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return err
	}
	chart.Color = plotutil.Color(0)
	chart.LineStyle.Width = vg.Length(0)
	p.Add(chart, plotter.NewGrid())
	p.NominalX(names...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	w := vg.Length(len(bars)) * 0.9 * vg.Inch
	if w < 4*vg.Inch {
		w = 4 * vg.Inch
	}
	return p.Save(w, 4*vg.Inch, path)
}
