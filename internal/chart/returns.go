package chart

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// Bins is the histogram bin count of the return distribution.
const Bins = 25

// ReturnDistribution plots a histogram of the valid, finite instant returns of
// series with a KDE overlay scaled to counts.
func ReturnDistribution(series *model.PriceSeries, style Style) (*plot.Plot, error) {
	values := calculator.InstantReturns(series)
	if len(values) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Instant Return Distribution: %s", series.Symbol)
	p.X.Label.Text = "instant_return"
	p.Y.Label.Text = "Count"
	style.apply(p)

	hist, err := plotter.NewHist(plotter.Values(values), Bins)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	hist.FillColor = withAlpha(style.Color, 0x99)
	hist.LineStyle.Color = style.Color
	hist.LineStyle.Width = vg.Points(0.5)
	p.Add(hist)

	if curve := kde(values, float64(len(values))*hist.Width); curve != nil {
		line, err := plotter.NewLine(curve)
		if err != nil {
			return nil, fmt.Errorf("kde line: %w", err)
		}
		line.LineStyle.Color = style.Color
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
	}
	return p, nil
}
