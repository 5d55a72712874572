package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"StockScope/internal/model"
)

// Performance plots cumulative percent change over date. The series must come
// from calculator.PercentChange; it is not modified. Non-finite points are
// left out of the line.
func Performance(series *model.PriceSeries, style Style) (*plot.Plot, error) {
	if series.Len() == 0 {
		return nil, ErrNoData
	}
	xys := make(plotter.XYs, 0, series.Len())
	for _, r := range series.Rows {
		if !r.PercentChange.Valid {
			return nil, fmt.Errorf("%w: row %s", ErrPercentChangeMissing, r.Date.Format(model.DateLayout))
		}
		v := r.PercentChange.Float64
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(r.Date.Unix()), Y: v})
	}
	if len(xys) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Stock Performance: %s", series.Symbol)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Percent Change"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Y.Tick.Marker = percentTicks{}
	p.Legend.Top = true
	p.Legend.Left = true
	style.apply(p)

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("performance line: %w", err)
	}
	line.LineStyle.Color = style.Color
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("Percent Change", line)
	return p, nil
}

// percentTicks labels the default ticks as percentages.
type percentTicks struct{}

func (percentTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = fmt.Sprintf("%.0f%%", ticks[i].Value)
		}
	}
	return ticks
}

func withAlpha(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}
