package calculator

import (
	"errors"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// ErrEmptySeries is returned when a summary is requested for a series without rows.
var ErrEmptySeries = errors.New("series has no rows")

// Summarize computes headline statistics for series. Moving averages and RSI that
// need more rows than the series holds are left invalid.
func Summarize(series *model.PriceSeries) (*model.SeriesSummary, error) {
	n := series.Len()
	if n == 0 {
		return nil, ErrEmptySeries
	}
	rows := series.Rows
	closes := series.Closes()

	pct := PercentChange(series)
	sum := &model.SeriesSummary{
		Symbol:     series.Symbol,
		From:       rows[0].Date,
		To:         rows[n-1].Date,
		Rows:       n,
		FirstClose: closes[0],
		LastClose:  closes[n-1],
		TotalPct:   pct.Rows[n-1].PercentChange.Float64,
	}

	high, low, err := CalculateRange(rows)
	if err != nil {
		return nil, err
	}
	sum.High, sum.Low = high, low
	if sum.Position, err = CalculatePosition(sum.LastClose, high, low); err != nil {
		return nil, err
	}

	if v, err := CalculateSMA(closes, 20); err == nil {
		sum.SMA20 = null.FloatFrom(v)
	}
	if v, err := CalculateSMA(closes, 50); err == nil {
		sum.SMA50 = null.FloatFrom(v)
	}
	if v, err := CalculateRSI(closes, 14); err == nil {
		sum.RSI14 = null.FloatFrom(v)
	}
	return sum, nil
}
