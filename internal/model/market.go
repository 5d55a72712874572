package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// OHLCV represents a single daily bar as returned by a data provider.
type OHLCV struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// PriceRow is one trading day of a PriceSeries plus the columns derived from Close.
type PriceRow struct {
	Date     time.Time // trading date, UTC midnight
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64

	Change        null.Float // close[t] - close[t-1]
	InstantReturn null.Float // ln(round(close[t-1], 4))
	PercentChange null.Float // cumulative percent change, set by calculator.PercentChange
}

// PriceSeries holds the daily rows for one symbol, ordered by ascending date.
type PriceSeries struct {
	Symbol    string
	Rows      []PriceRow
	FetchedAt time.Time
}

// Len returns the number of rows.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Closes returns the close column.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		closes[i] = r.Close
	}
	return closes
}

// Clone returns a deep copy of the series.
func (s *PriceSeries) Clone() *PriceSeries {
	rows := make([]PriceRow, len(s.Rows))
	copy(rows, s.Rows)
	return &PriceSeries{Symbol: s.Symbol, Rows: rows, FetchedAt: s.FetchedAt}
}
