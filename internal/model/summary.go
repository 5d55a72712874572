package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// SeriesSummary holds headline statistics for a loaded PriceSeries.
type SeriesSummary struct {
	Symbol     string
	From       time.Time
	To         time.Time
	Rows       int
	FirstClose float64
	LastClose  float64
	TotalPct   float64 // final cumulative percent change
	High       float64
	Low        float64
	Position   float64 // 0.0 ~ 1.0 within [Low, High]
	SMA20      null.Float
	SMA50      null.Float
	RSI14      null.Float
}
