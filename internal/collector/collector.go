package collector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error

	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		out := make([]model.OHLCV, len(m.Bars))
		copy(out, m.Bars)
		return out, nil
	}
	bars := generateMockBars(m.Price, start, end)
	if len(bars) == 0 {
		return nil, fmt.Errorf("mock: %w", ErrNoData)
	}
	return bars, nil
}

// generateMockBars yields one bar per weekday in [start, end).
func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	var bars []model.OHLCV
	i := 0
	for d := model.TruncateDate(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + 0.03*math.Sin(float64(i)/9) + float64(i)*0.0005)
		bars = append(bars, model.OHLCV{
			Time:     d,
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p,
			Volume:   1000000,
		})
		i++
	}
	return bars
}

// Stock owns the price series for one query. Construction does no I/O;
// Load fetches and derives.
type Stock struct {
	Fetcher Fetcher
	Query   model.StockQuery

	series *model.PriceSeries
}

// NewStock creates a new Stock.
func NewStock(fetcher Fetcher, query model.StockQuery) *Stock {
	return &Stock{Fetcher: fetcher, Query: query}
}

// Series returns the last loaded series, or nil before Load.
func (s *Stock) Series() *model.PriceSeries {
	return s.series
}

// Load fetches daily bars for the query window, normalizes them into a
// date-ordered series and computes Change and InstantReturn. A previous
// series is replaced.
func (s *Stock) Load(ctx context.Context) (*model.PriceSeries, error) {
	bars, err := s.Fetcher.FetchDaily(ctx, s.Query.Symbol, s.Query.Start, s.Query.End)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars %s: %w", s.Query.Symbol, err)
	}

	series := &model.PriceSeries{
		Symbol:    s.Query.Symbol,
		Rows:      normalize(bars),
		FetchedAt: time.Now().UTC(),
	}
	calculator.CalcReturns(series.Rows)
	s.series = series

	zap.L().Debug("series loaded",
		zap.String("symbol", series.Symbol),
		zap.String("source", s.Fetcher.Name()),
		zap.Int("rows", series.Len()),
	)
	return series, nil
}

// normalize maps bars to rows keyed by trading date, ascending, one row per
// date. When a date repeats the later bar wins.
func normalize(bars []model.OHLCV) []model.PriceRow {
	rows := make([]model.PriceRow, len(bars))
	for i, b := range bars {
		rows[i] = model.PriceRow{
			Date:     model.TruncateDate(b.Time),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: b.AdjClose,
			Volume:   b.Volume,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	out := rows[:0]
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].Date.Equal(r.Date) {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}
