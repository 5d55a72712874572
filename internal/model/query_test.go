package model

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockQuery_DefaultWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	q, err := NewStockQuery(" nvda ", "", "", now)
	require.NoError(t, err)

	assert.Equal(t, "NVDA", q.Symbol)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), q.End)
	assert.Equal(t, 365*24*time.Hour, q.End.Sub(q.Start))
	assert.Equal(t, "NVDA [2024-03-14, 2025-03-14)", q.String())
}

func TestNewStockQuery_ExplicitDates(t *testing.T) {
	t.Parallel()

	q, err := NewStockQuery("AAPL", "2024-01-01", "2024-06-30", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", q.Start.Format(DateLayout))
	assert.Equal(t, "2024-06-30", q.End.Format(DateLayout))
}

func TestNewStockQuery_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		symbol string
		start  string
		want   error
	}{
		{"empty symbol", "  ", "", ErrInvalidSymbol},
		{"comma list", "NVDA,AAPL", "", ErrInvalidSymbol},
		{"space list", "NVDA AAPL", "", ErrInvalidSymbol},
		{"bracketed", "[NVDA]", "", ErrInvalidSymbol},
		{"bad date", "NVDA", "2024/01/01", ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewStockQuery(tt.symbol, tt.start, "", time.Now())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTruncateDate(t *testing.T) {
	t.Parallel()

	ny := time.FixedZone("EST", -5*3600)
	got := TruncateDate(time.Date(2024, 1, 2, 22, 0, 0, 0, ny))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestPriceSeries(t *testing.T) {
	t.Parallel()

	var nilSeries *PriceSeries
	assert.Equal(t, 0, nilSeries.Len())

	s := &PriceSeries{Symbol: "X", Rows: []PriceRow{{Close: 1}, {Close: 2, Change: null.FloatFrom(1)}}}
	assert.Equal(t, []float64{1, 2}, s.Closes())

	c := s.Clone()
	c.Rows[1].Change = null.Float{}
	assert.True(t, s.Rows[1].Change.Valid, "clone must not share rows")
}

func TestRankingRowFields(t *testing.T) {
	t.Parallel()

	r := RankingRow{Number: null.StringFrom("1"), Symbol: null.StringFrom("NVDA")}
	assert.Equal(t, []string{"1", "", "NVDA", ""}, r.Fields())
}
