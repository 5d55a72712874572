package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used for query bounds.
const DateLayout = "2006-01-02"

// DefaultWindow is the lookback used when a query has no explicit start.
const DefaultWindow = 365 * 24 * time.Hour

var (
	ErrInvalidSymbol = errors.New("symbol must be a single non-empty ticker")
	ErrInvalidDate   = errors.New("date must be formatted as YYYY-MM-DD")
)

// StockQuery identifies one symbol and a [Start, End) window of trading dates.
// Build it with NewStockQuery; the zero value is not meaningful.
type StockQuery struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// NewStockQuery validates the symbol and parses the bounds. An empty start
// becomes now-365d and an empty end becomes now, both truncated to the date.
func NewStockQuery(symbol, start, end string, now time.Time) (StockQuery, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || strings.ContainsAny(symbol, ", \t\n[]") {
		return StockQuery{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}

	today := TruncateDate(now)
	q := StockQuery{
		Symbol: strings.ToUpper(symbol),
		Start:  today.Add(-DefaultWindow),
		End:    today,
	}

	var err error
	if strings.TrimSpace(start) != "" {
		if q.Start, err = ParseDate(start); err != nil {
			return StockQuery{}, err
		}
	}
	if strings.TrimSpace(end) != "" {
		if q.End, err = ParseDate(end); err != nil {
			return StockQuery{}, err
		}
	}
	return q, nil
}

// String renders the query for logs.
func (q StockQuery) String() string {
	return fmt.Sprintf("%s [%s, %s)", q.Symbol, q.Start.Format(DateLayout), q.End.Format(DateLayout))
}

// ParseDate parses an ISO-8601 calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// TruncateDate drops the clock part of t, keeping its calendar date in t's location,
// and returns that date as UTC midnight.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
