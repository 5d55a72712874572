package collector

import (
	"context"
	"errors"
	"time"

	"StockScope/internal/model"
)

// ErrNoData is returned by fetchers when the provider has no bars for the request.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching daily market data.
// The window is [start, end): end is exclusive.
type Fetcher interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
