package collector

import (
	"context"

	"PriceCycle/internal/model"
)

// Fetcher is the market data source. Fetch returns up to count bars of the
// given granularity in chronological order.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, g model.Granularity, count int) ([]model.Bar, error)
	Name() string
}
