package collector

import (
	"time"

	"RegimeSentinel/internal/model"
)

// Fetcher defines the interface for fetching historical market data.
type Fetcher interface {
	// FetchDailyCloses returns daily bars for the symbol from start to now,
	// in chronological order, with null bars (holidays) already dropped.
	FetchDailyCloses(symbol string, start time.Time) ([]model.OHLCV, error)
	Name() string
}
