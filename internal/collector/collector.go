package collector

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"RegimeSentinel/internal/calculator"
	"RegimeSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	DailyData []model.OHLCV
	Seed      int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyCloses(_ string, start time.Time) ([]model.OHLCV, error) {
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return GenerateMockBars(start, 520, m.Seed), nil
}

// GenerateMockBars produces trading-day bars from start with alternating calm
// and turbulent stretches, so the mock source exercises both regimes.
func GenerateMockBars(start time.Time, days int, seed int64) []model.OHLCV {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]model.OHLCV, 0, days)
	price := 100.0
	day := start
	for len(bars) < days {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			sd := 0.005
			if (len(bars)/60)%2 == 1 {
				sd = 0.03
			}
			price *= math.Exp(sd * rng.NormFloat64())
			bars = append(bars, model.OHLCV{
				Time:   day,
				Open:   price * 0.999,
				High:   price * 1.005,
				Low:    price * 0.995,
				Close:  price,
				Volume: 1000000,
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

// Collector orchestrates data fetching and weekly return preparation.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
	Start   time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, start time.Time) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Start: start}
}

// Collect fetches daily bars since the start date, anchors them to Friday
// closes and computes the weekly percentage returns the engine consumes.
func (c *Collector) Collect() (*model.WeeklySeries, error) {
	daily, err := c.Fetcher.FetchDailyCloses(c.Symbol, c.Start)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}

	closes := FridayCloses(daily)
	if len(closes) < 3 {
		return nil, fmt.Errorf("only %d Friday closes since %s, need at least 3", len(closes), c.Start.Format("2006-01-02"))
	}

	returns, err := calculator.WeeklyReturns(closes)
	if err != nil {
		return nil, fmt.Errorf("weekly returns: %w", err)
	}

	return &model.WeeklySeries{
		Symbol:    c.Symbol,
		Closes:    closes,
		Returns:   returns,
		FetchedAt: time.Now(),
	}, nil
}

// FridayCloses selects the Friday bar of each ISO week. Weeks whose Friday is
// a market holiday are skipped rather than interpolated, so every retained
// close carries the market's final assessment for a full trading week.
func FridayCloses(daily []model.OHLCV) []model.OHLCV {
	fridays := make([]model.OHLCV, 0, len(daily)/5+1)
	for _, bar := range daily {
		if bar.Time.Weekday() == time.Friday {
			fridays = append(fridays, bar)
		}
	}
	return fridays
}
