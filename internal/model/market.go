package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// WeeklyReturn is one weekly percentage return anchored at a Friday close.
type WeeklyReturn struct {
	Time  time.Time
	Value float64 // percent, 100 * (P_t - P_{t-1}) / P_{t-1}
}

// WeeklySeries holds Friday-anchored closes and the returns derived from them.
type WeeklySeries struct {
	Symbol    string
	Closes    []OHLCV
	Returns   []WeeklyReturn
	FetchedAt time.Time
}
