package calculator

import (
	"errors"
	"fmt"
	"math"

	"RegimeSentinel/internal/model"
)

// Input validation failures. These abort a classification before any
// training happens; a partially-labeled result is never produced.
var (
	ErrTooShort         = errors.New("return sequence too short, need at least 2 values")
	ErrNonFinite        = errors.New("return sequence contains a non-finite value")
	ErrNotChronological = errors.New("return sequence is not in chronological order")
)

// WeeklyReturns computes period-over-period percentage returns from
// Friday-anchored closes: 100 * (P_t - P_{t-1}) / P_{t-1}. The first bar has
// no defined return and is dropped. Requires at least 3 closes so the
// resulting sequence has the minimum 2 returns.
func WeeklyReturns(closes []model.OHLCV) ([]model.WeeklyReturn, error) {
	if len(closes) < 3 {
		return nil, fmt.Errorf("%w: %d weekly closes", ErrTooShort, len(closes))
	}
	returns := make([]model.WeeklyReturn, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1].Close
		if prev == 0 {
			return nil, fmt.Errorf("%w: zero close at %s", ErrNonFinite, closes[i-1].Time.Format("2006-01-02"))
		}
		returns = append(returns, model.WeeklyReturn{
			Time:  closes[i].Time,
			Value: 100 * (closes[i].Close - prev) / prev,
		})
	}
	if err := ValidateReturns(returns); err != nil {
		return nil, err
	}
	return returns, nil
}

// ValidateReturns checks the engine's input contract: length >= 2, all
// values finite, timestamps strictly increasing.
func ValidateReturns(returns []model.WeeklyReturn) error {
	if len(returns) < 2 {
		return fmt.Errorf("%w: %d returns", ErrTooShort, len(returns))
	}
	for i, r := range returns {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return fmt.Errorf("%w: index %d (%s)", ErrNonFinite, i, r.Time.Format("2006-01-02"))
		}
		if i > 0 && !returns[i-1].Time.Before(r.Time) {
			return fmt.Errorf("%w: index %d (%s)", ErrNotChronological, i, r.Time.Format("2006-01-02"))
		}
	}
	return nil
}

// Values extracts the raw return values in order, the shape the estimation
// engine consumes.
func Values(returns []model.WeeklyReturn) []float64 {
	vals := make([]float64, len(returns))
	for i, r := range returns {
		vals[i] = r.Value
	}
	return vals
}
