package regime

import (
	"errors"
	"testing"
	"time"

	"RegimeSentinel/internal/model"
)

func weeklyAt(values ...float64) []model.WeeklyReturn {
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	rs := make([]model.WeeklyReturn, len(values))
	for i, v := range values {
		rs[i] = model.WeeklyReturn{Time: base.AddDate(0, 0, 7*i), Value: v}
	}
	return rs
}

func TestLabel_HighVarianceStateGetsHighVol(t *testing.T) {
	// State 0 holds the calm returns, state 1 the wild ones.
	returns := weeklyAt(0.1, -0.2, 0.3, 12, -15, 11)
	path := []int{0, 0, 0, 1, 1, 1}

	labels, err := Label(returns, path)
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	if labels[0] != model.LowVol {
		t.Errorf("state 0 labeled %q, want %q", labels[0], model.LowVol)
	}
	if labels[1] != model.HighVol {
		t.Errorf("state 1 labeled %q, want %q", labels[1], model.HighVol)
	}

	// Same data with the state indices swapped flips the labels: the
	// assignment tracks variance, not index.
	swapped := []int{1, 1, 1, 0, 0, 0}
	labels, err = Label(returns, swapped)
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	if labels[0] != model.HighVol || labels[1] != model.LowVol {
		t.Errorf("swapped path labeled %v, want [High Vol, Low Vol]", labels)
	}
}

func TestLabel_SingleRegimePath(t *testing.T) {
	returns := weeklyAt(0.1, 0.2, 0.1, 0.3)

	for _, path := range [][]int{
		{0, 0, 0, 0}, // state 1 never visited
		{0, 0, 0, 1}, // state 1 visited once, no sample variance
	} {
		if _, err := Label(returns, path); !errors.Is(err, ErrSingleRegime) {
			t.Errorf("path %v: expected ErrSingleRegime, got %v", path, err)
		}
	}
}

func TestLabel_LengthMismatch(t *testing.T) {
	returns := weeklyAt(0.1, 0.2, 0.3)
	if _, err := Label(returns, []int{0, 1}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestLabel_StateOutOfRange(t *testing.T) {
	returns := weeklyAt(0.1, 0.2)
	if _, err := Label(returns, []int{0, 2}); err == nil {
		t.Fatal("expected error for out-of-range state index")
	}
}
