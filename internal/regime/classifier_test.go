package regime

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"RegimeSentinel/internal/calculator"
	"RegimeSentinel/internal/hmm"
	"RegimeSentinel/internal/model"
)

// syntheticReturns builds a weekly series alternating between calm and
// turbulent blocks, the pattern the classifier exists to recover.
func syntheticReturns(n int, seed int64) []model.WeeklyReturn {
	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2015, 1, 9, 0, 0, 0, 0, time.UTC)
	rs := make([]model.WeeklyReturn, n)
	for i := 0; i < n; i++ {
		sd := 0.5
		if (i/40)%2 == 1 {
			sd = 5.0
		}
		rs[i] = model.WeeklyReturn{
			Time:  base.AddDate(0, 0, 7*i),
			Value: rng.NormFloat64() * sd,
		}
	}
	return rs
}

func TestClassify_EndToEnd(t *testing.T) {
	returns := syntheticReturns(240, 7)
	c := NewClassifier(hmm.DefaultConfig())

	cls, err := c.Classify(context.Background(), returns)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(cls.Points) != len(returns) {
		t.Fatalf("got %d points for %d returns", len(cls.Points), len(returns))
	}

	// Every point carries a label consistent with the state lookup.
	for i, pt := range cls.Points {
		if pt.Label != cls.StateLabels[pt.State] {
			t.Fatalf("point %d: label %q but state %d maps to %q", i, pt.Label, pt.State, cls.StateLabels[pt.State])
		}
		if pt.Time != returns[i].Time || pt.Return != returns[i].Value {
			t.Fatalf("point %d does not match its input return", i)
		}
	}
	if cls.StateLabels[0] == cls.StateLabels[1] {
		t.Errorf("both states labeled %q", cls.StateLabels[0])
	}

	// The labeling must reflect the data: the state labeled High Vol must
	// hold the returns with the larger sample variance.
	vars := stateVariances(cls)
	if vars[stateOf(cls, model.HighVol)] <= vars[stateOf(cls, model.LowVol)] {
		t.Errorf("High Vol state variance %v not above Low Vol state variance %v",
			vars[stateOf(cls, model.HighVol)], vars[stateOf(cls, model.LowVol)])
	}
}

func stateOf(cls *Classification, label model.RegimeLabel) int {
	for st, l := range cls.StateLabels {
		if l == label {
			return st
		}
	}
	return -1
}

func stateVariances(cls *Classification) [hmm.NumStates]float64 {
	var sums, sqs [hmm.NumStates]float64
	var counts [hmm.NumStates]int
	for _, pt := range cls.Points {
		sums[pt.State] += pt.Return
		sqs[pt.State] += pt.Return * pt.Return
		counts[pt.State]++
	}
	var vars [hmm.NumStates]float64
	for st := range vars {
		if counts[st] > 1 {
			mean := sums[st] / float64(counts[st])
			vars[st] = sqs[st]/float64(counts[st]) - mean*mean
		}
	}
	return vars
}

func TestClassify_Deterministic(t *testing.T) {
	returns := syntheticReturns(160, 11)
	c := NewClassifier(hmm.DefaultConfig())

	a, err := c.Classify(context.Background(), returns)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	b, err := c.Classify(context.Background(), returns)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if a.LogLik != b.LogLik {
		t.Errorf("log-likelihood differs between identical runs: %v vs %v", a.LogLik, b.LogLik)
	}
	if a.Iterations != b.Iterations {
		t.Errorf("iteration count differs: %d vs %d", a.Iterations, b.Iterations)
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("point %d differs between identical runs", i)
		}
	}
}

func TestClassify_TrainedTransitionsRowStochastic(t *testing.T) {
	returns := syntheticReturns(200, 3)
	c := NewClassifier(hmm.DefaultConfig())

	cls, err := c.Classify(context.Background(), returns)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if err := cls.Params.Validate(); err != nil {
		t.Fatalf("trained parameters invalid: %v", err)
	}
	for i, row := range cls.Params.Trans {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if math.Abs(sum-1) > 1e-8 {
			t.Errorf("transition row %d sums to %v", i, sum)
		}
	}
}

func TestClassify_NearConstantSeries(t *testing.T) {
	// A flat series gives the decoder nothing to separate on; everything
	// lands in one state and labeling must refuse rather than guess.
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	returns := make([]model.WeeklyReturn, 30)
	for i := range returns {
		returns[i] = model.WeeklyReturn{Time: base.AddDate(0, 0, 7*i), Value: 0.5}
	}

	c := NewClassifier(hmm.DefaultConfig())
	_, err := c.Classify(context.Background(), returns)
	if err == nil {
		t.Fatal("expected an error for a constant series")
	}
	if !errors.Is(err, ErrSingleRegime) && !errors.Is(err, hmm.ErrZeroLikelihood) {
		t.Fatalf("got %v, want ErrSingleRegime or ErrZeroLikelihood", err)
	}
}

func TestClassify_RejectsInvalidInput(t *testing.T) {
	c := NewClassifier(hmm.DefaultConfig())

	_, err := c.Classify(context.Background(), nil)
	if !errors.Is(err, calculator.ErrTooShort) {
		t.Errorf("empty input: got %v, want ErrTooShort", err)
	}

	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	bad := []model.WeeklyReturn{
		{Time: base, Value: 1},
		{Time: base.AddDate(0, 0, 7), Value: math.NaN()},
	}
	if _, err := c.Classify(context.Background(), bad); !errors.Is(err, calculator.ErrNonFinite) {
		t.Errorf("NaN input: got %v, want ErrNonFinite", err)
	}
}

func TestStreakWeeks(t *testing.T) {
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	mk := func(labels ...model.RegimeLabel) *Classification {
		cls := &Classification{}
		for i, l := range labels {
			cls.Points = append(cls.Points, model.RegimePoint{
				Time:  base.AddDate(0, 0, 7*i),
				Label: l,
			})
		}
		return cls
	}

	tests := []struct {
		name string
		cls  *Classification
		want int
	}{
		{"all same", mk(model.LowVol, model.LowVol, model.LowVol), 3},
		{"recent flip", mk(model.HighVol, model.HighVol, model.LowVol), 1},
		{"mixed tail", mk(model.LowVol, model.HighVol, model.LowVol, model.LowVol), 2},
		{"single point", mk(model.HighVol), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cls.StreakWeeks(); got != tt.want {
				t.Errorf("StreakWeeks = %d, want %d", got, tt.want)
			}
		})
	}
}
