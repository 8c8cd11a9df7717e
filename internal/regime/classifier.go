package regime

import (
	"context"
	"fmt"
	"log"

	"RegimeSentinel/internal/calculator"
	"RegimeSentinel/internal/hmm"
	"RegimeSentinel/internal/model"
)

// Classification is the frozen outcome of one run: the labeled weekly series
// plus the trained model it came from. Nothing here is persisted implicitly;
// the whole thing is recomputed for every invocation.
type Classification struct {
	Points     []model.RegimePoint
	Params     hmm.Params
	LogLik     float64
	Iterations int
	Converged  bool
	// Lookup from raw state index to semantic label for this run.
	StateLabels [hmm.NumStates]model.RegimeLabel
}

// Current returns the most recent labeled point.
func (c *Classification) Current() model.RegimePoint {
	return c.Points[len(c.Points)-1]
}

// StreakWeeks counts how many trailing weeks share the current label.
func (c *Classification) StreakWeeks() int {
	cur := c.Current().Label
	streak := 0
	for i := len(c.Points) - 1; i >= 0; i-- {
		if c.Points[i].Label != cur {
			break
		}
		streak++
	}
	return streak
}

// Classifier runs the full pipeline: validate returns, train the HMM,
// decode the state path and attach volatility labels.
type Classifier struct {
	cfg hmm.Config
}

// NewClassifier creates a Classifier with the given engine configuration.
func NewClassifier(cfg hmm.Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify trains a fresh model on the weekly returns and labels every
// timestep. Identical returns and seed produce an identical Classification.
func (c *Classifier) Classify(ctx context.Context, returns []model.WeeklyReturn) (*Classification, error) {
	if err := calculator.ValidateReturns(returns); err != nil {
		return nil, fmt.Errorf("validate input: %w", err)
	}
	values := calculator.Values(returns)

	trainer := hmm.NewTrainer(c.cfg)
	res, err := trainer.Fit(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}
	if !res.Converged {
		log.Printf("[WARN] regime: training stopped at iteration cap (%d iterations), labeling with best-available parameters", res.Iterations)
	}

	path, _, err := hmm.Decode(res.Params, values)
	if err != nil {
		return nil, fmt.Errorf("decode states: %w", err)
	}

	labels, err := Label(returns, path)
	if err != nil {
		return nil, err
	}

	points := make([]model.RegimePoint, len(returns))
	for i, r := range returns {
		points[i] = model.RegimePoint{
			Time:   r.Time,
			Return: r.Value,
			State:  path[i],
			Label:  labels[path[i]],
		}
	}

	return &Classification{
		Points:      points,
		Params:      res.Params,
		LogLik:      res.LogLik,
		Iterations:  res.Iterations,
		Converged:   res.Converged,
		StateLabels: labels,
	}, nil
}
