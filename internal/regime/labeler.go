package regime

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"RegimeSentinel/internal/hmm"
	"RegimeSentinel/internal/model"
)

// ErrSingleRegime reports that the decoded path visits one state too rarely
// for a variance comparison, so the two states cannot be told apart. The
// caller must decide how to handle the degenerate single-regime case;
// picking a label silently would be unsafe for a timing decision.
var ErrSingleRegime = errors.New("regime: decoded path does not visit both states enough to compare variances")

// Label assigns High Vol to whichever state shows the larger sample variance
// of returns along the decoded path, and Low Vol to the other. State indices
// out of training are arbitrary, so this symmetry-breaking runs fresh on
// every invocation. The result is indexed by state.
func Label(returns []model.WeeklyReturn, path []int) ([hmm.NumStates]model.RegimeLabel, error) {
	var labels [hmm.NumStates]model.RegimeLabel
	if len(returns) != len(path) {
		return labels, fmt.Errorf("regime: %d returns vs %d decoded states", len(returns), len(path))
	}

	var byState [hmm.NumStates][]float64
	for i, st := range path {
		if st < 0 || st >= hmm.NumStates {
			return labels, fmt.Errorf("regime: decoded state %d out of range", st)
		}
		byState[st] = append(byState[st], returns[i].Value)
	}

	// A sample variance needs at least two points per state.
	for st, vals := range byState {
		if len(vals) < 2 {
			return labels, fmt.Errorf("%w: state %d visited %d time(s)", ErrSingleRegime, st, len(vals))
		}
	}

	var0 := stat.Variance(byState[0], nil)
	var1 := stat.Variance(byState[1], nil)
	if var0 > var1 {
		labels[0], labels[1] = model.HighVol, model.LowVol
	} else {
		labels[0], labels[1] = model.LowVol, model.HighVol
	}
	return labels, nil
}
