package hmm

import (
	"fmt"
	"math"
)

// Decode returns the single most likely state sequence for obs under p,
// along with the log joint probability of that path. The dynamic program
// runs entirely in log-space with explicit backpointers; ties are broken
// toward the lower state index so decoding is fully deterministic.
// Runs in O(N*K^2) time and O(N*K) space.
func Decode(p Params, obs []float64) ([]int, float64, error) {
	n := len(obs)
	if n == 0 {
		return nil, 0, fmt.Errorf("hmm: empty observation sequence")
	}
	if err := p.Validate(); err != nil {
		return nil, 0, fmt.Errorf("hmm: decode with invalid parameters: %w", err)
	}

	logTrans := make([][]float64, p.K)
	for i := range p.Trans {
		row := make([]float64, p.K)
		for j, v := range p.Trans[i] {
			row[j] = math.Log(v)
		}
		logTrans[i] = row
	}

	delta := make([][]float64, n)
	back := make([][]int, n)

	d0 := make([]float64, p.K)
	for k := 0; k < p.K; k++ {
		d0[k] = math.Log(p.Init[k]) + logGaussian(obs[0], p.Mean[k], p.Var[k])
	}
	delta[0] = d0

	for t := 1; t < n; t++ {
		dt := make([]float64, p.K)
		bt := make([]int, p.K)
		for j := 0; j < p.K; j++ {
			best := math.Inf(-1)
			arg := 0
			for i := 0; i < p.K; i++ {
				// Strict > keeps the lowest index on ties.
				if v := delta[t-1][i] + logTrans[i][j]; v > best {
					best = v
					arg = i
				}
			}
			dt[j] = best + logGaussian(obs[t], p.Mean[j], p.Var[j])
			bt[j] = arg
		}
		delta[t] = dt
		back[t] = bt
	}

	last := 0
	best := delta[n-1][0]
	for k := 1; k < p.K; k++ {
		if delta[n-1][k] > best {
			best = delta[n-1][k]
			last = k
		}
	}
	if math.IsInf(best, -1) || math.IsNaN(best) {
		return nil, 0, fmt.Errorf("%w (viterbi)", ErrZeroLikelihood)
	}

	path := make([]int, n)
	path[n-1] = last
	for t := n - 1; t > 0; t-- {
		path[t-1] = back[t][path[t]]
	}

	return path, best, nil
}
