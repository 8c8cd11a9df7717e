package hmm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrZeroLikelihood reports that the observation sequence has zero total
// likelihood under the current parameters, so the posteriors are undefined.
// The trainer recovers by retrying from a re-randomized start.
var ErrZeroLikelihood = errors.New("hmm: observation sequence has zero likelihood under current parameters")

// Posteriors holds everything the E-step produces for one sequence.
type Posteriors struct {
	// Gamma[t][k] = P(state_t = k | sequence, params)
	Gamma [][]float64
	// Xi[t][i][j] = P(state_t = i, state_{t+1} = j | sequence, params),
	// defined for t = 0 .. N-2.
	Xi [][][]float64
	// LogLik is the total log-likelihood of the sequence.
	LogLik float64
}

// forwardBackward runs the scaled forward-backward recursion. Each time index
// is renormalized, so the computation never underflows over sequences of
// hundreds of observations. The result is deterministic for fixed inputs.
func forwardBackward(p Params, obs []float64) (*Posteriors, error) {
	n := len(obs)
	if n == 0 {
		return nil, fmt.Errorf("hmm: empty observation sequence")
	}

	dens := emissionDensities(p, obs)

	// Forward pass with per-step scaling. scale[t] is the normalizer of
	// alpha at time t; log-likelihood is the sum of its logs.
	alpha := make([][]float64, n)
	scale := make([]float64, n)

	a0 := make([]float64, p.K)
	for k := 0; k < p.K; k++ {
		a0[k] = p.Init[k] * dens[0][k]
	}
	scale[0] = floats.Sum(a0)
	if !(scale[0] > 0) {
		return nil, fmt.Errorf("%w (at t=0)", ErrZeroLikelihood)
	}
	floats.Scale(1/scale[0], a0)
	alpha[0] = a0

	for t := 1; t < n; t++ {
		at := make([]float64, p.K)
		for j := 0; j < p.K; j++ {
			var s float64
			for i := 0; i < p.K; i++ {
				s += alpha[t-1][i] * p.Trans[i][j]
			}
			at[j] = s * dens[t][j]
		}
		scale[t] = floats.Sum(at)
		if !(scale[t] > 0) {
			return nil, fmt.Errorf("%w (at t=%d)", ErrZeroLikelihood, t)
		}
		floats.Scale(1/scale[t], at)
		alpha[t] = at
	}

	var logLik float64
	for t := 0; t < n; t++ {
		logLik += math.Log(scale[t])
	}

	// Backward pass reusing the forward scale factors.
	beta := make([][]float64, n)
	bn := make([]float64, p.K)
	for k := range bn {
		bn[k] = 1
	}
	beta[n-1] = bn

	for t := n - 2; t >= 0; t-- {
		bt := make([]float64, p.K)
		for i := 0; i < p.K; i++ {
			var s float64
			for j := 0; j < p.K; j++ {
				s += p.Trans[i][j] * dens[t+1][j] * beta[t+1][j]
			}
			bt[i] = s / scale[t+1]
		}
		beta[t] = bt
	}

	// State occupation and pairwise transition posteriors.
	gamma := make([][]float64, n)
	for t := 0; t < n; t++ {
		g := make([]float64, p.K)
		for k := 0; k < p.K; k++ {
			g[k] = alpha[t][k] * beta[t][k]
		}
		normalizeSum(g)
		gamma[t] = g
	}

	xi := make([][][]float64, 0, n-1)
	for t := 0; t < n-1; t++ {
		x := make([][]float64, p.K)
		var total float64
		for i := 0; i < p.K; i++ {
			row := make([]float64, p.K)
			for j := 0; j < p.K; j++ {
				row[j] = alpha[t][i] * p.Trans[i][j] * dens[t+1][j] * beta[t+1][j]
				total += row[j]
			}
			x[i] = row
		}
		if total > 0 {
			for i := 0; i < p.K; i++ {
				floats.Scale(1/total, x[i])
			}
		}
		xi = append(xi, x)
	}

	return &Posteriors{Gamma: gamma, Xi: xi, LogLik: logLik}, nil
}

// LogLikelihood returns the total log-likelihood of obs under p,
// computed by a single scaled forward pass.
func LogLikelihood(p Params, obs []float64) (float64, error) {
	post, err := forwardBackward(p, obs)
	if err != nil {
		return 0, err
	}
	return post.LogLik, nil
}
