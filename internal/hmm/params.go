package hmm

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NumStates is the number of latent volatility states.
const NumStates = 2

// Params holds the parameters of a K-state Gaussian HMM with scalar
// (univariate) emissions. Params are mutated only by the trainer; once
// training returns they are treated as frozen.
type Params struct {
	K     int
	Init  []float64   // length K, sums to 1
	Trans [][]float64 // K x K, row-stochastic
	Mean  []float64   // per-state emission mean
	Var   []float64   // per-state emission variance, always > 0
}

// Config is the tunable surface of the estimation engine.
type Config struct {
	MaxIter  int     // EM iteration cap
	Tol      float64 // convergence tolerance on log-likelihood improvement
	Seed     int64   // initialization seed, same seed + data = same result
	VarFloor float64 // regularization epsilon for collapsing variances
}

// DefaultConfig mirrors the settings the model was tuned with: a large
// iteration cap tolerates slow convergence on noisy financial series.
func DefaultConfig() Config {
	return Config{
		MaxIter:  10000,
		Tol:      1e-6,
		Seed:     2606,
		VarFloor: 1e-6,
	}
}

// Clone returns a deep copy of the parameters.
func (p Params) Clone() Params {
	q := Params{
		K:    p.K,
		Init: append([]float64(nil), p.Init...),
		Mean: append([]float64(nil), p.Mean...),
		Var:  append([]float64(nil), p.Var...),
	}
	q.Trans = make([][]float64, p.K)
	for i := range p.Trans {
		q.Trans[i] = append([]float64(nil), p.Trans[i]...)
	}
	return q
}

// Validate checks that all probability-valued quantities are valid
// distributions and all variances are positive.
func (p Params) Validate() error {
	if p.K < 2 {
		return fmt.Errorf("K must be >= 2, got %d", p.K)
	}
	if len(p.Init) != p.K || len(p.Trans) != p.K || len(p.Mean) != p.K || len(p.Var) != p.K {
		return fmt.Errorf("parameter sizes do not match K=%d", p.K)
	}
	if s := floats.Sum(p.Init); math.Abs(s-1) > 1e-8 {
		return fmt.Errorf("initial distribution sums to %v, want 1", s)
	}
	for i, row := range p.Trans {
		if len(row) != p.K {
			return fmt.Errorf("transition row %d has length %d, want %d", i, len(row), p.K)
		}
		if s := floats.Sum(row); math.Abs(s-1) > 1e-8 {
			return fmt.Errorf("transition row %d sums to %v, want 1", i, s)
		}
		for j, v := range row {
			if v < 0 {
				return fmt.Errorf("transition[%d][%d] = %v is negative", i, j, v)
			}
		}
	}
	for k, v := range p.Var {
		if v <= 0 || math.IsNaN(v) {
			return fmt.Errorf("variance of state %d is %v, must be positive", k, v)
		}
	}
	return nil
}

// randomStart draws a perturbed starting point around the marginal moments
// of the observations. Means start near the sample mean; variances are split
// below and above the sample variance so the two states break symmetry.
func randomStart(obs []float64, varFloor float64, rng *rand.Rand) Params {
	mean, variance := stat.MeanVariance(obs, nil)
	if variance < varFloor {
		variance = varFloor
	}
	sd := math.Sqrt(variance)

	p := Params{
		K:    NumStates,
		Init: make([]float64, NumStates),
		Mean: make([]float64, NumStates),
		Var:  make([]float64, NumStates),
	}
	p.Trans = make([][]float64, NumStates)

	split := []float64{0.5, 2.0}
	for k := 0; k < NumStates; k++ {
		p.Init[k] = 1 + 0.1*rng.Float64()
		p.Mean[k] = mean + 0.1*sd*rng.NormFloat64()
		p.Var[k] = variance * split[k] * (1 + 0.1*rng.Float64())
		if p.Var[k] < varFloor {
			p.Var[k] = varFloor
		}

		row := make([]float64, NumStates)
		for j := 0; j < NumStates; j++ {
			if j == k {
				row[j] = 0.8 + 0.1*rng.Float64()
			} else {
				row[j] = 0.2 + 0.1*rng.Float64()
			}
		}
		normalizeSum(row)
		p.Trans[k] = row
	}
	normalizeSum(p.Init)

	return p
}

// normalizeSum scales x in place so it sums to 1. A vector that sums to
// (numerically) zero is reset to uniform rather than left as NaNs.
func normalizeSum(x []float64) {
	s := floats.Sum(x)
	if s < 1e-300 {
		for i := range x {
			x[i] = 1 / float64(len(x))
		}
		return
	}
	floats.Scale(1/s, x)
}
