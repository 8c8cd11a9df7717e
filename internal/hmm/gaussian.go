package hmm

import "math"

const log2Pi = 1.8378770664093453

// logGaussian returns log N(x; mean, variance).
func logGaussian(x, mean, variance float64) float64 {
	d := x - mean
	return -0.5 * (log2Pi + math.Log(variance) + d*d/variance)
}

// emissionDensities returns the N x K matrix of per-timestep, per-state
// emission densities b_k(x_t) in linear space. Underflow is handled by the
// scaling step in the forward-backward pass, not here.
func emissionDensities(p Params, obs []float64) [][]float64 {
	dens := make([][]float64, len(obs))
	for t, x := range obs {
		row := make([]float64, p.K)
		for k := 0; k < p.K; k++ {
			row[k] = math.Exp(logGaussian(x, p.Mean[k], p.Var[k]))
		}
		dens[t] = row
	}
	return dens
}

// reestimateGaussian recomputes per-state means and variances as weighted
// sample moments, with gamma[t][k] as the soft responsibility of state k for
// observation t. When a state starves (near-zero total weight) its moments
// are left untouched, and every variance is floored at varFloor so the
// density never becomes singular. Returns the number of floored variances.
func reestimateGaussian(p *Params, obs []float64, gamma [][]float64, varFloor float64) int {
	weight := make([]float64, p.K)
	mean := make([]float64, p.K)
	for t, x := range obs {
		for k := 0; k < p.K; k++ {
			weight[k] += gamma[t][k]
			mean[k] += gamma[t][k] * x
		}
	}

	const starveWeight = 1e-10
	for k := 0; k < p.K; k++ {
		if weight[k] > starveWeight {
			p.Mean[k] = mean[k] / weight[k]
		}
	}

	variance := make([]float64, p.K)
	for t, x := range obs {
		for k := 0; k < p.K; k++ {
			d := x - p.Mean[k]
			variance[k] += gamma[t][k] * d * d
		}
	}

	floored := 0
	for k := 0; k < p.K; k++ {
		if weight[k] > starveWeight {
			p.Var[k] = variance[k] / weight[k]
		}
		if p.Var[k] < varFloor {
			p.Var[k] = varFloor
			floored++
		}
	}
	return floored
}
