package hmm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
)

// Result is the frozen outcome of one training run. When Converged is false
// the iteration cap was reached and Params hold the best-available estimate;
// callers treat that as a warning, not a failure.
type Result struct {
	Params     Params
	LogLik     float64
	Iterations int
	Converged  bool
	// LogLikTrace records the E-step log-likelihood of every iteration.
	LogLikTrace []float64
}

// Trainer fits a two-state Gaussian HMM to a return sequence with the
// Baum-Welch (EM) algorithm. A Trainer is stateless between Fit calls;
// every run owns its own Params until it returns them frozen in a Result.
type Trainer struct {
	cfg Config
}

// NewTrainer returns a Trainer with the given configuration. Zero or
// negative fields fall back to the defaults.
func NewTrainer(cfg Config) *Trainer {
	def := DefaultConfig()
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = def.MaxIter
	}
	if cfg.Tol <= 0 {
		cfg.Tol = def.Tol
	}
	if cfg.VarFloor <= 0 {
		cfg.VarFloor = def.VarFloor
	}
	return &Trainer{cfg: cfg}
}

// Fit estimates model parameters for obs. The observation slice must already
// be validated (finite values, length >= 2). The run is deterministic for a
// fixed seed and sequence. A zero-likelihood inference failure is retried
// once from a re-randomized start before being propagated.
func (tr *Trainer) Fit(ctx context.Context, obs []float64) (*Result, error) {
	if len(obs) < 2 {
		return nil, fmt.Errorf("hmm: need at least 2 observations, got %d", len(obs))
	}

	rng := rand.New(rand.NewSource(tr.cfg.Seed))
	res, err := tr.fitOnce(ctx, obs, rng)
	if errors.Is(err, ErrZeroLikelihood) {
		log.Printf("[WARN] hmm: inference failure, retrying with re-randomized start: %v", err)
		res, err = tr.fitOnce(ctx, obs, rng)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (tr *Trainer) fitOnce(ctx context.Context, obs []float64, rng *rand.Rand) (*Result, error) {
	p := randomStart(obs, tr.cfg.VarFloor, rng)

	var prev float64
	iterations := 0
	converged := false
	trace := make([]float64, 0, 64)

	for iter := 0; iter < tr.cfg.MaxIter; iter++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// E-step: posteriors under the current parameters.
		post, err := forwardBackward(p, obs)
		if err != nil {
			return nil, err
		}
		iterations = iter + 1

		// M-step: initial distribution from gamma_0.
		copy(p.Init, post.Gamma[0])
		normalizeSum(p.Init)

		// Transition rows from expected transition counts.
		for i := 0; i < p.K; i++ {
			row := p.Trans[i]
			for j := range row {
				row[j] = 0
			}
			for t := range post.Xi {
				for j := 0; j < p.K; j++ {
					row[j] += post.Xi[t][i][j]
				}
			}
			normalizeSum(row)
		}

		// Emission moments from gamma-weighted samples.
		if floored := reestimateGaussian(&p, obs, post.Gamma, tr.cfg.VarFloor); floored > 0 {
			log.Printf("[WARN] hmm: %d variance(s) floored at %g during iteration %d", floored, tr.cfg.VarFloor, iter)
		}

		// EM guarantees a non-decreasing likelihood; a real decrease
		// would indicate a defect, so it is logged loudly.
		if iter > 0 {
			improvement := post.LogLik - prev
			if improvement < -1e-6 {
				log.Printf("[ERROR] hmm: log-likelihood decreased by %g at iteration %d", -improvement, iter)
			}
			if improvement >= 0 && improvement < tr.cfg.Tol {
				converged = true
			}
		}
		prev = post.LogLik
		trace = append(trace, post.LogLik)
		if converged {
			break
		}
	}

	if !converged {
		log.Printf("[WARN] hmm: EM did not converge within %d iterations (tol %g), returning best-available parameters", tr.cfg.MaxIter, tr.cfg.Tol)
	}

	// Report the likelihood under the frozen parameters so the result is
	// self-consistent: re-scoring the training sequence with Result.Params
	// reproduces Result.LogLik.
	finalLL, err := LogLikelihood(p, obs)
	if err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("hmm: invalid parameters after training: %w", err)
	}

	return &Result{
		Params:      p,
		LogLik:      finalLL,
		Iterations:  iterations,
		Converged:   converged,
		LogLikTrace: trace,
	}, nil
}
