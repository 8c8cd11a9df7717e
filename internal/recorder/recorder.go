package recorder

import (
	"time"

	"RegimeSentinel/internal/model"
)

// RunRecord holds everything worth persisting about one classification run.
type RunRecord struct {
	Symbol     string
	NObs       int
	LogLik     float64
	Iterations int
	Converged  bool
	Label      model.RegimeLabel // current (latest week) regime
	Streak     int
	Mean       [2]float64 // per-state emission means
	Var        [2]float64 // per-state emission variances
	Stay       [2]float64 // self-transition probabilities
	Points     []model.RegimePoint
}

// RunSummary is the compact view served to history queries.
type RunSummary struct {
	At     time.Time
	Symbol string
	Label  string
	Streak int
	LogLik float64
	NObs   int
}

// Recorder persists historical classification runs for analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
