package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"RegimeSentinel/internal/collector"
	"RegimeSentinel/internal/notifier"
	"RegimeSentinel/internal/recorder"
	"RegimeSentinel/internal/regime"
	"RegimeSentinel/internal/strategy"
	"RegimeSentinel/internal/track"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the weekly classification task and user commands.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Classifier *regime.Classifier
	Track      *track.Manager
	Notifier   *notifier.TelegramNotifier // nil means log-only (one-shot mode)
	Recorder   recorder.Recorder
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, cls *regime.Classifier, tm *track.Manager, tn *notifier.TelegramNotifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Collector:  col,
		Classifier: cls,
		Track:      tm,
		Notifier:   tn,
		Recorder:   rec,
		Ctx:        ctx,
	}
}

// RegisterAll registers the weekly re-classification task.
func (s *Scheduler) RegisterAll(weeklyCron string) error {
	if _, err := s.Cron.AddFunc(weeklyCron, s.weeklyTask); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunWeeklyNow executes the weekly task immediately (manual trigger / one-shot mode).
// Returns an error only for input or inference failures that aborted the run.
func (s *Scheduler) RunWeeklyNow() error {
	return s.runWeekly()
}

func (s *Scheduler) weeklyTask() {
	if err := s.runWeekly(); err != nil {
		log.Printf("[ERROR] weekly classification: %v", err)
		s.trySend(fmt.Sprintf("❌ Weekly classification failed for %s: %v", s.Collector.Symbol, err))
	}
}

func (s *Scheduler) runWeekly() error {
	log.Println("[INFO] running weekly classification")

	series, err := s.Collector.Collect()
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	log.Printf("[INFO] collected %d weekly returns for %s", len(series.Returns), series.Symbol)

	cls, err := s.Classifier.Classify(s.Ctx, series.Returns)
	if err != nil {
		if errors.Is(err, regime.ErrSingleRegime) {
			// The whole window decoded into one regime. Reportable, not
			// silently resolvable: no labeled output is produced.
			return fmt.Errorf("single-regime window, cannot label: %w", err)
		}
		return err
	}

	sig := strategy.Evaluate(cls)

	cur := cls.Current()
	changed := s.Track.Update(cur.Label, sig.StreakWeeks, cls.LogLik, cur.Time)
	if changed {
		log.Printf("[INFO] regime change detected: now %s", cur.Label)
	}

	report := notifier.FormatRegimeReport(series.Symbol, cls, sig, changed)
	s.trySend(report)

	rec := &recorder.RunRecord{
		Symbol:     series.Symbol,
		NObs:       len(cls.Points),
		LogLik:     cls.LogLik,
		Iterations: cls.Iterations,
		Converged:  cls.Converged,
		Label:      cur.Label,
		Streak:     sig.StreakWeeks,
		Mean:       [2]float64{cls.Params.Mean[0], cls.Params.Mean[1]},
		Var:        [2]float64{cls.Params.Var[0], cls.Params.Var[1]},
		Stay:       [2]float64{cls.Params.Trans[0][0], cls.Params.Trans[1][1]},
		Points:     cls.Points,
	}
	if err := s.Recorder.RecordRun(rec); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	return nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/regime", "/weekly":
		s.weeklyTask()
		return ""
	case "/status":
		state := s.Track.GetState()
		return notifier.FormatTrackStatus(&state)
	case "/history":
		runs, err := s.Recorder.RecentRuns(8)
		if err != nil {
			log.Printf("[ERROR] query history: %v", err)
			return "History unavailable."
		}
		return notifier.FormatRunHistory(runs)
	default:
		return "Commands:\n• /regime - reclassify now\n• /status - last run status\n• /history - recent runs"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Printf("[INFO] report:\n%s", text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
