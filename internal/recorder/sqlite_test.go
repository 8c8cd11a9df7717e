package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"RegimeSentinel/internal/model"
)

func testRecord(label model.RegimeLabel) *RunRecord {
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	return &RunRecord{
		Symbol:     "AAPL",
		NObs:       3,
		LogLik:     -123.45,
		Iterations: 42,
		Converged:  true,
		Label:      label,
		Streak:     5,
		Mean:       [2]float64{0.1, -0.2},
		Var:        [2]float64{0.5, 9.3},
		Stay:       [2]float64{0.95, 0.88},
		Points: []model.RegimePoint{
			{Time: base, Return: 1.2, State: 0, Label: model.LowVol},
			{Time: base.AddDate(0, 0, 7), Return: -8.4, State: 1, Label: model.HighVol},
			{Time: base.AddDate(0, 0, 14), Return: 0.3, State: 0, Label: model.LowVol},
		},
	}
}

func TestSQLiteRecorder_RecordAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	if err := r.RecordRun(testRecord(model.LowVol)); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := r.RecordRun(testRecord(model.HighVol)); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := r.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	seen := map[string]bool{}
	for _, s := range runs {
		seen[s.Label] = true
		if s.Symbol != "AAPL" {
			t.Errorf("Symbol = %q, want AAPL", s.Symbol)
		}
		if s.NObs != 3 || s.Streak != 5 {
			t.Errorf("summary fields did not round-trip: %+v", s)
		}
		if s.LogLik != -123.45 {
			t.Errorf("LogLik = %v, want -123.45", s.LogLik)
		}
	}
	if !seen[string(model.LowVol)] || !seen[string(model.HighVol)] {
		t.Errorf("recorded labels missing from summaries: %v", seen)
	}
}

func TestSQLiteRecorder_LimitApplies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	for i := 0; i < 5; i++ {
		if err := r.RecordRun(testRecord(model.LowVol)); err != nil {
			t.Fatalf("RecordRun %d: %v", i, err)
		}
	}
	runs, err := r.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("got %d runs, want 3", len(runs))
	}
}

func TestSQLiteRecorder_ReopenSeesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	if err := r.RecordRun(testRecord(model.HighVol)); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r2, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()

	runs, err := r2.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs after reopen, want 1", len(runs))
	}
}
