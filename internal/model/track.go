package model

import "time"

// TrackState persists what the bot knew after the last classification run,
// so a regime flip can be detected across restarts.
type TrackState struct {
	LastLabel     string    `json:"last_label"`
	StreakWeeks   int       `json:"streak_weeks"`
	RecentLogLiks []float64 `json:"recent_log_liks"`
	LastRunAt     time.Time `json:"last_run_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	TotalRuns     int       `json:"total_runs"`
	RegimeChanges int       `json:"regime_changes"`
}
