package model

// TriggerType indicates what triggered a classification run.
type TriggerType string

const (
	TriggerWeekly TriggerType = "WEEKLY"
	TriggerManual TriggerType = "MANUAL"
	TriggerStart  TriggerType = "STARTUP"
)

// EntrySignal is the entry-timing suggestion derived from the current regime.
// Buying during low-volatility periods reduces the risk of entering at a
// local peak; the signal encodes only that timing stance, never a forecast.
type EntrySignal struct {
	Stance      string
	Favorable   bool
	StreakWeeks int
	Commentary  string
	WarningMsg  string
	TriggerType TriggerType
}
