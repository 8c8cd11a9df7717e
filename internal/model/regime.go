package model

import "time"

// RegimeLabel is the semantic volatility label assigned after decoding.
// State indices coming out of training are arbitrary; labels are derived
// fresh on every run by comparing within-state return variance.
type RegimeLabel string

const (
	LowVol  RegimeLabel = "Low Vol"
	HighVol RegimeLabel = "High Vol"
)

// RegimePoint is one labeled timestep of the classified series.
type RegimePoint struct {
	Time   time.Time
	Return float64 // percent
	State  int     // raw decoded state index (0 or 1)
	Label  RegimeLabel
}
