package strategy

import (
	"fmt"
	"math"

	"RegimeSentinel/internal/model"
	"RegimeSentinel/internal/regime"
)

// stances maps a minimum low-volatility streak to an entry stance.
// Longer calm stretches earn more conviction.
var stances = []struct {
	MinStreak int
	Stance    string
}{
	{8, "established calm - favorable entry window"},
	{4, "settling calm - favorable entry window"},
	{0, "fresh low-vol regime - cautious entry window"},
}

// HoldOffStance is used whenever the market sits in the high-vol regime.
const HoldOffStance = "high volatility - hold off on new entries"

func mapStance(streak int) string {
	for _, s := range stances {
		if streak >= s.MinStreak {
			return s.Stance
		}
	}
	return stances[len(stances)-1].Stance
}

// Evaluate turns a classification into an entry-timing signal. It never
// forecasts: the stance only says whether the present regime historically
// favors opening a position.
func Evaluate(cls *regime.Classification) *model.EntrySignal {
	cur := cls.Current()
	streak := cls.StreakWeeks()

	sig := &model.EntrySignal{
		StreakWeeks: streak,
		TriggerType: model.TriggerWeekly,
	}

	if cur.Label == model.LowVol {
		sig.Favorable = true
		sig.Stance = mapStance(streak)
		sig.Commentary = fmt.Sprintf("low-vol regime for %d week(s)", streak)
	} else {
		sig.Favorable = false
		sig.Stance = HoldOffStance
		sig.Commentary = fmt.Sprintf("high-vol regime for %d week(s)", streak)
	}

	// Flag an outsized latest move relative to the state it was decoded into.
	sd := math.Sqrt(cls.Params.Var[cur.State])
	if dev := math.Abs(cur.Return - cls.Params.Mean[cur.State]); dev > 2*sd {
		sig.WarningMsg = fmt.Sprintf("⚠️ last weekly return %+.2f%% is %.1fσ from its regime mean", cur.Return, dev/sd)
	}

	return sig
}
