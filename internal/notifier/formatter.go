package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"RegimeSentinel/internal/model"
	"RegimeSentinel/internal/recorder"
	"RegimeSentinel/internal/regime"
)

// FormatRegimeReport formats a classification run into a Telegram message.
func FormatRegimeReport(symbol string, cls *regime.Classification, sig *model.EntrySignal, changed bool) string {
	var b strings.Builder

	if changed {
		b.WriteString(fmt.Sprintf("🔔 <b>Regime change</b> | %s\n\n", symbol))
	} else {
		b.WriteString(fmt.Sprintf("📊 <b>RegimeSentinel weekly</b> | %s | %s\n\n", symbol, time.Now().Format("2006-01-02")))
	}

	cur := cls.Current()
	b.WriteString(fmt.Sprintf("Current regime: <b>%s</b> (%d week streak)\n", cur.Label, sig.StreakWeeks))
	b.WriteString(fmt.Sprintf("Last weekly return: %+.2f%% (week of %s)\n\n", cur.Return, cur.Time.Format("2006-01-02")))

	b.WriteString("📈 <b>Model fit:</b>\n")
	for st := 0; st < len(cls.StateLabels); st++ {
		b.WriteString(fmt.Sprintf("  %s: mean %+.2f%%, σ %.2f%%, stay prob %.2f\n",
			cls.StateLabels[st], cls.Params.Mean[st], math.Sqrt(cls.Params.Var[st]), cls.Params.Trans[st][st]))
	}
	b.WriteString(fmt.Sprintf("  log-likelihood %.2f over %d weeks, %d iterations",
		cls.LogLik, len(cls.Points), cls.Iterations))
	if !cls.Converged {
		b.WriteString(" (iteration cap reached)")
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("💡 <b>Stance:</b> %s\n", sig.Stance))

	if sig.WarningMsg != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", sig.WarningMsg))
	}

	return b.String()
}

// FormatTrackStatus formats the persisted run-tracking state for display.
func FormatTrackStatus(state *model.TrackState) string {
	var b strings.Builder
	b.WriteString("📦 <b>Run status</b>\n\n")
	if state.LastLabel == "" {
		b.WriteString("No classification run recorded yet.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Last regime: %s (%d week streak)\n", state.LastLabel, state.StreakWeeks))
	b.WriteString(fmt.Sprintf("Total runs: %d | regime changes seen: %d\n", state.TotalRuns, state.RegimeChanges))
	if n := len(state.RecentLogLiks); n > 0 {
		b.WriteString(fmt.Sprintf("Last log-likelihood: %.2f\n", state.RecentLogLiks[n-1]))
	}
	b.WriteString(fmt.Sprintf("Last run: %s\n", state.LastRunAt.Format("2006-01-02 15:04")))
	return b.String()
}

// FormatRunHistory formats recent recorded runs, newest first.
func FormatRunHistory(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "No recorded runs yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s  %s  %s (streak %d, %d weeks, ll %.1f)\n",
			r.At.Format("2006-01-02"), r.Symbol, r.Label, r.Streak, r.NObs, r.LogLik))
	}
	return b.String()
}
