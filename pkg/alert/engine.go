// Package alert decides when rift alerts fire and delivers them.
package alert

import (
	"time"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// Decision is the outcome of one engine tick
type Decision struct {
	FireOpenAlert bool
	FirePreAlert  bool
	History       models.AlertFireHistory
}

// Tick decides which alerts fire for state. The caller keeps the returned
// history and passes it back on the next tick.
//
// The open/closed edge is tracked even while alerts are disabled, so enabling
// alerts in the middle of an open window does not fire the open alert.
func Tick(state models.ClockState, cfg models.AlertConfig, history models.AlertFireHistory) Decision {
	d := Decision{History: history}
	d.History.WasOpenLastTick = state.IsOpen

	if !cfg.Enabled {
		return d
	}

	if state.IsOpen && !history.WasOpenLastTick {
		d.FireOpenAlert = true
	}

	if !state.IsOpen && preAlertDue(state, cfg.PreAlertMinutes) && !history.PreAlertedFor.Equal(state.NextTransition) {
		d.FirePreAlert = true
		d.History.PreAlertedFor = state.NextTransition
	}

	return d
}

// preAlertDue reports whether the whole minutes left until the opening,
// rounded up, equal the configured lead time.
func preAlertDue(state models.ClockState, minutes int) bool {
	if state.NextTransition.IsZero() || minutes <= 0 {
		return false
	}
	lead := time.Duration(minutes) * time.Minute
	return state.Remaining <= lead && state.Remaining > lead-time.Minute
}
