package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/rift-notifier/pkg/models"
	"github.com/borgmon/rift-notifier/pkg/schedule"
)

func enabledConfig(preAlert int) models.AlertConfig {
	cfg := models.DefaultAlertConfig()
	cfg.Enabled = true
	cfg.PreAlertMinutes = preAlert
	return cfg
}

func at(hour, min, sec int) time.Time {
	return time.Date(2026, 3, 10, hour, min, sec, 0, time.UTC)
}

type firing struct {
	at   time.Time
	kind models.AlertKind
}

// simulate ticks from start to end (inclusive) every step and records fired alerts
func simulate(start, end time.Time, step time.Duration, cfg models.AlertConfig, history models.AlertFireHistory) ([]firing, models.AlertFireHistory) {
	def := models.DefaultSchedule()
	var fired []firing
	for now := start; !now.After(end); now = now.Add(step) {
		d := Tick(schedule.Evaluate(now, def), cfg, history)
		history = d.History
		if d.FireOpenAlert {
			fired = append(fired, firing{now, models.AlertKindOpen})
		}
		if d.FirePreAlert {
			fired = append(fired, firing{now, models.AlertKindPreAlert})
		}
	}
	return fired, history
}

func TestOpenAlertFiresOncePerInterval(t *testing.T) {
	fired, history := simulate(at(7, 59, 50), at(9, 0, 10), time.Second, enabledConfig(30), models.AlertFireHistory{})

	var opens []firing
	for _, f := range fired {
		if f.kind == models.AlertKindOpen {
			opens = append(opens, f)
		}
	}
	require.Len(t, opens, 1)
	assert.Equal(t, at(8, 0, 0), opens[0].at)
	assert.False(t, history.WasOpenLastTick)
}

func TestOpenAlertRearmsAfterClose(t *testing.T) {
	fired, _ := simulate(at(7, 59, 0), at(11, 1, 0), time.Second, enabledConfig(5), models.AlertFireHistory{})

	var opens []time.Time
	var pres []time.Time
	for _, f := range fired {
		switch f.kind {
		case models.AlertKindOpen:
			opens = append(opens, f.at)
		case models.AlertKindPreAlert:
			pres = append(pres, f.at)
		}
	}

	assert.Equal(t, []time.Time{at(8, 0, 0), at(11, 0, 0)}, opens)
	assert.Equal(t, []time.Time{at(10, 55, 0)}, pres)
}

func TestPreAlertFiresExactlyOnceAroundLeadTime(t *testing.T) {
	for _, minutes := range []int{5, 10, 17, 30} {
		opening := at(14, 0, 0)
		target := opening.Add(-time.Duration(minutes) * time.Minute)

		fired, _ := simulate(target.Add(-5*time.Second), target.Add(5*time.Second), time.Second, enabledConfig(minutes), models.AlertFireHistory{})

		require.Len(t, fired, 1, "lead %d", minutes)
		assert.Equal(t, models.AlertKindPreAlert, fired[0].kind)
		assert.Equal(t, target, fired[0].at)
	}
}

func TestPreAlertConcreteScenario(t *testing.T) {
	fired, _ := simulate(at(7, 45, 0), at(7, 59, 59), time.Second, enabledConfig(10), models.AlertFireHistory{})

	require.Len(t, fired, 1)
	assert.Equal(t, firing{at(7, 50, 0), models.AlertKindPreAlert}, fired[0])
}

func TestPreAlertToleratesJitter(t *testing.T) {
	start := at(7, 49, 50).Add(700 * time.Millisecond)

	fired, _ := simulate(start, start.Add(20*time.Second), time.Second, enabledConfig(10), models.AlertFireHistory{})
	require.Len(t, fired, 1)
	assert.Equal(t, at(7, 49, 59).Add(700*time.Millisecond), fired[0].at)

	// A slow tick that skips the exact second still fires once
	fired, _ = simulate(at(7, 49, 59), at(7, 50, 30), 2*time.Second, enabledConfig(10), models.AlertFireHistory{})
	require.Len(t, fired, 1)
	assert.Equal(t, at(7, 50, 1), fired[0].at)
}

func TestDisabledNeverFires(t *testing.T) {
	cfg := enabledConfig(10)
	cfg.Enabled = false

	fired, history := simulate(at(7, 0, 0), at(9, 30, 0), time.Second, cfg, models.AlertFireHistory{})

	assert.Empty(t, fired)
	assert.False(t, history.WasOpenLastTick)
	assert.True(t, history.PreAlertedFor.IsZero())
}

func TestEnablingMidWindowDoesNotFire(t *testing.T) {
	disabled := enabledConfig(10)
	disabled.Enabled = false

	_, history := simulate(at(8, 0, 0), at(8, 10, 0), time.Second, disabled, models.AlertFireHistory{})
	require.True(t, history.WasOpenLastTick)

	fired, _ := simulate(at(8, 10, 1), at(8, 20, 0), time.Second, enabledConfig(10), history)
	assert.Empty(t, fired)
}

func TestStartingInsideOpenWindowFires(t *testing.T) {
	d := Tick(schedule.Evaluate(at(8, 30, 0), models.DefaultSchedule()), enabledConfig(10), models.AlertFireHistory{})

	assert.True(t, d.FireOpenAlert)
	assert.False(t, d.FirePreAlert)
	assert.True(t, d.History.WasOpenLastTick)
}

func TestPreAlertNotRepeatedForSameOpening(t *testing.T) {
	state := schedule.Evaluate(at(7, 50, 0), models.DefaultSchedule())
	history := models.AlertFireHistory{PreAlertedFor: state.NextTransition}

	d := Tick(state, enabledConfig(10), history)
	assert.False(t, d.FirePreAlert)
}

func TestTickIgnoresZeroState(t *testing.T) {
	d := Tick(models.ClockState{}, enabledConfig(10), models.AlertFireHistory{})
	assert.False(t, d.FirePreAlert)
	assert.False(t, d.FireOpenAlert)
}

func TestMessage(t *testing.T) {
	title, body := Message(models.AlertKindPreAlert, 10)
	assert.Equal(t, "Rift Opening Soon!", title)
	assert.Equal(t, "The Rift will open in 10 minutes!", body)

	_, body = Message(models.AlertKindPreAlert, 1)
	assert.Equal(t, "The Rift will open in 1 minute!", body)

	title, body = Message(models.AlertKindOpen, 10)
	assert.Equal(t, "Rift is Now Open!", title)
	assert.Equal(t, "The Rift has opened! Enter now!", body)
}
